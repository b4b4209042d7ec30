// Package httpmodel adapts any provider-agnostic HTTP chat/embedding
// endpoint to the modelclient interfaces, generalizing the HTTP-call shape
// pkg/ollama used for a single local provider to any configured URL.
package httpmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kiekoher/agentflow/internal/modelclient"
	"github.com/kiekoher/agentflow/pkg/resilience"
)

// Client calls a chat-completion-style HTTP endpoint:
// POST {url} {"prompt","history","temperature"} -> {"text"}.
// A circuit breaker protects every call from a flapping upstream provider.
type Client struct {
	url         string
	apiKey      string
	temperature float32
	http        *http.Client
	breaker     *resilience.Breaker
}

type Option func(*Client)

func WithTemperature(t float32) Option {
	return func(c *Client) { c.temperature = t }
}

func New(url, apiKey string, opts ...Option) *Client {
	c := &Client{
		url:     url,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Prompt      string             `json:"prompt"`
	History     []modelclient.Turn `json:"history"`
	Temperature float32            `json:"temperature"`
}

type chatResponse struct {
	Text string `json:"text"`
}

func (c *Client) Respond(ctx context.Context, prompt string, history []modelclient.Turn) (string, error) {
	var reply string
	err := c.breaker.Call(ctx, func(ctx context.Context) error {
		body, err := json.Marshal(chatRequest{Prompt: prompt, History: history, Temperature: c.temperature})
		if err != nil {
			return fmt.Errorf("httpmodel: marshal request: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("httpmodel: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("httpmodel: call: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("httpmodel: status %d", resp.StatusCode)
		}

		var out chatResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return fmt.Errorf("httpmodel: decode response: %w", err)
		}
		reply = out.Text
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

var (
	_ modelclient.AnalysisModel   = (*Client)(nil)
	_ modelclient.ExtractionModel = (*Client)(nil)
	_ modelclient.ChatModel       = (*Client)(nil)
)
