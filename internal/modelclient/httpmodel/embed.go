package httpmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kiekoher/agentflow/internal/modelclient"
	"github.com/kiekoher/agentflow/pkg/fn"
)

// EmbedClient calls a provider-agnostic embeddings HTTP endpoint:
// POST {url} {"text"} -> {"embedding":[...]}, the same request shape
// pkg/ollama used for its local Ollama embeddings call, generalized to any
// configured provider.
type EmbedClient struct {
	url    string
	apiKey string
	http   *http.Client
}

func NewEmbedClient(url, apiKey string) *EmbedClient {
	return &EmbedClient{url: url, apiKey: apiKey, http: &http.Client{Timeout: 30 * time.Second}}
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (c *EmbedClient) embedOne(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("httpmodel: marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("httpmodel: build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpmodel: embed call: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpmodel: embed status %d", resp.StatusCode)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("httpmodel: decode embed response: %w", err)
	}
	return out.Embedding, nil
}

func (c *EmbedClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return c.embedOne(ctx, text)
}

// EmbedBatch embeds each text with bounded concurrency, preserving order.
func (c *EmbedClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := fn.ParMapResult(texts, 8, func(text string) fn.Result[[]float32] {
		return fn.FromPair(c.embedOne(ctx, text))
	})
	return fn.Collect(results).Unwrap()
}

var _ modelclient.EmbeddingModel = (*EmbedClient)(nil)
