// Package router implements task-based model dispatch and the RAG chat
// pipeline, replacing the old engine/rag knowledge-graph-enriched Service
// with a vector-search-only contract scoped to the calling user.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kiekoher/agentflow/internal/db"
	"github.com/kiekoher/agentflow/internal/modelclient"
	"github.com/kiekoher/agentflow/internal/vectorstore"
)

const (
	noAgentMessage = "This agent is not configured yet. Please contact support."
	pausedMessage  = "This agent is currently paused."
	contextHeader  = "--- Relevant Information ---"
)

type Options struct {
	TopK            int
	ScoreThreshold  float32
	MaxHistoryTurns int
}

func DefaultOptions() Options {
	return Options{TopK: 5, ScoreThreshold: 0.5, MaxHistoryTurns: 10}
}

// Router selects a model by task label, assembles its prompt (including the
// RAG lookup for task=chat), dispatches, and logs the resulting turn.
type Router struct {
	Analysis   modelclient.AnalysisModel
	Extraction modelclient.ExtractionModel
	Chat       modelclient.ChatModel
	Embedding  modelclient.EmbeddingModel
	Vectors    *vectorstore.Store
	Store      *db.Store
	Opts       Options
	Logger     *slog.Logger
}

// Request is one inbound turn to route.
type Request struct {
	UserID string
	Task   string
	Query  string
	Agent  *db.AgentConfig
}

func (r *Router) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Route dispatches req to the matching model and returns the reply text.
func (r *Router) Route(ctx context.Context, req Request) (string, error) {
	if req.Agent == nil {
		return noAgentMessage, nil
	}
	if req.Agent.Status == db.AgentPaused {
		r.logTurn(ctx, req.Agent.ID, req.UserID, req.Query, pausedMessage)
		return pausedMessage, nil
	}

	history, err := r.history(ctx, req.Agent.ID, req.UserID)
	if err != nil {
		r.logger().Warn("router: history load failed, continuing without", "error", err)
	}

	var reply string
	switch req.Task {
	case "analysis":
		reply, err = r.Analysis.Respond(ctx, req.Query, history)
	case "extraction":
		reply, err = r.Extraction.Respond(ctx, req.Query, history)
	case "chat":
		reply, err = r.routeChat(ctx, req, history)
	default:
		r.logger().Warn("router: unknown task, defaulting to chat model", "task", req.Task)
		reply, err = r.Chat.Respond(ctx, req.Query, history)
	}
	if err != nil {
		return "", fmt.Errorf("router: respond: %w", err)
	}

	r.logTurn(ctx, req.Agent.ID, req.UserID, req.Query, reply)
	return reply, nil
}

func (r *Router) routeChat(ctx context.Context, req Request, history []modelclient.Turn) (string, error) {
	prompt, err := r.buildRAGPrompt(ctx, req)
	if err != nil {
		return "", err
	}
	return r.Chat.Respond(ctx, prompt, history)
}

// buildRAGPrompt embeds the query, searches the caller's chunks, and
// composes the final prompt: guardrails, base prompt, retrieved context
// (omitted entirely when empty), then the user's query. A TopK of 0 skips
// retrieval, so the prompt then carries no context section.
func (r *Router) buildRAGPrompt(ctx context.Context, req Request) (string, error) {
	topK := r.Opts.TopK
	threshold := r.Opts.ScoreThreshold
	if threshold == 0 {
		threshold = DefaultOptions().ScoreThreshold
	}

	var matches []vectorstore.Match
	if r.Embedding != nil && r.Vectors != nil && topK > 0 {
		embedding, err := r.Embedding.Embed(ctx, req.Query)
		if err != nil {
			return "", fmt.Errorf("router: embed query: %w", err)
		}
		matches, err = r.Vectors.Search(ctx, req.UserID, embedding, threshold, topK)
		if err != nil {
			return "", fmt.Errorf("router: search: %w", err)
		}
	}

	var b strings.Builder
	if req.Agent.Guardrails != "" {
		fmt.Fprintf(&b, "Guardrails (must follow):\n%s\n\n", req.Agent.Guardrails)
	}
	b.WriteString(req.Agent.BasePrompt)

	if len(matches) > 0 {
		b.WriteString("\n\n")
		b.WriteString(contextHeader)
		b.WriteString("\n")
		for i, m := range matches {
			if i > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(m.Content)
		}
	}

	fmt.Fprintf(&b, "\nUser Query: %s", req.Query)
	return b.String(), nil
}

func (r *Router) history(ctx context.Context, agentID, userID string) ([]modelclient.Turn, error) {
	limit := r.Opts.MaxHistoryTurns
	if limit == 0 {
		limit = DefaultOptions().MaxHistoryTurns
	}
	turns, err := r.Store.RecentTurns(ctx, agentID, userID, limit)
	if err != nil {
		return nil, err
	}
	flattened := make([]modelclient.Turn, 0, len(turns)*2)
	for _, t := range turns {
		flattened = append(flattened, modelclient.Turn{Role: "user", Text: t.UserMessage})
		flattened = append(flattened, modelclient.Turn{Role: "model", Text: t.BotResponse})
	}
	return flattened, nil
}

// logTurn is best-effort: a logging failure never fails the caller's request.
func (r *Router) logTurn(ctx context.Context, agentID, userID, userMessage, botResponse string) {
	err := r.Store.LogTurn(ctx, db.ConversationTurn{
		AgentID:     agentID,
		UserID:      userID,
		UserMessage: userMessage,
		BotResponse: botResponse,
	})
	if err != nil {
		r.logger().Warn("router: turn log failed", "error", err, "user_id", userID)
	}
}
