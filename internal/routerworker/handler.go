// Package routerworker wires a stream entry through the Router and
// republishes its reply.
package routerworker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kiekoher/agentflow/internal/db"
	"github.com/kiekoher/agentflow/internal/envelope"
	"github.com/kiekoher/agentflow/internal/router"
	"github.com/kiekoher/agentflow/internal/stream"
)

// Handler loads the caller's agent, runs the Router at task=chat (the only
// task label the message envelope carries), and republishes the reply onto
// events:message_out.
type Handler struct {
	Stream *stream.Client
	Store  *db.Store
	Router *router.Router
	Logger *slog.Logger
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handler) Handle(ctx context.Context, entry stream.Entry) error {
	msg := envelope.FromFields(entry.Fields)

	agent, err := h.Store.FindAgentForUser(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("router worker: load agent: %w", err)
	}

	reply, err := h.Router.Route(ctx, router.Request{
		UserID: msg.UserID,
		Task:   "chat",
		Query:  msg.Body,
		Agent:  agent,
	})
	if err != nil {
		return fmt.Errorf("router worker: route: %w", err)
	}

	out := envelope.Message{UserID: msg.UserID, ChatID: msg.ChatID, Timestamp: msg.Timestamp, Body: reply}
	if _, err := h.Stream.Publish(ctx, "events:message_out", out.Fields()); err != nil {
		return fmt.Errorf("router worker: publish reply: %w", err)
	}
	return nil
}
