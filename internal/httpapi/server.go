// Package httpapi implements the ingress, knowledge, agent, and admin HTTP
// surface, wired the way the teacher's cmd/api bound its mux and middleware
// chain.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/kiekoher/agentflow/internal/auth"
	"github.com/kiekoher/agentflow/internal/blob"
	"github.com/kiekoher/agentflow/internal/db"
	"github.com/kiekoher/agentflow/internal/quota"
	"github.com/kiekoher/agentflow/internal/stream"
	"github.com/kiekoher/agentflow/pkg/metrics"
	"github.com/kiekoher/agentflow/pkg/mid"
)

type Server struct {
	Stream     *stream.Client
	Store      *db.Store
	Agents     *db.GormRepo[db.AgentConfig, string]
	Blob       *blob.Client
	Quota      *quota.Checker
	Verifier   *auth.Verifier
	Metrics    *metrics.Registry
	Logger     *slog.Logger
	CORSOrigin string
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/deep", s.handleHealthDeep)
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}

	authed := func(h http.HandlerFunc) http.Handler {
		return mid.Chain(h, s.Verifier.Require())
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return mid.Chain(h, s.Verifier.Require(), auth.RequireAdmin())
	}

	mux.Handle("POST /api/v1/messages/whatsapp", authed(s.handleIngressMessage))

	mux.Handle("POST /api/v1/knowledge/upload", authed(s.handleKnowledgeUpload))
	mux.Handle("GET /api/v1/knowledge/documents", authed(s.handleListDocuments))

	mux.Handle("POST /api/v1/agents/me", authed(s.handleCreateAgent))
	mux.Handle("GET /api/v1/agents/me", authed(s.handleGetAgent))
	mux.Handle("GET /api/v1/agents", authed(s.handleListAgents))
	mux.Handle("POST /api/v1/agent/activate", authed(s.handleActivateAgent))

	mux.Handle("GET /api/v1/admin/dlq", admin(s.handleAdminListDLQ))
	mux.Handle("POST /api/v1/admin/dlq/reprocess", admin(s.handleAdminReprocess))
	mux.Handle("DELETE /api/v1/admin/dlq/item", admin(s.handleAdminDelete))

	return mid.Chain(mux, mid.Recover(s.logger()), mid.Logger(s.logger()), mid.CORS(s.CORSOrigin))
}
