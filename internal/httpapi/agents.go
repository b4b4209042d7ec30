package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/kiekoher/agentflow/internal/auth"
	"github.com/kiekoher/agentflow/internal/db"
	"github.com/kiekoher/agentflow/pkg/repo"
)

type agentRequest struct {
	Name       string `json:"name"`
	BasePrompt string `json:"base_prompt"`
	Guardrails string `json:"guardrails"`
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	var req agentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.BasePrompt == "" {
		http.Error(w, `{"error":"name and base_prompt required"}`, http.StatusBadRequest)
		return
	}

	created, err := s.Agents.Create(r.Context(), db.AgentConfig{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       req.Name,
		BasePrompt: req.BasePrompt,
		Guardrails: req.Guardrails,
		Status:     db.AgentActive,
	})
	if err != nil {
		s.logger().Error("agents: create failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	agent, err := s.Store.FindAgentForUser(r.Context(), userID)
	if err != nil {
		s.logger().Error("agents: lookup failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if agent == nil {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(agent)
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	agents, err := s.Agents.List(r.Context(), repo.ListOpts{Filter: map[string]any{"user_id": userID}})
	if err != nil {
		s.logger().Error("agents: list failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(agents)
}

type activateRequest struct {
	AgentID string `json:"agent_id"`
}

func (s *Server) handleActivateAgent(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AgentID == "" {
		http.Error(w, `{"error":"agent_id required"}`, http.StatusBadRequest)
		return
	}

	agent, err := s.Agents.Get(r.Context(), req.AgentID)
	if err != nil || agent.UserID != userID {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	agent.Status = db.AgentActive
	if _, err := s.Agents.Update(r.Context(), agent); err != nil {
		s.logger().Error("agents: activate failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
