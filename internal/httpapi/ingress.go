package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/kiekoher/agentflow/internal/envelope"
)

type ingressRequest struct {
	UserID    string `json:"userId"`
	ChatID    string `json:"chatId"`
	Timestamp string `json:"timestamp"`
	Body      string `json:"body"`
	MediaKey  string `json:"mediaKey"`
}

// handleIngressMessage accepts an inbound WhatsApp message, charges one
// credit, and publishes the Message Envelope onto events:new_message.
func (s *Server) handleIngressMessage(w http.ResponseWriter, r *http.Request) {
	var req ingressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, `{"error":"userId required"}`, http.StatusBadRequest)
		return
	}

	rateKey := s.Verifier.RateLimitKey(r)
	if !s.Quota.Allow(rateKey, r.RemoteAddr) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
		return
	}

	ok, err := s.Quota.SpendCredit(r.Context(), req.UserID)
	if err != nil {
		s.logger().Error("ingress: credit check failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"quota exhausted"}`, http.StatusTooManyRequests)
		return
	}

	msg := envelope.Message{
		UserID:      req.UserID,
		ChatID:      req.ChatID,
		Timestamp:   req.Timestamp,
		Body:        req.Body,
		MediaKey:    req.MediaKey,
		Transcribed: "false",
	}

	if _, err := s.Stream.Publish(r.Context(), "events:new_message", msg.Fields()); err != nil {
		s.logger().Error("ingress: publish failed", "error", err, "user_id", req.UserID)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
