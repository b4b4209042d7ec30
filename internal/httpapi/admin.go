package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/kiekoher/agentflow/internal/stream"
)

func (s *Server) handleAdminListDLQ(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Stream.ListAll(r.Context(), stream.PersistentFailuresKey)
	if err != nil {
		s.logger().Error("admin: list dlq failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte("["))
	for i, e := range entries {
		if i > 0 {
			w.Write([]byte(","))
		}
		w.Write([]byte(e))
	}
	w.Write([]byte("]"))
}

type dlqActionRequest struct {
	Entry        string `json:"entry"`
	TargetStream string `json:"target_stream"`
}

// handleAdminReprocess republishes a persisted failure's original fields
// onto TargetStream (defaulting to events:new_message) and removes it from
// the persistent failure list.
func (s *Server) handleAdminReprocess(w http.ResponseWriter, r *http.Request) {
	var req dlqActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Entry == "" {
		http.Error(w, `{"error":"entry required"}`, http.StatusBadRequest)
		return
	}

	var parsed stream.PersistentEntry
	if err := json.Unmarshal([]byte(req.Entry), &parsed); err != nil {
		http.Error(w, `{"error":"malformed entry"}`, http.StatusBadRequest)
		return
	}

	target := req.TargetStream
	if target == "" {
		target = "events:new_message"
	}

	if _, err := s.Stream.Publish(r.Context(), target, parsed.Data); err != nil {
		s.logger().Error("admin: reprocess publish failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	removed, err := s.Stream.ListRemoveOne(r.Context(), stream.PersistentFailuresKey, req.Entry)
	if err != nil {
		s.logger().Error("admin: reprocess remove failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if removed == 0 {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	var req dlqActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Entry == "" {
		http.Error(w, `{"error":"entry required"}`, http.StatusBadRequest)
		return
	}

	removed, err := s.Stream.ListRemoveOne(r.Context(), stream.PersistentFailuresKey, req.Entry)
	if err != nil {
		s.logger().Error("admin: delete failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if removed == 0 {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}
