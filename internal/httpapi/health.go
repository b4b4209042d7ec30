package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/kiekoher/agentflow/internal/health"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleHealthDeep(w http.ResponseWriter, r *http.Request) {
	err := health.Deep(r.Context(), health.PingFunc(s.Stream.Ping), health.PingFunc(s.Store.Ping))

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		s.logger().Error("health: deep check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]bool{"healthy": false})
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"healthy": true})
}
