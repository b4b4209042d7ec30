package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/kiekoher/agentflow/internal/auth"
	"github.com/kiekoher/agentflow/internal/db"
	"github.com/kiekoher/agentflow/internal/envelope"
)

const maxUploadBytes = 10 * 1024 * 1024

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"text/plain":      true,
	"text/markdown":   true,
}

// handleKnowledgeUpload stores the uploaded file in blob storage, records a
// pending Document row, and publishes events:new_document for the embedding
// worker to pick up.
func (s *Server) handleKnowledgeUpload(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, `{"error":"invalid multipart body"}`, http.StatusBadRequest)
		return
	}
	agentID := r.FormValue("agent_id")
	if agentID == "" {
		http.Error(w, `{"error":"agent_id required"}`, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, `{"error":"file required"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedContentTypes[contentType] {
		http.Error(w, `{"error":"unsupported content type"}`, http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		http.Error(w, `{"error":"read failed"}`, http.StatusBadRequest)
		return
	}
	if len(data) > maxUploadBytes {
		http.Error(w, `{"error":"file too large"}`, http.StatusBadRequest)
		return
	}

	storagePath := fmt.Sprintf("%s/%s-%s", userID, uuid.NewString(), header.Filename)
	if err := s.Blob.Put(r.Context(), storagePath, contentType, data); err != nil {
		s.logger().Error("knowledge: blob put failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	doc, err := s.Store.CreateDocument(r.Context(), db.Document{
		ID:          uuid.NewString(),
		UserID:      userID,
		AgentID:     agentID,
		FileName:    header.Filename,
		StoragePath: storagePath,
	})
	if err != nil {
		s.logger().Error("knowledge: create document failed", "error", err)
		_ = s.Blob.Delete(r.Context(), storagePath)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	env := envelope.DocumentEnvelope{DocumentID: doc.ID, UserID: userID, StoragePath: storagePath}
	if _, err := s.Stream.Publish(r.Context(), "events:new_document", env.Fields()); err != nil {
		s.logger().Error("knowledge: publish failed", "error", err)
		_ = s.Blob.Delete(r.Context(), storagePath)
		_ = s.Store.DeleteDocument(r.Context(), doc.ID)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	docs, err := s.Store.ListDocuments(r.Context(), userID)
	if err != nil {
		s.logger().Error("knowledge: list documents failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(docs)
}
