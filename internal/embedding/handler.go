// Package embedding implements the embedding worker's stage: text
// resolution (direct or PDF extraction), chunking, embedding, and
// persistence to both Postgres and the vector store.
package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/kiekoher/agentflow/internal/apperrors"
	"github.com/kiekoher/agentflow/internal/blob"
	"github.com/kiekoher/agentflow/internal/chunker"
	"github.com/kiekoher/agentflow/internal/db"
	"github.com/kiekoher/agentflow/internal/envelope"
	"github.com/kiekoher/agentflow/internal/modelclient"
	"github.com/kiekoher/agentflow/internal/pdfextract"
	"github.com/kiekoher/agentflow/internal/retrypolicy"
	"github.com/kiekoher/agentflow/internal/stream"
	"github.com/kiekoher/agentflow/internal/vectorstore"
)

type Handler struct {
	Blob     *blob.Client
	Store    *db.Store
	Chunker  *chunker.Chunker
	Embedder modelclient.EmbeddingModel
	Vectors  *vectorstore.Store
	Logger   *slog.Logger
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handler) Handle(ctx context.Context, entry stream.Entry) error {
	doc := envelope.DocumentFromFields(entry.Fields)

	if err := h.Store.SetDocumentStatus(ctx, doc.DocumentID, db.DocumentProcessing); err != nil {
		return fmt.Errorf("embedding: mark processing: %w", err)
	}

	text, err := h.resolveText(ctx, doc)
	if err != nil {
		h.fail(ctx, doc.DocumentID)
		return err
	}

	chunks := h.Chunker.Split(text)
	if len(chunks) == 0 {
		h.fail(ctx, doc.DocumentID)
		return apperrors.Terminal(fmt.Errorf("embedding: no content to chunk"))
	}

	embeddings, err := retrypolicy.RunValue(ctx, retrypolicy.Embedding, func(ctx context.Context) ([][]float32, error) {
		return h.Embedder.EmbedBatch(ctx, chunks)
	})
	if err != nil {
		h.fail(ctx, doc.DocumentID)
		return fmt.Errorf("embedding: embed batch: %w", err)
	}
	if len(embeddings) != len(chunks) {
		h.fail(ctx, doc.DocumentID)
		return apperrors.Terminal(fmt.Errorf("embedding: embedding count mismatch"))
	}

	rows := make([]db.DocumentChunk, len(chunks))
	records := make([]vectorstore.Record, len(chunks))
	for i, c := range chunks {
		rows[i] = db.DocumentChunk{DocumentID: doc.DocumentID, UserID: doc.UserID, Content: c, Embedding: embeddings[i]}
		records[i] = vectorstore.Record{ID: uuid.NewString(), Embedding: embeddings[i], UserID: doc.UserID, DocumentID: doc.DocumentID, Content: c}
	}

	if err := h.Vectors.Upsert(ctx, records); err != nil {
		h.fail(ctx, doc.DocumentID)
		return fmt.Errorf("embedding: vector upsert: %w", err)
	}

	if err := h.Store.InsertChunks(ctx, doc.DocumentID, rows); err != nil {
		h.fail(ctx, doc.DocumentID)
		return fmt.Errorf("embedding: persist chunks: %w", err)
	}

	return nil
}

func (h *Handler) resolveText(ctx context.Context, doc envelope.DocumentEnvelope) (string, error) {
	if doc.Text != "" {
		return doc.Text, nil
	}

	data, err := h.Blob.Get(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("embedding: fetch blob: %w", err)
	}

	lower := strings.ToLower(doc.StoragePath)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		text, err := pdfextract.ExtractText(data)
		if err != nil {
			return "", apperrors.Terminal(fmt.Errorf("embedding: extract pdf: %w", err))
		}
		return text, nil
	case strings.HasSuffix(lower, ".txt"), strings.HasSuffix(lower, ".md"):
		return string(data), nil
	default:
		return "", apperrors.Terminal(fmt.Errorf("embedding: unsupported file type for %s", doc.StoragePath))
	}
}

func (h *Handler) fail(ctx context.Context, documentID string) {
	if err := h.Store.SetDocumentStatus(ctx, documentID, db.DocumentFailed); err != nil {
		h.logger().Error("embedding: mark failed failed", "error", err, "document_id", documentID)
	}
}
