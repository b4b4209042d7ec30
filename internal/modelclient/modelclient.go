// Package modelclient defines the four narrow model-client interfaces the
// Router dispatches to by task label, keeping each concrete provider
// adapter swappable independently of the others.
package modelclient

import "context"

// Turn is one flattened conversation turn passed to a model as history.
type Turn struct {
	Role string // "user" or "model"
	Text string
}

// AnalysisModel serves task=analysis turns: free-form reasoning over the
// query and conversation history, no retrieval.
type AnalysisModel interface {
	Respond(ctx context.Context, prompt string, history []Turn) (string, error)
}

// ExtractionModel serves task=extraction turns, conventionally run at
// temperature 0 for deterministic structured output.
type ExtractionModel interface {
	Respond(ctx context.Context, prompt string, history []Turn) (string, error)
}

// ChatModel serves the RAG pipeline and the default task fallback.
type ChatModel interface {
	Respond(ctx context.Context, prompt string, history []Turn) (string, error)
}

// EmbeddingModel embeds text for both documents and queries; callers must
// use the same model for both sides of a similarity search.
type EmbeddingModel interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
