package router

import (
	"context"
	"strings"
	"testing"

	"github.com/kiekoher/agentflow/internal/db"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.TopK != 5 || opts.ScoreThreshold != 0.5 || opts.MaxHistoryTurns != 10 {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
}

// buildRAGPrompt never touches Vectors/Embedding when they are nil, so it can
// be exercised without a live Qdrant connection.

func TestBuildRAGPromptOmitsContextHeaderWithoutRetrieval(t *testing.T) {
	r := &Router{Opts: DefaultOptions()}
	agent := &db.AgentConfig{BasePrompt: "You are a helpful assistant."}

	prompt, err := r.buildRAGPrompt(context.Background(), Request{UserID: "user-1", Query: "what is my balance?", Agent: agent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(prompt, contextHeader) {
		t.Fatal("expected no context header when retrieval is disabled")
	}
	if !strings.Contains(prompt, agent.BasePrompt) {
		t.Fatal("expected base prompt to be present")
	}
	if !strings.Contains(prompt, "User Query: what is my balance?") {
		t.Fatal("expected user query to be appended")
	}
}

func TestBuildRAGPromptIncludesGuardrailsWhenSet(t *testing.T) {
	r := &Router{Opts: DefaultOptions()}
	agent := &db.AgentConfig{BasePrompt: "Answer concisely.", Guardrails: "Never give legal advice."}

	prompt, err := r.buildRAGPrompt(context.Background(), Request{UserID: "user-1", Query: "hi", Agent: agent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "Never give legal advice.") {
		t.Fatal("expected guardrails to be present")
	}
	if strings.Index(prompt, agent.Guardrails) > strings.Index(prompt, agent.BasePrompt) {
		t.Fatal("expected guardrails to precede the base prompt")
	}
}

func TestBuildRAGPromptOmitsGuardrailsWhenEmpty(t *testing.T) {
	r := &Router{Opts: DefaultOptions()}
	agent := &db.AgentConfig{BasePrompt: "Answer concisely."}

	prompt, err := r.buildRAGPrompt(context.Background(), Request{UserID: "user-1", Query: "hi", Agent: agent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(prompt, "Guardrails") {
		t.Fatal("expected no guardrails section when agent has none")
	}
}
