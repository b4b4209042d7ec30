package chunker

import (
	"strings"
	"testing"
)

func TestSplitEmptyTextReturnsNoChunks(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks := c.Split(""); chunks != nil {
		t.Fatalf("expected no chunks for empty text, got %v", chunks)
	}
}

func TestSplitShortTextReturnsOneChunk(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chunks := c.Split("hello world, this is a short document.")
	if len(chunks) != 1 {
		t.Fatalf("expected exactly one chunk, got %d", len(chunks))
	}
}

func TestSplitLongTextRespectsChunkBoundary(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 200)
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected more than one chunk for long text, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		tokenCount := len(c.enc.Encode(chunk, nil, nil))
		if tokenCount > MaxTokensPerChunk {
			t.Fatalf("chunk %d has %d tokens, exceeds max %d", i, tokenCount, MaxTokensPerChunk)
		}
	}
}
