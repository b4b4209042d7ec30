// Package chunker splits extracted document text into bounded-token,
// non-overlapping windows using the same tokenizer the embedding model's
// input budget is measured in.
package chunker

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	MaxTokensPerChunk = 500
	encodingName      = "cl100k_base"
)

type Chunker struct {
	enc *tiktoken.Tiktoken
}

func New() (*Chunker, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("chunker: load encoding: %w", err)
	}
	return &Chunker{enc: enc}, nil
}

// Split tokenizes text and emits chunks of at most MaxTokensPerChunk tokens
// each, in source order, with no overlap between consecutive chunks.
func (c *Chunker) Split(text string) []string {
	tokens := c.enc.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(tokens); i += MaxTokensPerChunk {
		end := i + MaxTokensPerChunk
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, c.enc.Decode(tokens[i:end]))
	}
	return chunks
}
