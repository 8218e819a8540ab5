// Package tokens counts tokens for prompt budgeting and usage accounting.
package tokens

import (
	"fmt"
	"log/slog"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used by the GPT-4 and GPT-4o-mini families.
const DefaultEncoding = "cl100k_base"

// Counter is a deterministic text to token-count function.
type Counter interface {
	Count(text string) int
}

// Tiktoken counts tokens with a tiktoken BPE encoding.
type Tiktoken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTiktoken loads the named encoding (e.g. "cl100k_base").
// The first call for an encoding may download its rank file.
func NewTiktoken(encodingName string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encodingName, err)
	}
	return &Tiktoken{encoding: enc, name: encodingName}, nil
}

// Count returns the number of tokens in text.
func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.encoding.Encode(text, nil, nil))
}

// Encoding returns the encoding name.
func (t *Tiktoken) Encoding() string {
	return t.name
}

// Heuristic estimates tokens with a characters-per-token ratio.
type Heuristic struct {
	CharsPerToken int
}

// NewHeuristic creates a Heuristic counter. A ratio <= 0 defaults to 4 (English text).
func NewHeuristic(charsPerToken int) *Heuristic {
	if charsPerToken <= 0 {
		charsPerToken = 4
	}
	return &Heuristic{CharsPerToken: charsPerToken}
}

// Count returns ceil(len(text) / CharsPerToken).
func (h *Heuristic) Count(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + h.CharsPerToken - 1) / h.CharsPerToken
}

// NewCounter returns a tiktoken counter for encodingName, falling back to the
// heuristic when the encoding cannot be loaded (e.g. offline hosts).
func NewCounter(encodingName string) Counter {
	if encodingName == "" {
		encodingName = DefaultEncoding
	}
	counter, err := NewTiktoken(encodingName)
	if err != nil {
		slog.Warn("tiktoken unavailable, falling back to heuristic token counter",
			"encoding", encodingName, "error", err)
		return NewHeuristic(4)
	}
	return counter
}
