// Package usage defines the append-only token usage ledger.
package usage

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Operation identifies what kind of provider call produced a record.
type Operation string

const (
	// OperationEmbedding is one embedding provider call.
	OperationEmbedding Operation = "embedding"
	// OperationChat is one generation provider call.
	OperationChat Operation = "chat"
)

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	return op == OperationEmbedding || op == OperationChat
}

// DateLayout is the layout of Record.Date, used for range queries.
const DateLayout = "2006-01-02"

// ErrInvalidRecord is returned when a record fails validation.
var ErrInvalidRecord = errors.New("invalid usage record")

// Scope identifies who a provider call is billed to.
type Scope struct {
	UserID string
	ChatID string
}

// Record is one usage ledger entry. Records are never mutated once created.
type Record struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	ChatID           string    `json:"chat_id"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	EmbeddingTokens  int       `json:"embedding_tokens"`
	Operation        Operation `json:"operation_type"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewEmbeddingRecord builds the record for one embedding call.
func NewEmbeddingRecord(scope Scope, embeddingTokens int, at time.Time) (Record, error) {
	return newRecord(scope, OperationEmbedding, 0, 0, embeddingTokens, at)
}

// NewChatRecord builds the record for one generation call.
func NewChatRecord(scope Scope, promptTokens, completionTokens int, at time.Time) (Record, error) {
	return newRecord(scope, OperationChat, promptTokens, completionTokens, 0, at)
}

func newRecord(scope Scope, op Operation, prompt, completion, embedding int, at time.Time) (Record, error) {
	rec := Record{
		ID:               uuid.NewString(),
		UserID:           scope.UserID,
		ChatID:           scope.ChatID,
		PromptTokens:     prompt,
		CompletionTokens: completion,
		EmbeddingTokens:  embedding,
		Operation:        op,
		CreatedAt:        at.UTC(),
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Validate checks required fields and token counts.
func (r Record) Validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidRecord)
	case r.UserID == "":
		return fmt.Errorf("%w: user_id is required", ErrInvalidRecord)
	case !r.Operation.Valid():
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidRecord, r.Operation)
	case r.PromptTokens < 0 || r.CompletionTokens < 0 || r.EmbeddingTokens < 0:
		return fmt.Errorf("%w: token counts must not be negative", ErrInvalidRecord)
	case r.CreatedAt.IsZero():
		return fmt.Errorf("%w: created_at is required", ErrInvalidRecord)
	}
	return nil
}

// Total is the sum of all token kinds on the record.
func (r Record) Total() int {
	return r.PromptTokens + r.CompletionTokens + r.EmbeddingTokens
}

// Date returns the UTC calendar date of the record.
func (r Record) Date() string {
	return r.CreatedAt.UTC().Format(DateLayout)
}
