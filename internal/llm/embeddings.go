package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"kbchat/internal/contextutil"
	"kbchat/internal/tokens"
	"kbchat/internal/usage"
)

// EmbeddingsClient embeds query text and bills every provider call to the usage ledger.
type EmbeddingsClient struct {
	Model        string
	ExpectedSize int // Expected vector size for validation; 0 disables the check
	client       *openai.Client
	counter      tokens.Counter
	ledger       usage.Ledger
	now          func() time.Time
}

// NewEmbeddingsClient creates a new embeddings client.
func NewEmbeddingsClient(cfg ProviderConfig, model string, expectedSize int, counter tokens.Counter, ledger usage.Ledger) *EmbeddingsClient {
	return &EmbeddingsClient{
		Model:        model,
		ExpectedSize: expectedSize,
		client:       newOpenAIClient(cfg),
		counter:      counter,
		ledger:       ledger,
		now:          time.Now,
	}
}

// Embed returns the embedding of text.
//
// The token count is computed locally and one embedding usage record is appended
// for every provider call, whether or not the call succeeds. Provider failures and
// empty vectors are returned as *EmbeddingProviderError.
func (c *EmbeddingsClient) Embed(ctx context.Context, text string, scope usage.Scope) (Embedding, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if text == "" {
		return Embedding{}, fmt.Errorf("empty input text")
	}

	record, err := usage.NewEmbeddingRecord(scope, c.counter.Count(text), c.now())
	if err != nil {
		return Embedding{}, fmt.Errorf("failed to build usage record: %w", err)
	}

	vector, callErr := c.call(ctx, text)
	c.bill(ctx, record)

	if callErr != nil {
		logger.ErrorContext(ctx, "embedding call failed", "model", c.Model, "error", callErr)
		return Embedding{Usage: record}, &EmbeddingProviderError{Model: c.Model, Err: callErr}
	}

	logger.DebugContext(ctx, "query embedded",
		"model", c.Model,
		"dimensions", len(vector),
		"embedding_tokens", record.EmbeddingTokens,
	)
	return Embedding{Vector: vector, Usage: record}, nil
}

func (c *EmbeddingsClient) call(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.Model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("provider returned an empty vector")
	}

	vector := resp.Data[0].Embedding
	if c.ExpectedSize > 0 && len(vector) != c.ExpectedSize {
		return nil, fmt.Errorf("embedding has size %d, expected %d", len(vector), c.ExpectedSize)
	}
	return vector, nil
}

// bill appends the record. A ledger failure is logged but does not fail the call:
// the provider has already been charged.
func (c *EmbeddingsClient) bill(ctx context.Context, record usage.Record) {
	if err := c.ledger.Append(ctx, record); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to append usage record",
			"operation", record.Operation,
			"record_id", record.ID,
			"error", err,
		)
	}
}
