package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"kbchat/internal/contextutil"
	"kbchat/internal/usage"
)

// zeroTemperature is sent instead of 0, which the request encoder would omit
// and the provider would replace with its default.
const zeroTemperature = math.SmallestNonzeroFloat32

// Client generates grounded answers through the chat completions API.
type Client struct {
	Model     string
	MaxTokens int
	client    *openai.Client
	ledger    usage.Ledger
	now       func() time.Time
}

// NewClient creates a new generation client with a fixed output-token cap.
func NewClient(cfg ProviderConfig, model string, maxTokens int, ledger usage.Ledger) *Client {
	return &Client{
		Model:     model,
		MaxTokens: maxTokens,
		client:    newOpenAIClient(cfg),
		ledger:    ledger,
		now:       time.Now,
	}
}

// Complete sends messages at temperature 0 and returns the answer.
// On success one chat usage record is appended with the provider-reported token counts.
// Failures are returned as *GenerationProviderError.
func (c *Client) Complete(ctx context.Context, messages []Message, scope usage.Scope) (Completion, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(messages) == 0 {
		return Completion{}, errors.New("no messages to send")
	}
	if scope.UserID == "" {
		return Completion{}, errors.New("usage scope requires a user id")
	}

	req := openai.ChatCompletionRequest{
		Model:       c.Model,
		Temperature: zeroTemperature,
		MaxTokens:   c.MaxTokens,
		Messages:    make([]openai.ChatCompletionMessage, len(messages)),
	}
	for i, msg := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	startedAt := c.now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "chat completion failed", "model", c.Model, "error", err)
		return Completion{}, &GenerationProviderError{Model: c.Model, Err: fmt.Errorf("create chat completion: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return Completion{}, &GenerationProviderError{Model: c.Model, Err: errors.New("no choices returned")}
	}

	record, err := usage.NewChatRecord(scope, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, startedAt)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to build usage record: %w", err)
	}
	if err := c.ledger.Append(ctx, record); err != nil {
		logger.ErrorContext(ctx, "failed to append usage record",
			"operation", record.Operation,
			"record_id", record.ID,
			"error", err,
		)
	}

	answer := resp.Choices[0].Message.Content
	logger.InfoContext(ctx, "chat completion received",
		"model", c.Model,
		"prompt_tokens", record.PromptTokens,
		"completion_tokens", record.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason,
		"answer_length", len(answer),
	)
	return Completion{Text: answer, Usage: record}, nil
}
