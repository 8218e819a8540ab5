package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_rag.go -package=mocks kbchat/internal/rag Engine,Embedder,Retriever,Generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"kbchat/internal/contextutil"
	"kbchat/internal/llm"
	"kbchat/internal/retrieval"
	"kbchat/internal/tokens"
	"kbchat/internal/usage"
	"kbchat/internal/vectorstore"
)

// ErrEmptyQuery is returned when the query has no text.
var ErrEmptyQuery = errors.New("query is empty")

// Engine provides RAG (Retrieval-Augmented Generation) functionality.
type Engine interface {
	// Ask answers a question from the enabled documents of the request.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}

// Embedder embeds query text and bills the call.
type Embedder interface {
	Embed(ctx context.Context, text string, scope usage.Scope) (llm.Embedding, error)
}

// Retriever selects grounding passages for a query vector.
type Retriever interface {
	Plan(ctx context.Context, req retrieval.Request) ([]vectorstore.Candidate, error)
}

// Generator produces an answer and bills the call.
type Generator interface {
	Complete(ctx context.Context, messages []llm.Message, scope usage.Scope) (llm.Completion, error)
}

// Ask outcomes reported in kbchat_ask_total.
const (
	outcomeOK              = "ok"
	outcomeInvalid         = "invalid"
	outcomeEmbeddingError  = "embedding_error"
	outcomeIncomplete      = "incomplete_representation"
	outcomeRetrievalError  = "retrieval_error"
	outcomeGenerationError = "generation_error"
)

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder         Embedder
	retriever        Retriever
	generator        Generator
	window           *WindowManager
	assembler        PromptAssembler
	maxContextTokens int
	asks             *prometheus.CounterVec
}

// NewEngine creates a new RAG engine. maxContextTokens bounds the prompt sent for
// generation. Collectors are registered on reg when it is non-nil.
func NewEngine(
	embedder Embedder,
	retriever Retriever,
	generator Generator,
	counter tokens.Counter,
	maxContextTokens int,
	reg prometheus.Registerer,
) Engine {
	asks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kbchat_ask_total",
		Help: "Grounded questions answered, by outcome.",
	}, []string{"outcome"})
	if reg != nil {
		reg.MustRegister(asks)
	}

	return &ragEngine{
		embedder:         embedder,
		retriever:        retriever,
		generator:        generator,
		window:           NewWindowManager(counter),
		maxContextTokens: maxContextTokens,
		asks:             asks,
	}
}

// Ask runs embed, plan, fit, assemble and complete in sequence. Any error fails the
// whole request; no partial answer is returned.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Query == "" {
		e.asks.WithLabelValues(outcomeInvalid).Inc()
		return AskResponse{}, ErrEmptyQuery
	}
	if len(req.EnabledDocumentIDs) == 0 {
		e.asks.WithLabelValues(outcomeInvalid).Inc()
		return AskResponse{}, retrieval.ErrNoEnabledDocuments
	}

	logger.InfoContext(ctx, "RAG query started",
		"chat_id", req.ChatID,
		"query_length", len(req.Query),
		"knowledge_bases", len(req.KnowledgeBaseIDs),
		"enabled_documents", len(req.EnabledDocumentIDs),
		"history_turns", len(req.History),
	)

	scope := usage.Scope{UserID: req.UserID, ChatID: req.ChatID}

	embedding, err := e.embedder.Embed(ctx, req.Query, scope)
	if err != nil {
		e.asks.WithLabelValues(outcomeEmbeddingError).Inc()
		return AskResponse{}, fmt.Errorf("failed to embed query: %w", err)
	}
	records := []usage.Record{embedding.Usage}

	passages, err := e.retriever.Plan(ctx, retrieval.Request{
		UserID:             req.UserID,
		QueryVector:        embedding.Vector,
		KnowledgeBaseIDs:   req.KnowledgeBaseIDs,
		EnabledDocumentIDs: req.EnabledDocumentIDs,
	})
	if err != nil {
		var incomplete *retrieval.IncompleteRepresentationError
		if errors.As(err, &incomplete) {
			e.asks.WithLabelValues(outcomeIncomplete).Inc()
		} else {
			e.asks.WithLabelValues(outcomeRetrievalError).Inc()
		}
		return AskResponse{}, fmt.Errorf("failed to retrieve passages: %w", err)
	}

	window := e.window.Measure(e.assembler.Skeleton(passages), req.History, req.Query, e.maxContextTokens)
	logger.InfoContext(ctx, "history fitted to budget",
		"max_tokens", window.Budget.MaxTotal,
		"system_tokens", window.Budget.SystemTokens,
		"query_tokens", window.Budget.QueryTokens,
		"history_tokens", window.HistoryTokens,
		"turns_kept", len(window.Turns),
		"turns_dropped", window.Dropped,
	)
	if !window.Fits() {
		logger.WarnContext(ctx, "prompt exceeds token budget at retained-turn floor",
			"total_tokens", window.Total(),
			"max_tokens", window.Budget.MaxTotal,
		)
	}

	messages := e.assembler.Assemble(req.Query, passages, window.Turns)
	logger.DebugContext(ctx, "LLM messages",
		"system_prompt_preview", preview(messages[0].Content, 500),
		"passages", len(passages),
	)

	completion, err := e.generator.Complete(ctx, messages, scope)
	if err != nil {
		e.asks.WithLabelValues(outcomeGenerationError).Inc()
		return AskResponse{}, fmt.Errorf("failed to generate answer: %w", err)
	}
	records = append(records, completion.Usage)

	sources := AuditSections(completion.Text, passages)
	e.asks.WithLabelValues(outcomeOK).Inc()

	logger.InfoContext(ctx, "RAG query completed",
		"passages", len(passages),
		"sources", len(sources),
		"answer_length", len(completion.Text),
	)

	return AskResponse{
		Answer:  completion.Text,
		Sources: sources,
		Usage:   records,
	}, nil
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
