package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"kbchat/internal/config"
	"kbchat/internal/http"
	"kbchat/internal/llm"
	"kbchat/internal/rag"
	"kbchat/internal/retrieval"
	"kbchat/internal/service"
	"kbchat/internal/storage"
	"kbchat/internal/tokens"
	"kbchat/internal/usage"
	"kbchat/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers questions from a user's knowledge bases, grounding every answer in
// all enabled documents.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: kbchat API
//   description: |
//     Chats over uploaded knowledge bases. Each answer is grounded in at least one
//     passage from every enabled document; token usage is recorded per call.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", level.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	chatRepo := storage.NewChatRepo(db)
	messageRepo := storage.NewMessageRepo(db)
	documentRepo := storage.NewDocumentRepo(db)
	knowledgeBaseRepo := storage.NewKnowledgeBaseRepo(db)
	usageRepo := storage.NewUsageRepo(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ledger := usage.NewMeteredLedger(usageRepo, reg)

	vectorStore, err := vectorstore.Open(ctx, cfg.VectorBackend, cfg.QdrantURL, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to open vector store: %v", err)
	}
	defer func() {
		_ = vectorStore.Close()
	}()
	slog.Info("Vector store initialized", "backend", cfg.VectorBackend)

	counter := tokens.NewCounter(cfg.TokenizerEncoding)

	embedder := llm.NewEmbeddingsClient(
		llm.ProviderConfig{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL, Timeout: cfg.EmbeddingTimeout},
		cfg.EmbeddingModel,
		cfg.EmbeddingDimensions,
		counter,
		ledger,
	)
	generator := llm.NewClient(
		llm.ProviderConfig{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL, Timeout: cfg.GenerationTimeout},
		cfg.ChatModel,
		cfg.MaxOutputTokens,
		ledger,
	)

	planner := retrieval.NewPlanner(vectorStore, retrieval.Config{
		TopK:           cfg.RetrievalTopK,
		ScoreThreshold: cfg.RetrievalScoreThreshold,
		Concurrency:    cfg.SearchConcurrency,
		SearchTimeout:  cfg.SearchTimeout,
	})

	ragEngine := rag.NewEngine(embedder, planner, generator, counter, cfg.MaxContextTokens, reg)
	slog.Info("RAG engine initialized",
		"embedding_model", cfg.EmbeddingModel,
		"chat_model", cfg.ChatModel,
		"top_k", cfg.RetrievalTopK,
		"score_threshold", cfg.RetrievalScoreThreshold,
		"max_context_tokens", cfg.MaxContextTokens,
	)

	router := http.NewRouter(&http.Deps{
		ChatService:     service.NewChatService(chatRepo, messageRepo, documentRepo, knowledgeBaseRepo, ragEngine),
		UsageReporter:   service.NewUsageService(usageRepo),
		DocumentToggler: service.NewDocumentService(documentRepo),
		VectorHealth:    vectorStore,
		DB:              db,
		Gatherer:        reg,
	})

	// Start API server
	addr := ":" + cfg.APIPort
	srv := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed to start: %v", err)
	}
	slog.Info("API server stopped")
}
