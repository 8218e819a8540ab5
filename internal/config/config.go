package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Vector backends.
const (
	BackendQdrant   = "qdrant"
	BackendPgVector = "pgvector"
)

// Config holds all configuration for the application.
type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string

	EmbeddingModel      string
	EmbeddingDimensions int
	ChatModel           string
	MaxOutputTokens     int
	MaxContextTokens    int
	TokenizerEncoding   string

	RetrievalTopK           int
	RetrievalScoreThreshold float64
	SearchConcurrency       int

	EmbeddingTimeout  time.Duration
	GenerationTimeout time.Duration
	SearchTimeout     time.Duration

	VectorBackend string
	QdrantURL     string
	PostgresDSN   string

	DBPath    string
	APIPort   string
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	return load(true)
}

// LoadTooling is Load without the provider credential requirement, for operator
// commands that only touch storage.
func LoadTooling() (*Config, error) {
	return load(false)
}

func load(requireProvider bool) (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
		ChatModel:         getEnv("CHAT_MODEL", "gpt-4o-mini"),
		TokenizerEncoding: getEnv("TOKENIZER_ENCODING", "cl100k_base"),
		VectorBackend:     strings.ToLower(getEnv("VECTOR_BACKEND", BackendQdrant)),
		QdrantURL:         getEnv("QDRANT_URL", "http://localhost:6333"),
		PostgresDSN:       getEnv("POSTGRES_DSN", "postgres://localhost:5432/kbchat?sslmode=disable"),
		DBPath:            getEnv("DB_PATH", "./data/kbchat.db"),
		APIPort:           getEnv("API_PORT", "9000"),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if requireProvider && cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	var err error
	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"EMBEDDING_DIMENSIONS", 1536, &cfg.EmbeddingDimensions},
		{"MAX_OUTPUT_TOKENS", 1024, &cfg.MaxOutputTokens},
		{"MAX_CONTEXT_TOKENS", 16000, &cfg.MaxContextTokens},
		{"RETRIEVAL_TOP_K", 3, &cfg.RetrievalTopK},
		{"SEARCH_CONCURRENCY", 8, &cfg.SearchConcurrency},
	}
	for _, v := range ints {
		if *v.dest, err = getPositiveInt(v.key, v.def); err != nil {
			return nil, err
		}
	}

	cfg.RetrievalScoreThreshold, err = strconv.ParseFloat(getEnv("RETRIEVAL_SCORE_THRESHOLD", "0.75"), 64)
	if err != nil {
		return nil, fmt.Errorf("RETRIEVAL_SCORE_THRESHOLD must be a valid number: %w", err)
	}
	// Scores are on the index's native scale, so only non-finite values are rejected.
	if math.IsNaN(cfg.RetrievalScoreThreshold) || math.IsInf(cfg.RetrievalScoreThreshold, 0) {
		return nil, fmt.Errorf("RETRIEVAL_SCORE_THRESHOLD must be a finite number, got %q", getEnv("RETRIEVAL_SCORE_THRESHOLD", ""))
	}

	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"EMBEDDING_TIMEOUT", "2m", &cfg.EmbeddingTimeout},
		{"GENERATION_TIMEOUT", "5m", &cfg.GenerationTimeout},
		{"SEARCH_TIMEOUT", "30s", &cfg.SearchTimeout},
	}
	for _, v := range durations {
		*v.dest, err = time.ParseDuration(getEnv(v.key, v.def))
		if err != nil {
			return nil, fmt.Errorf("%s must be a valid duration: %w", v.key, err)
		}
		if *v.dest <= 0 {
			return nil, fmt.Errorf("%s must be greater than 0", v.key)
		}
	}

	switch cfg.VectorBackend {
	case BackendQdrant, BackendPgVector:
	default:
		return nil, fmt.Errorf("VECTOR_BACKEND must be %q or %q, got %q", BackendQdrant, BackendPgVector, cfg.VectorBackend)
	}

	if _, err := cfg.SlogLevel(); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	// Create the data directory for the SQLite file
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// SlogLevel maps LogLevel to a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
}

// loadDotEnv loads .env from the working directory or the nearest parent (up to 5 levels).
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func getPositiveInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, strconv.Itoa(defaultValue))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return n, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
