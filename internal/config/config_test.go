package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envVars = []string{
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "EMBEDDING_MODEL", "EMBEDDING_DIMENSIONS",
	"CHAT_MODEL", "MAX_OUTPUT_TOKENS", "MAX_CONTEXT_TOKENS", "RETRIEVAL_TOP_K",
	"RETRIEVAL_SCORE_THRESHOLD", "SEARCH_CONCURRENCY", "TOKENIZER_ENCODING",
	"EMBEDDING_TIMEOUT", "GENERATION_TIMEOUT", "SEARCH_TIMEOUT", "VECTOR_BACKEND",
	"QDRANT_URL", "POSTGRES_DSN", "DB_PATH", "API_PORT", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "data", "kbchat.db"))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantErr     bool
		checkConfig func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			env:  map[string]string{"OPENAI_API_KEY": "sk-test"},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.EmbeddingModel != "text-embedding-ada-002" || cfg.EmbeddingDimensions != 1536 {
					t.Errorf("embedding defaults = %s/%d", cfg.EmbeddingModel, cfg.EmbeddingDimensions)
				}
				if cfg.ChatModel != "gpt-4o-mini" || cfg.MaxOutputTokens != 1024 || cfg.MaxContextTokens != 16000 {
					t.Errorf("generation defaults = %s/%d/%d", cfg.ChatModel, cfg.MaxOutputTokens, cfg.MaxContextTokens)
				}
				if cfg.RetrievalTopK != 3 || cfg.RetrievalScoreThreshold != 0.75 || cfg.SearchConcurrency != 8 {
					t.Errorf("retrieval defaults = %d/%v/%d", cfg.RetrievalTopK, cfg.RetrievalScoreThreshold, cfg.SearchConcurrency)
				}
				if cfg.EmbeddingTimeout != 2*time.Minute || cfg.GenerationTimeout != 5*time.Minute || cfg.SearchTimeout != 30*time.Second {
					t.Errorf("timeouts = %v/%v/%v", cfg.EmbeddingTimeout, cfg.GenerationTimeout, cfg.SearchTimeout)
				}
				if cfg.VectorBackend != BackendQdrant || cfg.QdrantURL != "http://localhost:6333" {
					t.Errorf("vector backend = %s %s", cfg.VectorBackend, cfg.QdrantURL)
				}
				if cfg.APIPort != "9000" || cfg.TokenizerEncoding != "cl100k_base" {
					t.Errorf("APIPort/TokenizerEncoding = %s/%s", cfg.APIPort, cfg.TokenizerEncoding)
				}
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"OPENAI_API_KEY":            "sk-test",
				"OPENAI_BASE_URL":           "http://localhost:8080/v1",
				"RETRIEVAL_SCORE_THRESHOLD": "0.5",
				"RETRIEVAL_TOP_K":           "5",
				"SEARCH_TIMEOUT":            "5s",
				"VECTOR_BACKEND":            "PGVECTOR",
				"LOG_LEVEL":                 "debug",
				"LOG_FORMAT":                "json",
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.OpenAIBaseURL != "http://localhost:8080/v1" {
					t.Errorf("OpenAIBaseURL = %s", cfg.OpenAIBaseURL)
				}
				if cfg.RetrievalScoreThreshold != 0.5 || cfg.RetrievalTopK != 5 || cfg.SearchTimeout != 5*time.Second {
					t.Errorf("retrieval = %v/%d/%v", cfg.RetrievalScoreThreshold, cfg.RetrievalTopK, cfg.SearchTimeout)
				}
				if cfg.VectorBackend != BackendPgVector {
					t.Errorf("VectorBackend = %s", cfg.VectorBackend)
				}
				if level, _ := cfg.SlogLevel(); level != slog.LevelDebug {
					t.Errorf("SlogLevel() = %v", level)
				}
			},
		},
		{name: "missing api key", env: map[string]string{}, wantErr: true},
		{name: "invalid top k", env: map[string]string{"OPENAI_API_KEY": "k", "RETRIEVAL_TOP_K": "three"}, wantErr: true},
		{name: "zero concurrency", env: map[string]string{"OPENAI_API_KEY": "k", "SEARCH_CONCURRENCY": "0"}, wantErr: true},
		{name: "negative context budget", env: map[string]string{"OPENAI_API_KEY": "k", "MAX_CONTEXT_TOKENS": "-1"}, wantErr: true},
		{name: "threshold NaN", env: map[string]string{"OPENAI_API_KEY": "k", "RETRIEVAL_SCORE_THRESHOLD": "NaN"}, wantErr: true},
		{name: "threshold +Inf", env: map[string]string{"OPENAI_API_KEY": "k", "RETRIEVAL_SCORE_THRESHOLD": "+Inf"}, wantErr: true},
		{name: "threshold -Inf", env: map[string]string{"OPENAI_API_KEY": "k", "RETRIEVAL_SCORE_THRESHOLD": "-Inf"}, wantErr: true},
		{
			name: "threshold on unnormalized scale",
			env:  map[string]string{"OPENAI_API_KEY": "k", "RETRIEVAL_SCORE_THRESHOLD": "2.5"},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.RetrievalScoreThreshold != 2.5 {
					t.Errorf("RetrievalScoreThreshold = %v, want 2.5", cfg.RetrievalScoreThreshold)
				}
			},
		},
		{
			name: "negative threshold",
			env:  map[string]string{"OPENAI_API_KEY": "k", "RETRIEVAL_SCORE_THRESHOLD": "-3"},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.RetrievalScoreThreshold != -3 {
					t.Errorf("RetrievalScoreThreshold = %v, want -3", cfg.RetrievalScoreThreshold)
				}
			},
		},
		{name: "invalid timeout", env: map[string]string{"OPENAI_API_KEY": "k", "EMBEDDING_TIMEOUT": "soon"}, wantErr: true},
		{name: "unknown backend", env: map[string]string{"OPENAI_API_KEY": "k", "VECTOR_BACKEND": "milvus"}, wantErr: true},
		{name: "unknown log level", env: map[string]string{"OPENAI_API_KEY": "k", "LOG_LEVEL": "trace"}, wantErr: true},
		{name: "unknown log format", env: map[string]string{"OPENAI_API_KEY": "k", "LOG_FORMAT": "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if tt.checkConfig != nil {
				tt.checkConfig(t, cfg)
			}
		})
	}
}

func TestLoad_CreatesDataDirectory(t *testing.T) {
	clearEnv(t)

	dbPath := filepath.Join(t.TempDir(), "test", "db.db")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DB_PATH", dbPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Errorf("Load() should create data directory: %v", err)
	}
	if cfg.DBPath != dbPath {
		t.Errorf("Load() DBPath = %v, want %v", cfg.DBPath, dbPath)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue string
		want         string
	}{
		{name: "env var set", value: "set-value", defaultValue: "default", want: "set-value"},
		{name: "empty env var uses default", value: "", defaultValue: "default", want: "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_VAR", tt.value)
			if got := getEnv("TEST_ENV_VAR", tt.defaultValue); got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadTooling_NoAPIKey(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadTooling()
	if err != nil {
		t.Fatalf("LoadTooling() error = %v", err)
	}
	if cfg.OpenAIAPIKey != "" {
		t.Errorf("OpenAIAPIKey = %q, want empty", cfg.OpenAIAPIKey)
	}
}
