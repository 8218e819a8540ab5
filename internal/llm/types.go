package llm

import (
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"kbchat/internal/usage"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProviderConfig holds connection settings shared by the embedding and generation clients.
type ProviderConfig struct {
	APIKey string
	// BaseURL overrides the OpenAI endpoint for OpenAI-compatible servers. Empty uses the default.
	BaseURL string
	// Timeout bounds a single provider call. Zero means no client-side timeout.
	Timeout time.Duration
}

// Embedding is the result of one embedding call.
type Embedding struct {
	Vector []float32
	// Usage is the ledger record written for the call. It is set even when Embed fails
	// after the provider was contacted.
	Usage usage.Record
}

// Completion is the result of one generation call.
type Completion struct {
	Text  string
	Usage usage.Record
}

func newOpenAIClient(cfg ProviderConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return openai.NewClientWithConfig(clientCfg)
}
