package rag

import (
	"time"

	"kbchat/internal/usage"
)

// Conversation roles as stored in chat history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior message of a conversation. It is read-only to the engine.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// AskRequest represents a grounded question inside a chat.
type AskRequest struct {
	// UserID identifies the caller; it addresses the vector collection and is billed for usage.
	UserID string
	// ChatID scopes usage records.
	ChatID string
	// Query is the user's question.
	Query string
	// KnowledgeBaseIDs restricts retrieval to these knowledge bases.
	KnowledgeBaseIDs []string
	// EnabledDocumentIDs lists the documents that must each ground the answer.
	EnabledDocumentIDs []string
	// History holds prior turns in chronological order, excluding Query.
	History []Turn
}

// Source describes one document that grounded the answer.
type Source struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Passages     int     `json:"passages"`
	TopScore     float64 `json:"top_score"`
	// Cited is set when the answer has a section headed with the document name.
	Cited bool `json:"cited"`
}

// AskResponse represents the response from a grounded query.
type AskResponse struct {
	// Answer is the generated markdown answer.
	Answer string `json:"answer"`
	// Sources lists the grounding documents in retrieval order.
	Sources []Source `json:"sources"`
	// Usage holds the records billed while answering, in call order.
	Usage []usage.Record `json:"usage"`
}
