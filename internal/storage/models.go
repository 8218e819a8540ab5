package storage

import "time"

// KnowledgeBase groups documents owned by one user.
type KnowledgeBase struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

// Document is a parsed, indexed file inside a knowledge base.
// Only enabled documents ground answers.
type Document struct {
	ID              string
	KnowledgeBaseID string
	UserID          string
	Name            string
	Enabled         bool
	CreatedAt       time.Time
}

// Chat is a conversation bound to a set of knowledge bases.
type Chat struct {
	ID               string
	UserID           string
	Title            string
	KnowledgeBaseIDs []string // In the order given at creation
	CreatedAt        time.Time
	LastModified     time.Time
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat.
type Message struct {
	ID        string
	ChatID    string
	UserID    string
	Role      string // RoleUser or RoleAssistant
	Content   string
	CreatedAt time.Time
}
