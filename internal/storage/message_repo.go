package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_message_store.go -package=mocks kbchat/internal/storage MessageStore

import (
	"context"
	"database/sql"
	"fmt"
)

// MessageStore defines the interface for message storage operations.
type MessageStore interface {
	// Create inserts a message.
	Create(ctx context.Context, msg *Message) error
	// ListByChat returns a chat's messages oldest first.
	ListByChat(ctx context.Context, chatID, userID string) ([]Message, error)
	// DeleteByChat removes every message of a chat.
	DeleteByChat(ctx context.Context, chatID, userID string) error
}

// MessageRepo provides methods for message operations.
// It implements the MessageStore interface.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo creates a new MessageRepo.
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create inserts a message.
func (r *MessageRepo) Create(ctx context.Context, msg *Message) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (id, chat_id, user_id, role, content, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		msg.ID, msg.ChatID, msg.UserID, msg.Role, msg.Content, msg.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// ListByChat returns messages ordered by created_at. Insertion order breaks ties.
func (r *MessageRepo) ListByChat(ctx context.Context, chatID, userID string) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, chat_id, user_id, role, content, created_at FROM messages
		 WHERE chat_id = ? AND user_id = ? ORDER BY created_at, rowid`,
		chatID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.UserID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

// DeleteByChat removes all messages of a chat.
func (r *MessageRepo) DeleteByChat(ctx context.Context, chatID, userID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM messages WHERE chat_id = ? AND user_id = ?", chatID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}

var _ MessageStore = (*MessageRepo)(nil)
