package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_store.go -package=mocks kbchat/internal/storage ChatStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ChatStore defines the interface for chat storage operations.
// Every read and write is scoped to the owning user.
type ChatStore interface {
	// Create inserts a chat and its knowledge base links.
	Create(ctx context.Context, chat *Chat) error
	// GetByID returns ErrNotFound when the chat does not exist or belongs to another user.
	GetByID(ctx context.Context, chatID, userID string) (*Chat, error)
	// ListByUser returns the user's chats, most recently modified first.
	ListByUser(ctx context.Context, userID string) ([]Chat, error)
	// Touch sets last_modified.
	Touch(ctx context.Context, chatID, userID string, at time.Time) error
	// Delete removes the chat. Returns ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, chatID, userID string) error
}

// ChatRepo provides methods for chat operations.
// It implements the ChatStore interface.
type ChatRepo struct {
	db *sql.DB
}

// NewChatRepo creates a new ChatRepo.
func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// Create inserts a chat and its knowledge base links in one transaction.
func (r *ChatRepo) Create(ctx context.Context, chat *Chat) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO chats (id, user_id, title, created_at, last_modified) VALUES (?, ?, ?, ?, ?)",
		chat.ID, chat.UserID, chat.Title, chat.CreatedAt.UTC(), chat.LastModified.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}

	for i, kbID := range chat.KnowledgeBaseIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO chat_knowledge_bases (chat_id, knowledge_base_id, position) VALUES (?, ?, ?)",
			chat.ID, kbID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to link knowledge base %s: %w", kbID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat: %w", err)
	}
	return nil
}

// GetByID gets a chat owned by userID.
func (r *ChatRepo) GetByID(ctx context.Context, chatID, userID string) (*Chat, error) {
	var chat Chat
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, title, created_at, last_modified FROM chats WHERE id = ? AND user_id = ?",
		chatID, userID,
	).Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.CreatedAt, &chat.LastModified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chat: %w", err)
	}

	chat.KnowledgeBaseIDs, err = r.knowledgeBaseIDs(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListByUser returns the user's chats ordered by last_modified descending.
func (r *ChatRepo) ListByUser(ctx context.Context, userID string) ([]Chat, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, title, created_at, last_modified FROM chats WHERE user_id = ? ORDER BY last_modified DESC, id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	chats := make([]Chat, 0)
	for rows.Next() {
		var chat Chat
		if err := rows.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.CreatedAt, &chat.LastModified); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range chats {
		chats[i].KnowledgeBaseIDs, err = r.knowledgeBaseIDs(ctx, chats[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return chats, nil
}

func (r *ChatRepo) knowledgeBaseIDs(ctx context.Context, chatID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT knowledge_base_id FROM chat_knowledge_bases WHERE chat_id = ? ORDER BY position",
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat knowledge bases: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan knowledge base id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Touch updates last_modified.
func (r *ChatRepo) Touch(ctx context.Context, chatID, userID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE chats SET last_modified = ? WHERE id = ? AND user_id = ?",
		at.UTC(), chatID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch chat: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a chat and its knowledge base links.
func (r *ChatRepo) Delete(ctx context.Context, chatID, userID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM chats WHERE id = ? AND user_id = ?", chatID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ ChatStore = (*ChatRepo)(nil)
