package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_knowledge_base_store.go -package=mocks kbchat/internal/storage KnowledgeBaseStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// KnowledgeBaseStore defines the interface for knowledge base storage operations.
type KnowledgeBaseStore interface {
	// Create inserts a knowledge base.
	Create(ctx context.Context, kb *KnowledgeBase) error
	// GetByID returns ErrNotFound when the knowledge base does not exist or belongs to another user.
	GetByID(ctx context.Context, id, userID string) (*KnowledgeBase, error)
}

// KnowledgeBaseRepo provides methods for knowledge base operations.
// It implements the KnowledgeBaseStore interface.
type KnowledgeBaseRepo struct {
	db *sql.DB
}

// NewKnowledgeBaseRepo creates a new KnowledgeBaseRepo.
func NewKnowledgeBaseRepo(db *sql.DB) *KnowledgeBaseRepo {
	return &KnowledgeBaseRepo{db: db}
}

// Create inserts a knowledge base.
func (r *KnowledgeBaseRepo) Create(ctx context.Context, kb *KnowledgeBase) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO knowledge_bases (id, user_id, name, created_at) VALUES (?, ?, ?, ?)",
		kb.ID, kb.UserID, kb.Name, kb.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert knowledge base: %w", err)
	}
	return nil
}

// GetByID gets a knowledge base owned by userID.
func (r *KnowledgeBaseRepo) GetByID(ctx context.Context, id, userID string) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, created_at FROM knowledge_bases WHERE id = ? AND user_id = ?",
		id, userID,
	).Scan(&kb.ID, &kb.UserID, &kb.Name, &kb.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge base: %w", err)
	}
	return &kb, nil
}

var _ KnowledgeBaseStore = (*KnowledgeBaseRepo)(nil)
