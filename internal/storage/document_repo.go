package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks kbchat/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// Create inserts a document.
	Create(ctx context.Context, doc *Document) error
	// GetByID returns ErrNotFound when the document does not exist or belongs to another user.
	GetByID(ctx context.Context, documentID, userID string) (*Document, error)
	// ListEnabledForKnowledgeBases returns the user's enabled documents in the given
	// knowledge bases, ordered by creation time.
	ListEnabledForKnowledgeBases(ctx context.Context, userID string, knowledgeBaseIDs []string) ([]Document, error)
	// SetEnabled toggles whether a document grounds answers.
	SetEnabled(ctx context.Context, documentID, userID string, enabled bool) error
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Create inserts a document.
func (r *DocumentRepo) Create(ctx context.Context, doc *Document) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO documents (id, knowledge_base_id, user_id, name, enabled, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		doc.ID, doc.KnowledgeBaseID, doc.UserID, doc.Name, doc.Enabled, doc.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetByID gets a document owned by userID.
func (r *DocumentRepo) GetByID(ctx context.Context, documentID, userID string) (*Document, error) {
	var doc Document
	err := r.db.QueryRowContext(ctx,
		"SELECT id, knowledge_base_id, user_id, name, enabled, created_at FROM documents WHERE id = ? AND user_id = ?",
		documentID, userID,
	).Scan(&doc.ID, &doc.KnowledgeBaseID, &doc.UserID, &doc.Name, &doc.Enabled, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return &doc, nil
}

// ListEnabledForKnowledgeBases returns enabled documents across knowledge bases.
func (r *DocumentRepo) ListEnabledForKnowledgeBases(ctx context.Context, userID string, knowledgeBaseIDs []string) ([]Document, error) {
	docs := make([]Document, 0)
	if len(knowledgeBaseIDs) == 0 {
		return docs, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(knowledgeBaseIDs)), ",")
	args := make([]any, 0, len(knowledgeBaseIDs)+1)
	args = append(args, userID)
	for _, id := range knowledgeBaseIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, knowledge_base_id, user_id, name, enabled, created_at FROM documents
		 WHERE user_id = ? AND enabled = 1 AND knowledge_base_id IN (`+placeholders+`)
		 ORDER BY created_at, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query enabled documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.KnowledgeBaseID, &doc.UserID, &doc.Name, &doc.Enabled, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// SetEnabled toggles a document. Returns ErrNotFound when the user has no such document.
func (r *DocumentRepo) SetEnabled(ctx context.Context, documentID, userID string, enabled bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE documents SET enabled = ? WHERE id = ? AND user_id = ?",
		enabled, documentID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return requireAffected(res)
}

var _ DocumentStore = (*DocumentRepo)(nil)
