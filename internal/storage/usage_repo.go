package storage

import (
	"context"
	"database/sql"
	"fmt"

	"kbchat/internal/usage"
)

// UsageRepo stores usage records in the token_usage table.
// It implements usage.Ledger and usage.Reader; records are never updated or deleted.
type UsageRepo struct {
	db *sql.DB
}

// NewUsageRepo creates a new UsageRepo.
func NewUsageRepo(db *sql.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

// Append validates and inserts one record.
func (r *UsageRepo) Append(ctx context.Context, record usage.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO token_usage
		 (id, user_id, chat_id, prompt_tokens, completion_tokens, embedding_tokens, operation_type, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.UserID, record.ChatID,
		record.PromptTokens, record.CompletionTokens, record.EmbeddingTokens,
		string(record.Operation), record.Date(), record.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}
	return nil
}

const usageColumns = "id, user_id, chat_id, prompt_tokens, completion_tokens, embedding_tokens, operation_type, created_at"

// ListByUserAndDateRange returns records with startDate <= date <= endDate, oldest first.
func (r *UsageRepo) ListByUserAndDateRange(ctx context.Context, userID, startDate, endDate string) ([]usage.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+usageColumns+" FROM token_usage WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY created_at, rowid",
		userID, startDate, endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	return scanUsage(rows)
}

// ListByChat returns a chat's records, oldest first.
func (r *UsageRepo) ListByChat(ctx context.Context, chatID, userID string) ([]usage.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+usageColumns+" FROM token_usage WHERE chat_id = ? AND user_id = ? ORDER BY created_at, rowid",
		chatID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	return scanUsage(rows)
}

func scanUsage(rows *sql.Rows) ([]usage.Record, error) {
	defer rows.Close()

	records := make([]usage.Record, 0)
	for rows.Next() {
		var rec usage.Record
		var op string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ChatID,
			&rec.PromptTokens, &rec.CompletionTokens, &rec.EmbeddingTokens,
			&op, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		rec.Operation = usage.Operation(op)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

var (
	_ usage.Ledger = (*UsageRepo)(nil)
	_ usage.Reader = (*UsageRepo)(nil)
)
