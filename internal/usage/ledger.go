package usage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_usage.go -package=mocks kbchat/internal/usage Ledger,Reader

import "context"

// Ledger is the append-only write contract of the usage store.
// There is no update or delete operation.
type Ledger interface {
	// Append durably stores one record.
	Append(ctx context.Context, record Record) error
}

// Reader queries stored usage records.
type Reader interface {
	// ListByUserAndDateRange returns a user's records whose date falls in [startDate, endDate]
	// (inclusive, DateLayout).
	ListByUserAndDateRange(ctx context.Context, userID, startDate, endDate string) ([]Record, error)
	// ListByChat returns a user's records for one chat, oldest first.
	ListByChat(ctx context.Context, chatID, userID string) ([]Record, error)
}
