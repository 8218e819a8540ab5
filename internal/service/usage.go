package service

import (
	"context"
	"time"

	"kbchat/internal/usage"
)

// UsageReport is a user's aggregated token usage for one month.
type UsageReport struct {
	Month   string         `json:"month"`
	Window  usage.Window   `json:"window"`
	Buckets []usage.Bucket `json:"buckets"`
	Total   int            `json:"total_tokens"`
}

// UsageService reports token usage from the ledger.
type UsageService struct {
	reader usage.Reader
	now    func() time.Time
}

// NewUsageService creates a new UsageService.
func NewUsageService(reader usage.Reader) *UsageService {
	return &UsageService{reader: reader, now: time.Now}
}

// MonthlyUsage aggregates the user's records for month ("YYYY-MM", empty for the
// current UTC month) into buckets of window ("15m", "1h", "1d", empty for "1d").
func (s *UsageService) MonthlyUsage(ctx context.Context, userID, month, window string) (UsageReport, error) {
	if month == "" {
		month = s.now().UTC().Format("2006-01")
	}
	start, end, err := usage.MonthRange(month)
	if err != nil {
		return UsageReport{}, &ValidationError{Field: "month", Message: err.Error()}
	}
	w, err := usage.ParseWindow(window)
	if err != nil {
		return UsageReport{}, &ValidationError{Field: "window", Message: err.Error()}
	}

	records, err := s.reader.ListByUserAndDateRange(ctx, userID, start, end)
	if err != nil {
		return UsageReport{}, WrapError(err, "failed to load usage")
	}

	report := UsageReport{
		Month:   month,
		Window:  w,
		Buckets: usage.Aggregate(records, w),
	}
	for _, b := range report.Buckets {
		report.Total += b.TotalTokens
	}
	return report, nil
}

// ChatUsageReport is the token usage billed to one chat.
type ChatUsageReport struct {
	ChatID           string         `json:"chat_id"`
	Records          []usage.Record `json:"records"`
	PromptTokens     int            `json:"prompt_tokens"`
	CompletionTokens int            `json:"completion_tokens"`
	EmbeddingTokens  int            `json:"embedding_tokens"`
	Total            int            `json:"total_tokens"`
}

// ChatUsage lists the user's records for chatID, oldest first, with per-kind totals.
// A chat with no records, or one the user does not own, yields an empty report.
func (s *UsageService) ChatUsage(ctx context.Context, userID, chatID string) (ChatUsageReport, error) {
	if chatID == "" {
		return ChatUsageReport{}, &ValidationError{Field: "chat_id", Message: "cannot be empty"}
	}

	records, err := s.reader.ListByChat(ctx, chatID, userID)
	if err != nil {
		return ChatUsageReport{}, WrapError(err, "failed to load chat usage")
	}

	report := ChatUsageReport{ChatID: chatID, Records: records}
	for _, rec := range records {
		report.PromptTokens += rec.PromptTokens
		report.CompletionTokens += rec.CompletionTokens
		report.EmbeddingTokens += rec.EmbeddingTokens
		report.Total += rec.Total()
	}
	return report, nil
}
