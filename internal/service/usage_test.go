package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"kbchat/internal/service"
	"kbchat/internal/usage"
	usagemocks "kbchat/internal/usage/mocks"
)

func TestUsageService_MonthlyUsage(t *testing.T) {
	at := func(day, hour, minute int) time.Time {
		return time.Date(2024, 2, day, hour, minute, 0, 0, time.UTC)
	}
	records := []usage.Record{
		{EmbeddingTokens: 10, CreatedAt: at(1, 9, 5)},
		{PromptTokens: 100, CompletionTokens: 20, CreatedAt: at(1, 9, 40)},
		{EmbeddingTokens: 5, CreatedAt: at(29, 23, 59)},
	}

	tests := []struct {
		name        string
		month       string
		window      string
		expectQuery bool
		wantErr     string
		wantBuckets int
		wantTotal   int
	}{
		{name: "daily", month: "2024-02", window: "", expectQuery: true, wantBuckets: 2, wantTotal: 135},
		{name: "hourly", month: "2024-02", window: "1h", expectQuery: true, wantBuckets: 2, wantTotal: 135},
		{name: "quarter hours", month: "2024-02", window: "15m", expectQuery: true, wantBuckets: 3, wantTotal: 135},
		{name: "bad month", month: "2024-13", wantErr: "month"},
		{name: "bad window", month: "2024-02", window: "2h", wantErr: "window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			reader := usagemocks.NewMockReader(ctrl)
			if tt.expectQuery {
				reader.EXPECT().ListByUserAndDateRange(gomock.Any(), "alice", "2024-02-01", "2024-02-29").Return(records, nil)
			}
			svc := service.NewUsageService(reader)

			report, err := svc.MonthlyUsage(context.Background(), "alice", tt.month, tt.window)
			if tt.wantErr != "" {
				var validationErr *service.ValidationError
				if !errors.As(err, &validationErr) || validationErr.Field != tt.wantErr {
					t.Errorf("MonthlyUsage() error = %v, want validation error on %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("MonthlyUsage() error = %v", err)
			}
			if len(report.Buckets) != tt.wantBuckets {
				t.Errorf("MonthlyUsage() buckets = %+v, want %d", report.Buckets, tt.wantBuckets)
			}
			if report.Total != tt.wantTotal {
				t.Errorf("MonthlyUsage() total = %d, want %d", report.Total, tt.wantTotal)
			}
		})
	}
}

func TestUsageService_ReaderError(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := usagemocks.NewMockReader(ctrl)
	reader.EXPECT().ListByUserAndDateRange(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db closed"))

	_, err := service.NewUsageService(reader).MonthlyUsage(context.Background(), "alice", "2024-02", "1d")
	if err == nil {
		t.Fatal("MonthlyUsage() expected error")
	}
}

func TestUsageService_ChatUsage(t *testing.T) {
	at := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	records := []usage.Record{
		{ChatID: "chat-1", Operation: usage.OperationEmbedding, EmbeddingTokens: 12, CreatedAt: at},
		{ChatID: "chat-1", Operation: usage.OperationChat, PromptTokens: 300, CompletionTokens: 40, CreatedAt: at.Add(time.Second)},
	}

	tests := []struct {
		name       string
		chatID     string
		setup      func(r *usagemocks.MockReader)
		wantErr    error
		wantTotal  int
		wantPrompt int
	}{
		{
			name:   "sums records",
			chatID: "chat-1",
			setup: func(r *usagemocks.MockReader) {
				r.EXPECT().ListByChat(gomock.Any(), "chat-1", "alice").Return(records, nil)
			},
			wantTotal:  352,
			wantPrompt: 300,
		},
		{
			name:   "no records",
			chatID: "chat-2",
			setup: func(r *usagemocks.MockReader) {
				r.EXPECT().ListByChat(gomock.Any(), "chat-2", "alice").Return([]usage.Record{}, nil)
			},
		},
		{
			name:    "missing chat id",
			wantErr: service.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			reader := usagemocks.NewMockReader(ctrl)
			if tt.setup != nil {
				tt.setup(reader)
			}

			report, err := service.NewUsageService(reader).ChatUsage(context.Background(), "alice", tt.chatID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ChatUsage() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ChatUsage() error = %v", err)
			}
			if report.ChatID != tt.chatID || report.Total != tt.wantTotal || report.PromptTokens != tt.wantPrompt {
				t.Errorf("ChatUsage() = %+v", report)
			}
		})
	}
}
