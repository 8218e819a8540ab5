package contextutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestLoggerFromContext(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		ctx  context.Context
		want *slog.Logger
	}{
		{
			name: "logger in context",
			ctx:  WithLogger(context.Background(), custom),
			want: custom,
		},
		{
			name: "no logger falls back to default",
			ctx:  context.Background(),
			want: slog.Default(),
		},
		{
			name: "wrong value type falls back to default",
			ctx:  context.WithValue(context.Background(), loggerKey, "not a logger"),
			want: slog.Default(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LoggerFromContext(tt.ctx); got != tt.want {
				t.Errorf("LoggerFromContext() = %p, want %p", got, tt.want)
			}
		})
	}
}

func TestUserFromContext(t *testing.T) {
	ctx := WithUser(context.Background(), "alice@example.com")
	got, ok := UserFromContext(ctx)
	if !ok || got != "alice@example.com" {
		t.Errorf("UserFromContext() = %q, %v, want alice@example.com, true", got, ok)
	}

	if _, ok := UserFromContext(context.Background()); ok {
		t.Error("UserFromContext() on empty context should report false")
	}

	if _, ok := UserFromContext(WithUser(context.Background(), "")); ok {
		t.Error("UserFromContext() with empty identity should report false")
	}
}
