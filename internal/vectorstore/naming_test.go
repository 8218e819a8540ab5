package vectorstore

import (
	"context"
	"testing"
)

func TestCollectionName(t *testing.T) {
	tests := []struct {
		identity string
		want     string
	}{
		{"alice@example.com", "alice_example_com"},
		{"Alice.Smith@Example.COM", "alice_smith_example_com"},
		{"a..b@@c", "a_b_c"},
		{"a._@b", "a_b"},
		{"trailing.", "trailing"},
		{"user@host.", "user_host"},
		{"___", ""},
		{"", ""},
		{"_leading", "_leading"},
		{"already_clean", "already_clean"},
	}

	for _, tt := range tests {
		t.Run(tt.identity, func(t *testing.T) {
			got := CollectionName(tt.identity)
			if got != tt.want {
				t.Errorf("CollectionName(%q) = %q, want %q", tt.identity, got, tt.want)
			}
			if again := CollectionName(got); again != got {
				t.Errorf("CollectionName is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), "milvus", "", ""); err == nil {
		t.Error("Open() expected error for unknown backend")
	}
}
