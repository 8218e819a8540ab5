package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kbchat/internal/storage"
	"kbchat/internal/usage"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kbctl.db")
	db, err := storage.New(path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, storage.Migrate(db))

	ctx := context.Background()
	at := time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, storage.NewKnowledgeBaseRepo(db).Create(ctx, &storage.KnowledgeBase{ID: "kb-1", UserID: "alice", Name: "Legal", CreatedAt: at}))
	require.NoError(t, storage.NewDocumentRepo(db).Create(ctx, &storage.Document{
		ID: "d1", KnowledgeBaseID: "kb-1", UserID: "alice", Name: "contract.pdf", Enabled: true, CreatedAt: at,
	}))

	ledger := storage.NewUsageRepo(db)
	scope := usage.Scope{UserID: "alice", ChatID: "c1"}
	emb, err := usage.NewEmbeddingRecord(scope, 10, at)
	require.NoError(t, err)
	chat, err := usage.NewChatRecord(scope, 200, 30, at.Add(24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, ledger.Append(ctx, emb))
	require.NoError(t, ledger.Append(ctx, chat))
	return path
}

func TestCollectionCommand(t *testing.T) {
	out, err := execute(t, "collection", "Alice.Smith@Example.com")
	require.NoError(t, err)
	require.Equal(t, "alice_smith_example_com\n", out)

	_, err = execute(t, "collection", "@@..")
	require.Error(t, err)
}

func TestUsageCommand(t *testing.T) {
	path := seedDB(t)

	out, err := execute(t, "--db", path, "usage", "--user", "alice", "--month", "2024-02")
	require.NoError(t, err)
	require.Contains(t, out, "2024-02-10")
	require.Contains(t, out, "2024-02-11")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.True(t, strings.HasPrefix(lines[len(lines)-1], "total"))
	require.Contains(t, lines[len(lines)-1], "240")

	out, err = execute(t, "--db", path, "usage", "--user", "alice", "--month", "2024-02", "--json")
	require.NoError(t, err)
	require.Contains(t, out, `"total_tokens": 240`)

	_, err = execute(t, "--db", path, "usage", "--user", "alice", "--window", "2h")
	require.Error(t, err)

	_, err = execute(t, "--db", path, "usage")
	require.Error(t, err, "--user is required")
}

func TestDocumentsCommand(t *testing.T) {
	path := seedDB(t)

	out, err := execute(t, "--db", path, "documents", "disable", "d1", "--user", "alice")
	require.NoError(t, err)
	require.Equal(t, "d1 (contract.pdf) enabled=false\n", out)

	out, err = execute(t, "--db", path, "documents", "enable", "d1", "--user", "alice")
	require.NoError(t, err)
	require.Contains(t, out, "enabled=true")

	_, err = execute(t, "--db", path, "documents", "enable", "d1", "--user", "bob")
	require.Error(t, err)
}
