package vectorstore

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendQdrant   = "qdrant"
	BackendPgVector = "pgvector"
)

// Store is a DocumentSearcher that owns a connection.
type Store interface {
	DocumentSearcher
	Close() error
}

// Open connects to the named backend. qdrantURL is used for BackendQdrant,
// postgresDSN for BackendPgVector.
func Open(ctx context.Context, backend, qdrantURL, postgresDSN string) (Store, error) {
	switch backend {
	case BackendQdrant:
		store, err := NewQdrantStore(qdrantURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendPgVector:
		store, err := NewPgVectorStore(ctx, postgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown vector backend %q", backend)
}

var (
	_ Store = (*QdrantStore)(nil)
	_ Store = (*PgVectorStore)(nil)
)
