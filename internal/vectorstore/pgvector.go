package vectorstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"kbchat/internal/contextutil"
)

// Chunks live in one table; the collection column plays the role of a Qdrant collection.
const searchDocumentSQL = `
SELECT
    id,
    content,
    document_id,
    document_name,
    knowledge_base_id,
    1 - (embedding <=> $1::vector) AS score
FROM kb_chunks
WHERE collection = $2
  AND knowledge_base_id = ANY($3)
  AND document_id = $4
ORDER BY embedding <=> $1::vector
LIMIT $5`

const collectionInfoSQL = `
SELECT count(*), coalesce(max(vector_dims(embedding)), 0)
FROM kb_chunks
WHERE collection = $1`

// pgQuerier is the subset of *pgxpool.Pool the store uses.
type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PgVectorStore implements DocumentSearcher on PostgreSQL with the pgvector extension.
type PgVectorStore struct {
	db   pgQuerier
	pool *pgxpool.Pool
}

// NewPgVectorStore connects to PostgreSQL using dsn.
func NewPgVectorStore(ctx context.Context, dsn string) (*PgVectorStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return &PgVectorStore{db: pool, pool: pool}, nil
}

// Close releases the connection pool.
func (s *PgVectorStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// SearchDocument queries one document's chunks by cosine similarity.
// Score is 1 - cosine distance.
func (s *PgVectorStore) SearchDocument(ctx context.Context, q DocumentQuery) ([]Candidate, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := q.Validate(); err != nil {
		return nil, &IndexQueryError{Collection: q.Collection, DocumentID: q.DocumentID, Err: err}
	}

	rows, err := s.db.Query(ctx, searchDocumentSQL,
		pgvector.NewVector(q.Vector), q.Collection, q.KnowledgeBaseIDs, q.DocumentID, q.TopK)
	if err != nil {
		logger.WarnContext(ctx, "document search failed",
			"collection", q.Collection,
			"document_id", q.DocumentID,
			"error", err,
		)
		return nil, &IndexQueryError{Collection: q.Collection, DocumentID: q.DocumentID, Err: err}
	}
	defer rows.Close()

	candidates := make([]Candidate, 0, q.TopK)
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ChunkID, &c.Text, &c.DocumentID, &c.DocumentName, &c.KnowledgeBaseID, &c.Score); err != nil {
			return nil, &IndexQueryError{Collection: q.Collection, DocumentID: q.DocumentID, Err: fmt.Errorf("scan chunk: %w", err)}
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &IndexQueryError{Collection: q.Collection, DocumentID: q.DocumentID, Err: err}
	}

	logger.DebugContext(ctx, "document search completed",
		"collection", q.Collection,
		"document_id", q.DocumentID,
		"top_k", q.TopK,
		"results", len(candidates),
	)
	return candidates, nil
}

// Health pings the database.
func (s *PgVectorStore) Health(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

// CollectionInfo counts the chunks stored under collection.
func (s *PgVectorStore) CollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error) {
	var count, dims int
	if err := s.db.QueryRow(ctx, collectionInfoSQL, collection).Scan(&count, &dims); err != nil {
		return nil, fmt.Errorf("failed to get collection info: %w", err)
	}

	status := "empty"
	if count > 0 {
		status = "ready"
	}
	return &CollectionInfo{
		Name:        collection,
		VectorSize:  dims,
		PointsCount: count,
		Status:      status,
	}, nil
}

var _ DocumentSearcher = (*PgVectorStore)(nil)
