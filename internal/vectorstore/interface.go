package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_searcher.go -package=mocks kbchat/internal/vectorstore DocumentSearcher

import (
	"context"
	"fmt"
)

// Payload fields every indexed chunk carries.
const (
	FieldText            = "text"
	FieldDocumentID      = "document_id"
	FieldDocumentName    = "document_name"
	FieldKnowledgeBaseID = "knowledge_base_id"
)

// Candidate is one passage returned by a per-document similarity query.
// Score is the backend's native similarity; higher is more similar.
type Candidate struct {
	ChunkID         string
	Text            string
	DocumentID      string
	DocumentName    string
	KnowledgeBaseID string
	Score           float64
}

// DocumentQuery restricts a nearest-neighbour query to one document inside
// a set of knowledge bases.
type DocumentQuery struct {
	Collection       string
	Vector           []float32
	KnowledgeBaseIDs []string
	DocumentID       string
	TopK             int
}

// Validate checks the query before it is sent to a backend.
func (q DocumentQuery) Validate() error {
	if q.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	if len(q.Vector) == 0 {
		return fmt.Errorf("query vector is empty")
	}
	if len(q.KnowledgeBaseIDs) == 0 {
		return fmt.Errorf("at least one knowledge base id is required")
	}
	if q.DocumentID == "" {
		return fmt.Errorf("document id is required")
	}
	if q.TopK <= 0 {
		return fmt.Errorf("top_k must be greater than 0")
	}
	return nil
}

// DocumentSearcher runs filtered per-document similarity queries.
type DocumentSearcher interface {
	// SearchDocument returns at most q.TopK candidates ordered by score descending.
	// Backend failures are returned as *IndexQueryError.
	SearchDocument(ctx context.Context, q DocumentQuery) ([]Candidate, error)

	// Health reports whether the backend is reachable.
	Health(ctx context.Context) error

	// CollectionInfo describes a collection. Used by operator tooling.
	CollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error)
}

// CollectionInfo contains information about a collection.
type CollectionInfo struct {
	Name        string
	VectorSize  int
	PointsCount int
	Status      string
}

// IndexQueryError is returned when the vector index rejects or fails a query.
type IndexQueryError struct {
	Collection string
	DocumentID string
	Err        error
}

func (e *IndexQueryError) Error() string {
	return fmt.Sprintf("index query failed (collection %s, document %s): %v", e.Collection, e.DocumentID, e.Err)
}

func (e *IndexQueryError) Unwrap() error {
	return e.Err
}
