package service

import (
	"context"

	"kbchat/internal/contextutil"
	"kbchat/internal/storage"
)

// DocumentService toggles which documents ground answers.
type DocumentService struct {
	documents storage.DocumentStore
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(documents storage.DocumentStore) *DocumentService {
	return &DocumentService{documents: documents}
}

// SetEnabled enables or disables a document owned by userID and returns its new state.
func (s *DocumentService) SetEnabled(ctx context.Context, userID, documentID string, enabled bool) (storage.Document, error) {
	if documentID == "" {
		return storage.Document{}, &ValidationError{Field: "document_id", Message: "cannot be empty"}
	}

	if err := s.documents.SetEnabled(ctx, documentID, userID, enabled); err != nil {
		return storage.Document{}, storeError(err, "document", documentID, "failed to update document")
	}

	doc, err := s.documents.GetByID(ctx, documentID, userID)
	if err != nil {
		return storage.Document{}, WrapError(err, "failed to reload document")
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "document toggled",
		"document_id", documentID,
		"enabled", enabled,
	)
	return *doc, nil
}
