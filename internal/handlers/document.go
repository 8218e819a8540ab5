package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kbchat/internal/contextutil"
	"kbchat/internal/storage"
)

// DocumentToggler enables or disables documents.
type DocumentToggler interface {
	SetEnabled(ctx context.Context, userID, documentID string, enabled bool) (storage.Document, error)
}

// DocumentHandler handles HTTP requests that change a document's enabled flag.
type DocumentHandler struct {
	documents DocumentToggler
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documents DocumentToggler) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// UpdateDocumentRequest represents the HTTP request payload for toggling a document.
//
// swagger:model UpdateDocumentRequest
type UpdateDocumentRequest struct {
	Enabled *bool `json:"enabled"`
}

// DocumentResponse represents a document in HTTP responses.
//
// swagger:model DocumentResponse
type DocumentResponse struct {
	ID              string `json:"id"`
	KnowledgeBaseID string `json:"knowledge_base_id"`
	Name            string `json:"name"`
	Enabled         bool   `json:"enabled"`
}

// ServeHTTP toggles a document.
//
// swagger:route PATCH /api/v1/documents/{documentID} updateDocument
//
// responses:
//
//	'200':
//	  description: Updated document
//	'400':
//	  description: Missing enabled flag
//	'404':
//	  description: Unknown document
func (h *DocumentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.documents.SetEnabled(ctx, userID, chi.URLParam(r, "documentID"), *req.Enabled)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to update document")
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{
		ID:              doc.ID,
		KnowledgeBaseID: doc.KnowledgeBaseID,
		Name:            doc.Name,
		Enabled:         doc.Enabled,
	})
}
