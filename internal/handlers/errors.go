package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"kbchat/internal/contextutil"
	"kbchat/internal/llm"
	"kbchat/internal/rag"
	"kbchat/internal/retrieval"
	"kbchat/internal/service"
	"kbchat/internal/vectorstore"
)

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
	// MissingDocumentIDs lists the enabled documents without a usable passage (422 only).
	MissingDocumentIDs []string `json:"missing_document_ids,omitempty"`
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		logger.WarnContext(ctx, "validation error", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()))
		return
	}

	if errors.Is(err, service.ErrInvalidInput) || errors.Is(err, rag.ErrEmptyQuery) || errors.Is(err, retrieval.ErrNoEnabledDocuments) {
		logger.WarnContext(ctx, "invalid input", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if errors.Is(err, service.ErrNotFound) {
		logger.WarnContext(ctx, "resource not found", "error", err)
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}

	logger.ErrorContext(ctx, "service error", "error", err)

	var incomplete *retrieval.IncompleteRepresentationError
	if errors.As(err, &incomplete) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:              "Some enabled documents have no passage to ground the answer",
			MissingDocumentIDs: incomplete.MissingDocumentIDs,
		})
		return
	}

	var embeddingErr *llm.EmbeddingProviderError
	var generationErr *llm.GenerationProviderError
	if errors.As(err, &embeddingErr) || errors.As(err, &generationErr) {
		writeError(w, http.StatusBadGateway, "External service error")
		return
	}

	// The planner absorbs per-document search failures, so only callers that hit a
	// DocumentSearcher directly reach this branch.
	var indexErr *vectorstore.IndexQueryError
	if errors.As(err, &indexErr) {
		writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
		return
	}

	writeError(w, http.StatusInternalServerError, defaultMsg)
}

// requireUser returns the caller identity or writes 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := contextutil.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing user identity")
		return "", false
	}
	return userID, true
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}
