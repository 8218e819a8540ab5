package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kbchat/internal/service"
)

// UsageReporter builds monthly and per-chat usage reports.
type UsageReporter interface {
	MonthlyUsage(ctx context.Context, userID, month, window string) (service.UsageReport, error)
	ChatUsage(ctx context.Context, userID, chatID string) (service.ChatUsageReport, error)
}

// UsageHandler handles HTTP requests for token usage.
type UsageHandler struct {
	reporter UsageReporter
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(reporter UsageReporter) *UsageHandler {
	return &UsageHandler{reporter: reporter}
}

// ServeHTTP reports the caller's aggregated token usage.
//
// swagger:route GET /api/v1/usage/tokens tokenUsage
//
// # Aggregated token usage for one month
//
// parameters:
//   - in: query
//     name: month
//     type: string
//     description: YYYY-MM, defaults to the current month
//   - in: query
//     name: window
//     type: string
//     description: 15m, 1h or 1d (default)
//
// responses:
//
//	'200':
//	  description: Buckets sorted by timestamp
//	'400':
//	  description: Invalid month or window
func (h *UsageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	report, err := h.reporter.MonthlyUsage(r.Context(), userID, q.Get("month"), q.Get("window"))
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to load usage")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ChatUsage reports the tokens billed to one of the caller's chats.
//
// swagger:route GET /api/v1/chats/{chatID}/usage chatUsage
//
// # Token usage records for one chat
//
// responses:
//
//	'200':
//	  description: Records oldest first with per-kind totals
func (h *UsageHandler) ChatUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	report, err := h.reporter.ChatUsage(r.Context(), userID, chi.URLParam(r, "chatID"))
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to load chat usage")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
