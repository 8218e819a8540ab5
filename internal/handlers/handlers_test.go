package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"kbchat/internal/service"
	"kbchat/internal/storage"
	"kbchat/internal/usage"
	"kbchat/internal/vectorstore"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &service.ValidationError{Field: "title", Message: "cannot be empty"}, http.StatusBadRequest},
		{"not found", service.WrapError(service.ErrNotFound, "ctx"), http.StatusNotFound},
		{"index unavailable", &vectorstore.IndexQueryError{Collection: "alice", Err: errors.New("refused")}, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handleServiceError(w, context.Background(), tt.err, "default")
			if w.Code != tt.wantStatus {
				t.Errorf("handleServiceError() status = %v, want %v", w.Code, tt.wantStatus)
			}
		})
	}
}

type fakeReporter struct {
	month, window string
	chatID        string
	err           error
}

func (f *fakeReporter) ChatUsage(_ context.Context, _, chatID string) (service.ChatUsageReport, error) {
	f.chatID = chatID
	if f.err != nil {
		return service.ChatUsageReport{}, f.err
	}
	return service.ChatUsageReport{
		ChatID:  chatID,
		Records: []usage.Record{{ChatID: chatID, PromptTokens: 30, CompletionTokens: 12}},
		Total:   42,
	}, nil
}

func (f *fakeReporter) MonthlyUsage(_ context.Context, _ string, month, window string) (service.UsageReport, error) {
	f.month, f.window = month, window
	if f.err != nil {
		return service.UsageReport{}, f.err
	}
	return service.UsageReport{
		Month:   month,
		Window:  usage.Window(window),
		Buckets: []usage.Bucket{{Timestamp: "2024-02-01", TotalTokens: 42}},
		Total:   42,
	}, nil
}

func TestUsageHandler(t *testing.T) {
	t.Run("report", func(t *testing.T) {
		reporter := &fakeReporter{}
		w := httptest.NewRecorder()
		NewUsageHandler(reporter).ServeHTTP(w, newRequest(http.MethodGet, "/api/v1/usage/tokens?month=2024-02&window=1d", nil, "alice", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %v, want 200", w.Code)
		}
		if reporter.month != "2024-02" || reporter.window != "1d" {
			t.Errorf("query forwarded as month=%q window=%q", reporter.month, reporter.window)
		}
		var report service.UsageReport
		if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if report.Total != 42 || len(report.Buckets) != 1 {
			t.Errorf("report = %+v", report)
		}
	})

	t.Run("invalid window", func(t *testing.T) {
		reporter := &fakeReporter{err: &service.ValidationError{Field: "window", Message: "bad"}}
		w := httptest.NewRecorder()
		NewUsageHandler(reporter).ServeHTTP(w, newRequest(http.MethodGet, "/api/v1/usage/tokens?window=2h", nil, "alice", nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %v, want 400", w.Code)
		}
	})
}

func TestUsageHandler_ChatUsage(t *testing.T) {
	params := map[string]string{"chatID": "chat-1"}

	t.Run("report", func(t *testing.T) {
		reporter := &fakeReporter{}
		w := httptest.NewRecorder()
		NewUsageHandler(reporter).ChatUsage(w, newRequest(http.MethodGet, "/api/v1/chats/chat-1/usage", nil, "alice", params))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %v, want 200", w.Code)
		}
		if reporter.chatID != "chat-1" {
			t.Errorf("chat id forwarded as %q", reporter.chatID)
		}
		var report service.ChatUsageReport
		if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if report.Total != 42 || len(report.Records) != 1 {
			t.Errorf("report = %+v", report)
		}
	})

	t.Run("missing identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewUsageHandler(&fakeReporter{}).ChatUsage(w, newRequest(http.MethodGet, "/api/v1/chats/chat-1/usage", nil, "", params))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %v, want 401", w.Code)
		}
	})
}

type fakeToggler struct {
	got bool
	err error
}

func (f *fakeToggler) SetEnabled(_ context.Context, _, documentID string, enabled bool) (storage.Document, error) {
	f.got = enabled
	if f.err != nil {
		return storage.Document{}, f.err
	}
	return storage.Document{ID: documentID, Name: "contract.pdf", Enabled: enabled}, nil
}

func TestDocumentHandler(t *testing.T) {
	params := map[string]string{"documentID": "d1"}
	tests := []struct {
		name       string
		body       any
		err        error
		wantStatus int
	}{
		{"disable", map[string]bool{"enabled": false}, nil, http.StatusOK},
		{"missing flag", map[string]string{}, nil, http.StatusBadRequest},
		{"unknown document", map[string]bool{"enabled": true}, service.WrapError(service.ErrNotFound, "x"), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toggler := &fakeToggler{got: true, err: tt.err}
			w := httptest.NewRecorder()
			NewDocumentHandler(toggler).ServeHTTP(w, newRequest(http.MethodPatch, "/api/v1/documents/d1", tt.body, "alice", params))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %v, want %v", w.Code, tt.wantStatus)
			}
		})
	}
}

type fakeCheck struct{ err error }

func (f fakeCheck) Health(context.Context) error      { return f.err }
func (f fakeCheck) PingContext(context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		vector     error
		db         error
		wantStatus int
		wantIssues int
	}{
		{"healthy", nil, nil, http.StatusOK, 0},
		{"vector store down", errors.New("refused"), nil, http.StatusServiceUnavailable, 1},
		{"both down", errors.New("refused"), errors.New("locked"), http.StatusServiceUnavailable, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHealthHandler(fakeCheck{tt.vector}, fakeCheck{tt.db}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %v, want %v", w.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if len(resp.Issues) != tt.wantIssues {
				t.Errorf("issues = %v, want %d", resp.Issues, tt.wantIssues)
			}
		})
	}
}
