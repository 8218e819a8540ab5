package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestQdrantAddress(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		wantHost string
		wantPort int
	}{
		{
			name:     "valid URL",
			urlStr:   "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334, // gRPC port is HTTP port + 1
		},
		{
			name:     "URL with custom port",
			urlStr:   "http://qdrant.internal:9000",
			wantHost: "qdrant.internal",
			wantPort: 9001,
		},
		{
			name:    "invalid URL",
			urlStr:  "://invalid",
			wantErr: true,
		},
		{
			name:     "URL without port",
			urlStr:   "http://localhost",
			wantHost: "localhost",
			wantPort: 6334, // Default
		},
		{
			name:     "URL without hostname",
			urlStr:   "http://:6333",
			wantHost: "localhost", // Defaults to localhost
			wantPort: 6334,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := qdrantAddress(tt.urlStr)
			if tt.wantErr {
				if err == nil {
					t.Error("qdrantAddress() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("qdrantAddress() error = %v", err)
			}
			if host != tt.wantHost {
				t.Errorf("Host = %v, want %v", host, tt.wantHost)
			}
			if port != tt.wantPort {
				t.Errorf("Port = %v, want %v", port, tt.wantPort)
			}
		})
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	_, err := NewQdrantStore("://invalid")
	if err == nil {
		t.Error("NewQdrantStore() with invalid URL should return error")
	}
}

func TestQdrantStore_SearchDocument_InvalidQuery(t *testing.T) {
	// Validation runs before the client is used.
	store := &QdrantStore{}

	tests := []struct {
		name  string
		query DocumentQuery
	}{
		{"zero top_k", DocumentQuery{Collection: "c", Vector: []float32{1}, KnowledgeBaseIDs: []string{"kb"}, DocumentID: "d"}},
		{"no collection", DocumentQuery{Vector: []float32{1}, KnowledgeBaseIDs: []string{"kb"}, DocumentID: "d", TopK: 3}},
		{"empty vector", DocumentQuery{Collection: "c", KnowledgeBaseIDs: []string{"kb"}, DocumentID: "d", TopK: 3}},
		{"no knowledge bases", DocumentQuery{Collection: "c", Vector: []float32{1}, DocumentID: "d", TopK: 3}},
		{"no document", DocumentQuery{Collection: "c", Vector: []float32{1}, KnowledgeBaseIDs: []string{"kb"}, TopK: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SearchDocument(context.Background(), tt.query)
			var queryErr *IndexQueryError
			if !errors.As(err, &queryErr) {
				t.Fatalf("SearchDocument() error = %v, want *IndexQueryError", err)
			}
		})
	}
}

func TestDocumentFilter(t *testing.T) {
	filter := documentFilter([]string{"kb-1", "kb-2"}, "doc-9")

	if len(filter.Must) != 2 {
		t.Fatalf("documentFilter() must conditions = %d, want 2", len(filter.Must))
	}

	kbMatch := filter.Must[0].GetField()
	if kbMatch.GetKey() != FieldKnowledgeBaseID {
		t.Errorf("first condition key = %q, want %q", kbMatch.GetKey(), FieldKnowledgeBaseID)
	}
	keywords := kbMatch.GetMatch().GetKeywords().GetStrings()
	if len(keywords) != 2 || keywords[0] != "kb-1" || keywords[1] != "kb-2" {
		t.Errorf("knowledge base keywords = %v, want [kb-1 kb-2]", keywords)
	}

	docMatch := filter.Must[1].GetField()
	if docMatch.GetKey() != FieldDocumentID {
		t.Errorf("second condition key = %q, want %q", docMatch.GetKey(), FieldDocumentID)
	}
	if got := docMatch.GetMatch().GetKeyword(); got != "doc-9" {
		t.Errorf("document keyword = %q, want doc-9", got)
	}
}

func TestCandidateFromPayload(t *testing.T) {
	payload := qdrant.NewValueMap(map[string]any{
		FieldText:            "Payment is due in 30 days.",
		FieldDocumentID:      "doc-1",
		FieldDocumentName:    "contract.pdf",
		FieldKnowledgeBaseID: "kb-1",
	})

	got := candidateFromPayload("chunk-1", 0.87, payload)
	want := Candidate{
		ChunkID:         "chunk-1",
		Text:            "Payment is due in 30 days.",
		DocumentID:      "doc-1",
		DocumentName:    "contract.pdf",
		KnowledgeBaseID: "kb-1",
		Score:           0.87,
	}
	if got != want {
		t.Errorf("candidateFromPayload() = %+v, want %+v", got, want)
	}
}

func TestPointIDString(t *testing.T) {
	if got := pointIDString(nil); got != "" {
		t.Errorf("pointIDString(nil) = %q, want empty", got)
	}
	if got := pointIDString(qdrant.NewIDNum(42)); got != "42" {
		t.Errorf("pointIDString(num) = %q, want 42", got)
	}
	uuid := "5c56c793-69f3-4fbf-87e6-c4bf54c28c26"
	if got := pointIDString(qdrant.NewID(uuid)); got != uuid {
		t.Errorf("pointIDString(uuid) = %q, want %q", got, uuid)
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	result := convertPayloadToMap(nil)
	if result == nil {
		t.Error("convertPayloadToMap() should return empty map, not nil")
	}
	if len(result) != 0 {
		t.Errorf("convertPayloadToMap() with nil should return empty map, got %d items", len(result))
	}
}
