package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"kbchat/internal/contextutil"
)

// QdrantStore implements DocumentSearcher using Qdrant.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore creates a new Qdrant vector store client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) will be derived from the HTTP port.
func NewQdrantStore(urlStr string) (*QdrantStore, error) {
	host, port, err := qdrantAddress(urlStr)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client: client,
	}, nil
}

// qdrantAddress returns the gRPC host and port for a Qdrant HTTP URL.
func qdrantAddress(urlStr string) (string, int, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334 // Default gRPC port
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}
	return host, port, nil
}

// Close releases the gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// SearchDocument queries one document's chunks inside the given knowledge bases.
func (s *QdrantStore) SearchDocument(ctx context.Context, q DocumentQuery) ([]Candidate, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := q.Validate(); err != nil {
		return nil, &IndexQueryError{Collection: q.Collection, DocumentID: q.DocumentID, Err: err}
	}

	limit := uint64(q.TopK)
	scoredPoints, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.Collection,
		Query:          qdrant.NewQuery(q.Vector...),
		Limit:          &limit,
		Filter:         documentFilter(q.KnowledgeBaseIDs, q.DocumentID),
		WithPayload:    qdrant.NewWithPayloadInclude(FieldText, FieldKnowledgeBaseID, FieldDocumentID, FieldDocumentName),
	})
	if err != nil {
		logger.WarnContext(ctx, "document search failed",
			"collection", q.Collection,
			"document_id", q.DocumentID,
			"error", err,
		)
		return nil, &IndexQueryError{Collection: q.Collection, DocumentID: q.DocumentID, Err: err}
	}

	candidates := make([]Candidate, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		candidates = append(candidates, candidateFromPayload(pointIDString(point.Id), float64(point.Score), point.Payload))
	}

	logger.DebugContext(ctx, "document search completed",
		"collection", q.Collection,
		"document_id", q.DocumentID,
		"top_k", q.TopK,
		"results", len(candidates),
	)
	return candidates, nil
}

// documentFilter builds `knowledge_base_id in [...] AND document_id == id`.
func documentFilter(knowledgeBaseIDs []string, documentID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchKeywords(FieldKnowledgeBaseID, knowledgeBaseIDs...),
			qdrant.NewMatchKeyword(FieldDocumentID, documentID),
		},
	}
}

func candidateFromPayload(id string, score float64, payload map[string]*qdrant.Value) Candidate {
	meta := convertPayloadToMap(payload)
	str := func(key string) string {
		v, _ := meta[key].(string)
		return v
	}
	return Candidate{
		ChunkID:         id,
		Text:            str(FieldText),
		DocumentID:      str(FieldDocumentID),
		DocumentName:    str(FieldDocumentName),
		KnowledgeBaseID: str(FieldKnowledgeBaseID),
		Score:           score,
	}
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

// Health checks that Qdrant answers.
func (s *QdrantStore) Health(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check: %w", err)
	}
	return nil
}

// CollectionInfo returns information about a collection including point count.
func (s *QdrantStore) CollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error) {
	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection info: %w", err)
	}

	// Extract vector size
	var vectorSize int
	if config := info.Config; config != nil && config.Params != nil {
		if vectorsConfig := config.Params.GetVectorsConfig(); vectorsConfig != nil {
			if params := vectorsConfig.GetParams(); params != nil {
				vectorSize = int(params.Size)
			}
		}
	}

	var pointsCount int
	if info.PointsCount != nil {
		pointsCount = int(*info.PointsCount)
	}

	status := "unknown"
	if info.Status != 0 {
		status = info.Status.String()
	}

	return &CollectionInfo{
		Name:        collection,
		VectorSize:  vectorSize,
		PointsCount: pointsCount,
		Status:      status,
	}, nil
}

// convertPayloadToMap converts Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to Go any type.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}

var _ DocumentSearcher = (*QdrantStore)(nil)
