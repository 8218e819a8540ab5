// Package retrieval selects the passages that ground an answer.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"kbchat/internal/contextutil"
	"kbchat/internal/vectorstore"
)

const (
	DefaultTopK           = 3
	DefaultScoreThreshold = 0.75
	DefaultConcurrency    = 8
	DefaultSearchTimeout  = 30 * time.Second
)

// ErrNoEnabledDocuments is returned when a plan is requested for an empty document set.
var ErrNoEnabledDocuments = errors.New("no enabled documents to search")

// IncompleteRepresentationError is returned when at least one enabled document
// produced no candidates. MissingDocumentIDs keeps request order.
type IncompleteRepresentationError struct {
	MissingDocumentIDs []string
}

func (e *IncompleteRepresentationError) Error() string {
	return fmt.Sprintf("incomplete representation: no passages retrieved for documents %v", e.MissingDocumentIDs)
}

// Config tunes the planner.
type Config struct {
	// TopK is the per-document candidate count; it also sizes the result cap.
	TopK int
	// ScoreThreshold stops the supplementary pass. It is on the backend's native score scale.
	ScoreThreshold float64
	// Concurrency bounds in-flight document searches.
	Concurrency int
	// SearchTimeout applies to each document search.
	SearchTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = DefaultSearchTimeout
	}
	return c
}

// Request is the input to Plan.
type Request struct {
	// UserID addresses the caller's collection.
	UserID             string
	QueryVector        []float32
	KnowledgeBaseIDs   []string
	EnabledDocumentIDs []string
}

// Planner fans a query out over enabled documents and merges the results.
type Planner struct {
	searcher vectorstore.DocumentSearcher
	cfg      Config
}

// NewPlanner creates a planner. Zero config fields take the package defaults
// except ScoreThreshold, where zero is a valid threshold.
func NewPlanner(searcher vectorstore.DocumentSearcher, cfg Config) *Planner {
	return &Planner{
		searcher: searcher,
		cfg:      cfg.withDefaults(),
	}
}

// Config returns the effective configuration.
func (p *Planner) Config() Config {
	return p.cfg
}

// Plan returns the grounding passages for a query, ordered by score descending.
//
// Every enabled document contributes its best candidate. Remaining candidates from all
// documents are then added in score order until the result holds TopK entries per
// document or scores fall below ScoreThreshold. A document that yields no candidates,
// including one whose search failed, fails the plan with *IncompleteRepresentationError.
func (p *Planner) Plan(ctx context.Context, req Request) ([]vectorstore.Candidate, error) {
	logger := contextutil.LoggerFromContext(ctx)

	docIDs := uniqueIDs(req.EnabledDocumentIDs)
	if len(docIDs) == 0 {
		return nil, ErrNoEnabledDocuments
	}
	if len(req.KnowledgeBaseIDs) == 0 {
		return nil, errors.New("no knowledge bases to search")
	}
	if len(req.QueryVector) == 0 {
		return nil, errors.New("query vector is empty")
	}

	collection := vectorstore.CollectionName(req.UserID)
	if collection == "" {
		return nil, errors.New("user id does not yield a collection name")
	}

	perDocument := p.searchAll(ctx, collection, req, docIDs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, pool, missing := mandatoryPass(docIDs, perDocument)
	if len(missing) > 0 {
		logger.WarnContext(ctx, "documents without candidates",
			"missing_document_ids", missing,
			"enabled_documents", len(docIDs),
		)
		return nil, &IncompleteRepresentationError{MissingDocumentIDs: missing}
	}
	mandatory := len(result)

	result = p.supplementaryPass(result, pool, len(docIDs)*p.cfg.TopK)

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})

	logger.InfoContext(ctx, "retrieval plan completed",
		"collection", collection,
		"documents", len(docIDs),
		"mandatory", mandatory,
		"supplementary", len(result)-mandatory,
		"top_k", p.cfg.TopK,
		"threshold", p.cfg.ScoreThreshold,
	)
	return result, nil
}

// searchAll runs one search per document. Slot i holds document i's candidates;
// a failed search leaves its slot empty.
func (p *Planner) searchAll(ctx context.Context, collection string, req Request, docIDs []string) [][]vectorstore.Candidate {
	logger := contextutil.LoggerFromContext(ctx)
	perDocument := make([][]vectorstore.Candidate, len(docIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for i, docID := range docIDs {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(gctx, p.cfg.SearchTimeout)
			defer cancel()

			candidates, err := p.searcher.SearchDocument(sctx, vectorstore.DocumentQuery{
				Collection:       collection,
				Vector:           req.QueryVector,
				KnowledgeBaseIDs: req.KnowledgeBaseIDs,
				DocumentID:       docID,
				TopK:             p.cfg.TopK,
			})
			if err != nil {
				logger.WarnContext(ctx, "document search failed, treating as no candidates",
					"document_id", docID,
					"error", err,
				)
				return nil
			}

			for j := range candidates {
				if candidates[j].DocumentID == "" {
					candidates[j].DocumentID = docID
				}
			}
			perDocument[i] = candidates
			return nil
		})
	}
	// Searches never return errors; failures are absorbed per document.
	_ = g.Wait()

	return perDocument
}

// mandatoryPass picks each document's best candidate in document order. Ties keep
// the first candidate in provider order. The rest go to the pool.
func mandatoryPass(docIDs []string, perDocument [][]vectorstore.Candidate) (result, pool []vectorstore.Candidate, missing []string) {
	result = make([]vectorstore.Candidate, 0, len(docIDs))
	for i, docID := range docIDs {
		candidates := perDocument[i]
		if len(candidates) == 0 {
			missing = append(missing, docID)
			continue
		}

		best := 0
		for j := 1; j < len(candidates); j++ {
			if candidates[j].Score > candidates[best].Score {
				best = j
			}
		}
		result = append(result, candidates[best])
		for j, c := range candidates {
			if j != best {
				pool = append(pool, c)
			}
		}
	}
	return result, pool, missing
}

// supplementaryPass appends pooled candidates by score until limit entries are held
// or a score drops below the threshold. Duplicates of held passages are skipped.
func (p *Planner) supplementaryPass(result, pool []vectorstore.Candidate, limit int) []vectorstore.Candidate {
	seen := make(map[string]struct{}, len(result)+len(pool))
	for _, c := range result {
		seen[candidateKey(c)] = struct{}{}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})

	for _, c := range pool {
		if len(result) >= limit || c.Score < p.cfg.ScoreThreshold {
			break
		}
		key := candidateKey(c)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, c)
	}
	return result
}

func candidateKey(c vectorstore.Candidate) string {
	if c.ChunkID != "" {
		return "id:" + c.ChunkID
	}
	return "text:" + c.DocumentID + "\x00" + c.Text
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
