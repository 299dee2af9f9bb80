package query

import (
	"fmt"
	"sort"

	"github.com/docdex-ai/docdex/internal/domain"
	"github.com/docdex-ai/docdex/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxTextLength is the maximum allowed query text length.
	MaxTextLength = 4096
	DefaultTopN   = 10
	MaxTopN       = 500
)

// Query is a validated search request.
type Query struct {
	text       string
	embedding  []float32
	searchMode mode.Mode
	topN       int
	threshold  *float64
	scope      []string
	page       int
}

// New validates and normalizes search parameters.
// Defaults: mode=hybrid, topN=10, page=0. The scope is deduplicated and sorted
// so equivalent queries fingerprint identically.
// Mode invariants: embedding is required unless mode=keyword, text is required
// unless mode=vector.
func New(
	text string,
	embedding []float32,
	m mode.Mode,
	topN int,
	threshold *float64,
	scope []string,
	page int,
) (Query, error) {
	if m == "" {
		m = mode.Hybrid
	}
	if !m.IsValid() {
		return Query{}, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidQuery, m)
	}
	if m.UsesVector() && len(embedding) == 0 {
		return Query{}, fmt.Errorf("%w: %s mode requires an embedding", domain.ErrInvalidQuery, m)
	}
	if m.UsesKeyword() && text == "" {
		return Query{}, fmt.Errorf("%w: %s mode requires query text", domain.ErrInvalidQuery, m)
	}
	if len(text) > MaxTextLength {
		return Query{}, fmt.Errorf("%w: text too long (max %d chars)", domain.ErrInvalidQuery, MaxTextLength)
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	if topN > MaxTopN {
		topN = MaxTopN
	}
	if threshold != nil && (*threshold < -1 || *threshold > 1) {
		return Query{}, fmt.Errorf("%w: threshold must be between -1 and 1", domain.ErrInvalidQuery)
	}
	if page < 0 {
		return Query{}, fmt.Errorf("%w: page must not be negative", domain.ErrInvalidQuery)
	}

	return Query{
		text:       text,
		embedding:  embedding,
		searchMode: m,
		topN:       topN,
		threshold:  threshold,
		scope:      normalizeScope(scope),
		page:       page,
	}, nil
}

// normalizeScope returns a sorted, deduplicated copy of the document IDs.
func normalizeScope(scope []string) []string {
	if len(scope) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(scope))
	out := make([]string, 0, len(scope))
	for _, id := range scope {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Text returns the query text.
func (q *Query) Text() string { return q.text }

// Embedding returns the precomputed query embedding.
func (q *Query) Embedding() []float32 { return q.embedding }

// Mode returns the search strategy.
func (q *Query) Mode() mode.Mode { return q.searchMode }

// TopN returns the page size.
func (q *Query) TopN() int { return q.topN }

// Threshold returns the optional inclusive fused-score lower bound.
func (q *Query) Threshold() (float64, bool) {
	if q.threshold == nil {
		return 0, false
	}
	return *q.threshold, true
}

// Scope returns the optional document ID filter, sorted ascending.
func (q *Query) Scope() []string { return q.scope }

// InScope reports whether a document passes the scope filter.
// An empty scope admits every document.
func (q *Query) InScope(documentID string) bool {
	if len(q.scope) == 0 {
		return true
	}
	i := sort.SearchStrings(q.scope, documentID)
	return i < len(q.scope) && q.scope[i] == documentID
}

// Page returns the zero-based page index.
func (q *Query) Page() int { return q.page }
