// Package page applies post-scoring filters, the deterministic rank order,
// and page slicing to a fused candidate set.
package page

import (
	"sort"

	"github.com/docdex-ai/docdex/internal/domain/search/query"
	"github.com/docdex-ai/docdex/internal/domain/search/result"
)

// Apply filters, sorts, and slices fused results into the requested page.
// Order of operations: scope filter, inclusive threshold filter, stable sort
// descending by fused score with the (documentID, page) tie-break, then the
// [page*topN, page*topN+topN) slice. TotalMatched counts results after
// filtering and before slicing. An empty or fully filtered set yields an
// empty page, not an error.
func Apply(results []result.Result, q *query.Query) result.Page {
	filtered := make([]result.Result, 0, len(results))
	threshold, hasThreshold := q.Threshold()
	for _, r := range results {
		c := r.Chunk()
		if !q.InScope(c.DocumentID()) {
			continue
		}
		if hasThreshold && r.FusedScore() < threshold {
			continue
		}
		filtered = append(filtered, r)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Less(&filtered[j])
	})

	total := len(filtered)
	// Page indexes past the data yield an empty page; the multiplication is
	// guarded so a huge index cannot overflow into a negative offset.
	start := total
	if q.Page() <= total/q.TopN() {
		start = q.Page() * q.TopN()
		if start > total {
			start = total
		}
	}
	end := start + q.TopN()
	if end > total {
		end = total
	}

	return result.Page{
		Results:      filtered[start:end:end],
		TotalMatched: total,
		HasMore:      end < total,
	}
}
