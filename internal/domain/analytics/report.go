package analytics

// Report aggregates derived statistics for one visible result page.
// Reports describe what the user currently sees: every figure is computed over
// the already-paginated result slice, not the full matched population.
type Report struct {
	Basic     BasicStats               `json:"basic"`
	Scores    ScoreStats               `json:"scores"`
	Documents map[string]DocumentStats `json:"documents"`
	Matching  *MatchingStats           `json:"matching,omitempty"`
}

// BasicStats summarizes the page shape.
type BasicStats struct {
	Count         int     `json:"count"`
	DocumentCount int     `json:"document_count"`
	ScoreRange    float64 `json:"score_range"` // max - min fused score
}

// ScoreStats summarizes the fused-score distribution on the page.
type ScoreStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// DocumentStats summarizes one document's share of the page.
type DocumentStats struct {
	Count     int     `json:"count"`
	BestScore float64 `json:"best_score"`
}

// MatchingStats records query-term matches for keyword and hybrid modes.
// MatchedByResult is index-aligned with the page's result slice and feeds
// match highlighting upstream.
type MatchingStats struct {
	QueryTerms      []string   `json:"query_terms"`
	MatchedTerms    []string   `json:"matched_terms"`
	MatchedByResult [][]string `json:"matched_by_result"`
}
