package sdk

import "time"

// SearchRequest is the body for Search and Analyze calls. Embedding may be
// omitted when the server has a query embedder configured.
type SearchRequest struct {
	Text             string    `json:"text,omitempty"`
	Embedding        []float32 `json:"embedding,omitempty"`
	Mode             string    `json:"mode,omitempty"`
	TopN             int       `json:"top_n,omitempty"`
	Threshold        *float64  `json:"threshold,omitempty"`
	Scope            []string  `json:"scope,omitempty"`
	Page             int       `json:"page,omitempty"`
	IncludeAnalytics bool      `json:"include_analytics,omitempty"`
}

// ScoredResult is one search hit.
type ScoredResult struct {
	DocumentID   string            `json:"document_id"`
	Page         int               `json:"page"`
	Text         string            `json:"text"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	VectorScore  *float64          `json:"vector_score,omitempty"`
	KeywordScore *float64          `json:"keyword_score,omitempty"`
	FusedScore   float64           `json:"fused_score"`
}

// SearchResponse is one page of ranked results.
type SearchResponse struct {
	Results      []ScoredResult `json:"results"`
	TotalMatched int            `json:"total_matched"`
	HasMore      bool           `json:"has_more"`
	Analytics    *Report        `json:"analytics,omitempty"`
}

// Report holds statistics over one page of results.
type Report struct {
	Basic     BasicStats               `json:"basic"`
	Scores    ScoreStats               `json:"scores"`
	Documents map[string]DocumentStats `json:"documents"`
	Matching  *MatchingStats           `json:"matching,omitempty"`
}

// BasicStats summarizes result cardinality and score spread.
type BasicStats struct {
	Count         int     `json:"count"`
	DocumentCount int     `json:"document_count"`
	ScoreRange    float64 `json:"score_range"`
}

// ScoreStats holds fused-score distribution statistics.
type ScoreStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// DocumentStats aggregates the results belonging to one document.
type DocumentStats struct {
	Count     int     `json:"count"`
	BestScore float64 `json:"best_score"`
}

// MatchingStats reports query-term coverage across the page.
type MatchingStats struct {
	QueryTerms      []string   `json:"query_terms"`
	MatchedTerms    []string   `json:"matched_terms"`
	MatchedByResult [][]string `json:"matched_by_result"`
}

// Chunk is one unit of document text to ingest.
type Chunk struct {
	DocumentID string            `json:"document_id"`
	Page       int               `json:"page"`
	Text       string            `json:"text"`
	Embedding  []float32         `json:"embedding"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// IngestResponse reports an ingest outcome.
type IngestResponse struct {
	Ingested int    `json:"ingested"`
	Version  uint64 `json:"version"`
}

// HistoryEntry is one recorded search.
type HistoryEntry struct {
	Query        string    `json:"query"`
	Mode         string    `json:"mode"`
	Scope        []string  `json:"scope,omitempty"`
	ResultCount  int       `json:"result_count"`
	TotalMatched int       `json:"total_matched"`
	Timestamp    time.Time `json:"timestamp"`
}

// Health is the server health report.
type Health struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Chunks  int               `json:"chunks"`
	Version string            `json:"version"`
}
