package docdex

import (
	domanalytics "github.com/docdex-ai/docdex/internal/domain/analytics"
	"github.com/docdex-ai/docdex/internal/domain/chunk"
	"github.com/docdex-ai/docdex/internal/domain/search/mode"
	"github.com/docdex-ai/docdex/internal/domain/search/query"
	"github.com/docdex-ai/docdex/internal/domain/search/result"
)

// Mode selects which scoring branches a search runs.
type Mode string

const (
	// ModeHybrid blends vector and keyword scores (the default).
	ModeHybrid Mode = Mode(mode.Hybrid)
	// ModeVector ranks by cosine similarity only.
	ModeVector Mode = Mode(mode.Vector)
	// ModeKeyword ranks by keyword overlap only.
	ModeKeyword Mode = Mode(mode.Keyword)
)

// Chunk is a unit of document text with its precomputed embedding.
type Chunk struct {
	DocumentID string
	Page       int
	Text       string
	Embedding  []float32
	Metadata   map[string]string
}

// Query describes one search.
//
// Zero values take defaults: Mode defaults to ModeHybrid, TopN to 10,
// Page to 0. A nil Threshold disables score filtering. An empty Scope
// searches all documents.
type Query struct {
	Text      string
	Embedding []float32
	Mode      Mode
	TopN      int
	Threshold *float64
	Scope     []string
	Page      int
}

// Result is one scored search hit. VectorScore and KeywordScore are nil when
// the search mode did not run that branch or the branch skipped the chunk.
type Result struct {
	Chunk        Chunk
	VectorScore  *float64
	KeywordScore *float64
	FusedScore   float64
}

// Page is one page of ranked results.
type Page struct {
	Results      []Result
	TotalMatched int
	HasMore      bool
}

// Report holds statistics over one page of results.
type Report struct {
	Basic     BasicStats
	Scores    ScoreStats
	Documents map[string]DocumentStats
	// Matching is nil unless the query ran the keyword branch.
	Matching *MatchingStats
}

// BasicStats summarizes result cardinality and score spread.
type BasicStats struct {
	Count         int
	DocumentCount int
	ScoreRange    float64
}

// ScoreStats holds fused-score distribution statistics.
type ScoreStats struct {
	Mean   float64
	Median float64
	StdDev float64
}

// DocumentStats aggregates the results belonging to one document.
type DocumentStats struct {
	Count     int
	BestScore float64
}

// MatchingStats reports query-term coverage across the page.
type MatchingStats struct {
	QueryTerms      []string
	MatchedTerms    []string
	MatchedByResult [][]string
}

func toInternalChunks(chunks []Chunk) []chunk.Chunk {
	out := make([]chunk.Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = chunk.New(c.DocumentID, c.Page, c.Text, c.Embedding, c.Metadata)
	}
	return out
}

func toInternalQuery(q Query) (query.Query, error) {
	return query.New(q.Text, q.Embedding, mode.Mode(q.Mode), q.TopN, q.Threshold, q.Scope, q.Page)
}

func fromInternalPage(p result.Page) Page {
	out := Page{
		Results:      make([]Result, len(p.Results)),
		TotalMatched: p.TotalMatched,
		HasMore:      p.HasMore,
	}
	for i := range p.Results {
		out.Results[i] = fromInternalResult(p.Results[i])
	}
	return out
}

func fromInternalResult(r result.Result) Result {
	c := r.Chunk()
	res := Result{
		Chunk: Chunk{
			DocumentID: c.DocumentID(),
			Page:       c.Page(),
			Text:       c.Text(),
			Embedding:  c.Embedding(),
			Metadata:   c.Metadata(),
		},
		FusedScore: r.FusedScore(),
	}
	if s, ok := r.VectorScore(); ok {
		res.VectorScore = &s
	}
	if s, ok := r.KeywordScore(); ok {
		res.KeywordScore = &s
	}
	return res
}

func fromInternalReport(r domanalytics.Report) Report {
	out := Report{
		Basic: BasicStats{
			Count:         r.Basic.Count,
			DocumentCount: r.Basic.DocumentCount,
			ScoreRange:    r.Basic.ScoreRange,
		},
		Scores: ScoreStats{
			Mean:   r.Scores.Mean,
			Median: r.Scores.Median,
			StdDev: r.Scores.StdDev,
		},
		Documents: make(map[string]DocumentStats, len(r.Documents)),
	}
	for id, ds := range r.Documents {
		out.Documents[id] = DocumentStats{Count: ds.Count, BestScore: ds.BestScore}
	}
	if r.Matching != nil {
		out.Matching = &MatchingStats{
			QueryTerms:      r.Matching.QueryTerms,
			MatchedTerms:    r.Matching.MatchedTerms,
			MatchedByResult: r.Matching.MatchedByResult,
		}
	}
	return out
}
