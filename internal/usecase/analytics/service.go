// Package analytics derives summary statistics from a search result page.
package analytics

import (
	"math"
	"sort"

	domanalytics "github.com/docdex-ai/docdex/internal/domain/analytics"
	"github.com/docdex-ai/docdex/internal/domain/search/query"
	"github.com/docdex-ai/docdex/internal/domain/search/result"
	"github.com/docdex-ai/docdex/internal/usecase/score"
)

// Service computes analytics reports. Pure: no state, no side effects, and
// every figure describes the already-paginated visible page rather than the
// full matched population.
type Service struct{}

// New creates an analytics service.
func New() *Service { return &Service{} }

// Analyze derives the report for one result page. Matching stats are present
// only for modes that carry query text (keyword, hybrid).
func (s *Service) Analyze(page result.Page, q *query.Query) domanalytics.Report {
	report := domanalytics.Report{
		Basic:     basicStats(page.Results),
		Scores:    scoreStats(page.Results),
		Documents: documentStats(page.Results),
	}
	if q.Mode().UsesKeyword() {
		report.Matching = matchingStats(page.Results, q.Text())
	}
	return report
}

func basicStats(results []result.Result) domanalytics.BasicStats {
	stats := domanalytics.BasicStats{Count: len(results)}
	if len(results) == 0 {
		return stats
	}

	docs := make(map[string]struct{})
	lo, hi := results[0].FusedScore(), results[0].FusedScore()
	for i := range results {
		c := results[i].Chunk()
		docs[c.DocumentID()] = struct{}{}
		s := results[i].FusedScore()
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	stats.DocumentCount = len(docs)
	stats.ScoreRange = hi - lo
	return stats
}

func scoreStats(results []result.Result) domanalytics.ScoreStats {
	if len(results) == 0 {
		return domanalytics.ScoreStats{}
	}

	scores := make([]float64, len(results))
	var sum float64
	for i := range results {
		scores[i] = results[i].FusedScore()
		sum += scores[i]
	}
	mean := sum / float64(len(scores))

	var variance float64
	for _, s := range scores {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(scores))

	sort.Float64s(scores)
	mid := len(scores) / 2
	median := scores[mid]
	if len(scores)%2 == 0 {
		median = (scores[mid-1] + scores[mid]) / 2
	}

	return domanalytics.ScoreStats{
		Mean:   mean,
		Median: median,
		StdDev: math.Sqrt(variance),
	}
}

func documentStats(results []result.Result) map[string]domanalytics.DocumentStats {
	stats := make(map[string]domanalytics.DocumentStats, len(results))
	for i := range results {
		c := results[i].Chunk()
		s := results[i].FusedScore()
		entry := stats[c.DocumentID()]
		entry.Count++
		if entry.Count == 1 || s > entry.BestScore {
			entry.BestScore = s
		}
		stats[c.DocumentID()] = entry
	}
	return stats
}

// matchingStats records which query terms matched which visible results,
// using the same fixed tokenization as the keyword scorer.
func matchingStats(results []result.Result, queryText string) *domanalytics.MatchingStats {
	queryTerms := dedupe(score.Tokenize(queryText))

	stats := &domanalytics.MatchingStats{
		QueryTerms:      queryTerms,
		MatchedByResult: make([][]string, len(results)),
	}

	matchedAny := make(map[string]struct{})
	for i := range results {
		c := results[i].Chunk()
		matched := score.MatchedTerms(queryText, c.Text())
		stats.MatchedByResult[i] = matched
		for _, t := range matched {
			matchedAny[t] = struct{}{}
		}
	}

	// Report the overall matched set in query-term order for determinism.
	for _, t := range queryTerms {
		if _, ok := matchedAny[t]; ok {
			stats.MatchedTerms = append(stats.MatchedTerms, t)
		}
	}
	return stats
}

func dedupe(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
