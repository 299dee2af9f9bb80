package score

import (
	"math"
	"strings"
	"unicode"

	"github.com/docdex-ai/docdex/internal/domain/chunk"
)

// Tokenize splits text into case-folded terms on any non-letter, non-digit
// rune. The rule is fixed so that scores, matching stats, and cached pages
// stay reproducible across runs.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// termSet returns the distinct terms of text.
func termSet(text string) map[string]struct{} {
	terms := Tokenize(text)
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}

// KeywordScorer computes lexical relevance in [0,1]: the IDF-weighted share of
// query terms present in a chunk. Inverse document frequencies come from the
// candidate chunk set the scorer was built over, so rare terms weigh more than
// ubiquitous ones. The score is monotonic in shared-term count and exactly 0
// when no query term appears in the chunk.
type KeywordScorer struct {
	docFreq map[string]int
	total   int
}

// NewKeywordScorer builds term statistics over the candidate chunk set.
func NewKeywordScorer(chunks []chunk.Chunk) *KeywordScorer {
	df := make(map[string]int)
	for i := range chunks {
		for t := range termSet(chunks[i].Text()) {
			df[t]++
		}
	}
	return &KeywordScorer{docFreq: df, total: len(chunks)}
}

// idf uses the smoothed formulation ln(1 + N/(1+df)) so terms absent from the
// corpus still carry a positive weight.
func (s *KeywordScorer) idf(term string) float64 {
	return math.Log(1 + float64(s.total)/float64(1+s.docFreq[term]))
}

// Score returns the relevance of chunkText to queryText.
func (s *KeywordScorer) Score(queryText, chunkText string) float64 {
	queryTerms := termSet(queryText)
	if len(queryTerms) == 0 {
		return 0
	}
	chunkTerms := termSet(chunkText)

	var matched, possible float64
	for t := range queryTerms {
		w := s.idf(t)
		possible += w
		if _, ok := chunkTerms[t]; ok {
			matched += w
		}
	}
	if possible == 0 {
		return 0
	}
	return matched / possible
}

// MatchedTerms returns the query terms present in text, in query-token order
// with duplicates removed. Feeds the analytics matching stats.
func MatchedTerms(queryText, text string) []string {
	textTerms := termSet(text)
	seen := make(map[string]struct{})
	var matched []string
	for _, t := range Tokenize(queryText) {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := textTerms[t]; ok {
			matched = append(matched, t)
		}
	}
	return matched
}
