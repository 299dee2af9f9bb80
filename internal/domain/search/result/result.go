package result

import "github.com/docdex-ai/docdex/internal/domain/chunk"

// Result is a single scored search hit. The fused score is always populated;
// vector and keyword scores are set only when the mode produced them (a zero
// score is legitimate, so absence is tracked separately, never encoded as 0).
type Result struct {
	chunk           chunk.Chunk
	vectorScore     float64
	hasVectorScore  bool
	keywordScore    float64
	hasKeywordScore bool
	fusedScore      float64
}

// New creates a result carrying only a fused score.
func New(c chunk.Chunk, fusedScore float64) Result {
	return Result{chunk: c, fusedScore: fusedScore}
}

// WithVectorScore returns a copy with the vector component score set.
func (r Result) WithVectorScore(s float64) Result {
	r.vectorScore = s
	r.hasVectorScore = true
	return r
}

// WithKeywordScore returns a copy with the keyword component score set.
func (r Result) WithKeywordScore(s float64) Result {
	r.keywordScore = s
	r.hasKeywordScore = true
	return r
}

// WithFusedScore returns a copy with the fused score replaced.
func (r Result) WithFusedScore(s float64) Result {
	r.fusedScore = s
	return r
}

// Chunk returns the matched chunk.
func (r *Result) Chunk() chunk.Chunk { return r.chunk }

// VectorScore returns the cosine similarity component, if the mode computed one.
func (r *Result) VectorScore() (float64, bool) { return r.vectorScore, r.hasVectorScore }

// KeywordScore returns the lexical relevance component, if the mode computed one.
func (r *Result) KeywordScore() (float64, bool) { return r.keywordScore, r.hasKeywordScore }

// FusedScore returns the final ranking score.
func (r *Result) FusedScore() float64 { return r.fusedScore }

// Less orders results descending by fused score, breaking ties by ascending
// (documentID, page). Rank order across the engine derives from this single rule.
func (r *Result) Less(other *Result) bool {
	if r.fusedScore != other.fusedScore {
		return r.fusedScore > other.fusedScore
	}
	c, o := r.chunk, other.chunk
	return c.Less(&o)
}

// Page is one ranked slice of results plus pagination bookkeeping.
// Results are in rank order; TotalMatched counts matches after filtering and
// before pagination.
type Page struct {
	Results      []Result
	TotalMatched int
	HasMore      bool
}
