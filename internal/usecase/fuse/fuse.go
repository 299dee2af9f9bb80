// Package fuse combines per-chunk vector and keyword scores into one ranking
// score per the active search mode.
package fuse

import (
	"fmt"

	"github.com/docdex-ai/docdex/internal/domain/chunk"
	"github.com/docdex-ai/docdex/internal/domain/search/mode"
	"github.com/docdex-ai/docdex/internal/domain/search/result"
)

// Normalization selects how component scores are rescaled before blending.
type Normalization string

// Supported normalization methods.
const (
	// MinMax rescales each component to [0,1] across the candidate set,
	// guarding against vector and keyword scores having incomparable ranges.
	MinMax Normalization = "minmax"
	None   Normalization = "none"
)

// Config holds the hybrid fusion settings. Weights and normalization are
// explicit configuration, not hidden constants.
type Config struct {
	VectorWeight  float64
	KeywordWeight float64
	Normalization Normalization
}

// DefaultConfig returns equal weighting with min-max normalization.
func DefaultConfig() Config {
	return Config{VectorWeight: 0.5, KeywordWeight: 0.5, Normalization: MinMax}
}

// Validate checks the fusion settings.
func (c Config) Validate() error {
	if c.VectorWeight < 0 || c.KeywordWeight < 0 {
		return fmt.Errorf("fusion weights must not be negative")
	}
	if sum := c.VectorWeight + c.KeywordWeight; sum < 1-1e-9 || sum > 1+1e-9 {
		return fmt.Errorf("fusion weights must sum to 1, got %g", sum)
	}
	switch c.Normalization {
	case MinMax, None:
		return nil
	default:
		return fmt.Errorf("unknown normalization %q", c.Normalization)
	}
}

// Candidate carries the component scores one query produced for one chunk.
// A nil component means the branch did not score the chunk: either the mode
// skipped that branch, or the chunk was excluded (dimension mismatch).
type Candidate struct {
	Chunk        chunk.Chunk
	VectorScore  *float64
	KeywordScore *float64
}

// Fuse assigns a fused score to every candidate per the mode rule:
//
//	vector:  fused = vectorScore (candidates without one are dropped)
//	keyword: fused = keywordScore
//	hybrid:  fused = w_v*norm(vectorScore) + w_k*norm(keywordScore)
//
// In hybrid mode a candidate excluded from the vector branch keeps only its
// keyword component rather than masking the exclusion with a zero similarity.
// Output order is unspecified; ranking is the paginator's concern.
func Fuse(candidates []Candidate, m mode.Mode, cfg Config) []result.Result {
	switch m {
	case mode.Vector:
		return fuseSingle(candidates, vectorComponent, result.Result.WithVectorScore)
	case mode.Keyword:
		return fuseSingle(candidates, keywordComponent, result.Result.WithKeywordScore)
	default:
		return fuseHybrid(candidates, cfg)
	}
}

func vectorComponent(c *Candidate) *float64  { return c.VectorScore }
func keywordComponent(c *Candidate) *float64 { return c.KeywordScore }

// fuseSingle passes one component score through as the fused score.
func fuseSingle(
	candidates []Candidate,
	component func(*Candidate) *float64,
	with func(result.Result, float64) result.Result,
) []result.Result {
	results := make([]result.Result, 0, len(candidates))
	for i := range candidates {
		s := component(&candidates[i])
		if s == nil {
			continue
		}
		results = append(results, with(result.New(candidates[i].Chunk, *s), *s))
	}
	return results
}

func fuseHybrid(candidates []Candidate, cfg Config) []result.Result {
	normVec := normalizer(candidates, vectorComponent, cfg.Normalization)
	normKey := normalizer(candidates, keywordComponent, cfg.Normalization)

	results := make([]result.Result, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if c.VectorScore == nil && c.KeywordScore == nil {
			continue
		}

		var fused float64
		r := result.New(c.Chunk, 0)
		if c.VectorScore != nil {
			fused += cfg.VectorWeight * normVec(*c.VectorScore)
			r = r.WithVectorScore(*c.VectorScore)
		}
		if c.KeywordScore != nil {
			fused += cfg.KeywordWeight * normKey(*c.KeywordScore)
			r = r.WithKeywordScore(*c.KeywordScore)
		}
		results = append(results, r.WithFusedScore(fused))
	}
	return results
}

// normalizer returns a min-max rescaling function over the candidates that
// carry the given component. A degenerate range (all scores equal) maps to 1
// so a uniform branch neither boosts nor buries any candidate.
func normalizer(
	candidates []Candidate,
	component func(*Candidate) *float64,
	method Normalization,
) func(float64) float64 {
	identity := func(s float64) float64 { return s }
	if method == None {
		return identity
	}

	first := true
	var lo, hi float64
	for i := range candidates {
		s := component(&candidates[i])
		if s == nil {
			continue
		}
		if first {
			lo, hi = *s, *s
			first = false
			continue
		}
		if *s < lo {
			lo = *s
		}
		if *s > hi {
			hi = *s
		}
	}
	if first {
		return identity
	}
	if hi == lo {
		return func(float64) float64 { return 1 }
	}
	return func(s float64) float64 { return (s - lo) / (hi - lo) }
}
