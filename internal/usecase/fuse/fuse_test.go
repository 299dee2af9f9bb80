package fuse

import (
	"math"
	"testing"

	"github.com/docdex-ai/docdex/internal/domain/chunk"
	"github.com/docdex-ai/docdex/internal/domain/search/mode"
	"github.com/docdex-ai/docdex/internal/domain/search/result"
)

func f(v float64) *float64 { return &v }

func candidate(id string, page int, vec, key *float64) Candidate {
	return Candidate{
		Chunk:        chunk.New(id, page, "text", nil, nil),
		VectorScore:  vec,
		KeywordScore: key,
	}
}

func findResult(t *testing.T, results []result.Result, id string, page int) result.Result {
	t.Helper()
	for i := range results {
		c := results[i].Chunk()
		if c.DocumentID() == id && c.Page() == page {
			return results[i]
		}
	}
	t.Fatalf("result %s p%d not found", id, page)
	return result.Result{}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	bad := []Config{
		{VectorWeight: 0.7, KeywordWeight: 0.7, Normalization: MinMax},
		{VectorWeight: -0.5, KeywordWeight: 1.5, Normalization: MinMax},
		{VectorWeight: 0.5, KeywordWeight: 0.5, Normalization: "zscore"},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected %+v to be rejected", cfg)
		}
	}
}

func TestFuse_VectorMode(t *testing.T) {
	candidates := []Candidate{
		candidate("a", 1, f(0.9), nil),
		candidate("b", 1, nil, nil), // excluded from the branch
	}
	results := Fuse(candidates, mode.Vector, DefaultConfig())
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := findResult(t, results, "a", 1)
	if r.FusedScore() != 0.9 {
		t.Errorf("expected fused 0.9, got %g", r.FusedScore())
	}
	if s, ok := r.VectorScore(); !ok || s != 0.9 {
		t.Errorf("expected vector component 0.9, got %g (present=%v)", s, ok)
	}
	if _, ok := r.KeywordScore(); ok {
		t.Error("keyword component should be absent in vector mode")
	}
}

func TestFuse_KeywordMode(t *testing.T) {
	candidates := []Candidate{
		candidate("a", 1, nil, f(0.6)),
		candidate("b", 2, nil, f(0)),
	}
	results := Fuse(candidates, mode.Keyword, DefaultConfig())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if r := findResult(t, results, "b", 2); r.FusedScore() != 0 {
		t.Errorf("a zero keyword score is a real score, got fused %g", r.FusedScore())
	}
}

func TestFuse_HybridMinMax(t *testing.T) {
	// vector range [0.2, 0.8], keyword range [0.1, 0.5]
	candidates := []Candidate{
		candidate("a", 1, f(0.8), f(0.1)),
		candidate("b", 1, f(0.2), f(0.5)),
		candidate("c", 1, f(0.5), f(0.3)),
	}
	results := Fuse(candidates, mode.Hybrid, DefaultConfig())
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// a: 0.5*1.0 + 0.5*0.0 = 0.5
	// b: 0.5*0.0 + 0.5*1.0 = 0.5
	// c: 0.5*0.5 + 0.5*0.5 = 0.5
	for _, id := range []string{"a", "b", "c"} {
		r := findResult(t, results, id, 1)
		if math.Abs(r.FusedScore()-0.5) > 1e-9 {
			t.Errorf("%s: expected fused 0.5, got %g", id, r.FusedScore())
		}
	}
}

func TestFuse_HybridWeighted(t *testing.T) {
	cfg := Config{VectorWeight: 0.75, KeywordWeight: 0.25, Normalization: MinMax}
	candidates := []Candidate{
		candidate("a", 1, f(1.0), f(0.0)),
		candidate("b", 1, f(0.0), f(1.0)),
	}
	results := Fuse(candidates, mode.Hybrid, cfg)

	a := findResult(t, results, "a", 1)
	b := findResult(t, results, "b", 1)
	if math.Abs(a.FusedScore()-0.75) > 1e-9 {
		t.Errorf("a: expected 0.75, got %g", a.FusedScore())
	}
	if math.Abs(b.FusedScore()-0.25) > 1e-9 {
		t.Errorf("b: expected 0.25, got %g", b.FusedScore())
	}
}

func TestFuse_HybridDegenerateRange(t *testing.T) {
	// All components equal: min-max range is empty, every score maps to 1.
	candidates := []Candidate{
		candidate("a", 1, f(0.4), f(0.2)),
		candidate("b", 1, f(0.4), f(0.2)),
	}
	results := Fuse(candidates, mode.Hybrid, DefaultConfig())
	for _, id := range []string{"a", "b"} {
		r := findResult(t, results, id, 1)
		if math.Abs(r.FusedScore()-1) > 1e-9 {
			t.Errorf("%s: expected fused 1 for uniform components, got %g", id, r.FusedScore())
		}
	}
}

func TestFuse_HybridMissingVectorComponent(t *testing.T) {
	// A candidate skipped by the vector branch keeps its keyword contribution.
	candidates := []Candidate{
		candidate("a", 1, f(0.9), f(0.4)),
		candidate("b", 1, nil, f(0.8)),
		candidate("c", 1, f(0.1), f(0.2)),
	}
	results := Fuse(candidates, mode.Hybrid, DefaultConfig())
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	b := findResult(t, results, "b", 1)
	// keyword range [0.2, 0.8]: b normalizes to 1.0, contributing 0.5*1.0.
	if math.Abs(b.FusedScore()-0.5) > 1e-9 {
		t.Errorf("expected keyword-only fused 0.5, got %g", b.FusedScore())
	}
	if _, ok := b.VectorScore(); ok {
		t.Error("vector component should stay absent for the skipped candidate")
	}
}

func TestFuse_HybridDropsFullyUnscored(t *testing.T) {
	candidates := []Candidate{
		candidate("a", 1, f(0.5), f(0.5)),
		candidate("b", 1, nil, nil),
	}
	results := Fuse(candidates, mode.Hybrid, DefaultConfig())
	if len(results) != 1 {
		t.Fatalf("expected unscored candidate dropped, got %d results", len(results))
	}
}

func TestFuse_NoNormalization(t *testing.T) {
	cfg := Config{VectorWeight: 0.5, KeywordWeight: 0.5, Normalization: None}
	candidates := []Candidate{
		candidate("a", 1, f(0.8), f(0.4)),
		candidate("b", 1, f(0.2), f(0.6)),
	}
	results := Fuse(candidates, mode.Hybrid, cfg)

	a := findResult(t, results, "a", 1)
	if math.Abs(a.FusedScore()-0.6) > 1e-9 {
		t.Errorf("expected raw blend 0.6, got %g", a.FusedScore())
	}
}

func TestFuse_EmptyInput(t *testing.T) {
	if results := Fuse(nil, mode.Hybrid, DefaultConfig()); len(results) != 0 {
		t.Errorf("expected empty output, got %d results", len(results))
	}
}
