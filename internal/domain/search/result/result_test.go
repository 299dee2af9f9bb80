package result

import (
	"testing"

	"github.com/docdex-ai/docdex/internal/domain/chunk"
)

func TestLess_ScoreDominates(t *testing.T) {
	high := New(chunk.New("z", 9, "", nil, nil), 0.9)
	low := New(chunk.New("a", 1, "", nil, nil), 0.5)
	if !high.Less(&low) {
		t.Error("higher fused score must rank first regardless of identity")
	}
	if low.Less(&high) {
		t.Error("lower fused score must not rank first")
	}
}

func TestLess_TieBreak(t *testing.T) {
	doc1p1 := New(chunk.New("doc1", 1, "", nil, nil), 0.5)
	doc1p2 := New(chunk.New("doc1", 2, "", nil, nil), 0.5)
	doc2p1 := New(chunk.New("doc2", 1, "", nil, nil), 0.5)

	if !doc1p1.Less(&doc1p2) {
		t.Error("equal scores: lower page ranks first")
	}
	if !doc1p2.Less(&doc2p1) {
		t.Error("equal scores: lower documentID ranks first")
	}
	if doc2p1.Less(&doc1p1) {
		t.Error("ordering must be asymmetric")
	}
}

func TestComponentScores_AbsenceTracked(t *testing.T) {
	r := New(chunk.New("doc", 1, "", nil, nil), 0.3)
	if _, ok := r.VectorScore(); ok {
		t.Error("vector score should be absent")
	}
	if _, ok := r.KeywordScore(); ok {
		t.Error("keyword score should be absent")
	}

	r = r.WithVectorScore(0).WithKeywordScore(0)
	if s, ok := r.VectorScore(); !ok || s != 0 {
		t.Error("a zero vector score is a real score")
	}
	if s, ok := r.KeywordScore(); !ok || s != 0 {
		t.Error("a zero keyword score is a real score")
	}
}

func TestWithFusedScore(t *testing.T) {
	r := New(chunk.New("doc", 1, "", nil, nil), 0.3).WithFusedScore(0.8)
	if r.FusedScore() != 0.8 {
		t.Errorf("expected 0.8, got %g", r.FusedScore())
	}
}
