package score

import (
	"errors"
	"math"
	"testing"

	"github.com/docdex-ai/docdex/internal/domain"
)

func TestCosine_SelfSimilarity(t *testing.T) {
	v := []float32{0.3, 0.5, 0.8}
	got, err := Cosine(v, v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("expected self similarity 1, got %g", got)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	got, err := Cosine([]float32{1, 0}, []float32{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 0 for orthogonal vectors, got %g", got)
	}
}

func TestCosine_Opposite(t *testing.T) {
	got, err := Cosine([]float32{1, 2}, []float32{-1, -2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got+1) > 1e-9 {
		t.Errorf("expected -1 for opposite vectors, got %g", got)
	}
}

func TestCosine_Symmetric(t *testing.T) {
	a := []float32{0.1, 0.9, 0.4}
	b := []float32{0.7, 0.2, 0.5}
	ab, err := Cosine(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := Cosine(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ab != ba {
		t.Errorf("cosine not symmetric: %g vs %g", ab, ba)
	}
}

func TestCosine_ZeroNormIsZero(t *testing.T) {
	got, err := Cosine([]float32{0, 0, 0}, []float32{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 0 for zero-norm vector, got %g", got)
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCosine_BoundedRange(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0}, {0.5, 0.5, 0.5}, {-1, 2, -3}, {0.01, 0.99, 0.3},
	}
	for _, a := range vectors {
		for _, b := range vectors {
			got, err := Cosine(a, b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got < -1-1e-9 || got > 1+1e-9 {
				t.Errorf("cosine(%v, %v) = %g out of [-1,1]", a, b, got)
			}
		}
	}
}
