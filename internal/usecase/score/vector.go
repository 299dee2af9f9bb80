package score

import (
	"fmt"
	"math"

	"github.com/docdex-ai/docdex/internal/domain"
)

// Cosine returns the cosine similarity of two embeddings: dot product divided
// by the product of their L2 norms. Pure and deterministic.
// A zero-norm vector carries no directional information, so pairing one gives
// 0 rather than an error. Mismatched lengths fail with ErrDimensionMismatch.
func Cosine(query, chunk []float32) (float64, error) {
	if len(query) != len(chunk) {
		return 0, fmt.Errorf("%w: query dim %d, chunk dim %d",
			domain.ErrDimensionMismatch, len(query), len(chunk))
	}

	var dot, qNorm, cNorm float64
	for i := range query {
		q := float64(query[i])
		c := float64(chunk[i])
		dot += q * c
		qNorm += q * q
		cNorm += c * c
	}

	if qNorm == 0 || cNorm == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(qNorm) * math.Sqrt(cNorm)), nil
}
