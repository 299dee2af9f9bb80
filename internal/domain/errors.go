package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery signals a query missing a field required by its mode.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrDimensionMismatch signals a query/chunk embedding length mismatch.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrCancelled signals a search superseded or abandoned by its caller.
	ErrCancelled = errors.New("search cancelled")
	// ErrAllCandidatesFailed signals that every candidate chunk failed scoring.
	ErrAllCandidatesFailed = errors.New("all candidates failed scoring")
	// ErrStoreUnavailable signals an unreachable backing store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// Search pipeline stages, reported by StageError.
const (
	StageScoring   = "scoring"
	StageFusing    = "fusing"
	StageFiltering = "filtering"
	StageCache     = "cache"
)

// StageError wraps a search failure with the pipeline stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("search failed at %s: %s", e.Stage, e.Err.Error())
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err with the failing stage identified.
func NewStageError(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}
