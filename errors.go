package docdex

import "github.com/docdex-ai/docdex/internal/domain"

// Sentinel errors returned by Engine operations. Match with errors.Is.
var (
	// ErrInvalidQuery signals a query missing a field required by its mode.
	ErrInvalidQuery = domain.ErrInvalidQuery
	// ErrDimensionMismatch signals a query/chunk embedding length mismatch.
	ErrDimensionMismatch = domain.ErrDimensionMismatch
	// ErrCancelled signals a search superseded or abandoned by its caller.
	ErrCancelled = domain.ErrCancelled
	// ErrAllCandidatesFailed signals that every candidate chunk failed scoring.
	ErrAllCandidatesFailed = domain.ErrAllCandidatesFailed
)
