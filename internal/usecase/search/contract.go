package search

import (
	"context"

	"github.com/docdex-ai/docdex/internal/domain/chunk"
)

// ChunkStore supplies the current document-chunk collection. It is an
// external collaborator: the engine only reads through it and never mutates
// chunk data. Reads are modeled as already-resident synchronous access.
type ChunkStore interface {
	// ListChunks returns the candidate chunks, restricted to the given
	// document IDs when scope is non-empty. Order must be stable for a
	// given collection version.
	ListChunks(ctx context.Context, scope []string) ([]chunk.Chunk, error)

	// CurrentVersion returns the monotonically increasing collection
	// version. Any mutation of the chunk set increments it.
	CurrentVersion() uint64
}
