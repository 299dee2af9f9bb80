package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ChunkCounter reports chunk store population.
type ChunkCounter interface {
	ChunkCount() int
}
