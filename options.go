package docdex

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ChunkStore supplies the candidate chunks for a search. Implementations must
// bump CurrentVersion on every content change; cached result pages are keyed
// by it. An empty scope means all documents; a non-empty scope restricts the
// listing to those document IDs.
type ChunkStore interface {
	ListChunks(ctx context.Context, scope []string) ([]Chunk, error)
	CurrentVersion() uint64
}

// Option configures the Engine.
type Option interface {
	apply(*engineConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*engineConfig)

func (f optionFunc) apply(c *engineConfig) { f(c) }

type engineConfig struct {
	vectorWeight  float64
	keywordWeight float64

	cacheTTL     time.Duration
	cacheEntries int

	poolSize int

	store  ChunkStore
	logger *zap.Logger
}

// WithFusionWeights sets the hybrid blend weights. They must be non-negative
// and sum to 1. The default is 0.5/0.5.
func WithFusionWeights(vector, keyword float64) Option {
	return optionFunc(func(c *engineConfig) {
		c.vectorWeight = vector
		c.keywordWeight = keyword
	})
}

// WithCacheTTL sets how long cached result pages stay valid. The default is
// 15 minutes. Ingest and Invalidate drop cached pages regardless of TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *engineConfig) {
		c.cacheTTL = ttl
	})
}

// WithCacheSize bounds the number of cached result pages. The default is 1024.
func WithCacheSize(entries int) Option {
	return optionFunc(func(c *engineConfig) {
		c.cacheEntries = entries
	})
}

// WithPoolSize sets the scoring worker pool size. The default is the number
// of CPUs.
func WithPoolSize(size int) Option {
	return optionFunc(func(c *engineConfig) {
		c.poolSize = size
	})
}

// WithChunkStore replaces the built-in in-memory chunk store. Engines built
// with a custom store reject Ingest and Delete; manage chunks through the
// store and bump its version to invalidate cached pages.
func WithChunkStore(store ChunkStore) Option {
	return optionFunc(func(c *engineConfig) {
		c.store = store
	})
}

// WithLogger sets the engine logger. The default discards all output.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(c *engineConfig) {
		c.logger = logger
	})
}
