package docdex

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/docdex-ai/docdex/internal/cache"
	"github.com/docdex-ai/docdex/internal/domain/chunk"
	"github.com/docdex-ai/docdex/internal/metrics"
	"github.com/docdex-ai/docdex/internal/repository/memstore"
	"github.com/docdex-ai/docdex/internal/usecase/analytics"
	"github.com/docdex-ai/docdex/internal/usecase/fuse"
	"github.com/docdex-ai/docdex/internal/usecase/score"
	searchuc "github.com/docdex-ai/docdex/internal/usecase/search"
)

const (
	defaultCacheTTL     = 15 * time.Minute
	defaultCacheEntries = 1024
)

// Engine is the embedded search engine entry point. Safe for concurrent use.
type Engine struct {
	store     *memstore.Store // nil when a custom ChunkStore is supplied
	search    *searchuc.Service
	analytics *analytics.Service
	pool      *score.Pool
}

// New creates an Engine. Without options it uses an empty in-memory chunk
// store, equal fusion weights, and a 15-minute cache.
func New(opts ...Option) (*Engine, error) {
	cfg := &engineConfig{
		vectorWeight:  0.5,
		keywordWeight: 0.5,
		cacheTTL:      defaultCacheTTL,
		cacheEntries:  defaultCacheEntries,
		logger:        zap.NewNop(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	fuseCfg := fuse.Config{
		VectorWeight:  cfg.vectorWeight,
		KeywordWeight: cfg.keywordWeight,
		Normalization: fuse.MinMax,
	}
	if err := fuseCfg.Validate(); err != nil {
		return nil, fmt.Errorf("docdex: %w", err)
	}
	if cfg.cacheTTL <= 0 {
		return nil, errors.New("docdex: cache TTL must be positive")
	}

	if cfg.poolSize <= 0 {
		cfg.poolSize = runtime.NumCPU()
	}
	pool, err := score.NewPool(cfg.poolSize)
	if err != nil {
		return nil, fmt.Errorf("docdex: create scoring pool: %w", err)
	}

	e := &Engine{
		analytics: analytics.New(),
		pool:      pool,
	}

	var store searchuc.ChunkStore
	if cfg.store != nil {
		store = &storeAdapter{inner: cfg.store}
	} else {
		e.store = memstore.New()
		store = e.store
	}

	c := cache.New(cfg.cacheEntries, cfg.cacheTTL, metrics.SearchCacheTotal, cfg.logger)
	e.search = searchuc.New(store, c, pool, fuseCfg, cfg.logger)

	return e, nil
}

// Ingest upserts chunks into the built-in store, replacing each named
// document's chunks wholesale, and drops all cached pages. It returns an
// error when the Engine was built with a custom ChunkStore.
func (e *Engine) Ingest(chunks []Chunk) error {
	if e.store == nil {
		return errors.New("docdex: engine uses a custom ChunkStore; ingest through it")
	}
	e.store.Put(toInternalChunks(chunks))
	e.search.Invalidate()
	return nil
}

// Delete removes all chunks of the named documents from the built-in store
// and drops all cached pages.
func (e *Engine) Delete(documentIDs ...string) error {
	if e.store == nil {
		return errors.New("docdex: engine uses a custom ChunkStore; delete through it")
	}
	e.store.Delete(documentIDs...)
	e.search.Invalidate()
	return nil
}

// Search runs a query and returns the requested page of ranked results.
func (e *Engine) Search(ctx context.Context, q Query) (Page, error) {
	iq, err := toInternalQuery(q)
	if err != nil {
		return Page{}, err
	}
	p, err := e.search.Search(ctx, &iq)
	if err != nil {
		return Page{}, err
	}
	return fromInternalPage(p), nil
}

// Analyze runs a query and returns statistics over the visible page instead
// of the results themselves. A repeated query is served from the same cached
// page Search uses.
func (e *Engine) Analyze(ctx context.Context, q Query) (Report, error) {
	iq, err := toInternalQuery(q)
	if err != nil {
		return Report{}, err
	}
	p, err := e.search.Search(ctx, &iq)
	if err != nil {
		return Report{}, err
	}
	return fromInternalReport(e.analytics.Analyze(p, &iq)), nil
}

// Invalidate drops all cached result pages. Later searches recompute even if
// the chunk store version is unchanged.
func (e *Engine) Invalidate() {
	e.search.Invalidate()
}

// Close releases the scoring pool. The Engine must not be used after Close.
func (e *Engine) Close() {
	e.pool.Release()
}

// storeAdapter bridges the public ChunkStore to the internal contract.
type storeAdapter struct {
	inner ChunkStore
}

func (a *storeAdapter) ListChunks(ctx context.Context, scope []string) ([]chunk.Chunk, error) {
	chunks, err := a.inner.ListChunks(ctx, scope)
	if err != nil {
		return nil, err
	}
	return toInternalChunks(chunks), nil
}

func (a *storeAdapter) CurrentVersion() uint64 {
	return a.inner.CurrentVersion()
}
