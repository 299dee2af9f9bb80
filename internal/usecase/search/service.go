// Package search orchestrates one request/response cycle per query:
// cache check, parallel vector/keyword scoring, fusion, filtering,
// pagination, and cache population.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/docdex-ai/docdex/internal/cache"
	"github.com/docdex-ai/docdex/internal/domain"
	"github.com/docdex-ai/docdex/internal/domain/chunk"
	"github.com/docdex-ai/docdex/internal/domain/search/query"
	"github.com/docdex-ai/docdex/internal/domain/search/result"
	"github.com/docdex-ai/docdex/internal/metrics"
	"github.com/docdex-ai/docdex/internal/usecase/fuse"
	pagination "github.com/docdex-ai/docdex/internal/usecase/page"
	"github.com/docdex-ai/docdex/internal/usecase/score"
)

// Service is the search orchestrator. It is stateless across requests apart
// from the invalidation epoch; all memoization lives in the cache.
type Service struct {
	store   ChunkStore
	cache   *cache.Cache
	pool    *score.Pool
	fuseCfg fuse.Config
	logger  *zap.Logger

	// epoch is bumped by Invalidate to force recomputation even when the
	// chunk store reports an unchanged version (e.g. after bulk re-ingestion
	// the store cannot observe).
	epoch atomic.Uint64
}

// New creates a search orchestrator.
func New(store ChunkStore, c *cache.Cache, pool *score.Pool, fuseCfg fuse.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:   store,
		cache:   c,
		pool:    pool,
		fuseCfg: fuseCfg,
		logger:  logger,
	}
}

// Search executes one query. Identical queries against an unchanged chunk
// collection return the cached page; concurrent identical queries share a
// single computation. A computation that fails or is cancelled leaves the
// cache untouched.
func (s *Service) Search(ctx context.Context, q *query.Query) (result.Page, error) {
	start := time.Now()

	version := s.store.CurrentVersion()
	fingerprint := cache.Fingerprint(q, version, s.epoch.Load())

	page, hit, err := s.cache.GetOrCompute(ctx, fingerprint, version,
		func(ctx context.Context) (result.Page, error) {
			return s.compute(ctx, q)
		})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return result.Page{}, fmt.Errorf("%w: %w", domain.ErrCancelled, err)
		}
		var stageErr *domain.StageError
		if errors.As(err, &stageErr) {
			metrics.SearchErrorsTotal.WithLabelValues(stageErr.Stage).Inc()
		} else {
			metrics.SearchErrorsTotal.WithLabelValues(domain.StageCache).Inc()
		}
		return result.Page{}, err
	}

	metrics.SearchDuration.WithLabelValues(string(q.Mode())).Observe(time.Since(start).Seconds())

	s.logger.Debug("Search completed",
		zap.String("mode", string(q.Mode())),
		zap.Bool("cache_hit", hit),
		zap.Int("total_matched", page.TotalMatched),
		zap.Int("page_size", len(page.Results)),
		zap.Uint64("collection_version", version),
	)
	return page, nil
}

// Invalidate forces a fingerprint epoch bump, implicitly invalidating every
// cached page, and purges the cache storage to reclaim memory.
func (s *Service) Invalidate() {
	s.epoch.Add(1)
	s.cache.Purge()
}

// compute runs the scoring, fusing, and filtering stages for a cache miss.
func (s *Service) compute(ctx context.Context, q *query.Query) (result.Page, error) {
	chunks, err := s.store.ListChunks(ctx, q.Scope())
	if err != nil {
		return result.Page{}, domain.NewStageError(domain.StageScoring,
			fmt.Errorf("list chunks: %w", err))
	}

	candidates := make([]fuse.Candidate, len(chunks))
	for i := range chunks {
		candidates[i].Chunk = chunks[i]
	}

	// Vector and keyword branches run as independent parallel tasks joined
	// at a barrier. Each branch writes a distinct candidate field, so they
	// share the slice without synchronization.
	g, gctx := errgroup.WithContext(ctx)
	if q.Mode().UsesVector() {
		g.Go(func() error {
			return s.scoreVector(gctx, q, chunks, candidates)
		})
	}
	if q.Mode().UsesKeyword() {
		g.Go(func() error {
			return s.scoreKeyword(gctx, q, chunks, candidates)
		})
	}
	if err := g.Wait(); err != nil {
		return result.Page{}, domain.NewStageError(domain.StageScoring, err)
	}

	// Cancellation token check at the fan-in barrier: a superseded query
	// stops here instead of producing a page nobody wants.
	if err := ctx.Err(); err != nil {
		return result.Page{}, err
	}

	fused := fuse.Fuse(candidates, q.Mode(), s.fuseCfg)
	return pagination.Apply(fused, q), nil
}

// scoreVector computes cosine similarities for the vector branch. A chunk
// whose embedding length differs from the query's is excluded and logged,
// not silently zero-scored: masking it would hide ingestion bugs. Only a
// fully failed candidate set aborts the query.
func (s *Service) scoreVector(ctx context.Context, q *query.Query, chunks []chunk.Chunk, candidates []fuse.Candidate) error {
	var skipped atomic.Int64

	err := s.pool.ForEach(ctx, len(chunks), func(i int) {
		sim, err := score.Cosine(q.Embedding(), chunks[i].Embedding())
		if err != nil {
			skipped.Add(1)
			metrics.SearchSkippedChunksTotal.WithLabelValues("dimension_mismatch").Inc()
			s.logger.Warn("Excluding chunk from vector branch",
				zap.String("document_id", chunks[i].DocumentID()),
				zap.Int("page", chunks[i].Page()),
				zap.Error(err),
			)
			return
		}
		candidates[i].VectorScore = &sim
	})
	if err != nil {
		return err
	}

	if n := int(skipped.Load()); n > 0 && n == len(chunks) {
		return fmt.Errorf("%w: %w", domain.ErrAllCandidatesFailed, domain.ErrDimensionMismatch)
	}
	return nil
}

// scoreKeyword computes lexical relevance for the keyword branch. Term
// statistics are built over the candidate set so inverse document
// frequencies track the current collection.
func (s *Service) scoreKeyword(ctx context.Context, q *query.Query, chunks []chunk.Chunk, candidates []fuse.Candidate) error {
	scorer := score.NewKeywordScorer(chunks)

	return s.pool.ForEach(ctx, len(chunks), func(i int) {
		rel := scorer.Score(q.Text(), chunks[i].Text())
		candidates[i].KeywordScore = &rel
	})
}
