// Package cache memoizes search result pages by query fingerprint with
// single-flight computation: for any fingerprint at most one compute runs at
// a time, concurrent callers await it, and callers for different fingerprints
// proceed independently.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/docdex-ai/docdex/internal/domain/search/result"
)

// Entry is one memoized result page.
type Entry struct {
	Fingerprint       string
	Page              result.Page
	CreatedAt         time.Time
	CollectionVersion uint64
}

// Cache is the search result cache. Entries are created on first miss and
// never mutated: a chunk-collection version bump changes every future
// fingerprint, so stale entries simply stop being looked up and age out via
// TTL. Eviction bounds memory; it is not needed for correctness.
type Cache struct {
	entries    *expirable.LRU[string, Entry]
	group      singleflight.Group
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a cache holding up to maxEntries pages for at most ttl each.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"); nil disables it.
func New(maxEntries int, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		entries:    expirable.NewLRU[string, Entry](maxEntries, nil, ttl),
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// GetOrCompute returns the cached page for the fingerprint or runs compute
// exactly once for all concurrent callers of that fingerprint. Failed or
// cancelled computations are never stored, so transient errors are not
// negatively cached. The reported bool is true on a cache hit.
func (c *Cache) GetOrCompute(
	ctx context.Context,
	fingerprint string,
	collectionVersion uint64,
	compute func(context.Context) (result.Page, error),
) (result.Page, bool, error) {
	if entry, ok := c.entries.Get(fingerprint); ok {
		c.incCache("hit")
		return entry.Page, true, nil
	}

	c.incCache("miss")

	v, err, shared := c.group.Do(fingerprint, func() (any, error) {
		// Re-check: another flight may have populated the entry between the
		// lookup above and joining the group.
		if entry, ok := c.entries.Get(fingerprint); ok {
			return entry.Page, nil
		}

		page, err := compute(ctx)
		if err != nil {
			return result.Page{}, err
		}

		// A cancelled computation must not populate the cache: nobody wants
		// the result, and a partially cooperative compute may have stopped early.
		if err := ctx.Err(); err != nil {
			return result.Page{}, err
		}

		c.entries.Add(fingerprint, Entry{
			Fingerprint:       fingerprint,
			Page:              page,
			CreatedAt:         time.Now(),
			CollectionVersion: collectionVersion,
		})
		return page, nil
	})
	if err != nil {
		return result.Page{}, false, fmt.Errorf("compute page: %w", err)
	}

	if shared {
		c.logger.Debug("Joined in-flight search computation",
			zap.String("fingerprint", fingerprint))
	}

	page, ok := v.(result.Page)
	if !ok {
		return result.Page{}, false, fmt.Errorf("unexpected cache value type %T", v)
	}
	return page, false, nil
}

// Len returns the number of live entries.
func (c *Cache) Len() int { return c.entries.Len() }

// Purge drops all entries. Version bumps already make old entries
// unreachable; purging just reclaims their memory immediately.
func (c *Cache) Purge() { c.entries.Purge() }

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
