package score

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Pool shards embarrassingly-parallel per-chunk scoring across a bounded set
// of workers. Scoring one chunk never blocks on another chunk's scoring.
type Pool struct {
	workers *ants.Pool
}

// NewPool creates a scoring pool with the given worker count.
func NewPool(size int) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	workers, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("create scoring pool: %w", err)
	}
	return &Pool{workers: workers}, nil
}

// ForEach runs fn(i) for each index in [0,n), spread across the pool, and
// waits for all submitted work to finish. Cancellation stops new submissions;
// fn must be safe for concurrent invocation on distinct indices.
func (p *Pool) ForEach(ctx context.Context, n int, fn func(i int)) error {
	var wg sync.WaitGroup
	var submitErr error

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		idx := i
		wg.Add(1)
		if err := p.workers.Submit(func() {
			defer wg.Done()
			fn(idx)
		}); err != nil {
			wg.Done()
			submitErr = fmt.Errorf("submit scoring task: %w", err)
			break
		}
	}

	wg.Wait()

	if submitErr != nil {
		return submitErr
	}
	return ctx.Err()
}

// Release shuts the pool down.
func (p *Pool) Release() {
	p.workers.Release()
}
