package search

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/docdex-ai/docdex/internal/cache"
	"github.com/docdex-ai/docdex/internal/domain"
	"github.com/docdex-ai/docdex/internal/domain/chunk"
	"github.com/docdex-ai/docdex/internal/domain/search/mode"
	"github.com/docdex-ai/docdex/internal/domain/search/query"
	"github.com/docdex-ai/docdex/internal/usecase/fuse"
	"github.com/docdex-ai/docdex/internal/usecase/score"
)

// --- Mocks ---

type mockStore struct {
	chunks  []chunk.Chunk
	listErr error
	version atomic.Uint64
	calls   atomic.Int32
}

func (m *mockStore) ListChunks(_ context.Context, _ []string) ([]chunk.Chunk, error) {
	m.calls.Add(1)
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]chunk.Chunk, len(m.chunks))
	copy(out, m.chunks)
	return out, nil
}

func (m *mockStore) CurrentVersion() uint64 {
	return m.version.Load()
}

// --- Helpers ---

func newService(t *testing.T, store ChunkStore) *Service {
	t.Helper()
	pool, err := score.NewPool(4)
	if err != nil {
		t.Fatalf("score.NewPool: %v", err)
	}
	t.Cleanup(pool.Release)
	c := cache.New(64, time.Minute, nil, nil)
	return New(store, c, pool, fuse.DefaultConfig(), nil)
}

func makeQuery(t *testing.T, text string, embedding []float32, m mode.Mode) *query.Query {
	t.Helper()
	q, err := query.New(text, embedding, m, 10, nil, nil, 0)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return &q
}

func testChunks() []chunk.Chunk {
	return []chunk.Chunk{
		chunk.New("doc1", 1, "cat dog", []float32{1, 0}, nil),
		chunk.New("doc1", 2, "cat", []float32{0.9, 0.1}, nil),
		chunk.New("doc2", 1, "dog", []float32{0, 1}, nil),
	}
}

func resultIDs(svc *Service, t *testing.T, q *query.Query) []string {
	t.Helper()
	page, err := svc.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	ids := make([]string, len(page.Results))
	for i := range page.Results {
		c := page.Results[i].Chunk()
		ids[i] = c.DocumentID()
	}
	return ids
}

// --- Tests ---

func TestSearch_KeywordMode(t *testing.T) {
	store := &mockStore{chunks: testChunks()}
	svc := newService(t, store)

	page, err := svc.Search(context.Background(), makeQuery(t, "cat", nil, mode.Keyword))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.TotalMatched != 3 {
		t.Fatalf("expected 3 scored chunks, got %d", page.TotalMatched)
	}

	// Both "cat" chunks score 1.0 and outrank the miss; the tie breaks by
	// ascending (documentID, page).
	first := page.Results[0].Chunk()
	second := page.Results[1].Chunk()
	if first.DocumentID() != "doc1" || first.Page() != 1 {
		t.Errorf("rank 0: got %s p%d", first.DocumentID(), first.Page())
	}
	if second.DocumentID() != "doc1" || second.Page() != 2 {
		t.Errorf("rank 1: got %s p%d", second.DocumentID(), second.Page())
	}
	if page.Results[0].FusedScore() != 1 || page.Results[1].FusedScore() != 1 {
		t.Errorf("expected full-match scores of 1, got %g and %g",
			page.Results[0].FusedScore(), page.Results[1].FusedScore())
	}
	if page.Results[2].FusedScore() != 0 {
		t.Errorf("expected no-match score 0, got %g", page.Results[2].FusedScore())
	}
	if _, ok := page.Results[0].VectorScore(); ok {
		t.Error("keyword mode must not produce vector components")
	}
}

func TestSearch_VectorMode(t *testing.T) {
	store := &mockStore{chunks: testChunks()}
	svc := newService(t, store)

	page, err := svc.Search(context.Background(), makeQuery(t, "", []float32{1, 0}, mode.Vector))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.TotalMatched != 3 {
		t.Fatalf("expected 3 results, got %d", page.TotalMatched)
	}
	top := page.Results[0].Chunk()
	if top.DocumentID() != "doc1" || top.Page() != 1 {
		t.Errorf("expected exact-direction chunk first, got %s p%d", top.DocumentID(), top.Page())
	}
	if _, ok := page.Results[0].KeywordScore(); ok {
		t.Error("vector mode must not produce keyword components")
	}
}

func TestSearch_HybridMode(t *testing.T) {
	store := &mockStore{chunks: testChunks()}
	svc := newService(t, store)

	page, err := svc.Search(context.Background(), makeQuery(t, "cat", []float32{1, 0}, mode.Hybrid))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.TotalMatched != 3 {
		t.Fatalf("expected 3 results, got %d", page.TotalMatched)
	}
	for i := range page.Results {
		if _, ok := page.Results[i].VectorScore(); !ok {
			t.Errorf("result %d missing vector component", i)
		}
		if _, ok := page.Results[i].KeywordScore(); !ok {
			t.Errorf("result %d missing keyword component", i)
		}
	}
	// doc1 p1 matches on both branches and must rank first.
	top := page.Results[0].Chunk()
	if top.DocumentID() != "doc1" || top.Page() != 1 {
		t.Errorf("expected doc1 p1 first, got %s p%d", top.DocumentID(), top.Page())
	}
}

func TestSearch_DimensionMismatchExcludesChunk(t *testing.T) {
	chunks := testChunks()
	chunks = append(chunks, chunk.New("doc3", 1, "cat", []float32{1, 0, 0}, nil))
	store := &mockStore{chunks: chunks}
	svc := newService(t, store)

	page, err := svc.Search(context.Background(), makeQuery(t, "cat", []float32{1, 0}, mode.Hybrid))
	if err != nil {
		t.Fatalf("a single bad chunk must not fail the query: %v", err)
	}
	if page.TotalMatched != 4 {
		t.Fatalf("expected 4 results, got %d", page.TotalMatched)
	}
	for i := range page.Results {
		c := page.Results[i].Chunk()
		if c.DocumentID() != "doc3" {
			continue
		}
		if _, ok := page.Results[i].VectorScore(); ok {
			t.Error("mismatched chunk must have no vector component")
		}
		if _, ok := page.Results[i].KeywordScore(); !ok {
			t.Error("mismatched chunk must keep its keyword component")
		}
	}
}

func TestSearch_AllCandidatesFail(t *testing.T) {
	store := &mockStore{chunks: []chunk.Chunk{
		chunk.New("doc1", 1, "cat", []float32{1, 0, 0}, nil),
		chunk.New("doc2", 1, "dog", []float32{0, 1, 0}, nil),
	}}
	svc := newService(t, store)

	_, err := svc.Search(context.Background(), makeQuery(t, "", []float32{1, 0}, mode.Vector))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrAllCandidatesFailed) {
		t.Errorf("expected ErrAllCandidatesFailed, got %v", err)
	}
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch in the chain, got %v", err)
	}
	var stageErr *domain.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != domain.StageScoring {
		t.Errorf("expected scoring stage error, got %v", err)
	}
}

func TestSearch_StoreError(t *testing.T) {
	store := &mockStore{listErr: errors.New("connection refused")}
	svc := newService(t, store)

	_, err := svc.Search(context.Background(), makeQuery(t, "cat", nil, mode.Keyword))
	if err == nil {
		t.Fatal("expected error")
	}
	var stageErr *domain.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != domain.StageScoring {
		t.Errorf("expected scoring stage error, got %v", err)
	}
}

func TestSearch_Cancelled(t *testing.T) {
	store := &mockStore{chunks: testChunks()}
	svc := newService(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Search(ctx, makeQuery(t, "cat", nil, mode.Keyword))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}

func TestSearch_CachesByVersion(t *testing.T) {
	store := &mockStore{chunks: testChunks()}
	svc := newService(t, store)
	q := makeQuery(t, "cat", nil, mode.Keyword)

	first := resultIDs(svc, t, q)
	second := resultIDs(svc, t, q)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached rerun disagrees: %v vs %v", first, second)
	}
	if got := store.calls.Load(); got != 1 {
		t.Fatalf("expected one store listing for a repeated query, got %d", got)
	}

	// A version bump makes the cached page unreachable.
	store.version.Add(1)
	_ = resultIDs(svc, t, q)
	if got := store.calls.Load(); got != 2 {
		t.Errorf("expected recompute after version bump, got %d listings", got)
	}
}

func TestSearch_InvalidateForcesRecompute(t *testing.T) {
	store := &mockStore{chunks: testChunks()}
	svc := newService(t, store)
	q := makeQuery(t, "cat", nil, mode.Keyword)

	_ = resultIDs(svc, t, q)
	svc.Invalidate()
	_ = resultIDs(svc, t, q)

	if got := store.calls.Load(); got != 2 {
		t.Errorf("expected recompute after Invalidate, got %d listings", got)
	}
}

func TestSearch_Deterministic(t *testing.T) {
	q := makeQuery(t, "cat dog", []float32{0.7, 0.3}, mode.Hybrid)

	var runs [][]string
	for i := 0; i < 3; i++ {
		store := &mockStore{chunks: testChunks()}
		runs = append(runs, resultIDs(newService(t, store), t, q))
	}
	if !reflect.DeepEqual(runs[0], runs[1]) || !reflect.DeepEqual(runs[1], runs[2]) {
		t.Errorf("independent runs disagree: %v", runs)
	}
}

func TestSearch_EmptyCollection(t *testing.T) {
	store := &mockStore{}
	svc := newService(t, store)

	page, err := svc.Search(context.Background(), makeQuery(t, "cat", nil, mode.Keyword))
	if err != nil {
		t.Fatalf("empty collection must yield an empty page, not an error: %v", err)
	}
	if len(page.Results) != 0 || page.TotalMatched != 0 || page.HasMore {
		t.Errorf("unexpected page: %+v", page)
	}
}
