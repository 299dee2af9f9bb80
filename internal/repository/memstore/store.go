// Package memstore is an in-memory reference implementation of the chunk
// store consumed by the search engine. Ingestion replaces or appends chunk
// sets per document and bumps a monotonic collection version; readers get
// stable snapshots ordered by (documentID, page).
package memstore

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/docdex-ai/docdex/internal/domain/chunk"
)

// Store holds the current chunk collection.
type Store struct {
	mu      sync.RWMutex
	byDoc   map[string][]chunk.Chunk
	ordered []chunk.Chunk // rebuilt on mutation, sorted by (documentID, page)
	version atomic.Uint64
}

// New creates an empty store.
func New() *Store {
	return &Store{byDoc: make(map[string][]chunk.Chunk)}
}

// Put replaces the chunk set of each document present in chunks and
// increments the collection version once for the whole batch.
func (s *Store) Put(chunks []chunk.Chunk) {
	if len(chunks) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	perDoc := make(map[string][]chunk.Chunk)
	for _, c := range chunks {
		perDoc[c.DocumentID()] = append(perDoc[c.DocumentID()], c)
	}
	for id, set := range perDoc {
		s.byDoc[id] = set
	}
	s.rebuildLocked()
	s.version.Add(1)
}

// Delete removes whole documents and increments the version when anything
// was actually removed.
func (s *Store) Delete(documentIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	for _, id := range documentIDs {
		if _, ok := s.byDoc[id]; ok {
			delete(s.byDoc, id)
			removed = true
		}
	}
	if removed {
		s.rebuildLocked()
		s.version.Add(1)
	}
}

// ListChunks returns the current chunks, restricted to scope when non-empty.
// The returned slice is a snapshot: later mutations do not affect it.
func (s *Store) ListChunks(_ context.Context, scope []string) ([]chunk.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(scope) == 0 {
		out := make([]chunk.Chunk, len(s.ordered))
		copy(out, s.ordered)
		return out, nil
	}

	var out []chunk.Chunk
	for _, id := range scope {
		out = append(out, s.byDoc[id]...)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Less(&out[j])
	})
	return out, nil
}

// CurrentVersion returns the monotonically increasing collection version.
func (s *Store) CurrentVersion() uint64 {
	return s.version.Load()
}

// DocumentCount returns the number of ingested documents.
func (s *Store) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byDoc)
}

// ChunkCount returns the number of ingested chunks.
func (s *Store) ChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered)
}

func (s *Store) rebuildLocked() {
	s.ordered = s.ordered[:0]
	for _, set := range s.byDoc {
		s.ordered = append(s.ordered, set...)
	}
	sort.Slice(s.ordered, func(i, j int) bool {
		return s.ordered[i].Less(&s.ordered[j])
	})
}
