// Package history persists a capped log of executed searches.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const historyKey = "docdex:search_history"

// store is the consumer interface for history operations (ISP).
type store interface {
	LPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LTrim(ctx context.Context, key string, start, stop int64) error
}

// Entry is one recorded search.
type Entry struct {
	Query        string    `json:"query"`
	Mode         string    `json:"mode"`
	Scope        []string  `json:"scope,omitempty"`
	ResultCount  int       `json:"result_count"`
	TotalMatched int       `json:"total_matched"`
	Timestamp    time.Time `json:"timestamp"`
}

// Store implements search-history persistence on a capped list.
type Store struct {
	store   store
	maxSize int64
}

// New creates a history store keeping at most maxSize entries.
func New(s store, maxSize int) *Store {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Store{store: s, maxSize: int64(maxSize)}
}

// Append records one search at the head of the log and trims the tail.
func (s *Store) Append(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("history marshal: %w", err)
	}
	if err := s.store.LPush(ctx, historyKey, string(data)); err != nil {
		return fmt.Errorf("history LPUSH: %w", err)
	}
	if err := s.store.LTrim(ctx, historyKey, 0, s.maxSize-1); err != nil {
		return fmt.Errorf("history LTRIM: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. Entries that fail to
// decode are skipped rather than failing the whole read.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 || int64(limit) > s.maxSize {
		limit = int(s.maxSize)
	}

	raw, err := s.store.LRange(ctx, historyKey, 0, int64(limit)-1)
	if err != nil {
		return nil, fmt.Errorf("history LRANGE: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
