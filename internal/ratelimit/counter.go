// Package ratelimit bounds submission frequency per hashed email and per
// hashed client address. Counters live behind a CounterStore so the
// single-process in-memory map can be swapped for redis without touching
// call sites.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// CounterStore increments a windowed counter for a key and returns the new
// count within the current window.
type CounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
}

type memoryEntry struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is a fixed-window in-memory counter store. Safe for
// concurrent use within a single process only; horizontally scaled
// deployments should use the redis store instead.
type MemoryStore struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an in-memory counter store with the given window.
func NewMemoryStore(window time.Duration) *MemoryStore {
	return &MemoryStore{
		window:  window,
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// Incr bumps the counter for key, rolling the window when it has expired.
func (s *MemoryStore) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok || now.After(entry.resetAt) {
		entry = &memoryEntry{resetAt: now.Add(s.window)}
		s.entries[key] = entry
	}
	entry.count++
	return entry.count, nil
}

// Reset clears all counters. Test isolation only; never routed in
// production paths.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*memoryEntry)
}
