// Package ratelimit implements fixed-window request counting keyed by
// client identity. The store is an interface so a single instance can use
// the in-memory map while a multi-instance deployment can plug in a shared
// cache without touching callers.
package ratelimit

import (
	"sync"
	"time"
)

// Store decides whether a client may consume one request slot. When the
// request is denied, retryAfter reports the time left in the current window.
type Store interface {
	Allow(key string) (allowed bool, retryAfter time.Duration)
}

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryStore is the in-process fixed-window implementation. Entries are
// mutated under a mutex; the read-then-write sequence would otherwise lose
// updates under concurrent requests from the same key.
type MemoryStore struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore constructs a store allowing limit requests per window.
func NewMemoryStore(window time.Duration, limit int) *MemoryStore {
	return &MemoryStore{
		window:  window,
		limit:   limit,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Allow consumes one slot for key, creating or replacing the window entry
// when none exists or the previous window has elapsed.
func (s *MemoryStore) Allow(key string) (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || now.After(e.resetAt) {
		s.entries[key] = entry{count: 1, resetAt: now.Add(s.window)}
		return true, 0
	}

	if e.count < s.limit {
		e.count++
		s.entries[key] = e
		return true, 0
	}

	return false, e.resetAt.Sub(now)
}

// Sweep drops entries whose window has elapsed. Correctness does not depend
// on it; it only bounds memory for long-lived processes.
func (s *MemoryStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if now.After(e.resetAt) {
			delete(s.entries, key)
		}
	}
}

// StartSweeper launches a background goroutine sweeping stale entries until
// stop is closed.
func (s *MemoryStore) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-stop:
				return
			}
		}
	}()
}
