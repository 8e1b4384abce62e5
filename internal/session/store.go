// Package session accumulates partial entries per session and commits them as rows.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/ashureev/winlog/internal/domain"
)

// Store holds at most one pending entry per session key.
type Store interface {
	// Get returns a copy of the pending entry, or nil if none exists.
	Get(ctx context.Context, key string) (*domain.PendingEntry, error)

	// Update runs fn on the current entry (nil when absent) under the store's lock.
	// A nil return from fn deletes the entry; otherwise the returned entry is stored.
	Update(ctx context.Context, key string, fn func(cur *domain.PendingEntry) *domain.PendingEntry) (*domain.PendingEntry, error)

	// Delete removes the pending entry.
	Delete(ctx context.Context, key string) error

	// Sweep removes entries not updated within ttl and returns how many were removed.
	Sweep(ctx context.Context, ttl time.Duration) (int, error)

	// Len reports the number of pending entries.
	Len() int
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*domain.PendingEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*domain.PendingEntry),
		now:     time.Now,
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (*domain.PendingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.entries[key]), nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, key string, fn func(cur *domain.PendingEntry) *domain.PendingEntry) (*domain.PendingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(clone(s.entries[key]))
	if next == nil {
		delete(s.entries, key)
		return nil, nil
	}
	next.SessionID = key
	if next.CreatedAt.IsZero() {
		next.CreatedAt = s.now()
	}
	next.UpdatedAt = s.now()
	s.entries[key] = clone(next)
	return next, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Sweep implements Store.
func (s *MemoryStore) Sweep(_ context.Context, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	removed := 0
	for key, e := range s.entries {
		if e.UpdatedAt.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len implements Store.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func clone(e *domain.PendingEntry) *domain.PendingEntry {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}
