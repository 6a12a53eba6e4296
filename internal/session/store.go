// Package session keeps per-visitor state that lives outside the database:
// the anonymous cart, addressed by a visitor id cookie.
package session

import (
	"context"
	"sync"
	"time"
)

// Store holds the ordered list of service ids in a visitor's anonymous cart.
// Duplicates are stored as given; readers dedupe.
type Store interface {
	Load(ctx context.Context, visitorID string) ([]uint, error)
	Save(ctx context.Context, visitorID string, ids []uint) error
	Clear(ctx context.Context, visitorID string) error
}

type memoryEntry struct {
	ids       []uint
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Entries expire after ttl of inactivity.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, visitorID string) ([]uint, error) {
	s.mu.RLock()
	e, ok := s.entries[visitorID]
	s.mu.RUnlock()
	if !ok || (s.ttl > 0 && s.now().After(e.expiresAt)) {
		return nil, nil
	}
	out := make([]uint, len(e.ids))
	copy(out, e.ids)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, visitorID string, ids []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ids) == 0 {
		delete(s.entries, visitorID)
		return nil
	}
	cp := make([]uint, len(ids))
	copy(cp, ids)
	s.entries[visitorID] = memoryEntry{ids: cp, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, visitorID string) error {
	s.mu.Lock()
	delete(s.entries, visitorID)
	s.mu.Unlock()
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}
