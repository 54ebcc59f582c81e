package ussd

import (
	"context"
	"sync"
	"time"
)

const memoryPruneEvery = 256

type memoryEntry struct {
	sess      *Session
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process. Used for local development
// and single-instance deployments.
type MemorySessionStore struct {
	mu     sync.Mutex
	items  map[string]memoryEntry
	now    func() time.Time
	writes int
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates an empty store. now may be nil.
func NewMemorySessionStore(now func() time.Time) *MemorySessionStore {
	if now == nil {
		now = time.Now
	}
	return &MemorySessionStore{
		items: make(map[string]memoryEntry),
		now:   now,
	}
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.expired(entry) {
		delete(s.items, id)
		return nil, ErrSessionNotFound
	}
	return entry.sess.Clone(), nil
}

func (s *MemorySessionStore) Put(_ context.Context, sess *Session, ttl time.Duration) error {
	if sess == nil || sess.ID == "" {
		return errSessionIDRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{sess: sess.Clone()}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.items[sess.ID] = entry

	s.writes++
	if s.writes%memoryPruneEvery == 0 {
		s.pruneLocked()
	}
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included until
// they are pruned.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Prune drops expired sessions and reports how many were removed.
func (s *MemorySessionStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked()
}

func (s *MemorySessionStore) pruneLocked() int {
	removed := 0
	for id, entry := range s.items {
		if s.expired(entry) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

func (s *MemorySessionStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt)
}
