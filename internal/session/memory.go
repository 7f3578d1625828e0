package session

import (
	"context"
	"sync"

	"carelog/internal/observability"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in a process-local map. Sessions live for
// the lifetime of the process; a restart logs everyone out.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]uint
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]uint)}
}

func (s *MemoryStore) Create(_ context.Context, userID uint) (string, error) {
	id := uuid.New().String()

	s.mu.Lock()
	s.sessions[id] = userID
	s.mu.Unlock()

	observability.ActiveSessions.Inc()
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (uint, error) {
	s.mu.RLock()
	userID, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return 0, ErrNotFound
	}
	return userID, nil
}

func (s *MemoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	_, existed := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if existed {
		observability.ActiveSessions.Dec()
	}
	return nil
}
