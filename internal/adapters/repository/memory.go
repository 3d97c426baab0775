package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/okian/glicko/pkg/glicko2"
)

// MemoryStore keeps snapshots in a map. Nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	snaps  map[uuid.UUID]glicko2.Snapshot
	closed bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[uuid.UUID]glicko2.Snapshot)}
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (glicko2.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return glicko2.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return glicko2.Snapshot{}, ErrClosed
	}
	snap, ok := s.snaps[id]
	if !ok {
		return glicko2.Snapshot{}, ErrNotFound
	}
	return snap, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]glicko2.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]glicko2.Snapshot, 0, len(s.snaps))
	for _, snap := range s.snaps {
		out = append(out, snap)
	}
	return out, nil
}

func (s *MemoryStore) PutAll(ctx context.Context, snaps []glicko2.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, snap := range snaps {
		s.snaps[snap.ID] = snap
	}
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.snaps), nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
