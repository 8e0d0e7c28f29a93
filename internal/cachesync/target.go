package cachesync

import (
	"context"
	"sync"
)

// TargetStore holds each user's quick-save target: the wishlist their last
// save went to, used to save immediately on heart-tap without opening the
// picker. An empty id with a nil error means no target is set.
type TargetStore interface {
	Target(ctx context.Context, userID string) (string, error)
	SetTarget(ctx context.Context, userID, wishlistID string) error
	ClearTarget(ctx context.Context, userID string) error
}

// MemoryTargetStore is an in-process TargetStore for tests and single-session
// use. Production wiring uses the redis-backed implementation.
type MemoryTargetStore struct {
	mu      sync.RWMutex
	targets map[string]string
}

func NewMemoryTargetStore() *MemoryTargetStore {
	return &MemoryTargetStore{targets: make(map[string]string)}
}

func (s *MemoryTargetStore) Target(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.targets[userID], nil
}

func (s *MemoryTargetStore) SetTarget(_ context.Context, userID, wishlistID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[userID] = wishlistID
	return nil
}

func (s *MemoryTargetStore) ClearTarget(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.targets, userID)
	return nil
}
