package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const targetKeyPrefix = "quick-save-target:"

// TargetStore implements cachesync.TargetStore using Redis, so a user's
// remembered quick-save wishlist survives restarts and is shared across
// instances.
type TargetStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTargetStore creates a new Redis-backed quick-save target store.
// A zero ttl keeps targets until explicitly cleared.
func NewTargetStore(client *redis.Client, ttl time.Duration) *TargetStore {
	return &TargetStore{
		client: client,
		ttl:    ttl,
	}
}

// Target returns the user's remembered wishlist ID, or "" when none is set.
func (s *TargetStore) Target(ctx context.Context, userID string) (string, error) {
	key := targetKeyPrefix + userID

	id, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("redis get quick-save target: %w", err)
	}

	return id, nil
}

// SetTarget remembers a wishlist as the user's quick-save destination.
func (s *TargetStore) SetTarget(ctx context.Context, userID, wishlistID string) error {
	key := targetKeyPrefix + userID

	if err := s.client.Set(ctx, key, wishlistID, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set quick-save target: %w", err)
	}

	return nil
}

// ClearTarget forgets the user's quick-save destination.
func (s *TargetStore) ClearTarget(ctx context.Context, userID string) error {
	key := targetKeyPrefix + userID

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del quick-save target: %w", err)
	}

	return nil
}
