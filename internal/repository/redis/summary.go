package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/romarioraffington/prepped-client-sub000/internal/domain"
	apperrors "github.com/romarioraffington/prepped-client-sub000/pkg/errors"
)

const summaryKeyPrefix = "wishlist-summaries:"

// SummaryCache implements repository.SummaryCache using Redis. It holds the
// per-user wishlist summary list that backs the picker sheet.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a new Redis-backed wishlist summary cache.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a user's cached wishlist summaries.
func (c *SummaryCache) Get(ctx context.Context, userID string) ([]domain.Wishlist, error) {
	key := summaryKeyPrefix + userID

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("wishlist summaries", userID)
		}
		return nil, fmt.Errorf("redis get wishlist summaries: %w", err)
	}

	var wishlists []domain.Wishlist
	if err := json.Unmarshal(data, &wishlists); err != nil {
		return nil, fmt.Errorf("unmarshal wishlist summaries: %w", err)
	}

	return wishlists, nil
}

// Set caches a user's wishlist summaries with the configured TTL.
func (c *SummaryCache) Set(ctx context.Context, userID string, wishlists []domain.Wishlist) error {
	key := summaryKeyPrefix + userID

	data, err := json.Marshal(wishlists)
	if err != nil {
		return fmt.Errorf("marshal wishlist summaries: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set wishlist summaries: %w", err)
	}

	return nil
}

// Invalidate drops a user's cached wishlist summaries.
func (c *SummaryCache) Invalidate(ctx context.Context, userID string) error {
	key := summaryKeyPrefix + userID

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del wishlist summaries: %w", err)
	}

	return nil
}
