package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/romarioraffington/prepped-client-sub000/internal/repository"
	pkgkafka "github.com/romarioraffington/prepped-client-sub000/pkg/kafka"
)

// Consumer handles wishlist domain events and keeps the cached per-user
// summary lists coherent. Any event that changes a wishlist's composition
// drops the owner's cached summaries so the next read rebuilds them.
type Consumer struct {
	summaries repository.SummaryCache
	logger    *slog.Logger
}

// NewConsumer creates a new event consumer for summary cache invalidation.
func NewConsumer(summaries repository.SummaryCache, logger *slog.Logger) *Consumer {
	return &Consumer{
		summaries: summaries,
		logger:    logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicWishlistCreated:
		var data WishlistCreatedData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("unmarshal wishlist.created data: %w", err)
		}
		return c.invalidate(ctx, data.UserID, event.EventType)
	case TopicWishlistDeleted:
		var data WishlistDeletedData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("unmarshal wishlist.deleted data: %w", err)
		}
		return c.invalidate(ctx, data.UserID, event.EventType)
	case TopicWishlistSaved, TopicWishlistRemoved:
		var data MembershipChangedData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("unmarshal membership change data: %w", err)
		}
		return c.invalidate(ctx, data.UserID, event.EventType)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *Consumer) invalidate(ctx context.Context, userID, eventType string) error {
	if userID == "" {
		c.logger.WarnContext(ctx, "event missing user id, skipping invalidation",
			slog.String("event_type", eventType),
		)
		return nil
	}

	if err := c.summaries.Invalidate(ctx, userID); err != nil {
		return fmt.Errorf("invalidate wishlist summaries: %w", err)
	}

	c.logger.DebugContext(ctx, "invalidated wishlist summaries",
		slog.String("user_id", userID),
		slog.String("event_type", eventType),
	)

	return nil
}
