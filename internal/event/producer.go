package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/romarioraffington/prepped-client-sub000/pkg/kafka"
)

// Kafka topic constants for wishlist domain events.
const (
	TopicWishlistCreated = "prepped.wishlist.created"
	TopicWishlistDeleted = "prepped.wishlist.deleted"
	TopicWishlistSaved   = "prepped.wishlist.saved"
	TopicWishlistRemoved = "prepped.wishlist.removed"
)

// Aggregate type constant.
const AggregateTypeWishlist = "wishlist"

// Source identifier for events originating from the wishlist service.
const SourceWishlistService = "wishlist-service"

// WishlistCreatedData is the payload for a wishlist.created event.
type WishlistCreatedData struct {
	WishlistID string `json:"wishlist_id"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
}

// WishlistDeletedData is the payload for a wishlist.deleted event.
type WishlistDeletedData struct {
	WishlistID string `json:"wishlist_id"`
	UserID     string `json:"user_id"`
}

// MembershipChangedData is the payload for wishlist.saved and
// wishlist.removed events. WishlistIDs is the recommendation's full
// membership after the change.
type MembershipChangedData struct {
	WishlistID       string   `json:"wishlist_id"`
	UserID           string   `json:"user_id"`
	RecommendationID string   `json:"recommendation_id"`
	WishlistIDs      []string `json:"wishlist_ids"`
}

// Producer publishes wishlist domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the wishlist service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishWishlistCreated publishes a wishlist.created event.
func (p *Producer) PublishWishlistCreated(ctx context.Context, wishlistID, userID, name string) error {
	data := WishlistCreatedData{
		WishlistID: wishlistID,
		UserID:     userID,
		Name:       name,
	}

	event, err := pkgkafka.NewEvent(TopicWishlistCreated, wishlistID, AggregateTypeWishlist, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create wishlist.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicWishlistCreated, event); err != nil {
		return fmt.Errorf("publish wishlist.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published wishlist.created event",
		slog.String("wishlist_id", wishlistID),
		slog.String("user_id", userID),
	)

	return nil
}

// PublishWishlistDeleted publishes a wishlist.deleted event.
func (p *Producer) PublishWishlistDeleted(ctx context.Context, wishlistID, userID string) error {
	data := WishlistDeletedData{
		WishlistID: wishlistID,
		UserID:     userID,
	}

	event, err := pkgkafka.NewEvent(TopicWishlistDeleted, wishlistID, AggregateTypeWishlist, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create wishlist.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicWishlistDeleted, event); err != nil {
		return fmt.Errorf("publish wishlist.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published wishlist.deleted event",
		slog.String("wishlist_id", wishlistID),
	)

	return nil
}

// PublishRecommendationSaved publishes a wishlist.saved event.
func (p *Producer) PublishRecommendationSaved(ctx context.Context, wishlistID, userID, recommendationID string, wishlistIDs []string) error {
	return p.publishMembershipChanged(ctx, TopicWishlistSaved, wishlistID, userID, recommendationID, wishlistIDs)
}

// PublishRecommendationRemoved publishes a wishlist.removed event.
func (p *Producer) PublishRecommendationRemoved(ctx context.Context, wishlistID, userID, recommendationID string, wishlistIDs []string) error {
	return p.publishMembershipChanged(ctx, TopicWishlistRemoved, wishlistID, userID, recommendationID, wishlistIDs)
}

func (p *Producer) publishMembershipChanged(ctx context.Context, topic, wishlistID, userID, recommendationID string, wishlistIDs []string) error {
	data := MembershipChangedData{
		WishlistID:       wishlistID,
		UserID:           userID,
		RecommendationID: recommendationID,
		WishlistIDs:      wishlistIDs,
	}

	event, err := pkgkafka.NewEvent(topic, wishlistID, AggregateTypeWishlist, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published membership change event",
		slog.String("topic", topic),
		slog.String("wishlist_id", wishlistID),
		slog.String("recommendation_id", recommendationID),
	)

	return nil
}
