package event

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/romarioraffington/prepped-client-sub000/internal/domain"
	pkgkafka "github.com/romarioraffington/prepped-client-sub000/pkg/kafka"
)

// --- Mock SummaryCache ---

type mockSummaryCache struct {
	mock.Mock
}

func (m *mockSummaryCache) Get(ctx context.Context, userID string) ([]domain.Wishlist, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wishlist), args.Error(1)
}

func (m *mockSummaryCache) Set(ctx context.Context, userID string, wishlists []domain.Wishlist) error {
	args := m.Called(ctx, userID, wishlists)
	return args.Error(0)
}

func (m *mockSummaryCache) Invalidate(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Test helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEvent(eventType string, data any) *pkgkafka.Event {
	dataBytes, _ := json.Marshal(data)
	return &pkgkafka.Event{
		EventID:       "evt-test-123",
		EventType:     eventType,
		AggregateID:   "wl-1",
		AggregateType: AggregateTypeWishlist,
		Version:       1,
		Timestamp:     time.Now().UTC(),
		Source:        SourceWishlistService,
		Data:          dataBytes,
	}
}

// --- Tests ---

func TestHandleWishlistSaved_InvalidatesOwner(t *testing.T) {
	summaries := new(mockSummaryCache)
	consumer := NewConsumer(summaries, newTestLogger())
	ctx := context.Background()

	event := newTestEvent(TopicWishlistSaved, MembershipChangedData{
		WishlistID:       "wl-1",
		UserID:           "user-1",
		RecommendationID: "rec-1",
		WishlistIDs:      []string{"wl-1"},
	})

	summaries.On("Invalidate", ctx, "user-1").Return(nil)

	require.NoError(t, consumer.Handle(ctx, event))
	summaries.AssertExpectations(t)
}

func TestHandleWishlistDeleted_InvalidatesOwner(t *testing.T) {
	summaries := new(mockSummaryCache)
	consumer := NewConsumer(summaries, newTestLogger())
	ctx := context.Background()

	event := newTestEvent(TopicWishlistDeleted, WishlistDeletedData{
		WishlistID: "wl-1",
		UserID:     "user-1",
	})

	summaries.On("Invalidate", ctx, "user-1").Return(nil)

	require.NoError(t, consumer.Handle(ctx, event))
	summaries.AssertExpectations(t)
}

func TestHandleWishlistCreated_InvalidatesOwner(t *testing.T) {
	summaries := new(mockSummaryCache)
	consumer := NewConsumer(summaries, newTestLogger())
	ctx := context.Background()

	event := newTestEvent(TopicWishlistCreated, WishlistCreatedData{
		WishlistID: "wl-1",
		UserID:     "user-1",
		Name:       "Mexico City",
	})

	summaries.On("Invalidate", ctx, "user-1").Return(nil)

	require.NoError(t, consumer.Handle(ctx, event))
	summaries.AssertExpectations(t)
}

func TestHandleUnknownEventType_Skipped(t *testing.T) {
	summaries := new(mockSummaryCache)
	consumer := NewConsumer(summaries, newTestLogger())

	event := newTestEvent("prepped.unrelated.event", map[string]string{"user_id": "user-1"})

	require.NoError(t, consumer.Handle(context.Background(), event))
	summaries.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestHandleMalformedPayload_ReturnsError(t *testing.T) {
	summaries := new(mockSummaryCache)
	consumer := NewConsumer(summaries, newTestLogger())

	event := newTestEvent(TopicWishlistSaved, nil)
	event.Data = json.RawMessage(`{not json`)

	assert.Error(t, consumer.Handle(context.Background(), event))
	summaries.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestHandleMissingUserID_Skipped(t *testing.T) {
	summaries := new(mockSummaryCache)
	consumer := NewConsumer(summaries, newTestLogger())

	event := newTestEvent(TopicWishlistRemoved, MembershipChangedData{
		WishlistID:       "wl-1",
		RecommendationID: "rec-1",
	})

	require.NoError(t, consumer.Handle(context.Background(), event))
	summaries.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestHandleInvalidationFailure_Propagates(t *testing.T) {
	summaries := new(mockSummaryCache)
	consumer := NewConsumer(summaries, newTestLogger())
	ctx := context.Background()

	event := newTestEvent(TopicWishlistSaved, MembershipChangedData{
		WishlistID:       "wl-1",
		UserID:           "user-1",
		RecommendationID: "rec-1",
	})

	summaries.On("Invalidate", ctx, "user-1").Return(errors.New("redis unavailable"))

	assert.Error(t, consumer.Handle(ctx, event))
	summaries.AssertExpectations(t)
}
