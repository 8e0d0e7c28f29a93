package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/romarioraffington/prepped-client-sub000/internal/cachesync"
	"github.com/romarioraffington/prepped-client-sub000/internal/domain"
	"github.com/romarioraffington/prepped-client-sub000/internal/event"
	apperrors "github.com/romarioraffington/prepped-client-sub000/pkg/errors"
	pkgkafka "github.com/romarioraffington/prepped-client-sub000/pkg/kafka"
)

// --- Mock WishlistRepository ---

type mockWishlistRepository struct {
	mock.Mock
}

func (m *mockWishlistRepository) Create(ctx context.Context, w *domain.Wishlist) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *mockWishlistRepository) GetByID(ctx context.Context, id string) (*domain.Wishlist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *mockWishlistRepository) ListByUser(ctx context.Context, userID, recommendationID string) ([]domain.Wishlist, error) {
	args := m.Called(ctx, userID, recommendationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wishlist), args.Error(1)
}

func (m *mockWishlistRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockWishlistRepository) AddRecommendation(ctx context.Context, wishlistID, recommendationID string) ([]string, error) {
	args := m.Called(ctx, wishlistID, recommendationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockWishlistRepository) RemoveRecommendation(ctx context.Context, wishlistID, recommendationID string) ([]string, error) {
	args := m.Called(ctx, wishlistID, recommendationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

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

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestWishlistService(repo *mockWishlistRepository, summaries *mockSummaryCache) (*WishlistService, *cachesync.MemoryTargetStore) {
	logger := newTestLogger()
	// Create a Kafka producer that will fail silently in tests (no real broker).
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	producer := event.NewProducer(kafkaProducer, logger)
	targets := cachesync.NewMemoryTargetStore()
	return NewWishlistService(repo, summaries, targets, producer, logger), targets
}

func ownedWishlistFixture() *domain.Wishlist {
	now := time.Now().UTC()
	return &domain.Wishlist{
		ID:         "wl-1",
		UserID:     "user-1",
		Name:       "Mexico City",
		SavedCount: 3,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// --- CreateWishlist ---

func TestCreateWishlist(t *testing.T) {
	repo := new(mockWishlistRepository)
	summaries := new(mockSummaryCache)
	svc, _ := newTestWishlistService(repo, summaries)
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(w *domain.Wishlist) bool {
		return w.ID != "" && w.UserID == "user-1" && w.Name == "Mexico City" && w.SavedCount == 0
	})).Return(nil)
	summaries.On("Invalidate", ctx, "user-1").Return(nil)

	wishlist, err := svc.CreateWishlist(ctx, CreateWishlistInput{UserID: "user-1", Name: "Mexico City"})

	require.NoError(t, err)
	assert.NotEmpty(t, wishlist.ID)
	assert.Equal(t, "Mexico City", wishlist.Name)
	repo.AssertExpectations(t)
	summaries.AssertExpectations(t)
}

func TestCreateWishlist_MissingName(t *testing.T) {
	repo := new(mockWishlistRepository)
	summaries := new(mockSummaryCache)
	svc, _ := newTestWishlistService(repo, summaries)

	_, err := svc.CreateWishlist(context.Background(), CreateWishlistInput{UserID: "user-1"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// --- ListWishlists ---

func TestListWishlists_CacheHit(t *testing.T) {
	repo := new(mockWishlistRepository)
	summaries := new(mockSummaryCache)
	svc, _ := newTestWishlistService(repo, summaries)
	ctx := context.Background()

	cached := []domain.Wishlist{*ownedWishlistFixture()}
	summaries.On("Get", ctx, "user-1").Return(cached, nil)

	wishlists, err := svc.ListWishlists(ctx, "user-1", "")

	require.NoError(t, err)
	assert.Equal(t, cached, wishlists)
	repo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestListWishlists_CacheMissFillsCache(t *testing.T) {
	repo := new(mockWishlistRepository)
	summaries := new(mockSummaryCache)
	svc, _ := newTestWishlistService(repo, summaries)
	ctx := context.Background()

	fromDB := []domain.Wishlist{*ownedWishlistFixture()}
	summaries.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("wishlist summaries", "user-1"))
	repo.On("ListByUser", ctx, "user-1", "").Return(fromDB, nil)
	summaries.On("Set", ctx, "user-1", fromDB).Return(nil)

	wishlists, err := svc.ListWishlists(ctx, "user-1", "")

	require.NoError(t, err)
	assert.Equal(t, fromDB, wishlists)
	summaries.AssertExpectations(t)
}

func TestListWishlists_WithRecommendationBypassesCache(t *testing.T) {
	repo := new(mockWishlistRepository)
	summaries := new(mockSummaryCache)
	svc, _ := newTestWishlistService(repo, summaries)
	ctx := context.Background()

	w := ownedWishlistFixture()
	w.ContainsRecommendation = domain.BoolPtr(true)
	repo.On("ListByUser", ctx, "user-1", "rec-1").Return([]domain.Wishlist{*w}, nil)

	wishlists, err := svc.ListWishlists(ctx, "user-1", "rec-1")

	require.NoError(t, err)
	require.Len(t, wishlists, 1)
	require.NotNil(t, wishlists[0].ContainsRecommendation)
	assert.True(t, *wishlists[0].ContainsRecommendation)
	summaries.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	summaries.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

// --- DeleteWishlist ---

func TestDeleteWishlist_ClearsMatchingQuickSaveTarget(t *testing.T) {
	repo := new(mockWishlistRepository)
	summaries := new(mockSummaryCache)
	svc, targets := newTestWishlistService(repo, summaries)
	ctx := context.Background()

	require.NoError(t, targets.SetTarget(ctx, "user-1", "wl-1"))

	repo.On("GetByID", ctx, "wl-1").Return(ownedWishlistFixture(), nil)
	repo.On("Delete", ctx, "wl-1").Return(nil)
	summaries.On("Invalidate", ctx, "user-1").Return(nil)

	require.NoError(t, svc.DeleteWishlist(ctx, "user-1", "wl-1"))

	target, err := targets.Target(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, target)
	repo.AssertExpectations(t)
}

func TestDeleteWishlist_KeepsUnrelatedQuickSaveTarget(t *testing.T) {
	repo := new(mockWishlistRepository)
	summaries := new(mockSummaryCache)
	svc, targets := newTestWishlistService(repo, summaries)
	ctx := context.Background()

	require.NoError(t, targets.SetTarget(ctx, "user-1", "wl-other"))

	repo.On("GetByID", ctx, "wl-1").Return(ownedWishlistFixture(), nil)
	repo.On("Delete", ctx, "wl-1").Return(nil)
	summaries.On("Invalidate", ctx, "user-1").Return(nil)

	require.NoError(t, svc.DeleteWishlist(ctx, "user-1", "wl-1"))

	target, err := targets.Target(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "wl-other", target)
}

func TestDeleteWishlist_NotOwner(t *testing.T) {
	repo := new(mockWishlistRepository)
	summaries := new(mockSummaryCache)
	svc, _ := newTestWishlistService(repo, summaries)
	ctx := context.Background()

	repo.On("GetByID", ctx, "wl-1").Return(ownedWishlistFixture(), nil)

	err := svc.DeleteWishlist(ctx, "user-2", "wl-1")

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteWishlist_NotFound(t *testing.T) {
	repo := new(mockWishlistRepository)
	summaries := new(mockSummaryCache)
	svc, _ := newTestWishlistService(repo, summaries)
	ctx := context.Background()

	repo.On("GetByID", ctx, "missing").Return(nil, apperrors.NotFound("wishlist", "missing"))

	err := svc.DeleteWishlist(ctx, "user-1", "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- AddRecommendation ---

func TestAddRecommendation(t *testing.T) {
	repo := new(mockWishlistRepository)
	summaries := new(mockSummaryCache)
	svc, _ := newTestWishlistService(repo, summaries)
	ctx := context.Background()

	repo.On("GetByID", ctx, "wl-1").Return(ownedWishlistFixture(), nil)
	repo.On("AddRecommendation", ctx, "wl-1", "rec-1").Return([]string{"wl-0", "wl-1"}, nil)
	summaries.On("Invalidate", ctx, "user-1").Return(nil)

	membership, err := svc.AddRecommendation(ctx, "user-1", "wl-1", "rec-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"wl-0", "wl-1"}, membership.WishlistIDs)
	repo.AssertExpectations(t)
	summaries.AssertExpectations(t)
}

func TestAddRecommendation_WishlistNotFound(t *testing.T) {
	repo := new(mockWishlistRepository)
	summaries := new(mockSummaryCache)
	svc, _ := newTestWishlistService(repo, summaries)
	ctx := context.Background()

	repo.On("GetByID", ctx, "wl-gone").Return(nil, apperrors.NotFound("wishlist", "wl-gone"))

	_, err := svc.AddRecommendation(ctx, "user-1", "wl-gone", "rec-1")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "AddRecommendation", mock.Anything, mock.Anything, mock.Anything)
}

// --- RemoveRecommendation ---

func TestRemoveRecommendation(t *testing.T) {
	repo := new(mockWishlistRepository)
	summaries := new(mockSummaryCache)
	svc, _ := newTestWishlistService(repo, summaries)
	ctx := context.Background()

	repo.On("GetByID", ctx, "wl-1").Return(ownedWishlistFixture(), nil)
	repo.On("RemoveRecommendation", ctx, "wl-1", "rec-1").Return([]string{}, nil)
	summaries.On("Invalidate", ctx, "user-1").Return(nil)

	membership, err := svc.RemoveRecommendation(ctx, "user-1", "wl-1", "rec-1")

	require.NoError(t, err)
	assert.Empty(t, membership.WishlistIDs)
	repo.AssertExpectations(t)
}

func TestRemoveRecommendation_NotOwner(t *testing.T) {
	repo := new(mockWishlistRepository)
	summaries := new(mockSummaryCache)
	svc, _ := newTestWishlistService(repo, summaries)
	ctx := context.Background()

	repo.On("GetByID", ctx, "wl-1").Return(ownedWishlistFixture(), nil)

	_, err := svc.RemoveRecommendation(ctx, "user-2", "wl-1", "rec-1")

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	repo.AssertNotCalled(t, "RemoveRecommendation", mock.Anything, mock.Anything, mock.Anything)
}
