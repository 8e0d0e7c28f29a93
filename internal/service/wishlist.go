package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/romarioraffington/prepped-client-sub000/internal/cachesync"
	"github.com/romarioraffington/prepped-client-sub000/internal/domain"
	"github.com/romarioraffington/prepped-client-sub000/internal/event"
	"github.com/romarioraffington/prepped-client-sub000/internal/repository"
	apperrors "github.com/romarioraffington/prepped-client-sub000/pkg/errors"
)

// WishlistService implements the business logic for wishlist operations.
type WishlistService struct {
	repo      repository.WishlistRepository
	summaries repository.SummaryCache
	targets   cachesync.TargetStore
	producer  *event.Producer
	logger    *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(
	repo repository.WishlistRepository,
	summaries repository.SummaryCache,
	targets cachesync.TargetStore,
	producer *event.Producer,
	logger *slog.Logger,
) *WishlistService {
	return &WishlistService{
		repo:      repo,
		summaries: summaries,
		targets:   targets,
		producer:  producer,
		logger:    logger,
	}
}

// CreateWishlistInput holds the parameters for creating a wishlist.
type CreateWishlistInput struct {
	UserID        string `json:"-"`
	Name          string `json:"name" validate:"required,min=1,max=100"`
	CoverImageURL string `json:"cover_image_url" validate:"omitempty,url"`
}

// CreateWishlist creates a new, empty wishlist for the user.
func (s *WishlistService) CreateWishlist(ctx context.Context, input CreateWishlistInput) (*domain.Wishlist, error) {
	if input.UserID == "" {
		return nil, apperrors.InvalidInput("user_id is required")
	}
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	now := time.Now().UTC()
	wishlist := &domain.Wishlist{
		ID:            uuid.New().String(),
		UserID:        input.UserID,
		Name:          input.Name,
		CoverImageURL: input.CoverImageURL,
		SavedCount:    0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, wishlist); err != nil {
		return nil, fmt.Errorf("create wishlist: %w", err)
	}

	s.invalidateSummaries(ctx, input.UserID)

	if err := s.producer.PublishWishlistCreated(ctx, wishlist.ID, wishlist.UserID, wishlist.Name); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.created event",
			slog.String("wishlist_id", wishlist.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "wishlist created",
		slog.String("wishlist_id", wishlist.ID),
		slog.String("user_id", wishlist.UserID),
	)

	return wishlist, nil
}

// GetWishlist retrieves a single wishlist owned by the user.
func (s *WishlistService) GetWishlist(ctx context.Context, userID, wishlistID string) (*domain.Wishlist, error) {
	wishlist, err := s.ownedWishlist(ctx, userID, wishlistID)
	if err != nil {
		return nil, err
	}
	return wishlist, nil
}

// ListWishlists returns the user's wishlists. When recommendationID is set,
// each wishlist carries a flag for whether it already contains that
// recommendation; those responses are never served from the summary cache.
func (s *WishlistService) ListWishlists(ctx context.Context, userID, recommendationID string) ([]domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user_id is required")
	}

	if recommendationID == "" {
		if cached, err := s.summaries.Get(ctx, userID); err == nil {
			return cached, nil
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "wishlist summary cache read failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	wishlists, err := s.repo.ListByUser(ctx, userID, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("list wishlists: %w", err)
	}

	if recommendationID == "" {
		if err := s.summaries.Set(ctx, userID, wishlists); err != nil {
			s.logger.WarnContext(ctx, "wishlist summary cache write failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	return wishlists, nil
}

// DeleteWishlist removes a wishlist the user owns. Memberships cascade, and
// a quick-save target pointing at the deleted wishlist is forgotten.
func (s *WishlistService) DeleteWishlist(ctx context.Context, userID, wishlistID string) error {
	wishlist, err := s.ownedWishlist(ctx, userID, wishlistID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, wishlistID); err != nil {
		return fmt.Errorf("delete wishlist: %w", err)
	}

	target, err := s.targets.Target(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "quick-save target lookup failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	} else if target == wishlistID {
		if err := s.targets.ClearTarget(ctx, userID); err != nil {
			s.logger.WarnContext(ctx, "quick-save target clear failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.invalidateSummaries(ctx, userID)

	if err := s.producer.PublishWishlistDeleted(ctx, wishlistID, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.deleted event",
			slog.String("wishlist_id", wishlistID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "wishlist deleted",
		slog.String("wishlist_id", wishlistID),
		slog.String("user_id", wishlist.UserID),
	)

	return nil
}

// AddRecommendation saves a recommendation into a wishlist the user owns and
// returns the recommendation's full membership afterwards. Saving an already
// saved recommendation is a no-op that still returns current membership.
func (s *WishlistService) AddRecommendation(ctx context.Context, userID, wishlistID, recommendationID string) (*domain.Membership, error) {
	if _, err := s.ownedWishlist(ctx, userID, wishlistID); err != nil {
		return nil, err
	}

	wishlistIDs, err := s.repo.AddRecommendation(ctx, wishlistID, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("add recommendation to wishlist: %w", err)
	}

	s.invalidateSummaries(ctx, userID)

	if err := s.producer.PublishRecommendationSaved(ctx, wishlistID, userID, recommendationID, wishlistIDs); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.saved event",
			slog.String("wishlist_id", wishlistID),
			slog.String("recommendation_id", recommendationID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "recommendation saved to wishlist",
		slog.String("wishlist_id", wishlistID),
		slog.String("recommendation_id", recommendationID),
	)

	return &domain.Membership{WishlistIDs: wishlistIDs}, nil
}

// RemoveRecommendation removes a recommendation from a wishlist the user owns
// and returns the recommendation's full membership afterwards.
func (s *WishlistService) RemoveRecommendation(ctx context.Context, userID, wishlistID, recommendationID string) (*domain.Membership, error) {
	if _, err := s.ownedWishlist(ctx, userID, wishlistID); err != nil {
		return nil, err
	}

	wishlistIDs, err := s.repo.RemoveRecommendation(ctx, wishlistID, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("remove recommendation from wishlist: %w", err)
	}

	s.invalidateSummaries(ctx, userID)

	if err := s.producer.PublishRecommendationRemoved(ctx, wishlistID, userID, recommendationID, wishlistIDs); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.removed event",
			slog.String("wishlist_id", wishlistID),
			slog.String("recommendation_id", recommendationID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "recommendation removed from wishlist",
		slog.String("wishlist_id", wishlistID),
		slog.String("recommendation_id", recommendationID),
	)

	return &domain.Membership{WishlistIDs: wishlistIDs}, nil
}

func (s *WishlistService) ownedWishlist(ctx context.Context, userID, wishlistID string) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user_id is required")
	}
	if wishlistID == "" {
		return nil, apperrors.InvalidInput("wishlist_id is required")
	}

	wishlist, err := s.repo.GetByID(ctx, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("get wishlist: %w", err)
	}
	if wishlist.UserID != userID {
		return nil, apperrors.Forbidden("wishlist belongs to another user")
	}

	return wishlist, nil
}

func (s *WishlistService) invalidateSummaries(ctx context.Context, userID string) {
	if err := s.summaries.Invalidate(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "wishlist summary cache invalidation failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
