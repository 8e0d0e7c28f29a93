package repository

import (
	"context"

	"github.com/romarioraffington/prepped-client-sub000/internal/domain"
)

// RecommendationFilter selects which collection a recommendation list is
// drawn from. Exactly one of the three ids is set.
type RecommendationFilter struct {
	ImportID   *string
	CookbookID *string
	WishlistID *string
	Page       int
	PerPage    int
}

// WishlistRepository defines wishlist persistence operations.
type WishlistRepository interface {
	// Create inserts a new wishlist.
	Create(ctx context.Context, wishlist *domain.Wishlist) error

	// GetByID retrieves a wishlist by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Wishlist, error)

	// ListByUser returns the user's wishlists. When recommendationID is
	// non-empty each wishlist carries ContainsRecommendation for it.
	ListByUser(ctx context.Context, userID, recommendationID string) ([]domain.Wishlist, error)

	// Delete removes a wishlist and cascades its memberships, adjusting
	// nothing else; the recommendation rows stay.
	Delete(ctx context.Context, id string) error

	// AddRecommendation records membership and increments the wishlist's
	// saved count. Re-adding an existing membership changes nothing. The
	// returned slice is the recommendation's full membership afterward.
	AddRecommendation(ctx context.Context, wishlistID, recommendationID string) ([]string, error)

	// RemoveRecommendation deletes membership and decrements the saved
	// count, which never goes below zero. Removing a non-member is a no-op.
	// The returned slice is the remaining membership.
	RemoveRecommendation(ctx context.Context, wishlistID, recommendationID string) ([]string, error)
}

// RecommendationRepository defines recommendation persistence operations.
type RecommendationRepository interface {
	// Create inserts a new recommendation.
	Create(ctx context.Context, rec *domain.Recommendation) error

	// GetBySlug retrieves a recommendation by slug, including its wishlist
	// membership.
	GetBySlug(ctx context.Context, slug string) (*domain.Recommendation, error)

	// GetByID retrieves a recommendation by id, including its membership.
	GetByID(ctx context.Context, id string) (*domain.Recommendation, error)

	// List returns recommendations for one collection with the total count.
	List(ctx context.Context, filter RecommendationFilter) ([]domain.Recommendation, int, error)
}

// SummaryCache caches a user's wishlist list between mutations.
type SummaryCache interface {
	// Get returns the cached list, or apperrors.ErrNotFound on a miss.
	Get(ctx context.Context, userID string) ([]domain.Wishlist, error)

	// Set stores the list for the user.
	Set(ctx context.Context, userID string, wishlists []domain.Wishlist) error

	// Invalidate drops the cached list for the user.
	Invalidate(ctx context.Context, userID string) error
}
