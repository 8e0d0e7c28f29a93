package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/romarioraffington/prepped-client-sub000/internal/domain"
	"github.com/romarioraffington/prepped-client-sub000/internal/repository"
	apperrors "github.com/romarioraffington/prepped-client-sub000/pkg/errors"
	"github.com/romarioraffington/prepped-client-sub000/pkg/pagination"
	"github.com/romarioraffington/prepped-client-sub000/pkg/slug"
)

// RecommendationService implements the business logic for recommendation
// reads. Every returned recommendation carries its full wishlist membership.
type RecommendationService struct {
	repo   repository.RecommendationRepository
	logger *slog.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(repo repository.RecommendationRepository, logger *slog.Logger) *RecommendationService {
	return &RecommendationService{
		repo:   repo,
		logger: logger,
	}
}

// CreateRecommendationInput holds the fields supplied by import ingestion.
type CreateRecommendationInput struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Location  string `json:"location" validate:"omitempty,max=200"`
	Category  string `json:"category" validate:"omitempty,max=100"`
	ImageURL  string `json:"image_url" validate:"omitempty,url"`
	SourceURL string `json:"source_url" validate:"omitempty,url"`
	ImportID  string `json:"import_id"`
}

// CreateRecommendation stores a newly imported recommendation. The slug is
// derived from the name; a duplicate slug surfaces as an already-exists error.
func (s *RecommendationService) CreateRecommendation(ctx context.Context, input CreateRecommendationInput) (*domain.Recommendation, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	now := time.Now().UTC()
	rec := &domain.Recommendation{
		ID:          uuid.New().String(),
		Slug:        slug.Generate(input.Name),
		Name:        input.Name,
		Location:    input.Location,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		SourceURL:   input.SourceURL,
		ImportID:    input.ImportID,
		WishlistIDs: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create recommendation: %w", err)
	}

	s.logger.InfoContext(ctx, "recommendation created",
		slog.String("recommendation_id", rec.ID),
		slog.String("slug", rec.Slug),
	)

	return rec, nil
}

// GetBySlug retrieves a recommendation by its slug.
func (s *RecommendationService) GetBySlug(ctx context.Context, slug string) (*domain.Recommendation, error) {
	if slug == "" {
		return nil, apperrors.InvalidInput("slug is required")
	}

	rec, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get recommendation by slug: %w", err)
	}

	return rec, nil
}

// ListByImport returns one page of an import's recommendations.
func (s *RecommendationService) ListByImport(ctx context.Context, importID string, params pagination.Params) (pagination.Result[domain.Recommendation], error) {
	if importID == "" {
		return pagination.Result[domain.Recommendation]{}, apperrors.InvalidInput("import_id is required")
	}
	return s.list(ctx, repository.RecommendationFilter{
		ImportID: &importID,
		Page:     params.Page,
		PerPage:  params.PerPage,
	}, params)
}

// ListByCookbook returns one page of a cookbook's recommendations.
func (s *RecommendationService) ListByCookbook(ctx context.Context, cookbookID string, params pagination.Params) (pagination.Result[domain.Recommendation], error) {
	if cookbookID == "" {
		return pagination.Result[domain.Recommendation]{}, apperrors.InvalidInput("cookbook_id is required")
	}
	return s.list(ctx, repository.RecommendationFilter{
		CookbookID: &cookbookID,
		Page:       params.Page,
		PerPage:    params.PerPage,
	}, params)
}

// ListByWishlist returns one page of a wishlist's recommendations.
func (s *RecommendationService) ListByWishlist(ctx context.Context, wishlistID string, params pagination.Params) (pagination.Result[domain.Recommendation], error) {
	if wishlistID == "" {
		return pagination.Result[domain.Recommendation]{}, apperrors.InvalidInput("wishlist_id is required")
	}
	return s.list(ctx, repository.RecommendationFilter{
		WishlistID: &wishlistID,
		Page:       params.Page,
		PerPage:    params.PerPage,
	}, params)
}

func (s *RecommendationService) list(ctx context.Context, filter repository.RecommendationFilter, params pagination.Params) (pagination.Result[domain.Recommendation], error) {
	recs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Result[domain.Recommendation]{}, fmt.Errorf("list recommendations: %w", err)
	}

	return pagination.NewResult(recs, total, params), nil
}
