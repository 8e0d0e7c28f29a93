package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/romarioraffington/prepped-client-sub000/internal/domain"
	"github.com/romarioraffington/prepped-client-sub000/internal/repository"
	"github.com/romarioraffington/prepped-client-sub000/pkg/database"
	apperrors "github.com/romarioraffington/prepped-client-sub000/pkg/errors"
)

// recommendationColumns selects the recommendation plus its aggregated
// wishlist membership as a text array.
const recommendationColumns = `r.id, r.slug, r.name, r.location, r.category, r.image_url,
	r.source_url, r.import_id, r.created_at, r.updated_at,
	COALESCE((
		SELECT array_agg(wr.wishlist_id ORDER BY wr.created_at, wr.wishlist_id)
		FROM wishlist_recommendations wr
		WHERE wr.recommendation_id = r.id
	), '{}') AS wishlist_ids`

// RecommendationRepository implements repository.RecommendationRepository
// using PostgreSQL.
type RecommendationRepository struct {
	pool database.DBTX
}

// NewRecommendationRepository creates a new PostgreSQL-backed recommendation repository.
func NewRecommendationRepository(pool database.DBTX) *RecommendationRepository {
	return &RecommendationRepository{pool: pool}
}

// Create inserts a new recommendation.
func (r *RecommendationRepository) Create(ctx context.Context, rec *domain.Recommendation) error {
	query := `
		INSERT INTO recommendations (id, slug, name, location, category, image_url, source_url, import_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.Slug,
		rec.Name,
		rec.Location,
		rec.Category,
		rec.ImageURL,
		rec.SourceURL,
		rec.ImportID,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("recommendation", "slug", rec.Slug)
		}
		return fmt.Errorf("insert recommendation: %w", err)
	}

	return nil
}

// GetBySlug retrieves a recommendation by its slug.
func (r *RecommendationRepository) GetBySlug(ctx context.Context, slug string) (*domain.Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations r WHERE r.slug = $1`
	return r.scanRecommendation(ctx, query, slug)
}

// GetByID retrieves a recommendation by its ID.
func (r *RecommendationRepository) GetByID(ctx context.Context, id string) (*domain.Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations r WHERE r.id = $1`
	return r.scanRecommendation(ctx, query, id)
}

// List returns one collection's recommendations with the total count.
func (r *RecommendationRepository) List(ctx context.Context, filter repository.RecommendationFilter) ([]domain.Recommendation, int, error) {
	var (
		join  string
		where string
		arg   string
	)

	switch {
	case filter.ImportID != nil:
		where = "WHERE r.import_id = $1"
		arg = *filter.ImportID
	case filter.CookbookID != nil:
		join = "JOIN cookbook_recommendations cr ON cr.recommendation_id = r.id"
		where = "WHERE cr.cookbook_id = $1"
		arg = *filter.CookbookID
	case filter.WishlistID != nil:
		join = "JOIN wishlist_recommendations m ON m.recommendation_id = r.id"
		where = "WHERE m.wishlist_id = $1"
		arg = *filter.WishlistID
	default:
		return nil, 0, apperrors.InvalidInput("a collection filter is required")
	}

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM recommendations r
		%s
		%s
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3`,
		recommendationColumns, join, where,
	)

	rows, err := r.pool.Query(ctx, query, arg, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list recommendations: %w", err)
	}
	defer rows.Close()

	var (
		recs       []domain.Recommendation
		totalCount int
	)

	for rows.Next() {
		var rec domain.Recommendation
		if err := rows.Scan(
			&rec.ID,
			&rec.Slug,
			&rec.Name,
			&rec.Location,
			&rec.Category,
			&rec.ImageURL,
			&rec.SourceURL,
			&rec.ImportID,
			&rec.CreatedAt,
			&rec.UpdatedAt,
			&rec.WishlistIDs,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan recommendation row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate recommendation rows: %w", err)
	}

	if recs == nil {
		recs = []domain.Recommendation{}
	}

	return recs, totalCount, nil
}

func (r *RecommendationRepository) scanRecommendation(ctx context.Context, query string, args ...any) (*domain.Recommendation, error) {
	var rec domain.Recommendation
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&rec.ID,
		&rec.Slug,
		&rec.Name,
		&rec.Location,
		&rec.Category,
		&rec.ImageURL,
		&rec.SourceURL,
		&rec.ImportID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.WishlistIDs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan recommendation: %w", err)
	}

	return &rec, nil
}
