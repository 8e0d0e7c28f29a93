package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/romarioraffington/prepped-client-sub000/internal/domain"
	"github.com/romarioraffington/prepped-client-sub000/pkg/database"
	apperrors "github.com/romarioraffington/prepped-client-sub000/pkg/errors"
)

const wishlistColumns = `id, user_id, name, cover_image_url, saved_count, created_at, updated_at`

// WishlistRepository implements repository.WishlistRepository using PostgreSQL.
type WishlistRepository struct {
	pool database.DBTX
}

// NewWishlistRepository creates a new PostgreSQL-backed wishlist repository.
func NewWishlistRepository(pool database.DBTX) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

// Create inserts a new wishlist.
func (r *WishlistRepository) Create(ctx context.Context, w *domain.Wishlist) error {
	query := `
		INSERT INTO wishlists (id, user_id, name, cover_image_url, saved_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		w.ID,
		w.UserID,
		w.Name,
		w.CoverImageURL,
		w.SavedCount,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("wishlist", "name", w.Name)
		}
		return fmt.Errorf("insert wishlist: %w", err)
	}

	return nil
}

// GetByID retrieves a wishlist by its ID.
func (r *WishlistRepository) GetByID(ctx context.Context, id string) (*domain.Wishlist, error) {
	query := `SELECT ` + wishlistColumns + ` FROM wishlists WHERE id = $1`

	var w domain.Wishlist
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&w.ID,
		&w.UserID,
		&w.Name,
		&w.CoverImageURL,
		&w.SavedCount,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("wishlist", id)
		}
		return nil, fmt.Errorf("scan wishlist: %w", err)
	}

	return &w, nil
}

// ListByUser returns the user's wishlists, newest first. A non-empty
// recommendationID adds a per-wishlist contains flag for it.
func (r *WishlistRepository) ListByUser(ctx context.Context, userID, recommendationID string) ([]domain.Wishlist, error) {
	if recommendationID == "" {
		return r.listPlain(ctx, userID)
	}
	return r.listWithContains(ctx, userID, recommendationID)
}

func (r *WishlistRepository) listPlain(ctx context.Context, userID string) ([]domain.Wishlist, error) {
	query := `SELECT ` + wishlistColumns + ` FROM wishlists WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlists: %w", err)
	}
	defer rows.Close()

	wishlists := []domain.Wishlist{}
	for rows.Next() {
		var w domain.Wishlist
		if err := rows.Scan(
			&w.ID,
			&w.UserID,
			&w.Name,
			&w.CoverImageURL,
			&w.SavedCount,
			&w.CreatedAt,
			&w.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan wishlist row: %w", err)
		}
		wishlists = append(wishlists, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist rows: %w", err)
	}

	return wishlists, nil
}

func (r *WishlistRepository) listWithContains(ctx context.Context, userID, recommendationID string) ([]domain.Wishlist, error) {
	query := `
		SELECT ` + wishlistColumns + `,
			   EXISTS(
				   SELECT 1 FROM wishlist_recommendations wr
				   WHERE wr.wishlist_id = wishlists.id AND wr.recommendation_id = $2
			   ) AS contains_recommendation
		FROM wishlists
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("list wishlists with contains flag: %w", err)
	}
	defer rows.Close()

	wishlists := []domain.Wishlist{}
	for rows.Next() {
		var (
			w        domain.Wishlist
			contains bool
		)
		if err := rows.Scan(
			&w.ID,
			&w.UserID,
			&w.Name,
			&w.CoverImageURL,
			&w.SavedCount,
			&w.CreatedAt,
			&w.UpdatedAt,
			&contains,
		); err != nil {
			return nil, fmt.Errorf("scan wishlist row: %w", err)
		}
		w.ContainsRecommendation = &contains
		wishlists = append(wishlists, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist rows: %w", err)
	}

	return wishlists, nil
}

// Delete removes a wishlist; memberships cascade at the schema level.
func (r *WishlistRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM wishlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete wishlist: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist", id)
	}

	return nil
}

// AddRecommendation records membership idempotently and bumps the saved count
// only when a row was actually inserted. Runs in one transaction so the count
// can never drift from the membership table.
func (r *WishlistRepository) AddRecommendation(ctx context.Context, wishlistID, recommendationID string) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := checkExists(ctx, tx, "wishlists", "wishlist", wishlistID); err != nil {
		return nil, err
	}
	if err := checkExists(ctx, tx, "recommendations", "recommendation", recommendationID); err != nil {
		return nil, err
	}

	ct, err := tx.Exec(ctx, `
		INSERT INTO wishlist_recommendations (wishlist_id, recommendation_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`,
		wishlistID, recommendationID, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert membership: %w", err)
	}

	if ct.RowsAffected() == 1 {
		if _, err := tx.Exec(ctx, `
			UPDATE wishlists SET saved_count = saved_count + 1, updated_at = $2 WHERE id = $1`,
			wishlistID, time.Now().UTC(),
		); err != nil {
			return nil, fmt.Errorf("increment saved count: %w", err)
		}
	}

	membership, err := membershipOf(ctx, tx, recommendationID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return membership, nil
}

// RemoveRecommendation deletes membership idempotently and lowers the saved
// count with a floor of zero, in one transaction.
func (r *WishlistRepository) RemoveRecommendation(ctx context.Context, wishlistID, recommendationID string) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := checkExists(ctx, tx, "wishlists", "wishlist", wishlistID); err != nil {
		return nil, err
	}

	ct, err := tx.Exec(ctx, `
		DELETE FROM wishlist_recommendations
		WHERE wishlist_id = $1 AND recommendation_id = $2`,
		wishlistID, recommendationID,
	)
	if err != nil {
		return nil, fmt.Errorf("delete membership: %w", err)
	}

	if ct.RowsAffected() == 1 {
		if _, err := tx.Exec(ctx, `
			UPDATE wishlists SET saved_count = GREATEST(saved_count - 1, 0), updated_at = $2 WHERE id = $1`,
			wishlistID, time.Now().UTC(),
		); err != nil {
			return nil, fmt.Errorf("decrement saved count: %w", err)
		}
	}

	membership, err := membershipOf(ctx, tx, recommendationID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return membership, nil
}

func checkExists(ctx context.Context, tx pgx.Tx, table, resource, id string) error {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, table)
	if err := tx.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return fmt.Errorf("check %s exists: %w", resource, err)
	}
	if !exists {
		return apperrors.NotFound(resource, id)
	}
	return nil
}

func membershipOf(ctx context.Context, tx pgx.Tx, recommendationID string) ([]string, error) {
	rows, err := tx.Query(ctx, `
		SELECT wishlist_id FROM wishlist_recommendations
		WHERE recommendation_id = $1
		ORDER BY created_at, wishlist_id`,
		recommendationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query membership: %w", err)
	}
	defer rows.Close()

	membership := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan membership row: %w", err)
		}
		membership = append(membership, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate membership rows: %w", err)
	}

	return membership, nil
}

// isUniqueViolation checks for a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
