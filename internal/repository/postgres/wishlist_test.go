package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romarioraffington/prepped-client-sub000/internal/domain"
	"github.com/romarioraffington/prepped-client-sub000/pkg/database"
	apperrors "github.com/romarioraffington/prepped-client-sub000/pkg/errors"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return mock
}

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var wishlistTestColumns = []string{
	"id", "user_id", "name", "cover_image_url", "saved_count", "created_at", "updated_at",
}

func sampleWishlist() domain.Wishlist {
	return domain.Wishlist{
		ID:            "6f9d2a54-0000-4000-8000-000000000001",
		UserID:        "6f9d2a54-0000-4000-8000-0000000000aa",
		Name:          "Mexico City",
		CoverImageURL: "https://img.prepped.app/cdmx.jpg",
		SavedCount:    3,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// --- Create ---

func TestWishlistCreate(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewWishlistRepository(mock)

	w := sampleWishlist()

	mock.ExpectExec("INSERT INTO wishlists").
		WithArgs(w.ID, w.UserID, w.Name, w.CoverImageURL, w.SavedCount, w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), &w)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistCreateDuplicateName(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewWishlistRepository(mock)

	w := sampleWishlist()

	mock.ExpectExec("INSERT INTO wishlists").
		WithArgs(w.ID, w.UserID, w.Name, w.CoverImageURL, w.SavedCount, w.CreatedAt, w.UpdatedAt).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), &w)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- GetByID ---

func TestWishlistGetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewWishlistRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM wishlists WHERE id").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(wishlistTestColumns))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- ListByUser ---

func TestWishlistListByUserWithContainsFlag(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewWishlistRepository(mock)

	w := sampleWishlist()
	columns := append(append([]string{}, wishlistTestColumns...), "contains_recommendation")

	mock.ExpectQuery("AS contains_recommendation").
		WithArgs(w.UserID, "rec-1").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(w.ID, w.UserID, w.Name, w.CoverImageURL, w.SavedCount, w.CreatedAt, w.UpdatedAt, true))

	wishlists, err := repo.ListByUser(context.Background(), w.UserID, "rec-1")
	require.NoError(t, err)
	require.Len(t, wishlists, 1)
	require.NotNil(t, wishlists[0].ContainsRecommendation)
	assert.True(t, *wishlists[0].ContainsRecommendation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistListByUserPlainOmitsContainsFlag(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewWishlistRepository(mock)

	w := sampleWishlist()

	mock.ExpectQuery("SELECT (.+) FROM wishlists WHERE user_id").
		WithArgs(w.UserID).
		WillReturnRows(pgxmock.NewRows(wishlistTestColumns).
			AddRow(w.ID, w.UserID, w.Name, w.CoverImageURL, w.SavedCount, w.CreatedAt, w.UpdatedAt))

	wishlists, err := repo.ListByUser(context.Background(), w.UserID, "")
	require.NoError(t, err)
	require.Len(t, wishlists, 1)
	assert.Nil(t, wishlists[0].ContainsRecommendation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- AddRecommendation ---

func expectExists(mock pgxmock.PgxPoolIface, id string, exists bool) {
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(exists))
}

func TestAddRecommendationIncrementsCountOnNewMembership(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewWishlistRepository(mock)

	mock.ExpectBegin()
	expectExists(mock, "wl-1", true)
	expectExists(mock, "rec-1", true)
	mock.ExpectExec("INSERT INTO wishlist_recommendations").
		WithArgs("wl-1", "rec-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE wishlists SET saved_count = saved_count \\+ 1").
		WithArgs("wl-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("SELECT wishlist_id FROM wishlist_recommendations").
		WithArgs("rec-1").
		WillReturnRows(pgxmock.NewRows([]string{"wishlist_id"}).AddRow("wl-0").AddRow("wl-1"))
	mock.ExpectCommit()

	membership, err := repo.AddRecommendation(context.Background(), "wl-1", "rec-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"wl-0", "wl-1"}, membership)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRecommendationDuplicateDoesNotDoubleCount(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewWishlistRepository(mock)

	mock.ExpectBegin()
	expectExists(mock, "wl-1", true)
	expectExists(mock, "rec-1", true)
	mock.ExpectExec("INSERT INTO wishlist_recommendations").
		WithArgs("wl-1", "rec-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT wishlist_id FROM wishlist_recommendations").
		WithArgs("rec-1").
		WillReturnRows(pgxmock.NewRows([]string{"wishlist_id"}).AddRow("wl-1"))
	mock.ExpectCommit()

	membership, err := repo.AddRecommendation(context.Background(), "wl-1", "rec-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"wl-1"}, membership)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRecommendationWishlistGone(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewWishlistRepository(mock)

	mock.ExpectBegin()
	expectExists(mock, "wl-gone", false)
	mock.ExpectRollback()

	_, err := repo.AddRecommendation(context.Background(), "wl-gone", "rec-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- RemoveRecommendation ---

func TestRemoveRecommendationDecrementsWithFloor(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewWishlistRepository(mock)

	mock.ExpectBegin()
	expectExists(mock, "wl-1", true)
	mock.ExpectExec("DELETE FROM wishlist_recommendations").
		WithArgs("wl-1", "rec-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("UPDATE wishlists SET saved_count = GREATEST").
		WithArgs("wl-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("SELECT wishlist_id FROM wishlist_recommendations").
		WithArgs("rec-1").
		WillReturnRows(pgxmock.NewRows([]string{"wishlist_id"}))
	mock.ExpectCommit()

	membership, err := repo.RemoveRecommendation(context.Background(), "wl-1", "rec-1")
	require.NoError(t, err)
	assert.Empty(t, membership)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveRecommendationNonMemberSkipsDecrement(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewWishlistRepository(mock)

	mock.ExpectBegin()
	expectExists(mock, "wl-1", true)
	mock.ExpectExec("DELETE FROM wishlist_recommendations").
		WithArgs("wl-1", "rec-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectQuery("SELECT wishlist_id FROM wishlist_recommendations").
		WithArgs("rec-1").
		WillReturnRows(pgxmock.NewRows([]string{"wishlist_id"}))
	mock.ExpectCommit()

	_, err := repo.RemoveRecommendation(context.Background(), "wl-1", "rec-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Delete ---

func TestWishlistDelete(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewWishlistRepository(mock)

	mock.ExpectExec("DELETE FROM wishlists").
		WithArgs("wl-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), "wl-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistDeleteNotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewWishlistRepository(mock)

	mock.ExpectExec("DELETE FROM wishlists").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
