package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/romarioraffington/prepped-client-sub000/internal/service"
	"github.com/romarioraffington/prepped-client-sub000/pkg/httputil"
	"github.com/romarioraffington/prepped-client-sub000/pkg/pagination"
	"github.com/romarioraffington/prepped-client-sub000/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	wishlists       *service.WishlistService
	recommendations *service.RecommendationService
	logger          *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(wishlists *service.WishlistService, recommendations *service.RecommendationService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlists:       wishlists,
		recommendations: recommendations,
		logger:          logger,
	}
}

// --- Request DTOs ---

// CreateWishlistRequest is the JSON request body for creating a wishlist.
type CreateWishlistRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=100"`
	CoverImageURL string `json:"cover_image_url" validate:"omitempty,url"`
}

// --- Handlers ---

// CreateWishlist handles POST /api/v1/wishlists
func (h *WishlistHandler) CreateWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req CreateWishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	wishlist, err := h.wishlists.CreateWishlist(r.Context(), service.CreateWishlistInput{
		UserID:        userID,
		Name:          req.Name,
		CoverImageURL: req.CoverImageURL,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: wishlist})
}

// ListWishlists handles GET /api/v1/wishlists
//
// An optional recommendation_id query parameter makes every returned wishlist
// carry a contains_recommendation flag for that recommendation.
func (h *WishlistHandler) ListWishlists(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	recommendationID := r.URL.Query().Get("recommendation_id")

	wishlists, err := h.wishlists.ListWishlists(r.Context(), userID, recommendationID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlists})
}

// GetWishlist handles GET /api/v1/wishlists/{wishlistID}
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	wishlistID := chi.URLParam(r, "wishlistID")

	wishlist, err := h.wishlists.GetWishlist(r.Context(), userID, wishlistID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlist})
}

// DeleteWishlist handles DELETE /api/v1/wishlists/{wishlistID}
func (h *WishlistHandler) DeleteWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	wishlistID := chi.URLParam(r, "wishlistID")

	if err := h.wishlists.DeleteWishlist(r.Context(), userID, wishlistID); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListWishlistRecommendations handles GET /api/v1/wishlists/{wishlistID}/recommendations
func (h *WishlistHandler) ListWishlistRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	wishlistID := chi.URLParam(r, "wishlistID")

	// Ownership check before exposing the wishlist's contents.
	if _, err := h.wishlists.GetWishlist(r.Context(), userID, wishlistID); err != nil {
		h.writeError(w, r, err)
		return
	}

	params := pagination.FromRequest(r)
	result, err := h.recommendations.ListByWishlist(r.Context(), wishlistID, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// AddRecommendation handles POST /api/v1/wishlists/{wishlistID}/recommendations/{recommendationID}
//
// The response carries the recommendation's full membership so clients can
// reconcile optimistic state against the authoritative list.
func (h *WishlistHandler) AddRecommendation(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	wishlistID := chi.URLParam(r, "wishlistID")
	recommendationID := chi.URLParam(r, "recommendationID")

	membership, err := h.wishlists.AddRecommendation(r.Context(), userID, wishlistID, recommendationID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: membership})
}

// RemoveRecommendation handles DELETE /api/v1/wishlists/{wishlistID}/recommendations/{recommendationID}
func (h *WishlistHandler) RemoveRecommendation(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	wishlistID := chi.URLParam(r, "wishlistID")
	recommendationID := chi.URLParam(r, "recommendationID")

	membership, err := h.wishlists.RemoveRecommendation(r.Context(), userID, wishlistID, recommendationID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: membership})
}

// --- Helpers ---

func (h *WishlistHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err, h.logger)
}

func writeUnauthorized(w http.ResponseWriter) {
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
	})
}
