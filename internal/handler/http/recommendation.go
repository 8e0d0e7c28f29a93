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

// RecommendationHandler handles HTTP requests for recommendation endpoints.
type RecommendationHandler struct {
	recommendations *service.RecommendationService
	logger          *slog.Logger
}

// NewRecommendationHandler creates a new recommendation HTTP handler.
func NewRecommendationHandler(recommendations *service.RecommendationService, logger *slog.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recommendations: recommendations,
		logger:          logger,
	}
}

// CreateRecommendation handles POST /api/v1/recommendations
//
// Called by the import pipeline after a social post is parsed.
func (h *RecommendationHandler) CreateRecommendation(w http.ResponseWriter, r *http.Request) {
	var input service.CreateRecommendationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	rec, err := h.recommendations.CreateRecommendation(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: rec})
}

// GetRecommendation handles GET /api/v1/recommendations/{slug}
func (h *RecommendationHandler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	rec, err := h.recommendations.GetBySlug(r.Context(), slug)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rec})
}

// ListImportRecommendations handles GET /api/v1/imports/{importID}/recommendations
func (h *RecommendationHandler) ListImportRecommendations(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")
	params := pagination.FromRequest(r)

	result, err := h.recommendations.ListByImport(r.Context(), importID, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// ListCookbookRecommendations handles GET /api/v1/cookbooks/{cookbookID}/recommendations
func (h *RecommendationHandler) ListCookbookRecommendations(w http.ResponseWriter, r *http.Request) {
	cookbookID := chi.URLParam(r, "cookbookID")
	params := pagination.FromRequest(r)

	result, err := h.recommendations.ListByCookbook(r.Context(), cookbookID, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}
