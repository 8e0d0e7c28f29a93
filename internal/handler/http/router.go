package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/romarioraffington/prepped-client-sub000/internal/service"
	"github.com/romarioraffington/prepped-client-sub000/pkg/health"
	"github.com/romarioraffington/prepped-client-sub000/pkg/middleware"
)

// NewRouter creates a chi router with all wishlist service routes registered.
func NewRouter(
	wishlistService *service.WishlistService,
	recommendationService *service.RecommendationService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("wishlist"))
	r.Use(middleware.Tracing("wishlist"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	wishlistHandler := NewWishlistHandler(wishlistService, recommendationService, logger)
	recommendationHandler := NewRecommendationHandler(recommendationService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/wishlists", func(r chi.Router) {
			r.Use(UserIDFromHeader)

			r.Post("/", wishlistHandler.CreateWishlist)
			r.Get("/", wishlistHandler.ListWishlists)
			r.Get("/{wishlistID}", wishlistHandler.GetWishlist)
			r.Delete("/{wishlistID}", wishlistHandler.DeleteWishlist)

			r.Get("/{wishlistID}/recommendations", wishlistHandler.ListWishlistRecommendations)
			r.Post("/{wishlistID}/recommendations/{recommendationID}", wishlistHandler.AddRecommendation)
			r.Delete("/{wishlistID}/recommendations/{recommendationID}", wishlistHandler.RemoveRecommendation)
		})

		r.Post("/recommendations", recommendationHandler.CreateRecommendation)

		// Public recommendation reads are cacheable at the edge.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(60))

			r.Get("/recommendations/{slug}", recommendationHandler.GetRecommendation)
			r.Get("/imports/{importID}/recommendations", recommendationHandler.ListImportRecommendations)
			r.Get("/cookbooks/{cookbookID}/recommendations", recommendationHandler.ListCookbookRecommendations)
		})
	})

	return r
}
