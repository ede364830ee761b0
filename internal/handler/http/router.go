package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietcart/search-service/pkg/health"
	"github.com/vietcart/search-service/pkg/middleware"

	"github.com/vietcart/search-service/internal/service"
)

// filtersCacheSeconds is how long clients may cache the facet snapshot.
const filtersCacheSeconds = 300

// RouterConfig carries the deployment-specific knobs of the HTTP surface.
type RouterConfig struct {
	CORS       middleware.CORSConfig
	PprofCIDRs []string
}

// NewRouter creates a chi router with all search service routes registered.
func NewRouter(
	searchService *service.SearchService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("search"))
	r.Use(middleware.Tracing("search-service"))
	r.Use(middleware.CORS(cfg.CORS))

	// Health and operational endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	searchHandler := NewSearchHandler(searchService, logger)
	productHandler := NewProductHandler(searchService, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/search", func(r chi.Router) {
			r.Get("/", searchHandler.Search)
			r.Get("/suggestions", searchHandler.Suggestions)
			r.With(middleware.CacheControl(filtersCacheSeconds)).
				Get("/filters", searchHandler.Filters)
			r.Post("/view/{productId}", searchHandler.RecordView)
			r.Post("/reindex", searchHandler.Reindex)
		})

		r.Route("/products/{productId}", func(r chi.Router) {
			r.Get("/similar", productHandler.Similar)
			r.Get("/stats", productHandler.Stats)
		})
	})

	return r
}
