package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vietcart/search-service/pkg/httputil"

	"github.com/vietcart/search-service/internal/service"
)

// ProductHandler serves the product-scoped reads built on the catalog:
// similar products and per-product statistics.
type ProductHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.SearchService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// Similar handles GET /api/products/{productId}/similar
func (h *ProductHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")

	limit := service.DefaultSimilarLimit
	if v := intParam(r.URL.Query(), "limit"); v > 0 && v <= 50 {
		limit = v
	}

	products, err := h.service.Similar(r.Context(), id, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, products)
}

// Stats handles GET /api/products/{productId}/stats
func (h *ProductHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")

	stats, err := h.service.Stats(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, stats)
}
