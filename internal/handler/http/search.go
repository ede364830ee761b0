// Package http exposes the search API over REST. Query parameters are
// parsed tolerantly: malformed or out-of-range values fall back to defaults
// instead of rejecting the request.
package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vietcart/search-service/pkg/httputil"
	"github.com/vietcart/search-service/pkg/pagination"
	"github.com/vietcart/search-service/pkg/validator"

	"github.com/vietcart/search-service/internal/domain"
	"github.com/vietcart/search-service/internal/service"
)

// SearchHandler handles HTTP requests for search endpoints.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// searchInfo describes how a search response was produced.
type searchInfo struct {
	Query  string `json:"query"`
	TookMs int64  `json:"tookMs"`
	Engine string `json:"engine"`
	Fuzzy  bool   `json:"fuzzy"`
}

// --- Query parameter helpers ---

func floatParam(q url.Values, key string) float64 {
	v := q.Get(key)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func intParam(q url.Values, key string) int {
	v := q.Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func boolParam(q url.Values, key string) bool {
	b, err := strconv.ParseBool(q.Get(key))
	return err == nil && b
}

// parseSearchRequest builds a normalized search request from query
// parameters. It never fails; Normalize clamps every field into its valid
// domain.
func parseSearchRequest(r *http.Request) *domain.SearchRequest {
	q := r.URL.Query()
	paging := pagination.FromRequest(r)

	req := &domain.SearchRequest{
		Query:         strings.TrimSpace(q.Get("q")),
		CategoryID:    q.Get("category"),
		Brand:         q.Get("brand"),
		PromotionType: q.Get("promotionType"),
		SortBy:        q.Get("sortBy"),
		MinPrice:      floatParam(q, "minPrice"),
		MaxPrice:      floatParam(q, "maxPrice"),
		HasDiscount:   boolParam(q, "hasDiscount"),
		HasPromotion:  boolParam(q, "hasPromotion"),
		MinViews:      int64(intParam(q, "minViews")),
		MinRating:     floatParam(q, "minRating"),
		Page:          paging.Page,
		PageSize:      paging.Limit,
	}
	req.Normalize()
	return req
}

// --- Handlers ---

// Search handles GET /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	req := parseSearchRequest(r)

	outcome, err := h.service.Search(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result := outcome.Result
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Success:    true,
		Data:       result.Hits,
		Pagination: pagination.NewMeta(result.Page, result.PerPage, result.Total),
		SearchInfo: searchInfo{
			Query:  req.Query,
			TookMs: result.TookMs,
			Engine: outcome.Engine,
			Fuzzy:  outcome.Fuzzy,
		},
	})
}

// Suggestions handles GET /api/search/suggestions
func (h *SearchHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	prefix := strings.TrimSpace(q.Get("q"))

	limit := service.DefaultSuggestLimit
	if v := intParam(q, "limit"); v > 0 && v <= 20 {
		limit = v
	}

	suggestions, err := h.service.Suggest(r.Context(), prefix, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, suggestions)
}

// Filters handles GET /api/search/filters
func (h *SearchHandler) Filters(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, h.service.Facets(r.Context()))
}

// RecordView handles POST /api/search/view/{productId}
func (h *SearchHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")

	if err := h.service.RecordView(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Success: true,
		Message: "view recorded",
	})
}

// reindexRequest is the optional body of the reindex admin call.
type reindexRequest struct {
	BatchSize int `json:"batchSize" validate:"omitempty,gte=1,lte=10000"`
}

// Reindex handles POST /api/search/reindex. The rebuild runs synchronously
// so the caller gets the per-item outcome back. An optional JSON body tunes
// the streaming batch size for the run.
func (h *SearchHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	var req reindexRequest
	if r.ContentLength != 0 {
		if err := validator.DecodeAndValidate(r, &req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	}

	report, err := h.service.ReindexAll(r.Context(), req.BatchSize)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, map[string]any{
		"indexed": report.Indexed,
		"failed":  report.FailedCount(),
		"errors":  report.Failed,
	})
}
