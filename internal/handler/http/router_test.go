package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietcart/search-service/pkg/health"
	"github.com/vietcart/search-service/pkg/logger"
	"github.com/vietcart/search-service/pkg/middleware"
	"github.com/vietcart/search-service/pkg/pagination"

	catalogmemory "github.com/vietcart/search-service/internal/catalog/memory"
	"github.com/vietcart/search-service/internal/domain"
	enginememory "github.com/vietcart/search-service/internal/engine/memory"
	"github.com/vietcart/search-service/internal/service"
)

type fixture struct {
	router  http.Handler
	engine  *enginememory.Engine
	catalog *catalogmemory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	eng := enginememory.New()
	store := catalogmemory.New()
	log := logger.New("search-service-test", "error")
	svc := service.NewSearchService(eng, store, log)

	router := NewRouter(svc, health.NewHandler(), log, RouterConfig{
		CORS: middleware.DefaultCORSConfig(),
	})
	return &fixture{router: router, engine: eng, catalog: store}
}

func (f *fixture) seed(t *testing.T, p domain.Product) {
	t.Helper()
	f.catalog.Put(p)
	doc := domain.NewIndexDocument(&p, "")
	require.NoError(t, f.engine.Index(context.Background(), &doc))
}

// envelope mirrors the response body shape for decoding in tests.
type envelope struct {
	Success    bool             `json:"success"`
	Data       json.RawMessage  `json:"data"`
	Pagination *pagination.Meta `json:"pagination"`
	SearchInfo *struct {
		Query  string `json:"query"`
		TookMs int64  `json:"tookMs"`
		Engine string `json:"engine"`
		Fuzzy  bool   `json:"fuzzy"`
	} `json:"searchInfo"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func do(t *testing.T, router http.Handler, method, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return rec, env
}

func seedLaptop(t *testing.T, f *fixture) {
	f.seed(t, domain.Product{
		ID: "p1", Name: "Laptop Pro 15", Description: "Fast laptop",
		Price: 1500, CategoryID: "cat-1", Brand: "Acme",
		IsActive: true, Stock: 5, CreatedAt: time.Now(),
	})
}

func TestSearch_FulltextPath(t *testing.T) {
	f := newFixture(t)
	seedLaptop(t, f)
	f.seed(t, domain.Product{
		ID: "p2", Name: "Desk Chair", Price: 120,
		CategoryID: "cat-2", IsActive: true,
	})

	rec, env := do(t, f.router, http.MethodGet, "/api/search?q=laptop")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.SearchInfo)
	assert.Equal(t, service.EngineFulltext, env.SearchInfo.Engine)
	assert.True(t, env.SearchInfo.Fuzzy)
	assert.Equal(t, "laptop", env.SearchInfo.Query)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(1), env.Pagination.TotalItems)
	assert.Equal(t, 1, env.Pagination.CurrentPage)

	var hits []domain.SearchHit
	require.NoError(t, json.Unmarshal(env.Data, &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "p1", hits[0].ID)
}

func TestSearch_FallbackToCatalog(t *testing.T) {
	f := newFixture(t)
	seedLaptop(t, f)
	f.engine.SetFailing(true)

	rec, env := do(t, f.router, http.MethodGet, "/api/search?q=laptop")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.SearchInfo)
	assert.Equal(t, service.EngineCatalog, env.SearchInfo.Engine)
	assert.False(t, env.SearchInfo.Fuzzy)
	assert.Equal(t, int64(1), env.Pagination.TotalItems)
}

func TestSearch_BothEnginesDown_Returns503(t *testing.T) {
	f := newFixture(t)
	f.engine.SetFailing(true)
	f.catalog.SetFailing(true)

	rec, env := do(t, f.router, http.MethodGet, "/api/search?q=laptop")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "SERVICE_UNAVAILABLE", env.Code)
	assert.Equal(t, "search unavailable", env.Message)
}

func TestSearch_MalformedParamsAreClamped(t *testing.T) {
	f := newFixture(t)
	seedLaptop(t, f)

	rec, env := do(t, f.router, http.MethodGet,
		"/api/search?q=laptop&page=abc&limit=9999&minPrice=bogus&minRating=-3&sortBy=nonsense")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.CurrentPage)
	assert.Equal(t, domain.MaxPageSize, env.Pagination.ItemsPerPage)
}

func TestSearch_CategoryFilter(t *testing.T) {
	f := newFixture(t)
	seedLaptop(t, f)
	f.seed(t, domain.Product{
		ID: "p2", Name: "Laptop Air", Price: 900,
		CategoryID: "cat-2", IsActive: true,
	})

	_, env := do(t, f.router, http.MethodGet, "/api/search?q=laptop&category=cat-2")

	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(1), env.Pagination.TotalItems)

	var hits []domain.SearchHit
	require.NoError(t, json.Unmarshal(env.Data, &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "p2", hits[0].ID)
}

func TestSuggestions(t *testing.T) {
	f := newFixture(t)
	seedLaptop(t, f)

	rec, env := do(t, f.router, http.MethodGet, "/api/search/suggestions?q=lap")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var suggestions []domain.Suggestion
	require.NoError(t, json.Unmarshal(env.Data, &suggestions))
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Laptop Pro 15", suggestions[0].Text)
}

func TestSuggestions_ShortPrefixReturnsEmpty(t *testing.T) {
	f := newFixture(t)
	seedLaptop(t, f)
	// A one-rune prefix never reaches either backend.
	f.engine.SetFailing(true)
	f.catalog.SetFailing(true)

	rec, env := do(t, f.router, http.MethodGet, "/api/search/suggestions?q=l")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	// The data block is a bare array even when empty, never null.
	assert.Equal(t, "[]", strings.TrimSpace(string(env.Data)))
}

func TestFilters_ReturnsSnapshotWithCacheHeader(t *testing.T) {
	f := newFixture(t)
	seedLaptop(t, f)
	f.catalog.PutCategory(domain.Category{ID: "cat-1", Name: "Electronics", IsActive: true})

	rec, env := do(t, f.router, http.MethodGet, "/api/search/filters")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))

	var snapshot domain.FacetSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	require.Len(t, snapshot.Categories, 1)
	assert.Equal(t, "Electronics", snapshot.Categories[0].Name)
	assert.Len(t, snapshot.RatingOptions, 5)
	assert.Len(t, snapshot.ViewsOptions, 4)
}

func TestRecordView(t *testing.T) {
	f := newFixture(t)
	seedLaptop(t, f)

	rec, env := do(t, f.router, http.MethodPost, "/api/search/view/p1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	p, err := f.catalog.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Views)
}

func TestRecordView_UnknownProduct_Returns404(t *testing.T) {
	f := newFixture(t)

	rec, env := do(t, f.router, http.MethodPost, "/api/search/view/ghost")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestReindex(t *testing.T) {
	f := newFixture(t)
	f.catalog.Put(domain.Product{ID: "p1", Name: "One", IsActive: true})
	f.catalog.Put(domain.Product{ID: "p2", Name: "Two", IsActive: true})
	f.catalog.Put(domain.Product{ID: "p3", Name: "Gone", IsActive: false})

	rec, env := do(t, f.router, http.MethodPost, "/api/search/reindex")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var data struct {
		Indexed int `json:"indexed"`
		Failed  int `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 2, data.Indexed)
	assert.Equal(t, 0, data.Failed)
}

func TestReindex_WithBatchSizeBody(t *testing.T) {
	f := newFixture(t)
	f.catalog.Put(domain.Product{ID: "p1", Name: "One", IsActive: true})
	f.catalog.Put(domain.Product{ID: "p2", Name: "Two", IsActive: true})

	req := httptest.NewRequest(http.MethodPost, "/api/search/reindex",
		strings.NewReader(`{"batchSize": 1}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.True(t, env.Success)

	var data struct {
		Indexed int `json:"indexed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 2, data.Indexed)
}

func TestReindex_InvalidBatchSizeRejected(t *testing.T) {
	f := newFixture(t)
	f.catalog.Put(domain.Product{ID: "p1", Name: "One", IsActive: true})

	req := httptest.NewRequest(http.MethodPost, "/api/search/reindex",
		strings.NewReader(`{"batchSize": -5}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	// Nothing was indexed.
	result, err := f.engine.Search(context.Background(), &domain.SearchRequest{Query: "one", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, result.Total)
}

func TestSimilar(t *testing.T) {
	f := newFixture(t)
	f.catalog.Put(domain.Product{
		ID: "p1", Name: "Phone X", Price: 100,
		CategoryID: "cat-1", Brand: "Acme", IsActive: true,
	})
	f.catalog.Put(domain.Product{
		ID: "p2", Name: "Phone Y", Price: 110,
		CategoryID: "cat-1", Brand: "Acme", IsActive: true,
	})

	rec, env := do(t, f.router, http.MethodGet, "/api/products/p1/similar")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var products []domain.SimilarProduct
	require.NoError(t, json.Unmarshal(env.Data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "p2", products[0].ID)
	assert.Equal(t, 5, products[0].SimilarityScore)
}

func TestSimilar_UnknownAnchor_Returns404(t *testing.T) {
	f := newFixture(t)

	rec, env := do(t, f.router, http.MethodGet, "/api/products/ghost/similar")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	f.catalog.Put(domain.Product{
		ID: "p1", Name: "Phone X", Price: 100, Stock: 3,
		Views: 42, Ratings: domain.Ratings{Average: 4.5, Count: 10},
		IsActive: true,
	})

	rec, env := do(t, f.router, http.MethodGet, "/api/products/p1/stats")

	assert.Equal(t, http.StatusOK, rec.Code)

	var stats domain.ProductStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, "p1", stats.ProductID)
	assert.Equal(t, int64(42), stats.Views)
	assert.Equal(t, 4.5, stats.AverageRating)
	assert.Equal(t, 3, stats.Stock)
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
