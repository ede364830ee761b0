// Package service holds the search business logic: the dual-engine search
// orchestrator, similarity ranking, facet aggregation, suggestions, view
// tracking, and the full reindex.
package service

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vietcart/search-service/pkg/kafka"

	"github.com/vietcart/search-service/internal/catalog"
	"github.com/vietcart/search-service/internal/domain"
	"github.com/vietcart/search-service/internal/engine"
)

// Engine labels reported to clients so every response names the path that
// produced it.
const (
	EngineFulltext = "fulltext-index"
	EngineCatalog  = "catalog-store"
)

// DefaultReindexBatchSize is the number of products streamed per bulk call
// during a full reindex.
const DefaultReindexBatchSize = 500

var (
	searchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total number of search requests by serving engine",
		},
		[]string{"engine"},
	)

	searchFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_fallback_total",
			Help: "Total number of searches that fell back to the catalog store",
		},
	)

	searchUnavailableTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_unavailable_total",
			Help: "Total number of searches where both engines failed",
		},
	)
)

// EventPublisher is the slice of the Kafka producer the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// SearchService implements the business logic for all search operations.
type SearchService struct {
	engine           engine.SearchEngine
	catalog          catalog.Store
	publisher        EventPublisher
	logger           *slog.Logger
	reindexBatchSize int
}

// Option configures a SearchService.
type Option func(*SearchService)

// WithPublisher attaches an event publisher for product.viewed events.
// Without one, view tracking still updates the catalog but publishes nothing.
func WithPublisher(p EventPublisher) Option {
	return func(s *SearchService) { s.publisher = p }
}

// WithReindexBatchSize overrides the reindex streaming batch size.
func WithReindexBatchSize(n int) Option {
	return func(s *SearchService) {
		if n > 0 {
			s.reindexBatchSize = n
		}
	}
}

// NewSearchService creates a new search service.
func NewSearchService(eng engine.SearchEngine, store catalog.Store, logger *slog.Logger, opts ...Option) *SearchService {
	s := &SearchService{
		engine:           eng,
		catalog:          store,
		logger:           logger,
		reindexBatchSize: DefaultReindexBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Outcome tags a search result with the engine that produced it, so clients
// can tell a fuzzy full-text result from a degraded substring one.
type Outcome struct {
	Engine string               `json:"engine"`
	Fuzzy  bool                 `json:"fuzzy"`
	Result *domain.SearchResult `json:"result"`
}

// IndexProductByID reloads a product from the catalog and upserts its
// denormalized document into the full-text index. The catalog is the source
// of truth, so event payloads are never indexed directly.
func (s *SearchService) IndexProductByID(ctx context.Context, id string) error {
	p, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		return err
	}

	doc := domain.NewIndexDocument(p, s.categoryNames(ctx)[p.CategoryID])
	if err := s.engine.Index(ctx, &doc); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "product indexed",
		slog.String("product_id", id),
		slog.String("name", p.Name),
	)
	return nil
}

// DeleteProduct removes a product from the full-text index.
func (s *SearchService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.engine.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "product deleted from index",
		slog.String("product_id", id),
	)
	return nil
}

// categoryNames resolves category IDs to names for denormalization. A
// failing lookup degrades to bare references instead of failing the caller.
func (s *SearchService) categoryNames(ctx context.Context) map[string]string {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "category lookup failed, indexing bare references",
			slog.String("error", err.Error()),
		)
		return nil
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}
