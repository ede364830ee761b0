// Package catalog defines read access to the product collection: filtered
// listing, counting, named aggregations, and the atomic view-counter bump.
// The catalog is the source of truth; the full-text index is a rebuildable
// projection of it.
package catalog

import (
	"context"

	"github.com/vietcart/search-service/internal/domain"
)

// Filter is the engine-agnostic predicate set evaluated against the product
// collection. Text and Brand are case-insensitive substring matches (the
// documented precision gap of the fallback path: no fuzziness). Zero values
// mean "no constraint" except ActiveOnly, which callers set explicitly.
type Filter struct {
	ActiveOnly    bool
	Text          string
	CategoryID    string
	Brand         string
	MinPrice      float64
	MaxPrice      float64
	HasDiscount   bool
	HasPromotion  bool
	PromotionType string
	MinViews      int64
	MinRating     float64
	ExcludeID     string
}

// Sort is one catalog ordering instruction.
type Sort struct {
	Field string
	Desc  bool
}

// SortFor maps a search sort option onto catalog orderings. Relevance has
// no native score here, so it degrades to featured-first recency; that is
// also the fallback for unknown options.
func SortFor(sortBy string) []Sort {
	switch sortBy {
	case domain.SortPriceAsc:
		return []Sort{{Field: "price"}}
	case domain.SortPriceDesc:
		return []Sort{{Field: "price", Desc: true}}
	case domain.SortNewest:
		return []Sort{{Field: "createdAt", Desc: true}}
	case domain.SortOldest:
		return []Sort{{Field: "createdAt"}}
	case domain.SortViews:
		return []Sort{{Field: "views", Desc: true}}
	case domain.SortRating:
		return []Sort{{Field: "ratings.average", Desc: true}}
	case domain.SortNameAsc:
		return []Sort{{Field: "name"}}
	case domain.SortNameDesc:
		return []Sort{{Field: "name", Desc: true}}
	default:
		return []Sort{{Field: "featured", Desc: true}, {Field: "createdAt", Desc: true}}
	}
}

// Store is the read-mostly catalog accessor. Aggregations are separate
// named operations so each stays a small, independently testable pipeline.
type Store interface {
	// FindByID loads one product. Returns errors.ErrNotFound when absent.
	FindByID(ctx context.Context, id string) (*domain.Product, error)

	// Find lists products matching the filter in the given order.
	Find(ctx context.Context, f Filter, sort []Sort, offset, limit int) ([]domain.Product, error)

	// Count returns the number of products matching the filter.
	Count(ctx context.Context, f Filter) (int64, error)

	// FindSimilarCandidates returns active products sharing category,
	// brand, any tag, or a +/-50% price band with the anchor, excluding
	// the anchor itself. The limit bounds the scoring pool.
	FindSimilarCandidates(ctx context.Context, anchor *domain.Product, limit int) ([]domain.Product, error)

	// StreamActive walks all active products in batches of batchSize,
	// invoking fn per batch. Used by the full reindex.
	StreamActive(ctx context.Context, batchSize int, fn func([]domain.Product) error) error

	// IncrementViews atomically bumps the product's view counter by one.
	IncrementViews(ctx context.Context, id string) error

	// ListCategories returns all active categories.
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// TopBrands returns the most frequent brands among active products.
	TopBrands(ctx context.Context, limit int) ([]domain.BrandCount, error)

	// PriceStats aggregates min/max/avg price over active products.
	PriceStats(ctx context.Context) (domain.RangeStats, error)

	// ViewStats aggregates min/max/avg view counts over active products.
	ViewStats(ctx context.Context) (domain.RangeStats, error)

	// PromotionBreakdown groups active promotions by type with counts and
	// average percentages, most frequent first.
	PromotionBreakdown(ctx context.Context) ([]domain.PromotionStat, error)

	// Ping checks connectivity to the underlying store.
	Ping(ctx context.Context) error
}
