package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vietcart/search-service/internal/catalog"
	"github.com/vietcart/search-service/internal/domain"
)

// topBrandsLimit caps the brands facet.
const topBrandsLimit = 20

// Facets computes the filter metadata snapshot: categories, top brands,
// price and view ranges, promotion breakdown, and discount counters. Each
// sub-aggregation degrades independently to its zero value on failure, so
// one slow or broken pipeline never empties the whole filter panel.
func (s *SearchService) Facets(ctx context.Context) *domain.FacetSnapshot {
	snapshot := &domain.FacetSnapshot{
		RatingOptions: domain.RatingOptions(),
		ViewsOptions:  domain.ViewsOptions(),
	}

	var wg sync.WaitGroup
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				s.logger.WarnContext(ctx, "facet aggregation degraded",
					slog.String("facet", name),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	run("categories", func() error {
		categories, err := s.catalog.ListCategories(ctx)
		if err != nil {
			return err
		}
		snapshot.Categories = categories
		return nil
	})
	run("brands", func() error {
		brands, err := s.catalog.TopBrands(ctx, topBrandsLimit)
		if err != nil {
			return err
		}
		snapshot.Brands = brands
		return nil
	})
	run("priceRange", func() error {
		stats, err := s.catalog.PriceStats(ctx)
		if err != nil {
			return err
		}
		snapshot.PriceRange = stats
		return nil
	})
	run("viewsRange", func() error {
		stats, err := s.catalog.ViewStats(ctx)
		if err != nil {
			return err
		}
		snapshot.ViewsRange = stats
		return nil
	})
	run("promotions", func() error {
		breakdown, err := s.catalog.PromotionBreakdown(ctx)
		if err != nil {
			return err
		}
		snapshot.Promotions = breakdown
		return nil
	})
	run("discountCount", func() error {
		n, err := s.catalog.Count(ctx, catalog.Filter{ActiveOnly: true, HasDiscount: true})
		if err != nil {
			return err
		}
		snapshot.DiscountCount = n
		return nil
	})
	run("promotionCount", func() error {
		n, err := s.catalog.Count(ctx, catalog.Filter{ActiveOnly: true, HasPromotion: true})
		if err != nil {
			return err
		}
		snapshot.PromotionCount = n
		return nil
	})

	wg.Wait()
	return snapshot
}
