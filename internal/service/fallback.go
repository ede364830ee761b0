package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vietcart/search-service/internal/catalog"
	"github.com/vietcart/search-service/internal/domain"
)

// filterFrom maps a normalized search request onto the catalog filter. The
// default max price sentinel becomes an open bound so the catalog query
// stays index-friendly.
func filterFrom(req *domain.SearchRequest) catalog.Filter {
	f := catalog.Filter{
		ActiveOnly:    true,
		Text:          strings.TrimSpace(req.Query),
		CategoryID:    req.CategoryID,
		Brand:         req.Brand,
		MinPrice:      req.MinPrice,
		HasDiscount:   req.HasDiscount,
		HasPromotion:  req.HasPromotion,
		PromotionType: req.PromotionType,
		MinViews:      req.MinViews,
		MinRating:     req.MinRating,
	}
	if req.MaxPrice < domain.DefaultMaxPrice {
		f.MaxPrice = req.MaxPrice
	}
	return f
}

// fallbackSearch answers a search from the catalog store with substring
// matching. Results carry no scores or highlights; paging and filters keep
// the same meaning as on the full-text path.
func (s *SearchService) fallbackSearch(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResult, error) {
	start := time.Now()
	filter := filterFrom(req)
	sorts := catalog.SortFor(req.SortBy)

	var (
		wg       sync.WaitGroup
		products []domain.Product
		total    int64
		findErr  error
		countErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		products, findErr = s.catalog.Find(ctx, filter, sorts, req.Offset(), req.PageSize)
	}()
	go func() {
		defer wg.Done()
		total, countErr = s.catalog.Count(ctx, filter)
	}()
	wg.Wait()

	if findErr != nil {
		return nil, findErr
	}
	if countErr != nil {
		return nil, countErr
	}

	names := s.categoryNames(ctx)
	hits := make([]domain.SearchHit, 0, len(products))
	for i := range products {
		doc := domain.NewIndexDocument(&products[i], names[products[i].CategoryID])
		hits = append(hits, domain.SearchHit{IndexDocument: doc})
	}

	return &domain.SearchResult{
		Hits:    hits,
		Total:   total,
		Page:    req.Page,
		PerPage: req.PageSize,
		TookMs:  time.Since(start).Milliseconds(),
	}, nil
}
