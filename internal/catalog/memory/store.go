// Package memory provides an in-memory catalog store used in tests and
// local development. It mirrors the MongoDB accessor's semantics closely
// enough for the search paths to be exercised without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/vietcart/search-service/pkg/errors"

	"github.com/vietcart/search-service/internal/catalog"
	"github.com/vietcart/search-service/internal/domain"
)

const similarPriceBand = 0.5

var _ catalog.Store = (*Store)(nil)

// Store is a thread-safe in-memory catalog.
type Store struct {
	mu         sync.RWMutex
	products   map[string]domain.Product
	categories map[string]domain.Category
	failing    bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		products:   make(map[string]domain.Product),
		categories: make(map[string]domain.Category),
	}
}

// Put inserts or replaces a product.
func (s *Store) Put(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// PutCategory inserts or replaces a category.
func (s *Store) PutCategory(c domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

// SetFailing makes every subsequent call return ErrServiceUnavail. Tests
// use it to drive the degraded paths.
func (s *Store) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

func (s *Store) checkFailing() error {
	if s.failing {
		return apperrors.ErrServiceUnavail
	}
	return nil
}

// FindByID loads one product by id.
func (s *Store) FindByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}

	p, ok := s.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return &p, nil
}

// Find lists products matching the filter in the given order.
func (s *Store) Find(_ context.Context, f catalog.Filter, sorts []catalog.Sort, offset, limit int) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}

	matched := s.matchLocked(f)
	sortProducts(matched, sorts)

	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// Count returns the number of products matching the filter.
func (s *Store) Count(_ context.Context, f catalog.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return 0, err
	}
	return int64(len(s.matchLocked(f))), nil
}

// FindSimilarCandidates returns active products related to the anchor.
func (s *Store) FindSimilarCandidates(_ context.Context, anchor *domain.Product, limit int) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}

	out := make([]domain.Product, 0, limit)
	for _, p := range s.sortedByIDLocked() {
		if !p.IsActive || p.ID == anchor.ID {
			continue
		}
		related := p.CategoryID == anchor.CategoryID ||
			(anchor.Brand != "" && p.Brand == anchor.Brand) ||
			p.TagOverlap(anchor.Tags) ||
			(p.Price >= anchor.Price*(1-similarPriceBand) && p.Price <= anchor.Price*(1+similarPriceBand))
		if !related {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// StreamActive walks all active products in batches of batchSize.
func (s *Store) StreamActive(_ context.Context, batchSize int, fn func([]domain.Product) error) error {
	s.mu.RLock()
	if err := s.checkFailing(); err != nil {
		s.mu.RUnlock()
		return err
	}
	var active []domain.Product
	for _, p := range s.sortedByIDLocked() {
		if p.IsActive {
			active = append(active, p)
		}
	}
	s.mu.RUnlock()

	for start := 0; start < len(active); start += batchSize {
		end := start + batchSize
		if end > len(active) {
			end = len(active)
		}
		if err := fn(active[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// IncrementViews bumps the product's view counter by one.
func (s *Store) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFailing(); err != nil {
		return err
	}

	p, ok := s.products[id]
	if !ok {
		return apperrors.NotFound("product", id)
	}
	p.Views++
	s.products[id] = p
	return nil
}

// ListCategories returns all active categories ordered by name.
func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}

	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// TopBrands returns the most frequent brands among active products.
func (s *Store) TopBrands(_ context.Context, limit int) ([]domain.BrandCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, p := range s.products {
		if p.IsActive && p.Brand != "" {
			counts[p.Brand]++
		}
	}
	out := make([]domain.BrandCount, 0, len(counts))
	for brand, n := range counts {
		out = append(out, domain.BrandCount{Brand: brand, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Brand < out[j].Brand
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PriceStats aggregates min/max/avg price over active products.
func (s *Store) PriceStats(_ context.Context) (domain.RangeStats, error) {
	return s.rangeStats(func(p domain.Product) float64 { return p.Price })
}

// ViewStats aggregates min/max/avg view counts over active products.
func (s *Store) ViewStats(_ context.Context) (domain.RangeStats, error) {
	return s.rangeStats(func(p domain.Product) float64 { return float64(p.Views) })
}

func (s *Store) rangeStats(value func(domain.Product) float64) (domain.RangeStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return domain.RangeStats{}, err
	}

	var stats domain.RangeStats
	var n int
	var sum float64
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		v := value(p)
		if n == 0 {
			stats.Min, stats.Max = v, v
		}
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		sum += v
		n++
	}
	if n > 0 {
		stats.Avg = sum / float64(n)
	}
	return stats, nil
}

// PromotionBreakdown groups active promotions by type with counts and
// average percentages.
func (s *Store) PromotionBreakdown(_ context.Context) ([]domain.PromotionStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}

	type key struct{ typ, label string }
	counts := make(map[key]*domain.PromotionStat)
	sums := make(map[key]float64)
	for _, p := range s.products {
		if !p.IsActive || !p.Promotion.IsActive || p.Promotion.Type == "" {
			continue
		}
		k := key{p.Promotion.Type, p.Promotion.Label}
		if counts[k] == nil {
			counts[k] = &domain.PromotionStat{Type: k.typ, Label: k.label}
		}
		counts[k].Count++
		sums[k] += float64(p.Promotion.Percentage)
	}

	out := make([]domain.PromotionStat, 0, len(counts))
	for k, stat := range counts {
		stat.AvgPercentage = sums[k] / float64(stat.Count)
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

// Ping reports the simulated connectivity state.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkFailing()
}

// matchLocked evaluates the filter against every product. Caller holds the
// read lock.
func (s *Store) matchLocked(f catalog.Filter) []domain.Product {
	var out []domain.Product
	for _, p := range s.sortedByIDLocked() {
		if matches(p, f) {
			out = append(out, p)
		}
	}
	return out
}

// sortedByIDLocked returns products in a stable order so pagination is
// deterministic across calls.
func (s *Store) sortedByIDLocked() []domain.Product {
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func anyContainsFold(values []string, needle string) bool {
	for _, v := range values {
		if containsFold(v, needle) {
			return true
		}
	}
	return false
}

func matches(p domain.Product, f catalog.Filter) bool {
	if f.ActiveOnly && !p.IsActive {
		return false
	}
	if f.ExcludeID != "" && p.ID == f.ExcludeID {
		return false
	}
	if f.Text != "" {
		hit := containsFold(p.Name, f.Text) ||
			containsFold(p.Description, f.Text) ||
			containsFold(p.Brand, f.Text) ||
			anyContainsFold(p.SearchKeywords, f.Text) ||
			anyContainsFold(p.Tags, f.Text)
		if !hit {
			return false
		}
	}
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.MinPrice > 0 && p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	if f.Brand != "" && !containsFold(p.Brand, f.Brand) {
		return false
	}
	if f.HasDiscount && !p.Discount.IsActive {
		return false
	}
	if f.HasPromotion && !p.Promotion.IsActive {
		return false
	}
	if f.PromotionType != "" && (!p.Promotion.IsActive || p.Promotion.Type != f.PromotionType) {
		return false
	}
	if f.MinViews > 0 && p.Views < f.MinViews {
		return false
	}
	if f.MinRating > 0 && p.Ratings.Average < f.MinRating {
		return false
	}
	return true
}

func sortProducts(products []domain.Product, sorts []catalog.Sort) {
	if len(sorts) == 0 {
		return
	}
	sort.SliceStable(products, func(i, j int) bool {
		for _, s := range sorts {
			cmp := compareField(products[i], products[j], s.Field)
			if cmp == 0 {
				continue
			}
			if s.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func compareField(a, b domain.Product, field string) int {
	switch field {
	case "price":
		return compareFloat(a.Price, b.Price)
	case "createdAt":
		if a.CreatedAt.Equal(b.CreatedAt) {
			return 0
		}
		if a.CreatedAt.Before(b.CreatedAt) {
			return -1
		}
		return 1
	case "views":
		return compareFloat(float64(a.Views), float64(b.Views))
	case "ratings.average":
		return compareFloat(a.Ratings.Average, b.Ratings.Average)
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "featured":
		return compareBool(a.Featured, b.Featured)
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}
