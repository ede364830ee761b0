// Package memory is an in-memory search engine used in tests and local
// development. Matching is case-insensitive substring search with a crude
// field-weighted score, so relevance ordering is meaningful but not fuzzy.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vietcart/search-service/internal/domain"
	"github.com/vietcart/search-service/internal/engine"
	"github.com/vietcart/search-service/internal/query"
)

var _ engine.SearchEngine = (*Engine)(nil)

// Engine is an in-memory implementation of the SearchEngine interface.
// Thread-safe via sync.RWMutex.
type Engine struct {
	mu      sync.RWMutex
	docs    map[string]domain.IndexDocument
	failing bool
}

// New creates a new in-memory search engine.
func New() *Engine {
	return &Engine{
		docs: make(map[string]domain.IndexDocument),
	}
}

// SetFailing makes every subsequent call fail. Tests use it to drive the
// fallback path.
func (e *Engine) SetFailing(failing bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failing = failing
}

func (e *Engine) checkFailing() error {
	if e.failing {
		return context.DeadlineExceeded
	}
	return nil
}

// EnsureIndex is a no-op for the in-memory engine.
func (e *Engine) EnsureIndex(_ context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.checkFailing()
}

// Index adds or replaces a single document.
func (e *Engine) Index(_ context.Context, doc *domain.IndexDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkFailing(); err != nil {
		return err
	}

	e.docs[doc.ID] = *doc
	return nil
}

// Delete removes a document by its ID. Absent documents are ignored.
func (e *Engine) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkFailing(); err != nil {
		return err
	}

	delete(e.docs, id)
	return nil
}

// BulkIndex adds or replaces multiple documents.
func (e *Engine) BulkIndex(_ context.Context, docs []domain.IndexDocument) (*engine.BulkReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkFailing(); err != nil {
		return nil, err
	}

	for i := range docs {
		e.docs[docs[i].ID] = docs[i]
	}
	return &engine.BulkReport{Indexed: len(docs)}, nil
}

// Search executes a normalized search request against the index.
func (e *Engine) Search(_ context.Context, req *domain.SearchRequest) (*domain.SearchResult, error) {
	start := time.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.checkFailing(); err != nil {
		return nil, err
	}

	text := strings.ToLower(strings.TrimSpace(req.Query))

	var hits []domain.SearchHit
	for _, doc := range e.sortedDocsLocked() {
		if !matchesFilters(doc, req) {
			continue
		}
		score := scoreText(doc, text)
		if text != "" && score == 0 {
			continue
		}
		hits = append(hits, domain.SearchHit{IndexDocument: doc, Score: score})
	}

	sortHits(hits, req.SortBy)

	total := int64(len(hits))
	offset := req.Offset()
	if offset > len(hits) {
		offset = len(hits)
	}
	end := offset + req.PageSize
	if end > len(hits) {
		end = len(hits)
	}

	return &domain.SearchResult{
		Hits:    hits[offset:end],
		Total:   total,
		Page:    req.Page,
		PerPage: req.PageSize,
		TookMs:  time.Since(start).Milliseconds(),
	}, nil
}

// Suggest returns names of active documents starting with the prefix.
func (e *Engine) Suggest(_ context.Context, prefix string, limit int) ([]domain.Suggestion, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.checkFailing(); err != nil {
		return nil, err
	}

	prefixLower := strings.ToLower(prefix)
	var out []domain.Suggestion
	for _, doc := range e.sortedDocsLocked() {
		if !doc.IsActive {
			continue
		}
		if strings.HasPrefix(strings.ToLower(doc.Name), prefixLower) {
			out = append(out, domain.Suggestion{Text: doc.Name, Score: 1.0})
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Ping reports the simulated connectivity state.
func (e *Engine) Ping(_ context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.checkFailing()
}

// sortedDocsLocked returns documents in stable ID order so pagination is
// deterministic. Caller holds the read lock.
func (e *Engine) sortedDocsLocked() []domain.IndexDocument {
	out := make([]domain.IndexDocument, 0, len(e.docs))
	for _, d := range e.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func containsFold(haystack, needleLower string) bool {
	return strings.Contains(strings.ToLower(haystack), needleLower)
}

func anyContainsFold(values []string, needleLower string) bool {
	for _, v := range values {
		if containsFold(v, needleLower) {
			return true
		}
	}
	return false
}

// scoreText weights matches the way the query tree boosts its fields.
func scoreText(doc domain.IndexDocument, textLower string) float64 {
	if textLower == "" {
		return 0
	}
	var score float64
	if containsFold(doc.Name, textLower) {
		score += query.BoostName
	}
	if containsFold(doc.Description, textLower) {
		score += query.BoostDescription
	}
	if anyContainsFold(doc.SearchKeywords, textLower) {
		score += query.BoostKeywords
	}
	if containsFold(doc.Brand, textLower) {
		score += query.BoostBrand
	}
	if anyContainsFold(doc.Tags, textLower) {
		score += query.BoostTags
	}
	return score
}

// matchesFilters applies the hard filters of a normalized request.
func matchesFilters(doc domain.IndexDocument, req *domain.SearchRequest) bool {
	if !doc.IsActive {
		return false
	}
	if req.CategoryID != "" && doc.Category.ID != req.CategoryID {
		return false
	}
	if doc.Price < req.MinPrice || doc.Price > req.MaxPrice {
		return false
	}
	if req.Brand != "" && doc.Brand != req.Brand {
		return false
	}
	if req.HasDiscount && !doc.Discount.IsActive {
		return false
	}
	if req.HasPromotion && !doc.Promotion.IsActive {
		return false
	}
	if req.PromotionType != "" && (!doc.Promotion.IsActive || doc.Promotion.Type != req.PromotionType) {
		return false
	}
	if req.MinViews > 0 && doc.Views < req.MinViews {
		return false
	}
	if req.MinRating > 0 && doc.Ratings.Average < req.MinRating {
		return false
	}
	return true
}

// sortHits orders results per the sort option. Relevance uses the computed
// text score, highest first.
func sortHits(hits []domain.SearchHit, sortBy string) {
	switch sortBy {
	case domain.SortPriceAsc:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Price < hits[j].Price })
	case domain.SortPriceDesc:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Price > hits[j].Price })
	case domain.SortNewest:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].CreatedAt.After(hits[j].CreatedAt) })
	case domain.SortOldest:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].CreatedAt.Before(hits[j].CreatedAt) })
	case domain.SortViews:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Views > hits[j].Views })
	case domain.SortRating:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Ratings.Average > hits[j].Ratings.Average })
	case domain.SortNameAsc:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Name < hits[j].Name })
	case domain.SortNameDesc:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Name > hits[j].Name })
	default:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	}
}
