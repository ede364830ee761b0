package domain

// Sort options for search results.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortViews     = "views"
	SortRating    = "rating"
	SortNameAsc   = "name_asc"
	SortNameDesc  = "name_desc"
)

// ValidSortOptions returns the list of valid sort options.
func ValidSortOptions() []string {
	return []string{
		SortRelevance, SortPriceAsc, SortPriceDesc,
		SortNewest, SortOldest, SortViews, SortRating,
		SortNameAsc, SortNameDesc,
	}
}

// IsValidSort checks whether the given sort string is a valid sort option.
func IsValidSort(sort string) bool {
	for _, s := range ValidSortOptions() {
		if s == sort {
			return true
		}
	}
	return false
}

// Default and maximum page sizes for search requests.
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	DefaultMaxPrice = 999999999
)

// SearchRequest holds all parameters for one search call. It is built per
// request and discarded after the response.
type SearchRequest struct {
	Query         string  `json:"query"`
	CategoryID    string  `json:"categoryId,omitempty"`
	MinPrice      float64 `json:"minPrice"`
	MaxPrice      float64 `json:"maxPrice"`
	Brand         string  `json:"brand,omitempty"`
	HasDiscount   bool    `json:"hasDiscount"`
	HasPromotion  bool    `json:"hasPromotion"`
	PromotionType string  `json:"promotionType,omitempty"`
	MinViews      int64   `json:"minViews"`
	MinRating     float64 `json:"minRating"`
	SortBy        string  `json:"sortBy"`
	Page          int     `json:"page"`
	PageSize      int     `json:"pageSize"`
}

// Normalize clamps the request into its valid domain instead of rejecting
// it: page >= 1, 0 < pageSize <= MaxPageSize, min <= max price (swapped when
// inverted), unknown sortBy falls back to relevance, unknown promotionType
// is dropped. It never fails.
func (r *SearchRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = DefaultPageSize
	}
	if r.PageSize > MaxPageSize {
		r.PageSize = MaxPageSize
	}
	if r.MinPrice < 0 {
		r.MinPrice = 0
	}
	if r.MaxPrice <= 0 {
		r.MaxPrice = DefaultMaxPrice
	}
	if r.MinPrice > r.MaxPrice {
		r.MinPrice, r.MaxPrice = r.MaxPrice, r.MinPrice
	}
	if r.MinViews < 0 {
		r.MinViews = 0
	}
	if r.MinRating < 0 {
		r.MinRating = 0
	}
	if r.MinRating > 5 {
		r.MinRating = 5
	}
	if !IsValidSort(r.SortBy) {
		r.SortBy = SortRelevance
	}
	if r.PromotionType != "" && !IsValidPromotionType(r.PromotionType) {
		r.PromotionType = ""
	}
}

// Offset returns the pagination offset implied by page and page size.
func (r *SearchRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// SearchHit is one ranked result: the denormalized product snapshot, its
// relevance score, and optional highlighted fragments keyed by field name.
type SearchHit struct {
	IndexDocument
	Score     float64             `json:"score,omitempty"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// SearchResult is the paginated outcome of one search call, produced by
// either engine path in the same shape.
type SearchResult struct {
	Hits    []SearchHit `json:"hits"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"perPage"`
	TookMs  int64       `json:"tookMs"`
}

// TotalPages returns the number of pages implied by the total hit count.
func (r *SearchResult) TotalPages() int {
	if r.PerPage <= 0 {
		return 0
	}
	pages := int(r.Total) / r.PerPage
	if int(r.Total)%r.PerPage > 0 {
		pages++
	}
	return pages
}

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// BrandCount is one entry of the top-brands facet.
type BrandCount struct {
	Brand string `json:"brand"`
	Count int64  `json:"count"`
}

// RangeStats holds min/max/avg over a numeric field of the active catalog.
type RangeStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// PromotionStat is the per-type breakdown of active promotions.
type PromotionStat struct {
	Type          string  `json:"type"`
	Label         string  `json:"label,omitempty"`
	Count         int64   `json:"count"`
	AvgPercentage float64 `json:"avgPercentage"`
}

// FacetOption is a static filter choice offered to the UI.
type FacetOption struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Count int64  `json:"count,omitempty"`
}

// FacetSnapshot is the aggregated filter metadata computed on demand. Each
// field is independently degradable: a failed sub-aggregation leaves its
// field at the zero value without failing the snapshot.
type FacetSnapshot struct {
	Categories     []Category      `json:"categories"`
	Brands         []BrandCount    `json:"brands"`
	PriceRange     RangeStats      `json:"priceRange"`
	Promotions     []PromotionStat `json:"promotions"`
	ViewsRange     RangeStats      `json:"viewsRange"`
	DiscountCount  int64           `json:"discountCount"`
	PromotionCount int64           `json:"promotionCount"`
	RatingOptions  []FacetOption   `json:"ratingOptions"`
	ViewsOptions   []FacetOption   `json:"viewsOptions"`
}

// RatingOptions returns the static rating threshold choices.
func RatingOptions() []FacetOption {
	return []FacetOption{
		{Label: "5 stars", Value: 5},
		{Label: "4 stars & up", Value: 4},
		{Label: "3 stars & up", Value: 3},
		{Label: "2 stars & up", Value: 2},
		{Label: "1 star & up", Value: 1},
	}
}

// ViewsOptions returns the static view-count threshold choices.
func ViewsOptions() []FacetOption {
	return []FacetOption{
		{Label: "Over 500 views", Value: 500},
		{Label: "Over 300 views", Value: 300},
		{Label: "Over 100 views", Value: 100},
		{Label: "All", Value: 0},
	}
}
