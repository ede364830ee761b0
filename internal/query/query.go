// Package query builds a typed, engine-agnostic representation of a product
// search. The weighting constants live here as named values; engine packages
// serialize the tree into their own wire format.
package query

import (
	"strings"

	"github.com/vietcart/search-service/internal/domain"
)

// Field boosts for the weighted multi-field fuzzy match, the phrase-prefix
// clause, and the wildcard clause. Name hits dominate; brand and tags only
// contribute baseline weight.
const (
	BoostName         = 3.0
	BoostDescription  = 2.0
	BoostKeywords     = 2.0
	BoostBrand        = 1.0
	BoostTags         = 1.0
	BoostPhrasePrefix = 3.0
	BoostWildcard     = 1.5
	BoostFuzzyGroup   = 2.0
)

// Clause is one node of the query tree.
type Clause interface {
	clause()
}

// Term requires an exact value on a keyword or boolean field.
type Term struct {
	Field string
	Value any
}

// Range constrains a numeric field. Nil bounds are open.
type Range struct {
	Field string
	GTE   any
	LTE   any
}

// MultiMatch is a fuzzy match over several weighted fields. Fuzziness is
// automatic edit-distance scaled to term length.
type MultiMatch struct {
	Query  string
	Fields []WeightedField
	Boost  float64
}

// WeightedField pairs a field name with its boost.
type WeightedField struct {
	Name  string
	Boost float64
}

// PhrasePrefix matches documents whose field starts with the query as a
// phrase, ranking exact-prefix hits highest.
type PhrasePrefix struct {
	Field string
	Query string
	Boost float64
}

// Wildcard is a substring match on the raw keyword value of a field. The
// value is lower-cased at build time.
type Wildcard struct {
	Field string
	Value string
	Boost float64
}

// All combines sub-clauses with AND semantics.
type All struct {
	Clauses []Clause
}

func (Term) clause()         {}
func (Range) clause()        {}
func (MultiMatch) clause()   {}
func (PhrasePrefix) clause() {}
func (Wildcard) clause()     {}
func (All) clause()          {}

// SortField is one explicit ordering instruction. An empty Sort list means
// native relevance ordering.
type SortField struct {
	Field string
	Desc  bool
}

// Query is the full typed search: hard filters (AND), an optional
// should-group of which at least one must match, explicit ordering, paging,
// and highlight targets.
type Query struct {
	Filters   []Clause
	Should    []Clause
	Sort      []SortField
	From      int
	Size      int
	Highlight []string
}

// sortTable maps sort options to explicit field orderings. Relevance is
// absent on purpose: it keeps the engine's native score ordering.
var sortTable = map[string][]SortField{
	domain.SortPriceAsc:  {{Field: "price"}},
	domain.SortPriceDesc: {{Field: "price", Desc: true}},
	domain.SortNewest:    {{Field: "createdAt", Desc: true}},
	domain.SortOldest:    {{Field: "createdAt"}},
	domain.SortViews:     {{Field: "views", Desc: true}},
	domain.SortRating:    {{Field: "ratings.average", Desc: true}},
	domain.SortNameAsc:   {{Field: "name.keyword"}},
	domain.SortNameDesc:  {{Field: "name.keyword", Desc: true}},
}

// Build translates a normalized search request into the typed query tree.
// It is pure and never fails; unrecognized inputs have already been clamped
// by Normalize.
func Build(req *domain.SearchRequest) *Query {
	q := &Query{
		From: req.Offset(),
		Size: req.PageSize,
	}

	// Inactive products never surface, on any path.
	q.Filters = append(q.Filters, Term{Field: "isActive", Value: true})

	if text := strings.TrimSpace(req.Query); text != "" {
		q.Should = append(q.Should,
			MultiMatch{
				Query: text,
				Fields: []WeightedField{
					{Name: "name", Boost: BoostName},
					{Name: "description", Boost: BoostDescription},
					{Name: "searchKeywords", Boost: BoostKeywords},
					{Name: "brand", Boost: BoostBrand},
					{Name: "tags", Boost: BoostTags},
				},
				Boost: BoostFuzzyGroup,
			},
			PhrasePrefix{Field: "name", Query: text, Boost: BoostPhrasePrefix},
			Wildcard{Field: "name.keyword", Value: "*" + strings.ToLower(text) + "*", Boost: BoostWildcard},
		)
		q.Highlight = []string{"name", "description"}
	}

	if req.CategoryID != "" {
		q.Filters = append(q.Filters, Term{Field: "category.id", Value: req.CategoryID})
	}

	// The price range is always applied; Normalize has filled the defaults.
	q.Filters = append(q.Filters, Range{Field: "price", GTE: req.MinPrice, LTE: req.MaxPrice})

	if req.Brand != "" {
		q.Filters = append(q.Filters, Term{Field: "brand.keyword", Value: req.Brand})
	}
	if req.HasDiscount {
		q.Filters = append(q.Filters, Term{Field: "discount.isActive", Value: true})
	}
	if req.HasPromotion {
		q.Filters = append(q.Filters, Term{Field: "promotion.isActive", Value: true})
	}
	if req.PromotionType != "" {
		q.Filters = append(q.Filters, All{Clauses: []Clause{
			Term{Field: "promotion.isActive", Value: true},
			Term{Field: "promotion.type", Value: req.PromotionType},
		}})
	}
	if req.MinViews > 0 {
		q.Filters = append(q.Filters, Range{Field: "views", GTE: req.MinViews})
	}
	if req.MinRating > 0 {
		q.Filters = append(q.Filters, Range{Field: "ratings.average", GTE: req.MinRating})
	}

	if sort, ok := sortTable[req.SortBy]; ok {
		q.Sort = sort
	}

	return q
}
