package elasticsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietcart/search-service/internal/domain"
	"github.com/vietcart/search-service/internal/query"
)

func buildBody(t *testing.T, req *domain.SearchRequest) map[string]interface{} {
	t.Helper()
	req.Normalize()
	return serialize(query.Build(req))
}

func boolQuery(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	q, ok := body["query"].(map[string]interface{})
	require.True(t, ok)
	b, ok := q["bool"].(map[string]interface{})
	require.True(t, ok)
	return b
}

func TestSerialize_TextQuery_ShouldGroup(t *testing.T) {
	body := buildBody(t, &domain.SearchRequest{Query: "iphone"})
	b := boolQuery(t, body)

	should, ok := b["should"].([]interface{})
	require.True(t, ok)
	require.Len(t, should, 3)
	assert.Equal(t, 1, b["minimum_should_match"])

	mm := should[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "iphone", mm["query"])
	assert.Equal(t, "AUTO", mm["fuzziness"])
	assert.ElementsMatch(t, []string{"name^3", "description^2", "searchKeywords^2", "brand^1", "tags^1"}, mm["fields"])

	prefix := should[1].(map[string]interface{})["match_phrase_prefix"].(map[string]interface{})
	name := prefix["name"].(map[string]interface{})
	assert.Equal(t, "iphone", name["query"])
	assert.Equal(t, query.BoostPhrasePrefix, name["boost"])

	wildcard := should[2].(map[string]interface{})["wildcard"].(map[string]interface{})
	kw := wildcard["name.keyword"].(map[string]interface{})
	assert.Equal(t, "*iphone*", kw["value"])
}

func TestSerialize_EmptyQuery_NoShouldGroup(t *testing.T) {
	body := buildBody(t, &domain.SearchRequest{})
	b := boolQuery(t, body)

	assert.Nil(t, b["should"])
	assert.Nil(t, b["minimum_should_match"])
	assert.Nil(t, body["highlight"])

	// Filters still carry isActive and the default price range.
	filters, ok := b["filter"].([]interface{})
	require.True(t, ok)
	require.Len(t, filters, 2)
	term := filters[0].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, true, term["isActive"])
}

func TestSerialize_Filters(t *testing.T) {
	body := buildBody(t, &domain.SearchRequest{
		CategoryID:  "cat-1",
		Brand:       "Acme",
		MinPrice:    10,
		MaxPrice:    100,
		HasDiscount: true,
		MinRating:   4,
	})
	b := boolQuery(t, body)

	filters, ok := b["filter"].([]interface{})
	require.True(t, ok)
	// isActive, category, price range, brand, discount, rating.
	require.Len(t, filters, 6)

	var sawCategory, sawBrand, sawDiscount bool
	for _, f := range filters {
		if term, ok := f.(map[string]interface{})["term"].(map[string]interface{}); ok {
			if v, ok := term["category.id"]; ok {
				sawCategory = true
				assert.Equal(t, "cat-1", v)
			}
			if v, ok := term["brand.keyword"]; ok {
				sawBrand = true
				assert.Equal(t, "Acme", v)
			}
			if v, ok := term["discount.isActive"]; ok {
				sawDiscount = true
				assert.Equal(t, true, v)
			}
		}
	}
	assert.True(t, sawCategory)
	assert.True(t, sawBrand)
	assert.True(t, sawDiscount)
}

func TestSerialize_PromotionTypeIsNestedBool(t *testing.T) {
	body := buildBody(t, &domain.SearchRequest{PromotionType: domain.PromotionFlashSale})
	b := boolQuery(t, body)

	filters, ok := b["filter"].([]interface{})
	require.True(t, ok)

	var nested map[string]interface{}
	for _, f := range filters {
		if inner, ok := f.(map[string]interface{})["bool"].(map[string]interface{}); ok {
			nested = inner
		}
	}
	require.NotNil(t, nested, "promotionType should serialize as a nested bool")

	must, ok := nested["must"].([]interface{})
	require.True(t, ok)
	require.Len(t, must, 2)
}

func TestSerialize_SortAndPagination(t *testing.T) {
	body := buildBody(t, &domain.SearchRequest{
		SortBy:   domain.SortPriceDesc,
		Page:     3,
		PageSize: 20,
	})

	assert.Equal(t, 40, body["from"])
	assert.Equal(t, 20, body["size"])
	assert.Equal(t, true, body["track_total_hits"])

	sorts, ok := body["sort"].([]interface{})
	require.True(t, ok)
	require.Len(t, sorts, 1)
	price := sorts[0].(map[string]interface{})["price"].(map[string]interface{})
	assert.Equal(t, "desc", price["order"])
}

func TestSerialize_RelevanceKeepsNativeOrdering(t *testing.T) {
	body := buildBody(t, &domain.SearchRequest{Query: "phone", SortBy: domain.SortRelevance})
	assert.Nil(t, body["sort"])
}

func TestSerialize_HighlightFields(t *testing.T) {
	body := buildBody(t, &domain.SearchRequest{Query: "phone"})

	highlight, ok := body["highlight"].(map[string]interface{})
	require.True(t, ok)
	fields, ok := highlight["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "description")
}

func TestSerialize_NameSortUsesKeywordSubfield(t *testing.T) {
	body := buildBody(t, &domain.SearchRequest{SortBy: domain.SortNameAsc})

	sorts, ok := body["sort"].([]interface{})
	require.True(t, ok)
	entry := sorts[0].(map[string]interface{})
	_, ok = entry["name.keyword"]
	assert.True(t, ok)
}
