package elasticsearch

import (
	"fmt"

	"github.com/vietcart/search-service/internal/query"
)

// serialize renders the typed query tree into the Elasticsearch query DSL.
// Filters go into the bool filter context (no scoring), the should-group
// keeps minimum_should_match of 1 so at least one text clause must hit.
func serialize(q *query.Query) map[string]interface{} {
	boolQuery := map[string]interface{}{}
	if len(q.Filters) > 0 {
		boolQuery["filter"] = serializeClauses(q.Filters)
	}
	if len(q.Should) > 0 {
		boolQuery["should"] = serializeClauses(q.Should)
		boolQuery["minimum_should_match"] = 1
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
		"from":             q.From,
		"size":             q.Size,
		"track_total_hits": true,
	}

	if len(q.Sort) > 0 {
		sorts := make([]interface{}, 0, len(q.Sort))
		for _, s := range q.Sort {
			order := "asc"
			if s.Desc {
				order = "desc"
			}
			sorts = append(sorts, map[string]interface{}{s.Field: map[string]interface{}{"order": order}})
		}
		body["sort"] = sorts
	}

	if len(q.Highlight) > 0 {
		fields := make(map[string]interface{}, len(q.Highlight))
		for _, f := range q.Highlight {
			fields[f] = map[string]interface{}{}
		}
		body["highlight"] = map[string]interface{}{"fields": fields}
	}

	return body
}

func serializeClauses(clauses []query.Clause) []interface{} {
	out := make([]interface{}, 0, len(clauses))
	for _, c := range clauses {
		out = append(out, serializeClause(c))
	}
	return out
}

func serializeClause(c query.Clause) map[string]interface{} {
	switch v := c.(type) {
	case query.Term:
		return map[string]interface{}{
			"term": map[string]interface{}{v.Field: v.Value},
		}
	case query.Range:
		bounds := map[string]interface{}{}
		if v.GTE != nil {
			bounds["gte"] = v.GTE
		}
		if v.LTE != nil {
			bounds["lte"] = v.LTE
		}
		return map[string]interface{}{
			"range": map[string]interface{}{v.Field: bounds},
		}
	case query.MultiMatch:
		fields := make([]string, 0, len(v.Fields))
		for _, f := range v.Fields {
			fields = append(fields, fmt.Sprintf("%s^%g", f.Name, f.Boost))
		}
		return map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     v.Query,
				"fields":    fields,
				"type":      "best_fields",
				"fuzziness": "AUTO",
				"boost":     v.Boost,
			},
		}
	case query.PhrasePrefix:
		return map[string]interface{}{
			"match_phrase_prefix": map[string]interface{}{
				v.Field: map[string]interface{}{
					"query": v.Query,
					"boost": v.Boost,
				},
			},
		}
	case query.Wildcard:
		return map[string]interface{}{
			"wildcard": map[string]interface{}{
				v.Field: map[string]interface{}{
					"value": v.Value,
					"boost": v.Boost,
				},
			},
		}
	case query.All:
		return map[string]interface{}{
			"bool": map[string]interface{}{
				"must": serializeClauses(v.Clauses),
			},
		}
	default:
		return map[string]interface{}{"match_none": map[string]interface{}{}}
	}
}
