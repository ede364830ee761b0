package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/vietcart/search-service/internal/domain"
)

// suggesterName keys the completion block in both request and response.
const suggesterName = "product-suggest"

// esSuggestResponse is the structure used to decode completion suggester
// responses.
type esSuggestResponse struct {
	Suggest map[string][]struct {
		Options []struct {
			Text  string  `json:"text"`
			Score float64 `json:"_score"`
		} `json:"options"`
	} `json:"suggest"`
}

// Suggest returns autocomplete candidates for the given prefix using the
// completion suggester on the name.suggest subfield. Duplicate texts are
// skipped server-side.
func (e *Engine) Suggest(ctx context.Context, prefix string, limit int) ([]domain.Suggestion, error) {
	if limit <= 0 {
		limit = 10
	}

	body := map[string]interface{}{
		"suggest": map[string]interface{}{
			suggesterName: map[string]interface{}{
				"prefix": prefix,
				"completion": map[string]interface{}{
					"field":           "name.suggest",
					"size":            limit,
					"skip_duplicates": true,
				},
			},
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch suggest: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch suggest: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch suggest: %s", e.decodeError(res.Body, res.Status()))
	}

	var esResp esSuggestResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch suggest: decode response: %w", err)
	}

	var out []domain.Suggestion
	for _, block := range esResp.Suggest[suggesterName] {
		for _, opt := range block.Options {
			out = append(out, domain.Suggestion{Text: opt.Text, Score: opt.Score})
		}
	}
	return out, nil
}
