package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/vietcart/search-service/internal/catalog"
	"github.com/vietcart/search-service/internal/domain"
)

// MinSuggestPrefixLen is the shortest prefix that triggers a suggestion
// lookup. Shorter prefixes return empty without any round-trip.
const MinSuggestPrefixLen = 2

// DefaultSuggestLimit caps suggestion lists when the caller does not ask
// for a specific count.
const DefaultSuggestLimit = 10

// Suggest returns autocomplete candidates for a prefix. The completion
// index answers first; when it fails, active product names are prefix
// matched in the catalog with a uniform score.
func (s *SearchService) Suggest(ctx context.Context, prefix string, limit int) ([]domain.Suggestion, error) {
	prefix = strings.TrimSpace(prefix)
	if utf8.RuneCountInString(prefix) < MinSuggestPrefixLen {
		return []domain.Suggestion{}, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	suggestions, err := s.engine.Suggest(ctx, prefix, limit)
	if err == nil {
		if suggestions == nil {
			suggestions = []domain.Suggestion{}
		}
		return suggestions, nil
	}

	s.logger.WarnContext(ctx, "suggest failed, falling back to catalog prefix match",
		slog.String("prefix", prefix),
		slog.String("error", err.Error()),
	)
	return s.fallbackSuggest(ctx, prefix, limit)
}

// fallbackSuggest prefix-matches active product names and curated keywords
// in the catalog. Scores are uniform since there is no relevance signal.
func (s *SearchService) fallbackSuggest(ctx context.Context, prefix string, limit int) ([]domain.Suggestion, error) {
	// Over-fetch: the substring filter is wider than the prefix check below.
	products, err := s.catalog.Find(ctx,
		catalog.Filter{ActiveOnly: true, Text: prefix}, nil, 0, limit*3)
	if err != nil {
		return nil, err
	}

	prefixLower := strings.ToLower(prefix)
	seen := make(map[string]struct{})
	out := make([]domain.Suggestion, 0, limit)

	add := func(text string) {
		if len(out) >= limit {
			return
		}
		if !strings.HasPrefix(strings.ToLower(text), prefixLower) {
			return
		}
		key := strings.ToLower(text)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, domain.Suggestion{Text: text, Score: 1.0})
	}

	for i := range products {
		add(products[i].Name)
		for _, kw := range products[i].SearchKeywords {
			add(kw)
		}
	}
	return out, nil
}
