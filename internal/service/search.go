package service

import (
	"context"
	"log/slog"

	apperrors "github.com/vietcart/search-service/pkg/errors"

	"github.com/vietcart/search-service/internal/domain"
)

// Search runs a product search, fuzzy full-text first. When the full-text
// engine fails for any reason the request is retried once against the
// catalog store; only when both paths fail does the caller see an error.
func (s *SearchService) Search(ctx context.Context, req *domain.SearchRequest) (*Outcome, error) {
	req.Normalize()

	result, err := s.engine.Search(ctx, req)
	if err == nil {
		searchRequestsTotal.WithLabelValues(EngineFulltext).Inc()
		s.logger.DebugContext(ctx, "search served by full-text index",
			slog.String("query", req.Query),
			slog.Int64("total", result.Total),
			slog.Int64("took_ms", result.TookMs),
		)
		return &Outcome{Engine: EngineFulltext, Fuzzy: true, Result: result}, nil
	}

	searchFallbackTotal.Inc()
	s.logger.WarnContext(ctx, "full-text search failed, falling back to catalog store",
		slog.String("query", req.Query),
		slog.String("error", err.Error()),
	)

	result, fbErr := s.fallbackSearch(ctx, req)
	if fbErr != nil {
		searchUnavailableTotal.Inc()
		s.logger.ErrorContext(ctx, "catalog fallback search failed",
			slog.String("query", req.Query),
			slog.String("error", fbErr.Error()),
		)
		return nil, apperrors.Unavailable("search unavailable")
	}

	searchRequestsTotal.WithLabelValues(EngineCatalog).Inc()
	return &Outcome{Engine: EngineCatalog, Fuzzy: false, Result: result}, nil
}
