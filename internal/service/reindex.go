package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietcart/search-service/internal/domain"
	"github.com/vietcart/search-service/internal/engine"
)

// ReindexAll rebuilds the full-text index from the catalog: every active
// product is streamed in batches and bulk upserted. The operation is
// idempotent, rerunning it converges the index on the catalog state.
// Individual document failures are reported, not fatal. A batchSize of zero
// or less uses the configured default.
func (s *SearchService) ReindexAll(ctx context.Context, batchSize int) (*engine.BulkReport, error) {
	start := time.Now()

	if batchSize <= 0 {
		batchSize = s.reindexBatchSize
	}

	if err := s.engine.EnsureIndex(ctx); err != nil {
		return nil, err
	}

	names := s.categoryNames(ctx)
	report := &engine.BulkReport{}

	err := s.catalog.StreamActive(ctx, batchSize, func(batch []domain.Product) error {
		docs := make([]domain.IndexDocument, 0, len(batch))
		for i := range batch {
			docs = append(docs, domain.NewIndexDocument(&batch[i], names[batch[i].CategoryID]))
		}

		batchReport, err := s.engine.BulkIndex(ctx, docs)
		if err != nil {
			return err
		}
		report.Indexed += batchReport.Indexed
		report.Failed = append(report.Failed, batchReport.Failed...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "full reindex completed",
		slog.Int("indexed", report.Indexed),
		slog.Int("failed", report.FailedCount()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}
