package service

import (
	"context"
	"log/slog"

	"github.com/vietcart/search-service/pkg/kafka"
	"github.com/vietcart/search-service/pkg/logger"

	"github.com/vietcart/search-service/internal/domain"
)

// RecordView bumps a product's view counter in the catalog and publishes a
// product.viewed event. The publish is best effort: a broker outage must
// not lose the counter update that already happened.
func (s *SearchService) RecordView(ctx context.Context, productID string) error {
	if err := s.catalog.IncrementViews(ctx, productID); err != nil {
		return err
	}

	if s.publisher != nil {
		event, err := kafka.NewEvent(
			domain.EventProductViewed,
			productID,
			domain.AggregateProduct,
			"search-service",
			domain.ViewEventPayload{ProductID: productID},
		)
		if err == nil {
			event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))
			if pubErr := s.publisher.Publish(ctx, domain.TopicSearchEvents, event); pubErr != nil {
				s.logger.WarnContext(ctx, "failed to publish view event",
					slog.String("product_id", productID),
					slog.String("error", pubErr.Error()),
				)
			}
		}
	}

	s.logger.DebugContext(ctx, "product view recorded", slog.String("product_id", productID))
	return nil
}

// Stats returns the per-product statistics read used on detail surfaces.
func (s *SearchService) Stats(ctx context.Context, productID string) (*domain.ProductStats, error) {
	p, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	stats := &domain.ProductStats{
		ProductID:     p.ID,
		Views:         p.Views,
		AverageRating: p.Ratings.Average,
		RatingCount:   p.Ratings.Count,
		Stock:         p.Stock,
		Featured:      p.Featured,
		HasDiscount:   p.Discount.IsActive,
		HasPromotion:  p.Promotion.IsActive,
	}
	if p.Promotion.IsActive {
		stats.PromotionType = p.Promotion.Type
		stats.PromotionLabel = p.Promotion.Label
	}
	return stats, nil
}
