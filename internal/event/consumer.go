// Package event consumes product lifecycle events and keeps the full-text
// index in sync with the catalog.
package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/vietcart/search-service/pkg/errors"
	pkgkafka "github.com/vietcart/search-service/pkg/kafka"

	"github.com/vietcart/search-service/internal/domain"
	"github.com/vietcart/search-service/internal/service"
)

// Consumer handles product change events for search indexing. Events carry
// only the product ID; the catalog is reloaded so stale payloads can never
// overwrite fresher data.
type Consumer struct {
	searchService *service.SearchService
	logger        *slog.Logger
}

// NewConsumer creates a new event consumer for the search service.
func NewConsumer(searchService *service.SearchService, logger *slog.Logger) *Consumer {
	return &Consumer{
		searchService: searchService,
		logger:        logger,
	}
}

// Handle processes a Kafka event based on its type. Unknown types are
// logged and skipped so a shared topic can carry events this service does
// not care about.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case domain.EventProductCreated, domain.EventProductUpdated:
		return c.handleProductUpserted(ctx, event)
	case domain.EventProductDeleted:
		return c.handleProductDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleProductUpserted indexes a created or updated product from the
// catalog. A product already deleted from the catalog by the time the event
// arrives is removed from the index instead.
func (c *Consumer) handleProductUpserted(ctx context.Context, event *pkgkafka.Event) error {
	id, err := productID(event)
	if err != nil {
		return err
	}

	if err := c.searchService.IndexProductByID(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.logger.InfoContext(ctx, "product gone from catalog, removing from index",
				slog.String("product_id", id),
			)
			return c.searchService.DeleteProduct(ctx, id)
		}
		return fmt.Errorf("index product from %s event: %w", event.EventType, err)
	}

	c.logger.InfoContext(ctx, "indexed product from event",
		slog.String("event_type", event.EventType),
		slog.String("product_id", id),
	)
	return nil
}

// handleProductDeleted removes a deleted product from the index.
func (c *Consumer) handleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	id, err := productID(event)
	if err != nil {
		return err
	}

	if err := c.searchService.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product from deleted event: %w", err)
	}

	c.logger.InfoContext(ctx, "deleted product from event",
		slog.String("product_id", id),
	)
	return nil
}

// productID extracts the product ID from the event payload, falling back to
// the aggregate ID when the payload omits it.
func productID(event *pkgkafka.Event) (string, error) {
	var payload domain.ProductEventPayload
	if err := event.UnmarshalData(&payload); err != nil {
		return "", fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}
	if payload.ProductID != "" {
		return payload.ProductID, nil
	}
	if event.AggregateID != "" {
		return event.AggregateID, nil
	}
	return "", fmt.Errorf("%s event carries no product id", event.EventType)
}
