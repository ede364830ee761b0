package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vietcart/search-service/pkg/errors"
	"github.com/vietcart/search-service/pkg/kafka"

	"github.com/vietcart/search-service/internal/domain"
)

type capturingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []*kafka.Event
	err    error
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event *kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func TestRecordView_IncrementsAndPublishes(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{}
	f := newFixture(t, WithPublisher(pub))
	seedProduct(t, f, "p1", "Viewed Product", 10)

	require.NoError(t, f.svc.RecordView(ctx, "p1"))
	require.NoError(t, f.svc.RecordView(ctx, "p1"))

	p, err := f.catalog.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.Views)

	require.Len(t, pub.events, 2)
	assert.Equal(t, domain.TopicSearchEvents, pub.topics[0])
	assert.Equal(t, domain.EventProductViewed, pub.events[0].EventType)
	assert.Equal(t, "p1", pub.events[0].AggregateID)

	var payload domain.ViewEventPayload
	require.NoError(t, pub.events[0].UnmarshalData(&payload))
	assert.Equal(t, "p1", payload.ProductID)
}

func TestRecordView_ConcurrentIncrementsAreNotLost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedProduct(t, f, "p1", "Viewed Product", 10)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.svc.RecordView(ctx, "p1"))
		}()
	}
	wg.Wait()

	p, err := f.catalog.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.Views)
}

func TestRecordView_PublishFailureDoesNotLoseIncrement(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{err: errors.New("broker down")}
	f := newFixture(t, WithPublisher(pub))
	seedProduct(t, f, "p1", "Viewed Product", 10)

	require.NoError(t, f.svc.RecordView(ctx, "p1"))

	p, err := f.catalog.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Views)
}

func TestRecordView_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.svc.RecordView(ctx, "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRecordView_WithoutPublisher(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedProduct(t, f, "p1", "Viewed Product", 10)

	assert.NoError(t, f.svc.RecordView(ctx, "p1"))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p := seedProduct(t, f, "p1", "Stats Product", 10)
	p.Views = 42
	p.Stock = 7
	p.Featured = true
	p.Ratings = domain.Ratings{Average: 4.2, Count: 11}
	p.Promotion = domain.Promotion{Type: domain.PromotionBestseller, Label: "Top Seller", IsActive: true}
	f.catalog.Put(p)

	stats, err := f.svc.Stats(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", stats.ProductID)
	assert.Equal(t, int64(42), stats.Views)
	assert.Equal(t, 4.2, stats.AverageRating)
	assert.Equal(t, 11, stats.RatingCount)
	assert.Equal(t, 7, stats.Stock)
	assert.True(t, stats.Featured)
	assert.True(t, stats.HasPromotion)
	assert.Equal(t, domain.PromotionBestseller, stats.PromotionType)
	assert.Equal(t, "Top Seller", stats.PromotionLabel)
}

func TestStats_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Stats(ctx, "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
