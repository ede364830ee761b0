// Package mongodb implements the catalog accessor over a MongoDB product
// collection.
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	apperrors "github.com/vietcart/search-service/pkg/errors"

	"github.com/vietcart/search-service/internal/catalog"
	"github.com/vietcart/search-service/internal/domain"
)

// Collection names within the catalog database.
const (
	productsCollection   = "products"
	categoriesCollection = "categories"
)

// similarPriceBand widens the similarity candidate pool to products priced
// within +/-50% of the anchor.
const similarPriceBand = 0.5

var _ catalog.Store = (*Store)(nil)

// Store is the MongoDB-backed catalog accessor.
type Store struct {
	client     *mongo.Client
	products   *mongo.Collection
	categories *mongo.Collection
	logger     *slog.Logger
}

// Connect dials MongoDB and returns a catalog store bound to the given
// database.
func Connect(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	db := client.Database(database)
	return &Store{
		client:     client,
		products:   db.Collection(productsCollection),
		categories: db.Collection(categoriesCollection),
		logger:     logger,
	}, nil
}

// New wraps an existing client, mainly for tests that share a connection.
func New(client *mongo.Client, database string, logger *slog.Logger) *Store {
	db := client.Database(database)
	return &Store{
		client:     client,
		products:   db.Collection(productsCollection),
		categories: db.Collection(categoriesCollection),
		logger:     logger,
	}
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping checks connectivity to the primary.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// ciRegex builds a case-insensitive substring matcher with the input
// escaped, so user text never becomes a regex operator.
func ciRegex(text string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
}

// filterDoc translates the engine-agnostic filter into a MongoDB document.
func filterDoc(f catalog.Filter) bson.M {
	doc := bson.M{}

	if f.ActiveOnly {
		doc["isActive"] = true
	}
	if f.ExcludeID != "" {
		doc["_id"] = bson.M{"$ne": f.ExcludeID}
	}
	if f.Text != "" {
		re := ciRegex(f.Text)
		doc["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"description": re},
			bson.M{"searchKeywords": bson.M{"$in": bson.A{re}}},
			bson.M{"brand": re},
			bson.M{"tags": bson.M{"$in": bson.A{re}}},
		}
	}
	if f.CategoryID != "" {
		doc["category"] = f.CategoryID
	}
	if f.MinPrice > 0 || f.MaxPrice > 0 {
		price := bson.M{"$gte": f.MinPrice}
		if f.MaxPrice > 0 {
			price["$lte"] = f.MaxPrice
		}
		doc["price"] = price
	}
	if f.Brand != "" {
		doc["brand"] = ciRegex(f.Brand)
	}
	if f.HasDiscount {
		doc["discount.isActive"] = true
	}
	if f.HasPromotion {
		doc["promotion.isActive"] = true
	}
	if f.PromotionType != "" {
		doc["promotion.type"] = f.PromotionType
		doc["promotion.isActive"] = true
	}
	if f.MinViews > 0 {
		doc["views"] = bson.M{"$gte": f.MinViews}
	}
	if f.MinRating > 0 {
		doc["ratings.average"] = bson.M{"$gte": f.MinRating}
	}

	return doc
}

// sortDoc translates catalog sort instructions into an ordered document.
func sortDoc(sorts []catalog.Sort) bson.D {
	d := make(bson.D, 0, len(sorts))
	for _, s := range sorts {
		dir := 1
		if s.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: s.Field, Value: dir})
	}
	return d
}

// FindByID loads one product by id.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NotFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", id, err)
	}
	return &p, nil
}

// Find lists products matching the filter in the given order.
func (s *Store) Find(ctx context.Context, f catalog.Filter, sorts []catalog.Sort, offset, limit int) ([]domain.Product, error) {
	opts := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	if len(sorts) > 0 {
		opts.SetSort(sortDoc(sorts))
	}

	cur, err := s.products.Find(ctx, filterDoc(f), opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []domain.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return out, nil
}

// Count returns the number of products matching the filter.
func (s *Store) Count(ctx context.Context, f catalog.Filter) (int64, error) {
	n, err := s.products.CountDocuments(ctx, filterDoc(f))
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// FindSimilarCandidates returns active products related to the anchor by
// category, brand, tags, or price band, excluding the anchor itself.
func (s *Store) FindSimilarCandidates(ctx context.Context, anchor *domain.Product, limit int) ([]domain.Product, error) {
	or := bson.A{
		bson.M{"category": anchor.CategoryID},
		bson.M{"price": bson.M{
			"$gte": anchor.Price * (1 - similarPriceBand),
			"$lte": anchor.Price * (1 + similarPriceBand),
		}},
	}
	if anchor.Brand != "" {
		or = append(or, bson.M{"brand": anchor.Brand})
	}
	if len(anchor.Tags) > 0 {
		or = append(or, bson.M{"tags": bson.M{"$in": anchor.Tags}})
	}

	filter := bson.M{
		"isActive": true,
		"_id":      bson.M{"$ne": anchor.ID},
		"$or":      or,
	}

	cur, err := s.products.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("find similar candidates: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []domain.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode similar candidates: %w", err)
	}
	return out, nil
}

// StreamActive walks all active products in batches. The cursor holds the
// read position, so memory use stays bounded by batchSize.
func (s *Store) StreamActive(ctx context.Context, batchSize int, fn func([]domain.Product) error) error {
	cur, err := s.products.Find(ctx, bson.M{"isActive": true},
		options.Find().SetBatchSize(int32(batchSize)))
	if err != nil {
		return fmt.Errorf("stream active products: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	batch := make([]domain.Product, 0, batchSize)
	for cur.Next(ctx) {
		var p domain.Product
		if err := cur.Decode(&p); err != nil {
			return fmt.Errorf("decode product: %w", err)
		}
		batch = append(batch, p)
		if len(batch) == batchSize {
			if err := fn(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("stream active products: %w", err)
	}
	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

// IncrementViews atomically bumps the view counter. Exact precision is not
// required by callers, but the increment itself must never lose updates.
func (s *Store) IncrementViews(ctx context.Context, id string) error {
	res, err := s.products.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("increment views for %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// ListCategories returns all active categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cur, err := s.categories.Find(ctx, bson.M{"isActive": true},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []domain.Category
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return out, nil
}

// TopBrands groups active products by brand and returns the most frequent.
func (s *Store) TopBrands(ctx context.Context, limit int) ([]domain.BrandCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"isActive": true,
			"brand":    bson.M{"$exists": true, "$nin": bson.A{nil, ""}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$brand",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{"brand": "$_id", "count": 1, "_id": 0}}},
	}

	cur, err := s.products.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate top brands: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var rows []struct {
		Brand string `bson:"brand"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode top brands: %w", err)
	}

	out := make([]domain.BrandCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.BrandCount{Brand: r.Brand, Count: r.Count})
	}
	return out, nil
}

// rangeStats runs a min/max/avg aggregation over one numeric field of the
// active catalog.
func (s *Store) rangeStats(ctx context.Context, field string) (domain.RangeStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isActive": true}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"min": bson.M{"$min": "$" + field},
			"max": bson.M{"$max": "$" + field},
			"avg": bson.M{"$avg": "$" + field},
		}}},
	}

	cur, err := s.products.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.RangeStats{}, fmt.Errorf("aggregate %s stats: %w", field, err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var rows []struct {
		Min float64 `bson:"min"`
		Max float64 `bson:"max"`
		Avg float64 `bson:"avg"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return domain.RangeStats{}, fmt.Errorf("decode %s stats: %w", field, err)
	}
	if len(rows) == 0 {
		return domain.RangeStats{}, nil
	}
	return domain.RangeStats{Min: rows[0].Min, Max: rows[0].Max, Avg: rows[0].Avg}, nil
}

// PriceStats aggregates min/max/avg price over active products.
func (s *Store) PriceStats(ctx context.Context) (domain.RangeStats, error) {
	return s.rangeStats(ctx, "price")
}

// ViewStats aggregates min/max/avg view counts over active products.
func (s *Store) ViewStats(ctx context.Context) (domain.RangeStats, error) {
	return s.rangeStats(ctx, "views")
}

// PromotionBreakdown groups active promotions by type and label with counts
// and average percentages, most frequent first.
func (s *Store) PromotionBreakdown(ctx context.Context) ([]domain.PromotionStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"isActive":           true,
			"promotion.isActive": true,
			"promotion.type":     bson.M{"$exists": true, "$ne": nil},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":           bson.M{"type": "$promotion.type", "label": "$promotion.label"},
			"count":         bson.M{"$sum": 1},
			"avgPercentage": bson.M{"$avg": "$promotion.percentage"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$project", Value: bson.M{
			"type":          "$_id.type",
			"label":         "$_id.label",
			"count":         1,
			"avgPercentage": bson.M{"$round": bson.A{"$avgPercentage", 1}},
			"_id":           0,
		}}},
	}

	cur, err := s.products.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate promotion breakdown: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var rows []struct {
		Type          string  `bson:"type"`
		Label         string  `bson:"label"`
		Count         int64   `bson:"count"`
		AvgPercentage float64 `bson:"avgPercentage"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode promotion breakdown: %w", err)
	}

	out := make([]domain.PromotionStat, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.PromotionStat{
			Type:          r.Type,
			Label:         r.Label,
			Count:         r.Count,
			AvgPercentage: r.AvgPercentage,
		})
	}
	return out, nil
}
