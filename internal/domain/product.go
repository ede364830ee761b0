package domain

import (
	"time"
)

// Promotion campaign types. Products carry at most one promotion; the type
// drives badge rendering and the promotionType search filter.
const (
	PromotionFlashSale      = "flash_sale"
	PromotionClearance      = "clearance"
	PromotionNewArrival     = "new_arrival"
	PromotionBestseller     = "bestseller"
	PromotionLimitedEdition = "limited_edition"
)

// ValidPromotionTypes returns the list of recognized promotion types.
func ValidPromotionTypes() []string {
	return []string{
		PromotionFlashSale,
		PromotionClearance,
		PromotionNewArrival,
		PromotionBestseller,
		PromotionLimitedEdition,
	}
}

// IsValidPromotionType checks whether the given string is a recognized
// promotion type.
func IsValidPromotionType(t string) bool {
	for _, v := range ValidPromotionTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// Ratings holds the aggregated review score for a product.
// Average is kept in [0, 5] by the catalog's write path.
type Ratings struct {
	Average float64 `json:"average" bson:"average"`
	Count   int     `json:"count" bson:"count"`
}

// Discount is a plain percentage price reduction. Percentage is kept in
// [0, 70] by the catalog's write path.
type Discount struct {
	Percentage int       `json:"percentage" bson:"percentage"`
	IsActive   bool      `json:"isActive" bson:"isActive"`
	StartDate  time.Time `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate    time.Time `json:"endDate,omitempty" bson:"endDate,omitempty"`
}

// Promotion is a marketing campaign attached to a product. Percentage is
// kept in [0, 90] by the catalog's write path.
type Promotion struct {
	Type       string    `json:"type,omitempty" bson:"type,omitempty"`
	Label      string    `json:"label,omitempty" bson:"label,omitempty"`
	Percentage int       `json:"percentage" bson:"percentage"`
	IsActive   bool      `json:"isActive" bson:"isActive"`
	Priority   int       `json:"priority" bson:"priority"`
	StartDate  time.Time `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate    time.Time `json:"endDate,omitempty" bson:"endDate,omitempty"`
}

// Product is the catalog document. The search core reads it; writes are
// owned by the catalog CRUD layer except the atomic view-counter bump.
// Field names mirror the catalog collection's camelCase keys.
type Product struct {
	ID             string    `json:"id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	Description    string    `json:"description" bson:"description"`
	Price          float64   `json:"price" bson:"price"`
	OriginalPrice  float64   `json:"originalPrice,omitempty" bson:"originalPrice,omitempty"`
	CategoryID     string    `json:"categoryId" bson:"category"`
	Brand          string    `json:"brand,omitempty" bson:"brand,omitempty"`
	Tags           []string  `json:"tags,omitempty" bson:"tags,omitempty"`
	SearchKeywords []string  `json:"searchKeywords,omitempty" bson:"searchKeywords,omitempty"`
	Stock          int       `json:"stock" bson:"stock"`
	IsActive       bool      `json:"isActive" bson:"isActive"`
	Featured       bool      `json:"featured" bson:"featured"`
	Views          int64     `json:"views" bson:"views"`
	Ratings        Ratings   `json:"ratings" bson:"ratings"`
	Discount       Discount  `json:"discount" bson:"discount"`
	Promotion      Promotion `json:"promotion" bson:"promotion"`
	SKU            string    `json:"sku,omitempty" bson:"sku,omitempty"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasTag reports whether the product carries the given tag (exact match).
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TagOverlap reports whether the product shares at least one tag with the
// given set.
func (p *Product) TagOverlap(tags []string) bool {
	for _, t := range tags {
		if p.HasTag(t) {
			return true
		}
	}
	return false
}

// Category is the read-only category reference resolved when building
// denormalized index documents.
type Category struct {
	ID          string `json:"id" bson:"_id"`
	Name        string `json:"name" bson:"name"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	IsActive    bool   `json:"isActive" bson:"isActive"`
}

// CategoryRef is the embedded category projection stored in index documents.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// IndexDocument is the denormalized projection of a Product stored in the
// full-text index. It is rebuilt wholesale on every upsert; the catalog
// remains the source of truth and a full reindex is the repair path.
type IndexDocument struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Price          float64     `json:"price"`
	OriginalPrice  float64     `json:"originalPrice,omitempty"`
	Category       CategoryRef `json:"category"`
	Brand          string      `json:"brand,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
	SearchKeywords []string    `json:"searchKeywords,omitempty"`
	Stock          int         `json:"stock"`
	IsActive       bool        `json:"isActive"`
	Featured       bool        `json:"featured"`
	Views          int64       `json:"views"`
	Ratings        Ratings     `json:"ratings"`
	Discount       Discount    `json:"discount"`
	Promotion      Promotion   `json:"promotion"`
	SKU            string      `json:"sku,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// NewIndexDocument builds the denormalized index projection of a product.
// categoryName may be empty when the category cannot be resolved; the
// document still indexes with the bare reference.
func NewIndexDocument(p *Product, categoryName string) IndexDocument {
	return IndexDocument{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		OriginalPrice:  p.OriginalPrice,
		Category:       CategoryRef{ID: p.CategoryID, Name: categoryName},
		Brand:          p.Brand,
		Tags:           p.Tags,
		SearchKeywords: p.SearchKeywords,
		Stock:          p.Stock,
		IsActive:       p.IsActive,
		Featured:       p.Featured,
		Views:          p.Views,
		Ratings:        p.Ratings,
		Discount:       p.Discount,
		Promotion:      p.Promotion,
		SKU:            p.SKU,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// SimilarProduct pairs a product with its computed similarity score.
// The score is derived per request and never persisted.
type SimilarProduct struct {
	Product
	SimilarityScore int `json:"similarityScore"`
}

// ProductStats is the per-product statistics read produced for the product
// detail surface.
type ProductStats struct {
	ProductID      string  `json:"productId"`
	Views          int64   `json:"views"`
	AverageRating  float64 `json:"averageRating"`
	RatingCount    int     `json:"ratingCount"`
	Stock          int     `json:"stock"`
	Featured       bool    `json:"featured"`
	HasDiscount    bool    `json:"hasDiscount"`
	HasPromotion   bool    `json:"hasPromotion"`
	PromotionType  string  `json:"promotionType,omitempty"`
	PromotionLabel string  `json:"promotionLabel,omitempty"`
}
