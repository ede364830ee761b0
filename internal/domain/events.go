package domain

// Kafka topics the search service consumes and produces.
const (
	TopicProductEvents = "product-events"
	TopicSearchEvents  = "search-events"
)

// Event types carried on the product and search topics.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
	EventProductViewed  = "product.viewed"
)

// AggregateProduct is the aggregate type stamped on product events.
const AggregateProduct = "product"

// ProductEventPayload is the data carried by product lifecycle events. Only
// the ID is trusted; the product itself is reloaded from the catalog.
type ProductEventPayload struct {
	ProductID string `json:"productId"`
}

// ViewEventPayload is the data carried by product.viewed events.
type ViewEventPayload struct {
	ProductID string `json:"productId"`
}
