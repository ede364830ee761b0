package engine

import (
	"context"

	"github.com/vietcart/search-service/internal/domain"
)

// ItemError describes one document that a bulk run failed to index.
type ItemError struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BulkReport summarizes a bulk indexing run. A run with failed items is not
// an error: the caller decides whether partial success is acceptable.
type BulkReport struct {
	Indexed int         `json:"indexed"`
	Failed  []ItemError `json:"failed,omitempty"`
}

// FailedCount returns the number of documents that did not index.
func (r *BulkReport) FailedCount() int {
	return len(r.Failed)
}

// SearchEngine defines the full-text side of the search subsystem.
// Implementations may use Elasticsearch or in-memory storage.
type SearchEngine interface {
	// EnsureIndex creates the product index with its mapping if it does
	// not exist yet. Safe to call on every startup.
	EnsureIndex(ctx context.Context) error

	// Index adds or fully replaces a single document in the index.
	Index(ctx context.Context, doc *domain.IndexDocument) error

	// Delete removes a document from the index by its ID. Deleting an
	// absent document is not an error.
	Delete(ctx context.Context, id string) error

	// BulkIndex upserts many documents in one round-trip. Item failures
	// are collected in the report instead of aborting the batch.
	BulkIndex(ctx context.Context, docs []domain.IndexDocument) (*BulkReport, error)

	// Search executes a normalized search request and returns ranked,
	// paginated hits.
	Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResult, error)

	// Suggest returns autocomplete candidates for a prefix.
	Suggest(ctx context.Context, prefix string, limit int) ([]domain.Suggestion, error)

	// Ping checks connectivity to the engine backend.
	Ping(ctx context.Context) error
}
