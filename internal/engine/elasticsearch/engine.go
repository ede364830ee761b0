// Package elasticsearch is the primary full-text engine: fuzzy weighted
// matching, term filters, highlights, completion suggestions, and bulk
// indexing against a single products index.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/vietcart/search-service/internal/domain"
	"github.com/vietcart/search-service/internal/engine"
	"github.com/vietcart/search-service/internal/query"
)

// Engine is an Elasticsearch-backed implementation of the SearchEngine interface.
type Engine struct {
	client    *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

// esSearchResponse is the structure used to decode Elasticsearch search responses.
type esSearchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Score     float64              `json:"_score"`
			Source    domain.IndexDocument `json:"_source"`
			Highlight map[string][]string  `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
}

// esBulkResponse is the structure used to decode Elasticsearch bulk responses.
type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

// esErrorResponse is used to decode Elasticsearch error responses.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

var _ engine.SearchEngine = (*Engine)(nil)

// New creates a new Elasticsearch engine connected to the given URL.
// If indexName is empty, DefaultIndexName is used. The index itself is
// created lazily via EnsureIndex so startup does not require the cluster
// to be up.
func New(esURL string, indexName string, logger *slog.Logger) (*Engine, error) {
	if indexName == "" {
		indexName = DefaultIndexName
	}

	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to create client: %w", err)
	}

	return &Engine{
		client:    client,
		indexName: indexName,
		logger:    logger,
	}, nil
}

// Ping checks whether the Elasticsearch cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// EnsureIndex checks whether the products index exists and creates it with
// the mapping if not. Safe to call on every startup.
func (e *Engine) EnsureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists(
		[]string{e.indexName},
		e.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	// Status 200 means the index exists.
	if res.StatusCode == 200 {
		e.logger.Info("elasticsearch index already exists", "index", e.indexName)
		return nil
	}

	mapping := buildIndexMapping()
	res, err = e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(mapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("create index: %s", e.decodeError(res.Body, res.Status()))
	}

	e.logger.Info("elasticsearch index created", "index", e.indexName)
	return nil
}

// Index adds or fully replaces a single document in the index.
func (e *Engine) Index(ctx context.Context, doc *domain.IndexDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("elasticsearch index: marshal document: %w", err)
	}

	res, err := e.client.Index(
		e.indexName,
		bytes.NewReader(data),
		e.client.Index.WithDocumentID(doc.ID),
		e.client.Index.WithRefresh("true"),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch index: %s", e.decodeError(res.Body, res.Status()))
	}

	e.logger.Debug("indexed product", "id", doc.ID, "name", doc.Name)
	return nil
}

// Delete removes a document from the index by its ID.
// It does not return an error if the document does not exist (404 is ignored).
func (e *Engine) Delete(ctx context.Context, id string) error {
	res, err := e.client.Delete(
		e.indexName,
		id,
		e.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	// Ignore 404, the document might not exist.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("elasticsearch delete: %s", e.decodeError(res.Body, res.Status()))
	}

	e.logger.Debug("deleted product", "id", id)
	return nil
}

// Search executes a normalized search request against Elasticsearch.
func (e *Engine) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResult, error) {
	body := serialize(query.Build(req))

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
		e.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search: %s", e.decodeError(res.Body, res.Status()))
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		hits = append(hits, domain.SearchHit{
			IndexDocument: hit.Source,
			Score:         hit.Score,
			Highlight:     hit.Highlight,
		})
	}

	return &domain.SearchResult{
		Hits:    hits,
		Total:   esResp.Hits.Total.Value,
		Page:    req.Page,
		PerPage: req.PageSize,
		TookMs:  int64(esResp.Took),
	}, nil
}

// BulkIndex upserts multiple documents using the bulk NDJSON API. Item
// failures go into the report instead of aborting the batch, so a single
// bad document cannot sink a full reindex.
func (e *Engine) BulkIndex(ctx context.Context, docs []domain.IndexDocument) (*engine.BulkReport, error) {
	if len(docs) == 0 {
		return &engine.BulkReport{}, nil
	}

	var buf bytes.Buffer

	for i := range docs {
		// Action line.
		action := map[string]interface{}{
			"index": map[string]interface{}{
				"_index": e.indexName,
				"_id":    docs[i].ID,
			},
		}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return nil, fmt.Errorf("elasticsearch bulk index: encode action: %w", err)
		}

		// Document line.
		if err := json.NewEncoder(&buf).Encode(docs[i]); err != nil {
			return nil, fmt.Errorf("elasticsearch bulk index: encode document: %w", err)
		}
	}

	res, err := e.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithIndex(e.indexName),
		e.client.Bulk.WithRefresh("true"),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch bulk index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch bulk index: %s", e.decodeError(res.Body, res.Status()))
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return nil, fmt.Errorf("elasticsearch bulk index: decode response: %w", err)
	}

	report := &engine.BulkReport{}
	for _, item := range bulkResp.Items {
		if item.Index.Error.Type != "" {
			report.Failed = append(report.Failed, engine.ItemError{
				ID:     item.Index.ID,
				Reason: fmt.Sprintf("%s: %s", item.Index.Error.Type, item.Index.Error.Reason),
			})
			continue
		}
		report.Indexed++
	}

	if len(report.Failed) > 0 {
		e.logger.Warn("bulk index completed with item errors",
			"indexed", report.Indexed, "failed", len(report.Failed))
	} else {
		e.logger.Info("bulk indexed products", "count", report.Indexed)
	}
	return report, nil
}

// decodeError renders an Elasticsearch error body into a readable message,
// falling back to the HTTP status when the body is not the standard shape.
func (e *Engine) decodeError(body io.Reader, status string) string {
	var errResp esErrorResponse
	if err := json.NewDecoder(body).Decode(&errResp); err == nil && errResp.Error.Type != "" {
		return fmt.Sprintf("%s: %s", errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Sprintf("unexpected status %s", status)
}
