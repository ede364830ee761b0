package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:9200", cfg.ElasticsearchURL)
	assert.Equal(t, "products", cfg.ElasticsearchIndex)
	assert.Equal(t, "elasticsearch", cfg.SearchEngine)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "vietcart", cfg.MongoDatabase)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "search-service", cfg.KafkaGroupID)
	assert.Equal(t, 500, cfg.ReindexBatchSize)
	assert.False(t, cfg.OTELEnabled)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("SEARCH_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidSearchEngine(t *testing.T) {
	t.Setenv("SEARCH_ENGINE", "solr")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SEARCH_ENGINE")
}

func TestLoad_InvalidReindexBatchSize(t *testing.T) {
	t.Setenv("REINDEX_BATCH_SIZE", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "REINDEX_BATCH_SIZE")
}

func TestLoad_InvalidOTELSampleRate(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "2.0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
}

func TestLoad_CustomElasticsearchURL(t *testing.T) {
	t.Setenv("ELASTICSEARCH_URL", "http://es.prod:9200")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://es.prod:9200", cfg.ElasticsearchURL)
}

func TestLoad_CustomSearchEngine(t *testing.T) {
	t.Setenv("SEARCH_ENGINE", "memory")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.SearchEngine)
}

func TestLoad_MultipleKafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestCORS_UsesConfiguredOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com,https://admin.example.com")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	cors := cfg.CORS()
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cors.AllowedOrigins)
	assert.Equal(t, "production", cors.Environment)
}

func TestTracing_BuildsFromConfig(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_SAMPLE_RATE", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	tc := cfg.Tracing("search-service")
	assert.True(t, tc.Enabled)
	assert.Equal(t, "collector:4318", tc.OTLPEndpoint)
	assert.Equal(t, 0.25, tc.SampleRate)
	assert.Equal(t, "search-service", tc.ServiceName)
}
