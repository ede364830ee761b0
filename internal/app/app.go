// Package app wires together all dependencies and runs the search service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	pkgkafka "github.com/vietcart/search-service/pkg/kafka"

	"github.com/vietcart/search-service/pkg/health"
	"github.com/vietcart/search-service/pkg/tracing"

	"github.com/vietcart/search-service/internal/catalog/mongodb"
	"github.com/vietcart/search-service/internal/config"
	"github.com/vietcart/search-service/internal/domain"
	"github.com/vietcart/search-service/internal/engine"
	esengine "github.com/vietcart/search-service/internal/engine/elasticsearch"
	enginememory "github.com/vietcart/search-service/internal/engine/memory"
	"github.com/vietcart/search-service/internal/event"
	handler "github.com/vietcart/search-service/internal/handler/http"
	"github.com/vietcart/search-service/internal/service"
)

// idempotencyTTL bounds how long processed event IDs are remembered.
const idempotencyTTL = 24 * time.Hour

// App holds the running components of the search service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	consumer        *pkgkafka.Consumer
	producer        *pkgkafka.Producer
	dlq             *pkgkafka.DLQProducer
	store           *mongodb.Store
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Tracing first so every later init is observable.
	tracingShutdown, err := tracing.InitTracer(ctx, cfg.Tracing("search-service"))
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Product catalog store. The catalog is the source of truth; the
	// service cannot start without it.
	store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	logger.Info("mongodb catalog store connected",
		slog.String("database", cfg.MongoDatabase),
	)

	// Full-text engine. The index is created lazily: a cluster that is down
	// at boot only degrades search to the catalog fallback.
	var eng engine.SearchEngine
	var esEng *esengine.Engine
	switch cfg.SearchEngine {
	case "elasticsearch":
		esEng, err = esengine.New(cfg.ElasticsearchURL, cfg.ElasticsearchIndex, logger)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		eng = esEng
		if err := esEng.EnsureIndex(ctx); err != nil {
			logger.Warn("could not ensure search index at startup, continuing degraded",
				slog.String("error", err.Error()),
			)
		}
		logger.Info("elasticsearch search engine initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", cfg.ElasticsearchIndex),
		)
	default:
		eng = enginememory.New()
		logger.Info("in-memory search engine initialized")
	}

	// Event producer for view events.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)

	// Build the service layer.
	searchService := service.NewSearchService(eng, store, logger,
		service.WithPublisher(producer),
		service.WithReindexBatchSize(cfg.ReindexBatchSize),
	)

	// Kafka consumer keeping the index in sync with product events.
	eventConsumer := event.NewConsumer(searchService, logger)
	idempotency := pkgkafka.NewMemoryIdempotencyStore(idempotencyTTL)
	dlq := pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)

	consumerCfg := pkgkafka.ConsumerConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		Topic:    domain.TopicProductEvents,
		MinBytes: 1,
		MaxBytes: 10e6, // 10 MB
	}
	consumer := pkgkafka.NewConsumer(
		consumerCfg,
		pkgkafka.IdempotentHandler(idempotency, eventConsumer.Handle, logger,
			consumerCfg.Topic, consumerCfg.GroupID),
		logger,
		pkgkafka.WithDLQ(dlq),
	)
	logger.Info("kafka consumer initialized",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("topic", consumerCfg.Topic),
		slog.String("group", consumerCfg.GroupID),
	)

	// Health checks. The catalog is required; the fulltext engine and the
	// broker only degrade search, so they must not fail readiness.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("mongodb", store.Ping)
	if esEng != nil {
		healthHandler.RegisterNonCritical("elasticsearch", esEng.Ping)
	}
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})

	// HTTP router.
	router := handler.NewRouter(searchService, healthHandler, logger, handler.RouterConfig{
		CORS:       cfg.CORS(),
		PprofCIDRs: cfg.PprofAllowedCIDRs,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		consumer:        consumer,
		producer:        producer,
		dlq:             dlq,
		store:           store,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and the Kafka consumer, blocking until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		if err := a.consumer.Start(ctx); err != nil {
			errCh <- fmt.Errorf("kafka consumer: %w", err)
		}
	}()

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.consumer.Close(); err != nil {
		a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	if err := a.dlq.Close(); err != nil {
		a.logger.Error("dlq producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.store.Close(shutdownCtx); err != nil {
		a.logger.Error("mongodb close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
