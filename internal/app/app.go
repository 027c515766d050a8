package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/apparelstore/internal/auth"
	"github.com/utafrali/apparelstore/internal/config"
	"github.com/utafrali/apparelstore/internal/event"
	handler "github.com/utafrali/apparelstore/internal/handler/http"
	"github.com/utafrali/apparelstore/internal/repository/postgres"
	redisrepo "github.com/utafrali/apparelstore/internal/repository/redis"
	esengine "github.com/utafrali/apparelstore/internal/search/elasticsearch"
	"github.com/utafrali/apparelstore/internal/service"
	"github.com/utafrali/apparelstore/internal/storage"
	"github.com/utafrali/apparelstore/internal/storage/memory"
	"github.com/utafrali/apparelstore/internal/storage/objectstore"
	"github.com/utafrali/apparelstore/migrations"
	"github.com/utafrali/apparelstore/pkg/database"
	"github.com/utafrali/apparelstore/pkg/health"
	"github.com/utafrali/apparelstore/pkg/httpclient"
	pkgkafka "github.com/utafrali/apparelstore/pkg/kafka"
	"github.com/utafrali/apparelstore/pkg/middleware"
	"github.com/utafrali/apparelstore/pkg/retry"
	"github.com/utafrali/apparelstore/pkg/tracing"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	statsConsumer  *pkgkafka.Consumer
	indexConsumer  *pkgkafka.Consumer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, tracerShutdown: tracerShutdown}
	if err := a.init(ctx); err != nil {
		_ = a.closeResources()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	// PostgreSQL.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, config.ServiceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	if cfg.RunMigrations {
		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")
	}
	if cfg.SlowQuery > 0 {
		database.SetSlowQueryLogging(cfg.SlowQuery, logger)
	}

	// Redis holds carts, wishlists, the dashboard projection and consumer
	// idempotency keys.
	rdb, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Kafka is optional. Without brokers the producer is a no-op and the
	// dashboard projection is never fed.
	var publisher event.Publisher
	if cfg.KafkaEnabled() {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		if err := retry.Do(ctx, logger, "kafka producer ping", retry.Always, func() error { return a.producer.Ping(ctx) }); err != nil {
			logger.Warn("kafka producer ping failed after retries, continuing in degraded mode",
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
		}
		publisher = a.producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, events are disabled")
	}
	events := event.NewProducer(publisher, logger)

	// Image storage.
	store, media, err := newStorage(cfg, logger)
	if err != nil {
		return err
	}

	// Build the dependency graph.
	products := postgres.NewProductRepository(pool)
	orders := postgres.NewOrderRepository(pool)
	carts := redisrepo.NewCartRepository(rdb, cfg.SessionTTL)
	wishlists := redisrepo.NewWishlistRepository(rdb, cfg.SessionTTL)
	stats := redisrepo.NewStatsRepository(rdb)
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenExpiry)

	if cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH not set, admin login is disabled")
	}

	catalog := service.NewCatalogService(products, logger)
	index, err := a.initSearch(ctx, catalog)
	if err != nil {
		return err
	}

	statsService := service.NewStatsService(stats, products, logger)
	svcs := handler.Services{
		Catalog:  catalog,
		Cart:     service.NewCartService(carts, events, logger),
		Wishlist: service.NewWishlistService(wishlists, events, logger),
		Checkout: service.NewCheckoutService(orders, carts, events, logger),
		Products: service.NewProductService(products, events, logger),
		Uploads:  service.NewUploadService(store, cfg.MaxUploadBytes, logger),
		Orders:   service.NewOrderService(orders, logger),
		Stats:    statsService,
		Auth:     service.NewAuthService(cfg.AdminEmail, cfg.AdminPasswordHash, tokens, logger),
	}

	// Stats projection consumer, plus the search indexer when an index is
	// configured.
	if cfg.KafkaEnabled() {
		a.dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
		statsHandler := event.NewStatsConsumer(statsService, logger)
		a.statsConsumer = a.newConsumer(event.StatsGroup, []string{event.TopicOrderCreated}, statsHandler.Handle)
		if index != nil {
			indexer := event.NewSearchIndexer(products, index, logger)
			a.indexConsumer = a.newConsumer(event.SearchIndexGroup, event.ProductTopics, indexer.Handle)
		}
	} else if index != nil {
		logger.Warn("search index is only rebuilt at startup while KAFKA_BROKERS is unset")
	}

	// Health checks.
	healthHandler := health.NewHandler(config.ServiceName)
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.RegisterOptional("storage", store.Ping)
	if a.producer != nil {
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
	}
	if index != nil {
		healthHandler.RegisterOptional("search", index.Ping)
	}

	// HTTP router.
	router := handler.NewRouter(svcs, tokens.Validator(), healthHandler, handler.RouterConfig{
		ServiceName: config.ServiceName,
		CORS: middleware.CORSConfig{
			AllowedOrigins:   cfg.CORSOrigins,
			MaxAge:           300,
			AllowCredentials: true,
			Environment:      cfg.Environment,
		},
		PprofCIDRs:     cfg.PprofCIDRs,
		RequestTimeout: cfg.RequestTimeout,
		CatalogMaxAge:  cfg.CatalogMaxAge,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Media:          media,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// initSearch connects the optional search index, rebuilds it from the active
// catalog and routes catalog searches through it. A nil engine means search
// stays on PostgreSQL.
func (a *App) initSearch(ctx context.Context, catalog *service.CatalogService) (*esengine.Engine, error) {
	cfg, logger := a.cfg, a.logger
	if !cfg.SearchEnabled() {
		return nil, nil
	}

	engine, err := esengine.New(esengine.Config{
		Addresses: cfg.ElasticsearchURLs,
		Index:     cfg.ElasticsearchIndex,
		Username:  cfg.ElasticsearchUser,
		Password:  cfg.ElasticsearchPass,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := engine.EnsureIndex(ctx); err != nil {
		logger.Warn("search index unavailable, searching PostgreSQL instead",
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	n, err := catalog.Reindex(ctx, engine)
	if err != nil {
		logger.Warn("initial reindex failed", slog.String("error", err.Error()))
	} else {
		logger.Info("search index ready",
			slog.String("index", engine.Index()),
			slog.Int("documents", n),
		)
	}
	catalog.WithSearcher(engine)
	return engine, nil
}

// newConsumer builds a consumer whose handler is deduplicated per group and
// whose exhausted messages go to the dead-letter topic.
func (a *App) newConsumer(group string, topics []string, handle pkgkafka.Handler) *pkgkafka.Consumer {
	cfg := a.cfg
	idempotency := redisrepo.NewIdempotencyStore(a.rdb, group, cfg.IdempotencyTTL)
	return pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:     cfg.KafkaBrokers,
		GroupID:     group,
		Topics:      topics,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxAttempts: cfg.ConsumerRetries,
		RetryWait:   cfg.ConsumerBackoff,
	}, pkgkafka.IdempotentHandler(idempotency, group, handle, a.logger), a.logger).
		WithDeadLetter(a.dlq)
}

// newStorage selects the image backend. The memory backend also returns a
// handler that serves the stored files.
func newStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, http.Handler, error) {
	switch cfg.StorageBackend {
	case config.StorageObjectStore:
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("object-storage"),
			logger,
		)
		return objectstore.New(client, objectstore.Config{
			BaseURL: cfg.StorageBaseURL,
			Bucket:  cfg.StorageBucket,
			APIKey:  cfg.StorageAPIKey,
		}, logger), nil, nil
	case config.StorageMemory:
		logger.Warn("using in-memory image storage, uploads are lost on restart")
		store := memory.New(cfg.StorageBaseURL)
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Run starts the HTTP server and the stats consumer, then blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 3)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	for name, c := range map[string]*pkgkafka.Consumer{
		"stats consumer": a.statsConsumer,
		"search indexer": a.indexConsumer,
	} {
		if c == nil {
			continue
		}
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("%s: %w", name, err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: HTTP server, tracer,
// Kafka consumer and producers, then the Redis and PostgreSQL clients.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources releases everything NewApp may have opened. Nil fields are
// skipped so it is safe after a partial initialization.
func (a *App) closeResources() error {
	var errs []error
	closeWith := func(name string, fn func() error) {
		if err := fn(); err != nil {
			a.logger.Error(name+" close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.tracerShutdown != nil {
		tracerCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		closeWith("tracer", func() error { return a.tracerShutdown(tracerCtx) })
	}
	if a.statsConsumer != nil {
		closeWith("stats consumer", a.statsConsumer.Close)
	}
	if a.indexConsumer != nil {
		closeWith("search indexer", a.indexConsumer.Close)
	}
	if a.dlq != nil {
		closeWith("dlq producer", a.dlq.Close)
	}
	if a.producer != nil {
		closeWith("kafka producer", a.producer.Close)
	}
	if a.rdb != nil {
		closeWith("redis", a.rdb.Close)
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errors.Join(errs...)
}

