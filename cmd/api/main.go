package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"retentionos/internal/application"
	"retentionos/internal/application/webhook_handlers"
	"retentionos/internal/config"
	apiinfra "retentionos/internal/infrastructure/api"
	"retentionos/internal/infrastructure/auth"
	"retentionos/internal/infrastructure/cache"
	"retentionos/internal/infrastructure/encryption"
	"retentionos/internal/infrastructure/lock"
	"retentionos/internal/infrastructure/metrics"
	securitymiddleware "retentionos/internal/infrastructure/middleware"
	"retentionos/internal/infrastructure/pubsub"
	"retentionos/internal/infrastructure/repository"
	shopifyinfra "retentionos/internal/infrastructure/shopify"
	"retentionos/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if !config.LoadDotEnv() {
		logger.Warn().Msg(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)
	indexCtx, cancelIndexes := context.WithTimeout(ctx, 30*time.Second)
	if err := repository.EnsureIndexes(indexCtx, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create MongoDB indexes")
	}
	cancelIndexes()

	encryptionService, err := encryption.NewService(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}

	// Lock and metrics cache are shared through Redis when it is configured
	var (
		locker       ports.SyncLocker   = lock.NewMemoryLocker()
		metricsCache ports.MetricsCache = cache.NopCache{}
	)
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Invalid REDIS_URL")
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		locker = lock.NewRedisLocker(redisClient, cfg.SyncLockTTL, logger)
		metricsCache = cache.NewRedisCache(redisClient, cfg.MetricsCacheTTL)
	} else {
		logger.Warn().Msg("REDIS_URL not set, using in-process sync lock and no metrics cache")
	}

	// Initialize repositories
	connectionRepo := repository.NewMongoConnectionRepository(client, db)
	customerRepo := repository.NewMongoCustomerRepository(db)
	orderRepo := repository.NewMongoOrderRepository(db)
	syncRunRepo := repository.NewMongoSyncRunRepository(db)
	saltRepo := repository.NewMongoAccountSaltRepository(db)
	integrationRepo := repository.NewMongoIntegrationRepository(db)

	// Shopify client with per-shop rate limiting
	shopifyClient := shopifyinfra.NewClient(shopifyinfra.Config{
		APIKey:      cfg.ShopifyAPIKey,
		APISecret:   cfg.ShopifyAPISecret,
		RedirectURL: cfg.AppURL + "/api/shopify/callback",
		Scopes:      cfg.ShopifyScopes,
		APIVersion:  cfg.ShopifyAPIVersion,
		Retries:     cfg.ShopifyRetries,
	}, shopifyinfra.NewRateLimiter(cfg.ShopifyRateLimit, cfg.ShopifyRateBurst), logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	syncMetrics := metrics.NewCollector(registry)

	syncEvents := pubsub.NewSyncEventBus(logger)

	// Initialize application services
	integrationService := application.NewIntegrationService(integrationRepo, logger)
	connectionService := application.NewConnectionService(
		connectionRepo,
		shopifyClient,
		encryptionService,
		integrationService,
		logger,
	)
	reconciler := application.NewReconciler(application.ReconcilerDeps{
		Connections: connectionRepo,
		Customers:   customerRepo,
		Orders:      orderRepo,
		SyncRuns:    syncRunRepo,
		Salts:       saltRepo,
		Shopify:     shopifyClient,
		Encryption:  encryptionService,
		Locker:      locker,
		Cache:       metricsCache,
		Metrics:     syncMetrics,
		Events:      syncEvents,
	}, application.ReconcilerConfig{
		PageSize: cfg.SyncPageSize,
		MaxPages: cfg.SyncMaxPages,
		Timeout:  cfg.SyncTimeout,
		LockWait: cfg.SyncLockWait,
	}, logger)
	analyticsService := application.NewAnalyticsService(customerRepo, orderRepo, metricsCache, cfg.AtRiskWindow, logger)

	// Initialize webhook dispatcher and register handlers
	decoder := shopifyinfra.PayloadDecoder{}
	webhookDispatcher := webhook_handlers.NewDispatcher(logger,
		webhook_handlers.NewCustomerHandler(logger, connectionService, reconciler, decoder),
		webhook_handlers.NewOrderHandler(logger, connectionService, reconciler, decoder),
		webhook_handlers.NewAppUninstalledHandler(logger, connectionService),
	)

	sessionVerifier := auth.NewProviderVerifier(cfg.AuthProviderURL, cfg.AuthProviderAPIKey, nil, logger)

	router := apiinfra.NewRouter(apiinfra.Deps{
		Sync:            reconciler,
		Connections:     connectionService,
		Metrics:         analyticsService,
		WebhookVerifier: shopifyClient,
		Webhooks:        webhookDispatcher,
		Events:          syncEvents,
		Session:         securitymiddleware.SessionMiddleware(integrationService, sessionVerifier, logger),
		Cookies:         apiinfra.NewCookieSigner(cfg.CookieSecret, cfg.CookieSecure),
		MetricsHandler:  metrics.Handler(registry),
		SiteURL:         cfg.SiteURL,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		SwaggerFile:     "./docs/swagger.json",
		Logger:          logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Starting API server")
		logger.Info().Msg("Swagger documentation available at http://localhost:" + cfg.Port + "/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down API server")
	syncEvents.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
