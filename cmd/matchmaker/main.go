package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/matchmaker/internal/matchmaker/auth"
	"github.com/gartstein/matchmaker/internal/matchmaker/cache"
	"github.com/gartstein/matchmaker/internal/matchmaker/catalog"
	"github.com/gartstein/matchmaker/internal/matchmaker/config"
	"github.com/gartstein/matchmaker/internal/matchmaker/controller"
	"github.com/gartstein/matchmaker/internal/matchmaker/db"
	"github.com/gartstein/matchmaker/internal/matchmaker/events"
	"github.com/gartstein/matchmaker/internal/matchmaker/handlers"
	"github.com/gartstein/matchmaker/internal/matchmaker/recommend"
	"github.com/gartstein/matchmaker/internal/matchmaker/scheduler"
	"github.com/gartstein/matchmaker/internal/matchmaker/scoring"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
)

func main() {
	logger := initLogger()
	defer func(logger *zap.Logger) {
		err := logger.Sync()
		if err != nil {
			logger.Error("failed to sync logger", zap.Error(err))
		}
	}(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if cfg.ReplicaID == "" {
		cfg.ReplicaID = replicaID()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := initStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer closeStore()

	companies := catalog.New(store, logger)
	if err := retry(ctx, cfg, logger, "catalog", func() (struct{}, error) {
		return struct{}{}, companies.Load(ctx)
	}); err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}

	var resultCache controller.ResultCache
	if cfg.CacheEnabled() {
		client, err := retryWithData(ctx, cfg, logger, "redis", func() (*redis.Client, error) {
			return cache.NewRedisClient(ctx, cfg.RedisURL)
		})
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		resultCache = cache.New(client, cfg.CacheTTL, logger)
	}

	var producer controller.EventProducer
	if cfg.EventsEnabled() {
		p, err := retryWithData(ctx, cfg, logger, "kafka", func() (*events.Producer, error) {
			return events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic, cfg.ReplicaID)
		})
		if err != nil {
			logger.Fatal("failed to initialize Kafka producer", zap.Error(err))
		}
		defer p.Close()
		producer = p

		consumer := events.NewConsumer(cfg.KafkaBrokers, "matchmaker-"+cfg.ReplicaID, cfg.Topic, logger)
		consumer.RegisterHandler(events.CatalogHandler(companies, cfg.ReplicaID, logger))
		consumer.Start(ctx)
		defer consumer.Close()
	}

	companySvc := controller.NewCompanyService(companies, producer, logger)
	engine := recommend.NewEngine(scoring.NewScorer())
	recommendationSvc := controller.NewRecommendationService(companies, engine, resultCache, producer, logger)

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	handler := handlers.NewMatchHandler(companySvc, recommendationSvc, limiter, logger)

	authInterceptor := auth.NewAuthInterceptor(cfg.JWTSecret)
	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger, grpc.UnaryInterceptor(authInterceptor.Unary()))
	server.RegisterGRPCHandler(handler)
	if err := server.RegisterHTTPGateway(handler, cfg.JWTSecret); err != nil {
		logger.Fatal("Failed to register HTTP gateway", zap.Error(err))
	}

	reloads := scheduler.New(companies, cfg.ReloadInterval, logger)
	if err := reloads.Start(ctx); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer reloads.Stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()
	logger.Info("Matchmaker started",
		zap.String("replica", cfg.ReplicaID),
		zap.String("store", cfg.Store),
		zap.Int("companies", companies.Len()),
		zap.Bool("events", cfg.EventsEnabled()),
		zap.Bool("cache", cfg.CacheEnabled()),
	)

	waitForShutdown(ctx, server, serveErr, logger)
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

// initStore opens the configured shard store. For postgres, an empty database
// is seeded from the shard directory when SEED_DB is set.
func initStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (catalog.Store, func(), error) {
	files := catalog.NewFileStore(cfg.DataDir, logger)
	if cfg.Store == config.StoreFile {
		return files, func() {}, nil
	}

	repo, err := retryWithData(ctx, cfg, logger, "postgres", func() (*db.Repository, error) {
		return db.NewRepository(initDatabase(cfg))
	})
	if err != nil {
		return nil, nil, err
	}
	closeRepo := func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	}

	if cfg.SeedDB {
		if err := seed(ctx, repo, files, logger); err != nil {
			closeRepo()
			return nil, nil, err
		}
	}
	return repo, closeRepo, nil
}

func seed(ctx context.Context, repo *db.Repository, files *catalog.FileStore, logger *zap.Logger) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	shards, err := files.LoadShards(ctx)
	if err != nil {
		return err
	}
	imported, err := repo.Seed(ctx, shards)
	if err != nil {
		return err
	}
	logger.Info("Database seeded", zap.Int("companies", imported))
	return nil
}

// initDatabase initializes the database connection.
func initDatabase(cfg *config.Config) *db.Config {
	return &db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
}

// retryWithData retries fn with exponential backoff until STARTUP_TIMEOUT.
func retryWithData[T any](ctx context.Context, cfg *config.Config, logger *zap.Logger, what string, fn func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = cfg.StartupTimeout
	return backoff.RetryNotifyWithData(fn, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		logger.Warn("Dependency not ready, retrying",
			zap.String("dependency", what),
			zap.Duration("next", next),
			zap.Error(err),
		)
	})
}

func retry(ctx context.Context, cfg *config.Config, logger *zap.Logger, what string, fn func() (struct{}, error)) error {
	_, err := retryWithData(ctx, cfg, logger, what, fn)
	return err
}

// replicaID names this process for event deduplication.
func replicaID() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host + "-" + uuid.NewString()[:8]
	}
	return uuid.NewString()
}

// waitForShutdown blocks until a signal arrives or the servers fail, then
// shuts the servers down.
func waitForShutdown(ctx context.Context, server *handlers.Server, serveErr <-chan error, logger *zap.Logger) {
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Server failed", zap.Error(err))
		}
	}

	server.Stop()
	logger.Info("Servers stopped properly")
}
