// cmd/storefront/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/poultry-storefront/internal/adapters/api"
	"github.com/ammerola/poultry-storefront/internal/adapters/db"
	"github.com/ammerola/poultry-storefront/internal/adapters/feed"
	"github.com/ammerola/poultry-storefront/internal/adapters/localstore"
	redis_a "github.com/ammerola/poultry-storefront/internal/adapters/redis_adapter"
	"github.com/ammerola/poultry-storefront/internal/adapters/storage"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
	"github.com/ammerola/poultry-storefront/internal/core/services"
	"github.com/ammerola/poultry-storefront/internal/handlers"
	"github.com/ammerola/poultry-storefront/internal/pkg/config"
	"github.com/ammerola/poultry-storefront/internal/pkg/logger"
	"github.com/ammerola/poultry-storefront/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json").Logger
	slogger.Info("starting poultry storefront engine",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat).Logger
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Backend),
		slog.String("feed", cfg.Feed.Transport),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	deps.start(ctx, slogger)
	server := handlers.NewServer(ctx, cfg, deps.handlers, deps.session, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		// Pending stock edits are saved before exit
		deps.editor.Flush(shutdownCtx)
		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *sql.DB
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector

	session   *services.Session
	loader    *services.ProductLoader
	inventory *services.SellerInventory
	editor    *services.StockEditor
	orderFeed *services.OrderFeed
	handlers  handlers.Handlers
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
}

// start ties the order feed to the session and performs the initial loads
func (d *dependencies) start(ctx context.Context, logger *slog.Logger) {
	d.orderFeed.Watch(ctx, d.session)

	if user := d.session.CurrentUser(); user != nil && user.IsSeller() {
		if err := d.inventory.Reload(ctx); err != nil {
			logger.Warn("initial inventory load failed", slog.String("error", err.Error()))
		}
	}
	d.loader.Start(ctx)
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	if needsRedis(cfg) {
		logger.Info("connecting to Redis", slog.String("address", cfg.GetRedisAddress()))
		client := redis.NewClient(&redis.Options{
			Addr:            cfg.GetRedisAddress(),
			Password:        cfg.Redis.Password,
			DB:              cfg.Redis.DB,
			MaxRetries:      cfg.Redis.MaxRetries,
			MinRetryBackoff: cfg.Redis.MinRetryBackoff,
			MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
			DialTimeout:     cfg.Redis.DialTimeout,
			ReadTimeout:     cfg.Redis.ReadTimeout,
			WriteTimeout:    cfg.Redis.WriteTimeout,
			PoolSize:        cfg.Redis.PoolSize,
			MinIdleConns:    cfg.Redis.MinIdleConns,
			PoolTimeout:     cfg.Redis.PoolTimeout,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		deps.redisClient = client
	}

	store, err := initStorage(ctx, cfg, deps, logger)
	if err != nil {
		deps.cleanup()
		return nil, err
	}

	// The client reads the token through the session, which is built on
	// top of the client
	var session *services.Session
	client, err := api.NewClient(api.Options{
		BaseURL:         cfg.API.BaseURL,
		Timeout:         cfg.API.Timeout,
		RateLimit:       cfg.API.RateLimit,
		RateBurst:       cfg.API.RateBurst,
		RequestIDHeader: cfg.API.RequestIDHeader,
	}, api.TokenFunc(func() string { return session.Token() }), logger)
	if err != nil {
		deps.cleanup()
		return nil, err
	}
	session = services.NewSession(client, store, logger)
	deps.session = session

	source, err := initFeed(cfg, deps, logger)
	if err != nil {
		deps.cleanup()
		return nil, err
	}

	var cache ports.CacheRepository
	if deps.redisClient != nil {
		cache = redis_a.NewCache(deps.redisClient, cfg.Redis.TTL, logger)
	}

	archive, err := initArchive(ctx, cfg, logger)
	if err != nil {
		deps.cleanup()
		return nil, err
	}

	var queue ports.TaskQueue
	if cfg.Redis.Enabled {
		asynqOpt := asynq.RedisClientOpt{
			Addr:     cfg.Asynq.RedisAddr,
			Password: cfg.Asynq.RedisPassword,
			DB:       cfg.Asynq.RedisDB,
		}
		deps.asynqClient = asynq.NewClient(asynqOpt)
		deps.asynqInspector = asynq.NewInspector(asynqOpt)
		queue = workers.NewTaskClient(deps.asynqClient, "default", cfg.Asynq.RetryMax, logger)
	}

	cart := services.NewCartStore(store, logger)
	board := services.NewOrderBoard(client, logger)
	stats := services.NewStatsService(client, cache, cfg.Redis.TTL, logger)
	reports := services.NewReportService(client, archive, queue, logger)

	deps.loader = services.NewProductLoader(client, session, cfg.Loader.PageSize, logger)
	deps.inventory = services.NewSellerInventory(client, cfg.Loader.SellerPageSize, logger)
	deps.editor = services.NewStockEditor(client, deps.inventory, services.SystemClock{}, cfg.Editor.Debounce, logger)
	deps.orderFeed = services.NewOrderFeed(source, board, logger)

	// A nil *redis.Client must not reach the handler as a non-nil interface
	var redisHealth redis.UniversalClient
	if deps.redisClient != nil {
		redisHealth = deps.redisClient
	}

	deps.handlers = handlers.Handlers{
		Health:    handlers.NewHealthHandler(deps.database, redisHealth, deps.asynqInspector, deps.orderFeed, cfg, logger),
		Session:   handlers.NewSessionHandler(session, services.NewPreferences(store, logger), logger),
		Cart:      handlers.NewCartHandler(cart, client, logger),
		Catalog:   handlers.NewCatalogHandler(deps.loader, logger),
		Inventory: handlers.NewInventoryHandler(deps.inventory, deps.editor, logger),
		Orders:    handlers.NewOrderHandler(board, cart, stats, logger),
		Reports:   handlers.NewReportHandler(reports, stats, logger),
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func needsRedis(cfg *config.Config) bool {
	return cfg.Redis.Enabled || cfg.Storage.Backend == "redis" || cfg.Feed.Transport == "redis"
}

func initStorage(ctx context.Context, cfg *config.Config, deps *dependencies, logger *slog.Logger) (ports.StorageAdapter, error) {
	switch cfg.Storage.Backend {
	case "memory", "":
		return localstore.NewMemoryStore(nil), nil
	case "file":
		return localstore.NewFileStore(cfg.Storage.FilePath, logger)
	case "redis":
		if deps.redisClient == nil {
			return nil, errors.New("redis storage requires a redis connection")
		}
		return redis_a.NewStore(deps.redisClient, cfg.Storage.Namespace, logger), nil
	case "postgres":
		if err := db.RunMigrationsWithRetry(ctx, cfg.GetDatabaseURL(), logger, 3); err != nil {
			return nil, err
		}
		conn, err := db.Open(ctx, &db.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Database:        cfg.Database.Name,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxConnections,
			MaxIdleConns:    cfg.Database.MinConnections,
			ConnMaxLifetime: cfg.Database.MaxConnLifetime,
			ConnMaxIdleTime: cfg.Database.MaxConnIdleTime,
			ConnectTimeout:  cfg.Database.ConnectTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		deps.database = conn
		return db.NewKVStore(conn, cfg.Storage.Namespace, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func initFeed(cfg *config.Config, deps *dependencies, logger *slog.Logger) (ports.EventSource, error) {
	switch cfg.Feed.Transport {
	case "websocket", "":
		return feed.NewWebSocketSource(cfg.API.BaseURL, cfg.Feed.HandshakeTimeout, logger)
	case "redis":
		if deps.redisClient == nil {
			return nil, errors.New("redis feed requires a redis connection")
		}
		return redis_a.NewPubSubSource(deps.redisClient, logger), nil
	case "kafka":
		return feed.NewKafkaSource(feed.KafkaConfig{
			Brokers: cfg.Feed.Brokers,
			Topic:   cfg.Feed.Topic,
			GroupID: cfg.Feed.GroupID,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown feed transport %q", cfg.Feed.Transport)
	}
}

func initArchive(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.ReportArchive, error) {
	if cfg.AWS.S3Bucket == "" {
		return storage.NewLocalArchive(cfg.AWS.ArchiveDir, logger)
	}
	return storage.NewS3Archive(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
}
