// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/poultry-storefront/internal/adapters/api"
	"github.com/ammerola/poultry-storefront/internal/adapters/localstore"
	"github.com/ammerola/poultry-storefront/internal/adapters/storage"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
	"github.com/ammerola/poultry-storefront/internal/core/services"
	"github.com/ammerola/poultry-storefront/internal/pkg/config"
	"github.com/ammerola/poultry-storefront/internal/pkg/logger"
	"github.com/ammerola/poultry-storefront/internal/workers"
)

func main() {
	// Setup logger
	slogger := logger.SetupLogger("info", "json").Logger

	// Load configuration
	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat).Logger
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reports, err := initReportService(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize report service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create Asynq server
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Asynq.RedisAddr,
			Password: cfg.Asynq.RedisPassword,
			DB:       cfg.Asynq.RedisDB,
		},
		asynq.Config{
			Concurrency:     cfg.Asynq.Concurrency,
			Queues:          cfg.Asynq.Queues,
			StrictPriority:  cfg.Asynq.StrictPriority,
			ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
			RetryDelayFunc:  exponentialBackoff,
			ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
			HealthCheckFunc: healthCheck,
			Logger:          newAsynqLogger(slogger),
		},
	)

	mux := asynq.NewServeMux()
	reportProcessor := workers.NewReportProcessor(reports, slogger)
	mux.HandleFunc(workers.TypeReportArchive, reportProcessor.ProcessReportArchive)

	// Handle shutdown gracefully
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

// initReportService signs the worker in as the seller whose reports it
// archives and wires the archive backend
func initReportService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services.ReportService, error) {
	var sm config.SecretsManager = config.NewEnvSecretsManager()
	if cfg.API.SecretName != "" {
		aws, err := config.NewAWSSecretsManager(ctx, cfg.AWS.Region, cfg.API.SecretName, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create secrets manager: %w", err)
		}
		sm = aws
	}
	if err := config.ResolveAPICredentials(ctx, &cfg.API, sm); err != nil {
		return nil, err
	}

	var session *services.Session
	client, err := api.NewClient(api.Options{
		BaseURL:         cfg.API.BaseURL,
		Timeout:         cfg.API.Timeout,
		RateLimit:       cfg.API.RateLimit,
		RateBurst:       cfg.API.RateBurst,
		RequestIDHeader: cfg.API.RequestIDHeader,
	}, api.TokenFunc(func() string { return session.Token() }), logger)
	if err != nil {
		return nil, err
	}
	session = services.NewSession(client, localstore.NewMemoryStore(nil), logger)
	if _, err := session.Login(ctx, cfg.API.Username, cfg.API.Password); err != nil {
		return nil, err
	}

	archive, err := initArchive(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return services.NewReportService(client, archive, nil, logger), nil
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

func handleError(ctx context.Context, task *asynq.Task, err error) {
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.String("payload", string(task.Payload())),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
