package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/telehealth-ussd/cmd/mainconfig"
	"github.com/wolfman30/telehealth-ussd/internal/api/router"
	appbootstrap "github.com/wolfman30/telehealth-ussd/internal/app/bootstrap"
	appconfig "github.com/wolfman30/telehealth-ussd/internal/config"
	"github.com/wolfman30/telehealth-ussd/internal/events"
	"github.com/wolfman30/telehealth-ussd/internal/notify"
	"github.com/wolfman30/telehealth-ussd/internal/observability/metrics"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting telehealth-ussd API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"session_backend", cfg.SessionBackend,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry, metricsHandler := setupMetrics()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Storage
	dbPool := appbootstrap.ConnectPostgres(ctx, cfg.DatabaseURL, logger)
	var sqlDB *sql.DB
	if dbPool != nil {
		defer dbPool.Close()
		sqlDB = stdlib.OpenDBFromPool(dbPool)
		defer sqlDB.Close()
	}
	recordStore := appbootstrap.BuildRecordStore(dbPool, logger)
	journal := appbootstrap.BuildInteractionStore(sqlDB, cfg, logger)

	redisClient := appbootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}
	var dynamoClient *dynamodb.Client
	if cfg.SessionBackend == appconfig.SessionBackendDynamoDB {
		dynamoClient = dynamodb.NewFromConfig(awsCfg)
	}
	sessions, backend := appbootstrap.BuildSessionStore(cfg, redisClient, dynamoClient, logger)
	logger.Info("ussd session store ready", "backend", backend)

	// Notifications
	queue, memoryQueue, err := appbootstrap.BuildQueue(cfg, sqs.NewFromConfig(awsCfg))
	if err != nil {
		logger.Error("failed to configure notification queue", "error", err)
		os.Exit(1)
	}
	publisher := events.NewPublisher(queue, logger)

	svc, err := appbootstrap.BuildUSSDService(cfg, appbootstrap.USSDDeps{
		Records:  recordStore,
		Sessions: sessions,
		Locker:   appbootstrap.BuildLocker(cfg, redisClient),
		Events:   publisher,
		Journal:  journal,
		Archiver: appbootstrap.BuildTranscriptArchiver(cfg, awsCfg, journal, logger),
		Metrics:  metrics.NewUSSDMetrics(registry),
	}, logger)
	if err != nil {
		logger.Error("failed to configure ussd service", "error", err)
		os.Exit(1)
	}

	var sesClient *sesv2.Client
	if cfg.SESFromEmail != "" {
		sesClient = sesv2.NewFromConfig(awsCfg)
	}
	inlineWorker := setupInlineWorker(ctx, cfg, logger, memoryQueue, notify.NewService(
		appbootstrap.BuildEmailSender(cfg, sesClient, logger),
		recordStore,
		logger,
	), appbootstrap.BuildDeduper(cfg, dbPool), registry)

	// Setup router
	r := router.New(&router.Config{
		Logger:          logger,
		USSDHandler:     appbootstrap.BuildUSSDHandler(svc, journal, logger),
		AdminAuthSecret: cfg.AdminJWTSecret,
		MetricsHandler:  metricsHandler,
		RateLimitRPS:    cfg.RateLimitRPS,
		RateLimitBurst:  cfg.RateLimitBurst,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	cancel()
	svc.WaitArchives()
	waitForInlineWorker(inlineWorker, logger)

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func setupMetrics() (*prometheus.Registry, http.Handler) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// setupInlineWorker drains the in-process queue when USE_MEMORY_QUEUE is set.
// It returns nil when notifications go through SQS instead.
func setupInlineWorker(
	ctx context.Context,
	cfg *appconfig.Config,
	logger *logging.Logger,
	memoryQueue *events.MemoryQueue,
	handler notify.EventHandler,
	deduper events.Deduper,
	reg prometheus.Registerer,
) <-chan error {
	if cfg == nil || !cfg.UseMemoryQueue || memoryQueue == nil {
		return nil
	}
	worker := notify.NewWorker(
		memoryQueue,
		handler,
		logger,
		notify.WithWorkerCount(cfg.WorkerCount),
		notify.WithReceiveWaitSeconds(1),
		notify.WithDeduper(deduper),
		notify.WithMetrics(metrics.NewNotificationMetrics(reg)),
	)
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()
	logger.Info("inline notification worker started", "workers", cfg.WorkerCount)
	return done
}

func waitForInlineWorker(done <-chan error, logger *logging.Logger) {
	if done == nil {
		return
	}
	select {
	case err := <-done:
		if err != nil {
			logger.Error("inline notification worker stopped with error", "error", err)
			return
		}
		logger.Info("inline notification worker stopped")
	case <-time.After(10 * time.Second):
		logger.Warn("timed out waiting for inline notification worker")
	}
}
