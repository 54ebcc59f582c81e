package notificationworker

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/telehealth-ussd/cmd/mainconfig"
	appbootstrap "github.com/wolfman30/telehealth-ussd/internal/app/bootstrap"
	appconfig "github.com/wolfman30/telehealth-ussd/internal/config"
	"github.com/wolfman30/telehealth-ussd/internal/notify"
	"github.com/wolfman30/telehealth-ussd/internal/observability/metrics"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

// Run starts the provider notification worker against SQS and blocks until
// ctx is canceled.
func Run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg prometheus.Registerer) error {
	if cfg == nil {
		return fmt.Errorf("notification worker requires config")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.UseMemoryQueue {
		return fmt.Errorf("notification worker cannot run when USE_MEMORY_QUEUE=true; the API process runs it inline instead")
	}

	dbPool := appbootstrap.ConnectPostgres(ctx, cfg.DatabaseURL, logger)
	if dbPool != nil {
		defer dbPool.Close()
	}
	var sqlDB *sql.DB
	if dbPool != nil {
		sqlDB = stdlib.OpenDBFromPool(dbPool)
		defer sqlDB.Close()
	}

	awsConfig, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	queue, _, err := appbootstrap.BuildQueue(cfg, sqs.NewFromConfig(awsConfig))
	if err != nil {
		return err
	}
	providers := appbootstrap.BuildRecordStore(dbPool, logger)
	emailSender := appbootstrap.BuildEmailSender(cfg, sesv2.NewFromConfig(awsConfig), logger)
	service := notify.NewService(emailSender, providers, logger)

	worker := notify.NewWorker(
		queue,
		service,
		logger,
		notify.WithWorkerCount(cfg.WorkerCount),
		notify.WithReceiveWaitSeconds(cfg.NotificationReceiveWaitSec),
		notify.WithDeduper(appbootstrap.BuildDeduper(cfg, dbPool)),
		notify.WithMetrics(metrics.NewNotificationMetrics(reg)),
	)

	return runUntilStopped(ctx, worker, logger)
}

type runner interface {
	Run(ctx context.Context) error
}

// runUntilStopped waits for the worker after ctx ends, giving up after 30s.
func runUntilStopped(ctx context.Context, worker runner, logger *logging.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- worker.Run(ctx) }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("notification worker: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	doneCtx, doneCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer doneCancel()

	select {
	case err := <-errCh:
		logger.Info("notification worker stopped")
		if err != nil && ctx.Err() == nil {
			return err
		}
	case <-doneCtx.Done():
		logger.Error("notification worker shutdown timed out", "error", doneCtx.Err())
	}
	return nil
}
