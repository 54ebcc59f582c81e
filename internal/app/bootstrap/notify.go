package bootstrap

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"

	appconfig "github.com/wolfman30/telehealth-ussd/internal/config"
	"github.com/wolfman30/telehealth-ussd/internal/events"
	"github.com/wolfman30/telehealth-ussd/internal/notify"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

// BuildQueue returns the notification queue. With USE_MEMORY_QUEUE the
// in-process queue is returned twice so the caller can run an inline worker.
func BuildQueue(cfg *appconfig.Config, sqsClient *sqs.Client) (events.Queue, *events.MemoryQueue, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if cfg.UseMemoryQueue {
		q := events.NewMemoryQueue(1024)
		return q, q, nil
	}
	if strings.TrimSpace(cfg.NotificationQueueURL) == "" {
		return nil, nil, fmt.Errorf("bootstrap: NOTIFICATION_QUEUE_URL is required when USE_MEMORY_QUEUE=false")
	}
	if sqsClient == nil {
		return nil, nil, fmt.Errorf("bootstrap: sqs client is required")
	}
	return events.NewSQSQueue(sqsClient, cfg.NotificationQueueURL), nil, nil
}

// BuildDeduper keeps processed event ids in Postgres when available.
func BuildDeduper(cfg *appconfig.Config, pool *pgxpool.Pool) events.Deduper {
	if pool == nil || cfg == nil || !cfg.NotificationDedupeInPG {
		return events.NewMemoryProcessedStore()
	}
	return events.NewProcessedStore(pool)
}

// BuildEmailSender picks SendGrid, then SES, then the logging stub.
// sesClient may be nil.
func BuildEmailSender(cfg *appconfig.Config, sesClient *sesv2.Client, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewStubEmailSender(logger)
	}
	var ses notify.SESAPI
	if sesClient != nil {
		ses = sesClient
	}
	sender, kind := notify.NewEmailSender(notify.SenderConfig{
		SendGridAPIKey:    cfg.SendGridAPIKey,
		SendGridFromEmail: cfg.SendGridFromEmail,
		SendGridFromName:  cfg.SendGridFromName,
		SESFromEmail:      cfg.SESFromEmail,
	}, ses, logger)
	if kind == "stub" {
		logger.Warn("provider email notifications disabled (no SendGrid or SES sender configured)")
	} else {
		logger.Info("provider email sender initialized", "provider", kind)
	}
	return sender
}
