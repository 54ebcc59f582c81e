package notify

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/telehealth-ussd/internal/events"
	"github.com/wolfman30/telehealth-ussd/internal/observability/metrics"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

// ConsumerName identifies this worker in the processed events table.
const ConsumerName = "provider-notify"

const (
	defaultWorkerCount   = 2
	defaultWaitSeconds   = 2
	defaultBatchSize     = 5
	maxWaitSeconds       = 20
	maxReceiveBatchSize  = 10
	deleteTimeoutSeconds = 5
)

// EventHandler processes one decoded envelope.
type EventHandler interface {
	Handle(ctx context.Context, env events.Envelope) error
}

// Worker consumes notification events from the queue.
type Worker struct {
	queue   events.Queue
	handler EventHandler
	logger  *logging.Logger
	cfg     workerConfig
}

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
	processed        events.Deduper
	metrics          *metrics.NotificationMetrics
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many messages to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

// WithDeduper skips events that were already handled.
func WithDeduper(d events.Deduper) WorkerOption {
	return func(cfg *workerConfig) {
		cfg.processed = d
	}
}

func WithMetrics(m *metrics.NotificationMetrics) WorkerOption {
	return func(cfg *workerConfig) {
		cfg.metrics = m
	}
}

func NewWorker(queue events.Queue, handler EventHandler, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if queue == nil {
		panic("notify: queue cannot be nil")
	}
	if handler == nil {
		panic("notify: handler cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Worker{
		queue:   queue,
		handler: handler,
		logger:  logger,
		cfg:     cfg,
	}
}

// Run blocks until ctx is canceled and every consumer has returned.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.cfg.workers; i++ {
		workerID := i + 1
		g.Go(func() error {
			w.run(ctx, workerID)
			return nil
		})
	}
	return g.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	w.logger.Debug("notification worker started", "worker_id", workerID)
	backoff := time.Second

	for {
		if ctx.Err() != nil {
			w.logger.Debug("notification worker stopping", "worker_id", workerID)
			return
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			w.logger.Error("failed to receive notification events", "error", err, "worker_id", workerID)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

// handleMessage deletes poison and duplicate messages. Handler failures
// leave the message on the queue for redelivery.
func (w *Worker) handleMessage(ctx context.Context, msg events.QueueMessage) {
	env, err := events.DecodeMessage(msg)
	if err != nil {
		w.logger.Error("failed to decode notification event", "error", err, "msg_id", msg.ID)
		w.cfg.metrics.ObserveEvent("unknown", "invalid")
		w.deleteMessage(msg.ReceiptHandle)
		return
	}
	eventID := env.EventID.String()
	log := w.logger.With("event_id", eventID, "event_type", env.EventType)

	if w.cfg.processed != nil {
		done, err := w.cfg.processed.AlreadyProcessed(ctx, ConsumerName, eventID)
		if err != nil {
			log.Warn("processed event lookup failed", "error", err)
		} else if done {
			log.Info("skipping duplicate notification event")
			w.cfg.metrics.ObserveEvent(env.EventType, "duplicate")
			w.deleteMessage(msg.ReceiptHandle)
			return
		}
	}

	if err := w.handler.Handle(ctx, env); err != nil {
		log.Error("notification event failed", "error", err)
		w.cfg.metrics.ObserveEvent(env.EventType, "failed")
		return
	}

	if w.cfg.processed != nil {
		if _, err := w.cfg.processed.MarkProcessed(ctx, ConsumerName, eventID); err != nil {
			log.Warn("failed to mark notification event processed", "error", err)
		}
	}
	w.cfg.metrics.ObserveEvent(env.EventType, "sent")
	w.deleteMessage(msg.ReceiptHandle)
}

func (w *Worker) deleteMessage(receiptHandle string) {
	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeoutSeconds*time.Second)
	defer cancel()
	if err := w.queue.Delete(ctx, receiptHandle); err != nil {
		w.logger.Error("failed to delete notification event", "error", err)
	}
}
