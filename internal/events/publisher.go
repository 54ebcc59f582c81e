package events

import (
	"context"
	"fmt"

	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

// Publisher enqueues domain events for the notification worker.
type Publisher struct {
	queue  Queue
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue Queue, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("events: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		logger: logger,
	}
}

// Publish wraps evt in an envelope and sends it.
func (p *Publisher) Publish(ctx context.Context, aggregate, correlationID string, evt CanonicalEvent) error {
	env, err := NewEnvelope(aggregate, correlationID, evt)
	if err != nil {
		return err
	}
	body, err := encodeEnvelope(env)
	if err != nil {
		return err
	}
	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("events: failed to enqueue %s: %w", env.EventType, err)
	}

	p.logger.Debug("event enqueued", "event_id", env.EventID, "event_type", env.EventType, "aggregate", env.Aggregate)
	return nil
}
