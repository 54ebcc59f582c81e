package events

import (
	"context"
	"encoding/json"
	"fmt"
)

// Queue is the transport between the USSD API and the notification worker.
type Queue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]QueueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// QueueMessage is one received queue entry.
type QueueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

func encodeEnvelope(env Envelope) (string, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("events: failed to encode envelope: %w", err)
	}
	return string(body), nil
}

// DecodeMessage parses a queue body produced by Publisher.
func DecodeMessage(msg QueueMessage) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(msg.Body), &env); err != nil {
		return Envelope{}, fmt.Errorf("events: failed to decode message %s: %w", msg.ID, err)
	}
	return env, nil
}
