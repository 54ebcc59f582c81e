package ussd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const sessionKeyPrefix = "ussd:session:"

// RedisSessionStore shares sessions between API replicas.
type RedisSessionStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore wraps an existing client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	if client == nil {
		panic("ussd: redis client cannot be nil")
	}
	return &RedisSessionStore{
		redis:  client,
		tracer: otel.Tracer("tujali.internal.ussd.session"),
	}
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, errSessionIDRequired
	}
	ctx, span := s.tracer.Start(ctx, "ussd.session.get", trace.WithAttributes(attribute.String("ussd.session_id", id)))
	defer span.End()

	raw, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("ussd: get session: %w", err)
	}

	sess, err := decodeSession(raw)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("ussd: decode session: %w", err)
	}
	return sess, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, sess *Session, ttl time.Duration) error {
	if sess == nil || sess.ID == "" {
		return errSessionIDRequired
	}
	data, err := encodeSession(sess)
	if err != nil {
		return fmt.Errorf("ussd: encode session: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "ussd.session.put", trace.WithAttributes(
		attribute.String("ussd.session_id", sess.ID),
		attribute.String("ussd.state", sess.State.String()),
	))
	defer span.End()

	if ttl < 0 {
		ttl = 0
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ID), data, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("ussd: put session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "ussd.session.delete")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(id)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("ussd: delete session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
