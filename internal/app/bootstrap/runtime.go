package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/telehealth-ussd/internal/config"
	"github.com/wolfman30/telehealth-ussd/internal/interactions"
	"github.com/wolfman30/telehealth-ussd/internal/records"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// ConnectPostgres opens a pool for databaseURL, or returns nil when the URL
// is empty or the database is unreachable.
func ConnectPostgres(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres not reachable", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// BuildRecordStore uses Postgres when a pool is available and the seeded
// in-memory store otherwise.
func BuildRecordStore(pool *pgxpool.Pool, logger *logging.Logger) records.Store {
	if logger == nil {
		logger = logging.Default()
	}
	if pool == nil {
		logger.Warn("DATABASE_URL not set; using seeded in-memory records")
		return records.NewSeededMemoryStore()
	}
	return records.NewPostgresStore(pool)
}

// BuildInteractionStore wires the optional callback audit trail.
func BuildInteractionStore(sqlDB *sql.DB, cfg *appconfig.Config, logger *logging.Logger) *interactions.Store {
	if cfg == nil || !cfg.PersistInteractions || sqlDB == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	logger.Info("ussd interaction persistence enabled")
	return interactions.NewStore(sqlDB)
}
