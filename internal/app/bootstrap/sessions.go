package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/telehealth-ussd/internal/config"
	"github.com/wolfman30/telehealth-ussd/internal/ussd"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

// BuildSessionStore selects the session backend named by SESSION_BACKEND.
// A backend whose client is missing falls back to memory. The second return
// names the backend actually in use.
func BuildSessionStore(cfg *appconfig.Config, redisClient *redis.Client, dynamoClient *dynamodb.Client, logger *logging.Logger) (ussd.SessionStore, string) {
	if logger == nil {
		logger = logging.Default()
	}
	backend := appconfig.SessionBackendMemory
	if cfg != nil {
		backend = cfg.SessionBackend
	}

	switch backend {
	case appconfig.SessionBackendRedis:
		if redisClient != nil {
			return ussd.NewRedisSessionStore(redisClient), appconfig.SessionBackendRedis
		}
		logger.Warn("SESSION_BACKEND=redis but redis is unavailable; using memory sessions")
	case appconfig.SessionBackendDynamoDB:
		if dynamoClient != nil && cfg.SessionTable != "" {
			return ussd.NewDynamoSessionStore(dynamoClient, cfg.SessionTable, logger), appconfig.SessionBackendDynamoDB
		}
		logger.Warn("SESSION_BACKEND=dynamodb but no client or table; using memory sessions")
	case appconfig.SessionBackendMemory, "":
	default:
		logger.Warn("unknown SESSION_BACKEND; using memory sessions", "backend", backend)
	}
	return ussd.NewMemorySessionStore(nil), appconfig.SessionBackendMemory
}

// BuildLocker serializes callbacks of one session. Redis locks are used
// whenever Redis is reachable so several API replicas can share sessions.
func BuildLocker(cfg *appconfig.Config, redisClient *redis.Client) ussd.Locker {
	if redisClient == nil || cfg == nil {
		return ussd.NewKeyedLocker()
	}
	return ussd.NewRedisLocker(redisClient, cfg.LockTTL, cfg.LockWait)
}
