package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends.
const (
	SessionBackendMemory   = "memory"
	SessionBackendRedis    = "redis"
	SessionBackendDynamoDB = "dynamodb"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	UseMemoryQueue bool
	WorkerCount    int
	DatabaseURL    string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// USSD session and dialogue settings
	SessionBackend             string
	SessionTable               string
	SessionTTL                 time.Duration
	MainMenuCode               string
	ProviderMaxDistanceKm      float64
	DesignatedProviderID       int64
	PersistInteractions        bool
	RateLimitRPS               float64
	RateLimitBurst             int
	LockTTL                    time.Duration
	LockWait                   time.Duration
	NotificationQueueURL       string
	NotificationDedupeInPG     bool
	AdminJWTSecret             string
	UpstreamCallbackURL        string
	UpstreamCallbackTimeout    time.Duration
	NotificationReceiveWaitSec int

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// TranscriptBucket enables S3 archival of finished sessions.
	TranscriptBucket string

	// Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
}

// Load reads configuration from environment variables, after loading a
// .env file from the working directory when one exists.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", true),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		SessionBackend:             strings.ToLower(strings.TrimSpace(getEnv("SESSION_BACKEND", SessionBackendMemory))),
		SessionTable:               getEnv("SESSION_TABLE", "ussd_sessions"),
		SessionTTL:                 getEnvAsDuration("USSD_SESSION_TTL", 3*time.Minute),
		MainMenuCode:               getEnv("USSD_MAIN_MENU_CODE", "00"),
		ProviderMaxDistanceKm:      getEnvAsFloat("USSD_PROVIDER_MAX_DISTANCE_KM", 1000),
		DesignatedProviderID:       int64(getEnvAsInt("USSD_DESIGNATED_PROVIDER_ID", 0)),
		PersistInteractions:        getEnvAsBool("PERSIST_INTERACTIONS", true),
		RateLimitRPS:               getEnvAsFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:             getEnvAsInt("RATE_LIMIT_BURST", 5),
		LockTTL:                    getEnvAsDuration("USSD_LOCK_TTL", 10*time.Second),
		LockWait:                   getEnvAsDuration("USSD_LOCK_WAIT", 3*time.Second),
		NotificationQueueURL:       getEnv("NOTIFICATION_QUEUE_URL", ""),
		NotificationDedupeInPG:     getEnvAsBool("NOTIFICATION_DEDUPE_PG", true),
		AdminJWTSecret:             getEnv("ADMIN_JWT_SECRET", ""),
		UpstreamCallbackURL:        getEnv("USSD_UPSTREAM_URL", ""),
		UpstreamCallbackTimeout:    getEnvAsDuration("USSD_UPSTREAM_TIMEOUT", 8*time.Second),
		NotificationReceiveWaitSec: getEnvAsInt("NOTIFICATION_RECEIVE_WAIT_SECONDS", 10),

		AWSRegion:           getEnv("AWS_REGION", "af-south-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		TranscriptBucket: getEnv("TRANSCRIPT_ARCHIVE_BUCKET", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Tujali Telehealth"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
