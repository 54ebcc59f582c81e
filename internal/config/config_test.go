package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "SESSION_BACKEND", "USSD_SESSION_TTL", "USSD_MAIN_MENU_CODE", "USSD_PROVIDER_MAX_DISTANCE_KM", "USSD_DESIGNATED_PROVIDER_ID", "SENDGRID_FROM_NAME", "USE_MEMORY_QUEUE"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.SessionBackend != SessionBackendMemory {
		t.Fatalf("expected memory session backend, got %s", cfg.SessionBackend)
	}
	if cfg.SessionTTL != 3*time.Minute {
		t.Fatalf("expected default session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.MainMenuCode != "00" {
		t.Fatalf("expected default main menu code, got %s", cfg.MainMenuCode)
	}
	if cfg.ProviderMaxDistanceKm != 1000 {
		t.Fatalf("expected default max distance, got %v", cfg.ProviderMaxDistanceKm)
	}
	if cfg.DesignatedProviderID != 0 {
		t.Fatalf("expected no designated provider, got %d", cfg.DesignatedProviderID)
	}
	if cfg.SendGridFromName != "Tujali Telehealth" {
		t.Fatalf("expected default sender name, got %s", cfg.SendGridFromName)
	}
	if !cfg.UseMemoryQueue {
		t.Fatalf("expected memory queue by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("SESSION_BACKEND", " Redis ")
	t.Setenv("USSD_SESSION_TTL", "90s")
	t.Setenv("USSD_MAIN_MENU_CODE", "99")
	t.Setenv("USSD_PROVIDER_MAX_DISTANCE_KM", "250.5")
	t.Setenv("USSD_DESIGNATED_PROVIDER_ID", "3")
	t.Setenv("USE_MEMORY_QUEUE", "false")
	t.Setenv("RATE_LIMIT_RPS", "0")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.SessionBackend != SessionBackendRedis {
		t.Fatalf("expected normalized redis backend, got %q", cfg.SessionBackend)
	}
	if cfg.SessionTTL != 90*time.Second {
		t.Fatalf("expected ttl override, got %s", cfg.SessionTTL)
	}
	if cfg.MainMenuCode != "99" {
		t.Fatalf("expected menu code override, got %s", cfg.MainMenuCode)
	}
	if cfg.ProviderMaxDistanceKm != 250.5 {
		t.Fatalf("expected distance override, got %v", cfg.ProviderMaxDistanceKm)
	}
	if cfg.DesignatedProviderID != 3 {
		t.Fatalf("expected designated provider override, got %d", cfg.DesignatedProviderID)
	}
	if cfg.UseMemoryQueue {
		t.Fatalf("expected memory queue disabled")
	}
	if cfg.RateLimitRPS != 0 {
		t.Fatalf("expected rate limit disabled, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("USSD_SESSION_TTL", "soon")
	t.Setenv("WORKER_COUNT", "many")
	t.Setenv("USSD_PROVIDER_MAX_DISTANCE_KM", "far")
	cfg := Load()
	if cfg.SessionTTL != 3*time.Minute {
		t.Fatalf("expected default ttl, got %s", cfg.SessionTTL)
	}
	if cfg.WorkerCount != 2 {
		t.Fatalf("expected default worker count, got %d", cfg.WorkerCount)
	}
	if cfg.ProviderMaxDistanceKm != 1000 {
		t.Fatalf("expected default distance, got %v", cfg.ProviderMaxDistanceKm)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("USSD_MAIN_MENU_CODE=77\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	// godotenv never overrides variables that are already set.
	t.Setenv("USSD_MAIN_MENU_CODE", "")
	os.Unsetenv("USSD_MAIN_MENU_CODE")

	cfg := Load()
	if cfg.MainMenuCode != "77" {
		t.Fatalf("expected .env value, got %s", cfg.MainMenuCode)
	}
}
