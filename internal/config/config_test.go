package config

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "MONITOR_MODE", "MONITOR_WORKERS", "MONITOR_DEDUP_WINDOW_HOURS",
		"MONITOR_TIMEZONE", "MONITOR_RUN_TIMEOUT_SECONDS", "JURISDICTION_RULES_PATH",
		"DEFAULT_BUSINESS_DAYS", "DATABASE_URL", "DATABASE_AUTO_MIGRATE", "REDIS_ADDR", "REDIS_DB", "REDIS_TLS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %v", cfg.LogLevel)
	}
	if cfg.Mode != ModeOneshot {
		t.Errorf("expected oneshot mode, got %s", cfg.Mode)
	}
	if cfg.Monitor.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Monitor.Workers)
	}
	if cfg.Monitor.DedupWindow != 24*time.Hour {
		t.Errorf("expected 24h dedup window, got %v", cfg.Monitor.DedupWindow)
	}
	if cfg.Monitor.Location != time.UTC {
		t.Errorf("expected UTC, got %v", cfg.Monitor.Location)
	}
	if cfg.Monitor.RunTimeout != 300*time.Second {
		t.Errorf("expected 300s timeout, got %v", cfg.Monitor.RunTimeout)
	}
	if cfg.Monitor.DefaultBusinessDays != 20 {
		t.Errorf("expected 20 default business days, got %d", cfg.Monitor.DefaultBusinessDays)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("expected default redis addr, got %s", cfg.Redis.Addr)
	}
	if cfg.Redis.DB != 0 || cfg.Redis.TLS {
		t.Errorf("expected redis db 0 without tls, got db=%d tls=%v", cfg.Redis.DB, cfg.Redis.TLS)
	}
	if cfg.Database.AutoMigrate {
		t.Error("expected auto migrate to be off by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MONITOR_MODE", "server")
	t.Setenv("MONITOR_WORKERS", "16")
	t.Setenv("MONITOR_DEDUP_WINDOW_HOURS", "12")
	t.Setenv("MONITOR_TIMEZONE", "America/New_York")
	t.Setenv("DEFAULT_BUSINESS_DAYS", "10")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://localhost/records")
	t.Setenv("DATABASE_AUTO_MIGRATE", "true")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_TLS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Mode != ModeServer {
		t.Errorf("expected server mode, got %s", cfg.Mode)
	}
	if cfg.Monitor.Workers != 16 {
		t.Errorf("expected 16 workers, got %d", cfg.Monitor.Workers)
	}
	if cfg.Monitor.DedupWindow != 12*time.Hour {
		t.Errorf("expected 12h window, got %v", cfg.Monitor.DedupWindow)
	}
	if cfg.Monitor.Location.String() != "America/New_York" {
		t.Errorf("expected America/New_York, got %s", cfg.Monitor.Location)
	}
	if cfg.Monitor.DefaultBusinessDays != 10 {
		t.Errorf("expected 10 default business days, got %d", cfg.Monitor.DefaultBusinessDays)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.LogLevel)
	}
	if cfg.Database.URL != "postgres://localhost/records" {
		t.Errorf("unexpected database url %s", cfg.Database.URL)
	}
	if !cfg.Database.AutoMigrate {
		t.Error("expected auto migrate to be enabled")
	}
	if cfg.Redis.Addr != "redis.internal:6380" || cfg.Redis.DB != 2 || !cfg.Redis.TLS {
		t.Errorf("unexpected redis config %+v", cfg.Redis)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{name: "invalid mode", key: "MONITOR_MODE", value: "cron", wantErr: ErrInvalidMode},
		{name: "invalid timezone", key: "MONITOR_TIMEZONE", value: "Mars/Olympus", wantErr: ErrInvalidTimezone},
		{name: "invalid redis db", key: "REDIS_DB", value: "zero", wantErr: ErrInvalidRedisDB},
		{name: "negative redis db", key: "REDIS_DB", value: "-1", wantErr: ErrInvalidRedisDB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_NonPositiveIntegersFallBackToDefaults(t *testing.T) {
	t.Setenv("MONITOR_MODE", "")
	t.Setenv("MONITOR_TIMEZONE", "")
	t.Setenv("REDIS_DB", "")
	t.Setenv("MONITOR_WORKERS", "0")
	t.Setenv("MONITOR_DEDUP_WINDOW_HOURS", "-5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Monitor.Workers != 4 {
		t.Errorf("expected default workers, got %d", cfg.Monitor.Workers)
	}
	if cfg.Monitor.DedupWindow != 24*time.Hour {
		t.Errorf("expected default window, got %v", cfg.Monitor.DedupWindow)
	}
}

func TestValidateForRun(t *testing.T) {
	cfg := &Config{
		Database: &DatabaseConfig{},
		Redis:    &RedisConfig{Addr: "localhost:6379"},
	}

	err := ValidateForRun(cfg)
	if !errors.Is(err, ErrDatabaseURLMissing) {
		t.Errorf("expected ErrDatabaseURLMissing, got %v", err)
	}

	cfg.Database.URL = "postgres://localhost/records"
	if err := ValidateForRun(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
