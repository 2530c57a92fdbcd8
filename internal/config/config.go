package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Mode string

const (
	ModeOneshot Mode = "oneshot"
	ModeServer  Mode = "server"
)

type Config struct {
	Port     string
	LogLevel slog.Level
	Mode     Mode
	Monitor  *MonitorConfig
	Database *DatabaseConfig
	Redis    *RedisConfig
}

func Load() (*Config, error) {
	port := stringEnv("PORT", "8080")

	mode, err := parseMode(os.Getenv("MONITOR_MODE"))
	if err != nil {
		return nil, err
	}

	monitorConfig, err := LoadMonitorConfig()
	if err != nil {
		return nil, err
	}

	databaseConfig := LoadDatabaseConfig()

	redisConfig, err := LoadRedisConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:     port,
		LogLevel: parseLogLevel(os.Getenv("LOG_LEVEL")),
		Mode:     mode,
		Monitor:  monitorConfig,
		Database: databaseConfig,
		Redis:    redisConfig,
	}, nil
}

func parseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeOneshot:
		return ModeOneshot, nil
	case ModeServer:
		return ModeServer, nil
	default:
		return "", ErrInvalidMode
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func positiveIntEnv(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func stringEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func boolEnv(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// intEnv reports false when the variable is set but not an integer.
func intEnv(key string, defaultValue int) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, true
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
