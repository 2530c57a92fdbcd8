package config

import (
	"os"
	"time"
)

const (
	databaseURLEnv                    = "DATABASE_URL"
	databaseMaxOpenConnsEnv           = "DATABASE_MAX_OPEN_CONNS"
	databaseMaxIdleConnsEnv           = "DATABASE_MAX_IDLE_CONNS"
	databaseConnMaxLifetimeMinutesEnv = "DATABASE_CONN_MAX_LIFETIME_MINUTES"
	databaseAutoMigrateEnv            = "DATABASE_AUTO_MIGRATE"

	defaultDatabaseMaxOpenConns           = 10
	defaultDatabaseMaxIdleConns           = 5
	defaultDatabaseConnMaxLifetimeMinutes = 30
)

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// AutoMigrate creates the notifications table on startup. The requests
	// table is never migrated by the monitor.
	AutoMigrate     bool
}

func LoadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:             os.Getenv(databaseURLEnv),
		MaxOpenConns:    positiveIntEnv(databaseMaxOpenConnsEnv, defaultDatabaseMaxOpenConns),
		MaxIdleConns:    positiveIntEnv(databaseMaxIdleConnsEnv, defaultDatabaseMaxIdleConns),
		ConnMaxLifetime: time.Duration(positiveIntEnv(databaseConnMaxLifetimeMinutesEnv, defaultDatabaseConnMaxLifetimeMinutes)) * time.Minute,
		AutoMigrate:     boolEnv(databaseAutoMigrateEnv, false),
	}
}

func (c *DatabaseConfig) Validate() error {
	if c == nil || c.URL == "" {
		return ErrDatabaseURLMissing
	}
	return nil
}
