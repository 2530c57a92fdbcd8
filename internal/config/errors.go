package config

import "errors"

var (
	ErrRedisAddrMissing   = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB     = errors.New("REDIS_DB must be a valid integer")
	ErrDatabaseURLMissing = errors.New("DATABASE_URL is required")
	ErrInvalidTimezone    = errors.New("MONITOR_TIMEZONE must be a valid IANA time zone")
	ErrInvalidMode        = errors.New("MONITOR_MODE must be oneshot or server")
)
