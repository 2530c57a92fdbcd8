package config

const (
	redisAddrEnv     = "REDIS_ADDR"
	redisPasswordEnv = "REDIS_PASSWORD"
	redisDBEnv       = "REDIS_DB"
	redisTLSEnv      = "REDIS_TLS"

	defaultRedisAddr = "localhost:6379"
)

// RedisConfig addresses the dedup claim store. An unreachable Redis degrades
// dedup to the notifications table; only a malformed configuration is fatal.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

func LoadRedisConfig() (*RedisConfig, error) {
	db, ok := intEnv(redisDBEnv, 0)
	if !ok || db < 0 {
		return nil, ErrInvalidRedisDB
	}

	return &RedisConfig{
		Addr:     stringEnv(redisAddrEnv, defaultRedisAddr),
		Password: stringEnv(redisPasswordEnv, ""),
		DB:       db,
		TLS:      boolEnv(redisTLSEnv, false),
	}, nil
}

func (c *RedisConfig) Validate() error {
	if c == nil || c.Addr == "" {
		return ErrRedisAddrMissing
	}
	return nil
}
