package backend

import (
	"fmt"
	"time"

	"expensetracker/internal/config"
)

// Config holds what the factory needs from the application configuration.
type Config struct {
	Type BackendType

	SQLiteDBPath string
	DatabaseURL  string

	Cache     CacheType
	RedisAddr string
	CacheTTL  time.Duration

	// Empty AMQPURL disables change events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Location *time.Location
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Type:         BackendType(appConfig.DataBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		DatabaseURL:  appConfig.DatabaseURL,
		Cache:        CacheType(appConfig.CacheBackend),
		RedisAddr:    appConfig.RedisAddr,
		CacheTTL:     appConfig.CacheTTL,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
		Location:     appConfig.Location(),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case PostgresBackend:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for postgres backend")
		}
	}

	switch c.Cache {
	case MemoryCache, NoCache, "":
	case RedisCache:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis address is required for redis cache")
		}
	default:
		return fmt.Errorf("invalid cache backend: %s", c.Cache)
	}
	return nil
}
