package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config interface {
	EnvConfig
	StoreConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type StoreConfig interface {
	GetStoreDriver() string
	GetDatabaseURL() string
	GetSQLitePath() string
	GetMongoURI() string
	GetMongoDatabase() string
	GetConnectTimeout() time.Duration
	GetConnMaxLifetime() time.Duration
}

type mainConfig struct {
	EnvVars
	Store
	Security
}

// New reads the configuration from the environment.
func New() (Config, error) {
	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("[config New] parse env: %w", err)
	}
	if err := c.Store.validate(); err != nil {
		return nil, fmt.Errorf("[config New] %w", err)
	}
	if err := c.Security.validate(); err != nil {
		return nil, fmt.Errorf("[config New] %w", err)
	}
	return c, nil
}
