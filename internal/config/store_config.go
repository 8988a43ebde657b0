package config

import (
	"fmt"
	"net"
	"net/url"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Store struct {
	Driver      string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`

	PGHost     string `env:"PGHOST" envDefault:"localhost"`
	PGPort     string `env:"PGPORT" envDefault:"5432"`
	PGDatabase string `env:"PGDATABASE" envDefault:"gatekeeper"`
	PGUser     string `env:"PGUSER" envDefault:"postgres"`
	PGPassword string `env:"PGPASSWORD" envDefault:"postgres"`

	SQLitePath string `env:"SQLITE_PATH" envDefault:"./data/gatekeeper.db"`

	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"gatekeeper"`

	ConnectTimeout  time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
}

var _ StoreConfig = Store{}

func (s Store) validate() error {
	switch s.Driver {
	case DriverPostgres, DriverSQLite, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", s.Driver)
	}
	if s.ConnectTimeout <= 0 {
		return fmt.Errorf("DB_CONNECT_TIMEOUT must be positive")
	}
	return nil
}

func (s Store) GetStoreDriver() string {
	return s.Driver
}

// GetDatabaseURL returns DATABASE_URL, or a URL assembled from the PG* variables when it is unset.
func (s Store) GetDatabaseURL() string {
	if s.DatabaseURL != "" {
		return s.DatabaseURL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(s.PGUser, s.PGPassword),
		Host:   net.JoinHostPort(s.PGHost, s.PGPort),
		Path:   "/" + s.PGDatabase,
	}
	return u.String()
}

func (s Store) GetSQLitePath() string {
	return s.SQLitePath
}

func (s Store) GetMongoURI() string {
	return s.MongoURI
}

func (s Store) GetMongoDatabase() string {
	return s.MongoDatabase
}

func (s Store) GetConnectTimeout() time.Duration {
	return s.ConnectTimeout
}

func (s Store) GetConnMaxLifetime() time.Duration {
	return s.ConnMaxLifetime
}
