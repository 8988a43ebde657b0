// Package database opens the users backend selected by configuration.
package database

import (
	"context"
	"fmt"
	"io"

	"github.com/jrsteele09/gatekeeper/internal/config"
	"github.com/jrsteele09/gatekeeper/users"
	"github.com/jrsteele09/gatekeeper/users/mongo"
	"github.com/jrsteele09/gatekeeper/users/postgres"
	fakeuserrepo "github.com/jrsteele09/gatekeeper/users/repofake"
	"github.com/jrsteele09/gatekeeper/users/sqlite"
	"github.com/rs/zerolog/log"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the configured users.Repo and a closer releasing its resources.
// Connection establishment is bounded by the configured connect timeout.
func Open(ctx context.Context, c config.StoreConfig) (users.Repo, io.Closer, error) {
	ctx, cancel := context.WithTimeout(ctx, c.GetConnectTimeout())
	defer cancel()

	switch c.GetStoreDriver() {
	case config.DriverPostgres:
		repo, err := postgres.Open(ctx, c.GetDatabaseURL(), postgres.Options{
			ConnectTimeout:  c.GetConnectTimeout(),
			ConnMaxLifetime: c.GetConnMaxLifetime(),
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("driver", config.DriverPostgres).Msg("users store opened")
		return repo, repo, nil

	case config.DriverSQLite:
		repo, err := sqlite.Open(ctx, c.GetSQLitePath())
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("driver", config.DriverSQLite).Str("path", c.GetSQLitePath()).Msg("users store opened")
		return repo, repo, nil

	case config.DriverMongo:
		repo, err := mongo.Open(ctx, c.GetMongoURI(), c.GetMongoDatabase(), c.GetConnectTimeout())
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("driver", config.DriverMongo).Str("database", c.GetMongoDatabase()).Msg("users store opened")
		return repo, repo, nil

	case config.DriverMemory:
		log.Warn().Msg("users store is in memory; accounts are lost on restart")
		return fakeuserrepo.NewFakeUserRepo(), nopCloser{}, nil

	default:
		return nil, nil, fmt.Errorf("[database Open] unknown store driver %q", c.GetStoreDriver())
	}
}
