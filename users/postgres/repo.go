// Package postgres stores users in PostgreSQL through a pgx connection pool.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	apperrors "github.com/jrsteele09/gatekeeper/internal/errors"
	"github.com/jrsteele09/gatekeeper/users"
	"github.com/jrsteele09/gatekeeper/users/postgres/migrations"
	"github.com/pressly/goose/v3"
)

const uniqueViolation = "23505"

var _ users.Repo = (*Repo)(nil)

type Repo struct {
	pool *pgxpool.Pool
}

// Options tune the pool created by Open.
type Options struct {
	ConnectTimeout  time.Duration
	ConnMaxLifetime time.Duration
}

// Open creates the pool, checks connectivity and applies the embedded migrations.
func Open(ctx context.Context, databaseURL string, opts Options) (*Repo, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("[postgres Open] parse database url: %w", err)
	}
	if opts.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = opts.ConnectTimeout
	}
	if opts.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.ConnMaxLifetime
	}

	if err := runMigrations(ctx, poolConfig.ConnConfig); err != nil {
		return nil, fmt.Errorf("[postgres Open] migrations: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("[postgres Open] create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("[postgres Open] ping: %w", err)
	}
	return &Repo{pool: pool}, nil
}

func runMigrations(ctx context.Context, connConfig *pgx.ConnConfig) error {
	db := stdlib.OpenDB(*connConfig)
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (r *Repo) Close() error {
	r.pool.Close()
	return nil
}

// Reset closes every pooled connection; the pool dials new ones on demand.
func (r *Repo) Reset() {
	r.pool.Reset()
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	query := `SELECT id::text, email, password_hash, COALESCE(full_name, ''), created_at
		FROM users
		WHERE lower(email) = lower($1)`
	return r.getOne(ctx, query, email)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*users.User, error) {
	query := `SELECT id::text, email, password_hash, COALESCE(full_name, ''), created_at
		FROM users
		WHERE id::text = $1`
	return r.getOne(ctx, query, id)
}

func (r *Repo) getOne(ctx context.Context, query string, arg string) (*users.User, error) {
	user := &users.User{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, classify(err)
	}
	return user, nil
}

func (r *Repo) Any(ctx context.Context) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists); err != nil {
		return false, classify(err)
	}
	return exists, nil
}

// Insert writes the user inside a transaction that is rolled back on any failure.
func (r *Repo) Insert(ctx context.Context, user *users.User) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return classify(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var fullName sql.NullString
	if user.FullName != "" {
		fullName = sql.NullString{String: user.FullName, Valid: true}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, user.PasswordHash, fullName, user.CreatedAt)
	if err != nil {
		return insertError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// insertError maps a unique violation to ErrDuplicateEmail and classifies everything else.
func insertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperrors.ErrDuplicateEmail
	}
	return classify(err)
}

// classify wraps connection-level failures with ErrConnectionLost.
func classify(err error) error {
	if isConnectionError(err) {
		return fmt.Errorf("%w: %w", apperrors.ErrConnectionLost, err)
	}
	return fmt.Errorf("db error: %w", err)
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, net.ErrClosed) {
		return true
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exception, 57P01-03: server shutting down.
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P0")
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
