// Package sqlite stores users in a local SQLite file using the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/gatekeeper/internal/errors"
	"github.com/jrsteele09/gatekeeper/users"
	"github.com/jrsteele09/gatekeeper/users/sqlite/migrations"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var _ users.Repo = (*Repo)(nil)

type Repo struct {
	db *sql.DB
}

// Open opens (creating if needed) the database file and applies the embedded migrations.
func Open(ctx context.Context, path string) (*Repo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("[sqlite Open] storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("[sqlite Open] create data folder: %w", err)
		}
	}

	dsn := "file:" + cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("[sqlite Open] open: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("[sqlite Open] ping: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("[sqlite Open] goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("[sqlite Open] migrations: %w", err)
	}

	return &Repo{db: db}, nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

// Reset drops idle connections; database/sql reopens them lazily.
func (r *Repo) Reset() {
	r.db.SetMaxIdleConns(0)
	r.db.SetMaxIdleConns(1)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	query := `SELECT id, email, password_hash, COALESCE(full_name, ''), created_at
		FROM users
		WHERE email = ?`
	return r.getOne(ctx, query, email)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*users.User, error) {
	query := `SELECT id, email, password_hash, COALESCE(full_name, ''), created_at
		FROM users
		WHERE id = ?`
	return r.getOne(ctx, query, id)
}

func (r *Repo) getOne(ctx context.Context, query string, arg string) (*users.User, error) {
	user := &users.User{}
	var createdAt int64
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, classify(err)
	}
	user.CreatedAt = time.UnixMilli(createdAt).UTC()
	return user, nil
}

func (r *Repo) Any(ctx context.Context) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists); err != nil {
		return false, classify(err)
	}
	return exists, nil
}

// Insert writes the user inside a transaction that is rolled back on any failure.
func (r *Repo) Insert(ctx context.Context, user *users.User) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var fullName sql.NullString
	if user.FullName != "" {
		fullName = sql.NullString{String: user.FullName, Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, fullName, user.CreatedAt.UTC().UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateEmail
		}
		return classify(err)
	}

	if err = tx.Commit(); err != nil {
		return classify(err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// classify treats a busy database or a broken connection as a lost connection.
func classify(err error) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", apperrors.ErrConnectionLost, err)
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3.SQLITE_BUSY {
		return fmt.Errorf("%w: %w", apperrors.ErrConnectionLost, err)
	}
	return fmt.Errorf("db error: %w", err)
}
