package postgres

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/jrsteele09/gatekeeper/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		lostConn bool
	}{
		{"connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"connection does not exist", &pgconn.PgError{Code: "08003"}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"crash shutdown", &pgconn.PgError{Code: "57P02"}, true},
		{"bad driver connection", driver.ErrBadConn, true},
		{"wrapped bad driver connection", fmt.Errorf("query: %w", driver.ErrBadConn), true},
		{"closed network connection", net.ErrClosed, true},
		{"network read failure", &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}, true},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, false},
		{"unique violation", &pgconn.PgError{Code: uniqueViolation}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.lostConn, isConnectionError(tt.err))

			err := classify(tt.err)
			require.ErrorIs(t, err, tt.err)
			require.Equal(t, tt.lostConn, errors.Is(err, apperrors.ErrConnectionLost))
		})
	}
}

func TestInsertError(t *testing.T) {
	t.Run("unique violation is a duplicate email", func(t *testing.T) {
		err := insertError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_lower_idx"})
		require.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
	})

	t.Run("wrapped unique violation is a duplicate email", func(t *testing.T) {
		err := insertError(fmt.Errorf("exec: %w", &pgconn.PgError{Code: uniqueViolation}))
		require.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
	})

	t.Run("lost connection", func(t *testing.T) {
		err := insertError(&pgconn.PgError{Code: "08006"})
		require.ErrorIs(t, err, apperrors.ErrConnectionLost)
		require.NotErrorIs(t, err, apperrors.ErrDuplicateEmail)
	})

	t.Run("other failure", func(t *testing.T) {
		err := insertError(errors.New("disk full"))
		require.Error(t, err)
		require.NotErrorIs(t, err, apperrors.ErrDuplicateEmail)
		require.NotErrorIs(t, err, apperrors.ErrConnectionLost)
	})
}
