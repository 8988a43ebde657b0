package mongo

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/jrsteele09/gatekeeper/internal/errors"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		lostConn bool
	}{
		{"network error label", mongo.CommandError{Code: 6, Name: "HostUnreachable", Labels: []string{"NetworkError"}}, true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"command failure", mongo.CommandError{Code: 13, Name: "Unauthorized"}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.err)
			require.ErrorContains(t, err, tt.err.Error())
			require.Equal(t, tt.lostConn, errors.Is(err, apperrors.ErrConnectionLost))
		})
	}
}

func TestInsertError(t *testing.T) {
	t.Run("duplicate key write error", func(t *testing.T) {
		err := insertError(mongo.WriteException{
			WriteErrors: []mongo.WriteError{{Index: 0, Code: 11000, Message: "E11000 duplicate key error collection: gatekeeper.users index: email_1"}},
		})
		require.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
	})

	t.Run("duplicate key command error", func(t *testing.T) {
		err := insertError(mongo.CommandError{Code: 11000, Message: "E11000 duplicate key error"})
		require.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
	})

	t.Run("lost connection", func(t *testing.T) {
		err := insertError(mongo.CommandError{Code: 6, Labels: []string{"NetworkError"}})
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
