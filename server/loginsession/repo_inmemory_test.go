package loginsession_test

import (
	"testing"
	"time"

	apperrors "github.com/jrsteele09/gatekeeper/internal/errors"
	"github.com/jrsteele09/gatekeeper/server/loginsession"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLoginSessionRepo(t *testing.T) {
	repo := loginsession.NewInMemoryLoginSessionRepo()
	session := loginsession.Session{ID: "s-1", UserID: "u-1", ExpiresAt: time.Now().Add(time.Hour)}

	require.Error(t, repo.Upsert(loginsession.Session{UserID: "u-1"}))
	require.Error(t, repo.Upsert(loginsession.Session{ID: "s-1"}))
	require.NoError(t, repo.Upsert(session))

	got, err := repo.Get("s-1")
	require.NoError(t, err)
	require.Equal(t, session, got)

	_, err = repo.Get("missing")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	require.NoError(t, repo.Delete("s-1"))
	require.NoError(t, repo.Delete("s-1"))
	require.Equal(t, 0, repo.Len())
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	require.False(t, loginsession.Session{ExpiresAt: now.Add(time.Second)}.Expired(now))
	require.True(t, loginsession.Session{ExpiresAt: now}.Expired(now))
}
