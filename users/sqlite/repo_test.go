package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/gatekeeper/internal/errors"
	"github.com/jrsteele09/gatekeeper/users"
	"github.com/jrsteele09/gatekeeper/users/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func openRepo(t *testing.T) *sqlite.Repo {
	t.Helper()

	repo, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "data", "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepo_InsertAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	exists, err := repo.Any(ctx)
	require.NoError(t, err)
	require.False(t, exists)

	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, &users.User{
		ID:           "user-1",
		Email:        "a@x.com",
		PasswordHash: "hash",
		FullName:     "Ada",
		CreatedAt:    created,
	}))
	require.NoError(t, repo.Insert(ctx, &users.User{
		ID:           "user-2",
		Email:        "b@x.com",
		PasswordHash: "hash",
		CreatedAt:    created,
	}))

	exists, err = repo.Any(ctx)
	require.NoError(t, err)
	require.True(t, exists)

	u, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "user-1", u.ID)
	require.Equal(t, "Ada", u.FullName)
	require.Equal(t, created, u.CreatedAt)

	u, err = repo.GetByID(ctx, "user-2")
	require.NoError(t, err)
	require.Equal(t, "b@x.com", u.Email)
	require.Empty(t, u.FullName)

	_, err = repo.GetByEmail(ctx, "missing@x.com")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRepo_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	require.NoError(t, repo.Insert(ctx, &users.User{ID: "user-1", Email: "a@x.com", PasswordHash: "hash", CreatedAt: time.Now()}))

	err := repo.Insert(ctx, &users.User{ID: "user-2", Email: "A@X.com", PasswordHash: "hash", CreatedAt: time.Now()})
	require.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
}

// Concurrent registrations of the same email must leave exactly one record,
// with every loser reported as a duplicate.
func TestStore_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	store, err := users.NewStore(repo, users.BcryptHasher{Cost: bcrypt.MinCost})
	require.NoError(t, err)

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dupes   int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, "race@x.com", "", "longenough1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case apperrors.Is(err, apperrors.ErrDuplicateEmail):
				dupes++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, created)
	require.Equal(t, attempts-1, dupes)
}
