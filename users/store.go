package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/gatekeeper/internal/errors"
	"github.com/rs/zerolog/log"
)

// Store is the credential store: user lookup, creation and password verification.
// Nothing is cached; every call reads the backend.
type Store struct {
	repo      Repo
	hasher    PasswordHasher
	nowTime   func() time.Time
	dummyHash string // verified when no user matches, so a miss costs the same as a wrong password
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

func NewStore(repo Repo, hasher PasswordHasher, options ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[users NewStore] repo is required")
	}
	if hasher == nil {
		return nil, errors.New("[users NewStore] hasher is required")
	}

	s := &Store{
		repo:    repo,
		hasher:  hasher,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	dummy, err := hasher.Hash(uuid.New().String())
	if err != nil {
		return nil, fmt.Errorf("[users NewStore] hash dummy password: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

// FindByEmail returns the user with the given email, or errors.ErrNotFound.
func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	email = NormalizeEmail(email)
	return readWithRetry(ctx, s, "FindByEmail", func(ctx context.Context) (*User, error) {
		return s.repo.GetByEmail(ctx, email)
	})
}

// FindByID returns the user with the given identifier, or errors.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (*User, error) {
	return readWithRetry(ctx, s, "FindByID", func(ctx context.Context) (*User, error) {
		return s.repo.GetByID(ctx, id)
	})
}

// HasAnyUser reports whether at least one user exists.
func (s *Store) HasAnyUser(ctx context.Context) (bool, error) {
	return readWithRetry(ctx, s, "HasAnyUser", s.repo.Any)
}

// Create hashes rawPassword and persists a new user. It returns errors.ErrDuplicateEmail
// when the email is already taken, whether found by the pre-check or by the backend's
// uniqueness constraint.
func (s *Store) Create(ctx context.Context, email, fullName, rawPassword string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, errors.New("[users Create] email is required")
	}
	if rawPassword == "" {
		return nil, errors.New("[users Create] password is required")
	}

	if _, err := s.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.ErrDuplicateEmail
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("[users Create] hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		CreatedAt:    s.nowTime().UTC(),
	}
	if err := s.repo.Insert(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("[users Create] insert: %w", err)
	}
	return user, nil
}

// VerifyPassword reports whether rawPassword matches the user's hash.
// A nil user is checked against a dummy hash and always fails.
func (s *Store) VerifyPassword(user *User, rawPassword string) bool {
	if user == nil || user.PasswordHash == "" {
		CheckPasswordHash(rawPassword, s.dummyHash)
		return false
	}
	return CheckPasswordHash(rawPassword, user.PasswordHash)
}

// Authenticate returns the user owning email when rawPassword matches. An unknown email
// and a wrong password both yield errors.ErrInvalidCredentials after a full hash check.
// Store failures surface as errors.ErrStoreUnavailable.
func (s *Store) Authenticate(ctx context.Context, email, rawPassword string) (*User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if !s.VerifyPassword(user, rawPassword) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// readWithRetry runs a backend read, retrying once after Reset when the connection was lost.
func readWithRetry[T any](ctx context.Context, s *Store, op string, read func(context.Context) (T, error)) (T, error) {
	var zero T

	value, err := read(ctx)
	if err == nil {
		return value, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return zero, apperrors.ErrNotFound
	}
	if !errors.Is(err, apperrors.ErrConnectionLost) {
		log.Err(err).Str("op", op).Msg("credential store read failed")
		return zero, fmt.Errorf("%w: %s", apperrors.ErrStoreUnavailable, op)
	}

	log.Warn().Err(err).Str("op", op).Msg("credential store connection lost, retrying once")
	s.repo.Reset()

	value, err = read(ctx)
	if err == nil {
		return value, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return zero, apperrors.ErrNotFound
	}
	log.Err(err).Str("op", op).Msg("credential store retry failed")
	return zero, fmt.Errorf("%w: %s", apperrors.ErrStoreUnavailable, op)
}
