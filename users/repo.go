package users

import "context"

// Repo is the persistence contract a credential backend must satisfy.
//
// Lookups return errors.ErrNotFound when no record matches. Backends wrap
// connection failures with errors.ErrConnectionLost so the Store can retry,
// and report unique-email violations from Insert as errors.ErrDuplicateEmail.
// Every backend must enforce email uniqueness itself.
type Repo interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Any(ctx context.Context) (bool, error)
	Insert(ctx context.Context, user *User) error
	// Reset discards pooled connections so the next call dials fresh ones.
	Reset()
}
