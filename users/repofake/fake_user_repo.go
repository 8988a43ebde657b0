package fakeuserrepo

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/gatekeeper/internal/errors"
	"github.com/jrsteele09/gatekeeper/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory users.Repo. It can be told to fail upcoming
// reads with a lost connection to exercise the store's retry path.
type FakeUserRepo struct {
	users    map[string]*users.User
	emailIds map[string]string // email to user id
	lock     sync.RWMutex

	failReads   int
	failInserts error
	resets      int
	reads       int
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		emailIds: make(map[string]string),
	}
}

// FailNextReads makes the next n reads return a lost-connection error.
func (ur *FakeUserRepo) FailNextReads(n int) {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	ur.failReads = n
}

// FailInserts makes every Insert return err until called with nil.
func (ur *FakeUserRepo) FailInserts(err error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	ur.failInserts = err
}

// Resets returns how many times Reset was called.
func (ur *FakeUserRepo) Resets() int {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	return ur.resets
}

// Reads returns how many reads reached the repo, failed ones included.
func (ur *FakeUserRepo) Reads() int {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	return ur.reads
}

// Count returns the number of stored users.
func (ur *FakeUserRepo) Count() int {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	return len(ur.users)
}

func (ur *FakeUserRepo) readFault() error {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	ur.reads++
	if ur.failReads > 0 {
		ur.failReads--
		return fmt.Errorf("fake read: %w", apperrors.ErrConnectionLost)
	}
	return nil
}

func (ur *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	if err := ur.readFault(); err != nil {
		return nil, err
	}
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	u := *ur.users[id]
	return &u, nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	if err := ur.readFault(); err != nil {
		return nil, err
	}
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	stored, ok := ur.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	u := *stored
	return &u, nil
}

func (ur *FakeUserRepo) Any(_ context.Context) (bool, error) {
	if err := ur.readFault(); err != nil {
		return false, err
	}
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	return len(ur.users) > 0, nil
}

func (ur *FakeUserRepo) Insert(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if ur.failInserts != nil {
		return ur.failInserts
	}
	if _, exists := ur.emailIds[user.Email]; exists {
		return apperrors.ErrDuplicateEmail
	}
	u := *user
	ur.users[u.ID] = &u
	ur.emailIds[u.Email] = u.ID
	return nil
}

func (ur *FakeUserRepo) Reset() {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	ur.resets++
}

// Remove deletes a user, simulating an account removed behind a live session.
func (ur *FakeUserRepo) Remove(id string) {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	if u, ok := ur.users[id]; ok {
		delete(ur.emailIds, u.Email)
		delete(ur.users, id)
	}
}
