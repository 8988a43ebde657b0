package loginsession

import (
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/gatekeeper/internal/errors"
)

var _ Repo = (*InMemoryLoginSessionRepo)(nil)

// InMemoryLoginSessionRepo is an in-memory implementation of Repo
type InMemoryLoginSessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session // sessionID -> Session
}

// NewInMemoryLoginSessionRepo creates a new in-memory login session repository
func NewInMemoryLoginSessionRepo() *InMemoryLoginSessionRepo {
	return &InMemoryLoginSessionRepo{
		sessions: make(map[string]Session),
	}
}

// Upsert creates or updates a login session
func (r *InMemoryLoginSessionRepo) Upsert(session Session) error {
	if session.ID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if session.UserID == "" {
		return fmt.Errorf("userID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = session
	return nil
}

// Get retrieves a login session by session ID
func (r *InMemoryLoginSessionRepo) Get(sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, fmt.Errorf("sessionID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, apperrors.ErrSessionNotFound
	}
	return session, nil
}

// Delete removes a login session
func (r *InMemoryLoginSessionRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID) // Already doesn't exist, no error
	return nil
}

// Len returns the number of stored sessions.
func (r *InMemoryLoginSessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
