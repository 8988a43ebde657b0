package loginsession

import "time"

// Session binds a browser to one authenticated user.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

type Repo interface {
	Upsert(session Session) error
	Get(sessionID string) (Session, error)
	Delete(sessionID string) error
}
