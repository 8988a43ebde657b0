package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/gatekeeper/server/loginsession"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the resolved login session
	ContextKeySession ContextKey = "login_session"
)

// SessionMiddleware resolves the login session cookie and stores a valid session in the request context.
// A missing or invalid session leaves the request anonymous.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session, ok := s.sessions.Current(r); ok {
			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			r = r.WithContext(ctx)
		}
		next(w, r)
	}
}

func sessionFromContext(ctx context.Context) (loginsession.Session, bool) {
	session, ok := ctx.Value(ContextKeySession).(loginsession.Session)
	return session, ok
}
