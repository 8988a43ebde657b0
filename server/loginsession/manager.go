package loginsession

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "loggedInSessionId"

// Manager establishes, resolves and destroys login sessions.
//
// The cookie holds an HS256 token whose jti is the session ID and whose sub
// is the user ID. A request is authenticated only when the signature verifies
// and the referenced session record still exists and has not expired, so
// deleting the record revokes the cookie.
type Manager struct {
	repo          Repo
	secret        []byte
	maxAge        time.Duration
	secureCookies bool
	nowTime       func() time.Time
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithSecureCookies forces the Secure attribute even on plain HTTP requests.
func WithSecureCookies(secure bool) ManagerOption {
	return func(m *Manager) {
		m.secureCookies = secure
	}
}

func NewManager(repo Repo, secret string, maxAge time.Duration, options ...ManagerOption) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("[loginsession NewManager] repo is required")
	}
	if secret == "" {
		return nil, errors.New("[loginsession NewManager] secret is required")
	}
	if maxAge <= 0 {
		return nil, errors.New("[loginsession NewManager] maxAge must be positive")
	}

	m := &Manager{
		repo:    repo,
		secret:  []byte(secret),
		maxAge:  maxAge,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Establish replaces any current session with a new one bound to userID.
func (m *Manager) Establish(w http.ResponseWriter, r *http.Request, userID string) (Session, error) {
	if userID == "" {
		return Session{}, errors.New("[loginsession Establish] userID is required")
	}
	if current, ok := m.sessionID(r); ok {
		_ = m.repo.Delete(current)
	}

	now := m.nowTime()
	session := Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.maxAge),
	}
	if err := m.repo.Upsert(session); err != nil {
		return Session{}, fmt.Errorf("[loginsession Establish] store session: %w", err)
	}

	signed, err := m.sign(session)
	if err != nil {
		_ = m.repo.Delete(session.ID)
		return Session{}, fmt.Errorf("[loginsession Establish] sign session: %w", err)
	}
	m.setCookie(w, r, signed, int(m.maxAge.Seconds()))
	return session, nil
}

// Current resolves the request's session. It returns false for a missing,
// tampered, unknown or expired session.
func (m *Manager) Current(r *http.Request) (Session, bool) {
	claims, ok := m.claims(r)
	if !ok {
		return Session{}, false
	}

	session, err := m.repo.Get(claims.ID)
	if err != nil {
		return Session{}, false
	}
	if session.UserID != claims.Subject {
		return Session{}, false
	}
	if session.Expired(m.nowTime()) {
		_ = m.repo.Delete(session.ID)
		return Session{}, false
	}
	return session, true
}

// Destroy deletes the request's session, if any, and always expires the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	if sessionID, ok := m.sessionID(r); ok {
		if err := m.repo.Delete(sessionID); err != nil {
			log.Err(err).Msg("failed to delete login session")
		}
	}
	m.setCookie(w, r, "", -1)
}

func (m *Manager) sign(session Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   session.UserID,
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) claims(r *http.Request) (*jwt.RegisteredClaims, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.nowTime),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.ID == "" {
		return nil, false
	}
	return claims, true
}

// sessionID extracts the session ID from a correctly signed cookie, expired or not.
func (m *Manager) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || claims.ID == "" {
		return "", false
	}
	return claims.ID, true
}

func (m *Manager) setCookie(w http.ResponseWriter, r *http.Request, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secureCookies || isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
