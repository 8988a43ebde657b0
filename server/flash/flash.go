// Package flash carries one-shot notices across a redirect in a signed cookie.
package flash

import (
	"encoding/gob"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

// CookieName is the cookie holding pending notices.
const CookieName = "flash"

const (
	flashKey = "messages"

	// maxMessages bounds the cookie size.
	maxMessages = 10

	// maxAge bounds how long an unread notice survives.
	maxAge = 10 * time.Minute
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Message struct {
	Kind Kind
	Text string
}

func init() {
	gob.Register(Message{})
}

func Error(text string) Message {
	return Message{Kind: KindError, Text: text}
}

func Success(text string) Message {
	return Message{Kind: KindSuccess, Text: text}
}

// Store reads and writes notices in a cookie signed with the application secret,
// so a client cannot plant its own messages.
type Store struct {
	cookies *sessions.CookieStore
	secure  bool
}

func NewStore(secret string, secureCookies bool) (*Store, error) {
	if secret == "" {
		return nil, errors.New("[flash NewStore] secret is required")
	}
	cookies := sessions.NewCookieStore([]byte(secret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	cookies.MaxAge(int(maxAge.Seconds()))
	return &Store{cookies: cookies, secure: secureCookies}, nil
}

// Add appends messages to those already pending on the request and writes the cookie.
func (s *Store) Add(w http.ResponseWriter, r *http.Request, messages ...Message) {
	session := s.session(r)
	added := false
	for _, m := range messages {
		if m, ok := normalize(m); ok {
			session.AddFlash(m, flashKey)
			added = true
		}
	}
	if !added {
		return
	}
	if pending, ok := session.Values[flashKey].([]interface{}); ok && len(pending) > maxMessages {
		session.Values[flashKey] = pending[len(pending)-maxMessages:]
	}
	s.save(w, r, session)
}

// Pop returns the pending messages and clears the cookie.
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) []Message {
	if _, err := r.Cookie(CookieName); err != nil {
		return nil
	}
	session := s.session(r)

	var messages []Message
	for _, raw := range session.Flashes(flashKey) {
		m, ok := raw.(Message)
		if !ok {
			continue
		}
		if m, ok := normalize(m); ok {
			messages = append(messages, m)
		}
	}

	session.Options.MaxAge = -1
	s.save(w, r, session)
	return messages
}

// session returns the request's flash session. An unreadable or forged cookie yields an empty one.
func (s *Store) session(r *http.Request) *sessions.Session {
	session, err := s.cookies.Get(r, CookieName)
	if err != nil {
		log.Debug().Err(err).Msg("discarding unreadable flash cookie")
	}
	return session
}

func (s *Store) save(w http.ResponseWriter, r *http.Request, session *sessions.Session) {
	session.Options.Secure = s.secure || r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
	if err := session.Save(r, w); err != nil {
		log.Err(err).Msg("failed to write flash cookie")
	}
}

func normalize(m Message) (Message, bool) {
	m.Text = strings.TrimSpace(m.Text)
	if m.Text == "" {
		return Message{}, false
	}
	switch m.Kind {
	case KindSuccess, KindError:
		return m, true
	default:
		return Message{}, false
	}
}
