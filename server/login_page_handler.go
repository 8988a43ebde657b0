package server

import (
	"errors"
	"net/http"

	apperrors "github.com/jrsteele09/gatekeeper/internal/errors"
	"github.com/jrsteele09/gatekeeper/server/flash"
	"github.com/rs/zerolog/log"
)

const (
	msgInvalidCredentials = "Invalid email or password."
	msgStoreUnavailable   = "Service temporarily unavailable. Please try again in a moment."
)

// LoginPageUIHandler displays the login page (GET /login/)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{Flashes: s.flashes.Pop(w, r)}

		// Offer the first-user registration link while the store is empty.
		if anyUser, err := s.users.HasAnyUser(r.Context()); err == nil {
			data.Bootstrap = !anyUser
		}
		s.render(w, pageLogin, data)
	}
}

// LoginSubmissionHandler processes the login form submission (POST /login/)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		user, err := s.users.Authenticate(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			s.flashes.Add(w, r, flash.Error(msgInvalidCredentials))
			seeOther(w, r, RouteLogin)
			return
		case err != nil:
			if !errors.Is(err, apperrors.ErrStoreUnavailable) {
				log.Err(err).Msg("login lookup failed")
			}
			s.flashes.Add(w, r, flash.Error(msgStoreUnavailable))
			seeOther(w, r, RouteLogin)
			return
		}

		if _, err := s.sessions.Establish(w, r, user.ID); err != nil {
			log.Err(err).Str("user_id", user.ID).Msg("failed to establish login session")
			s.flashes.Add(w, r, flash.Error(msgStoreUnavailable))
			seeOther(w, r, RouteLogin)
			return
		}
		log.Info().Str("user_id", user.ID).Msg("user logged in")
		seeOther(w, r, RouteHome)
	}
}

// LogoutHandler ends the session, if any (GET /login/logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Destroy(w, r)
		seeOther(w, r, RouteLogin)
	}
}
