package server

import (
	"errors"
	"net/http"

	apperrors "github.com/jrsteele09/gatekeeper/internal/errors"
	"github.com/rs/zerolog/log"
)

// HomeHandler greets the logged-in user (GET /)
func (s *Server) HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromContext(r.Context())
		if !ok {
			seeOther(w, r, RouteLogin)
			return
		}

		user, err := s.users.FindByID(r.Context(), session.UserID)
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Warn().Str("user_id", session.UserID).Msg("session refers to a missing user")
			s.sessions.Destroy(w, r)
			seeOther(w, r, RouteLogin)
			return
		}
		if err != nil {
			http.Error(w, msgStoreUnavailable, http.StatusServiceUnavailable)
			return
		}

		s.render(w, pageHome, PageData{
			Flashes:   s.flashes.Pop(w, r),
			UserLabel: user.DisplayLabel(),
		})
	}
}
