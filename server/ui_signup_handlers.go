package server

import (
	"errors"
	"net/http"

	apperrors "github.com/jrsteele09/gatekeeper/internal/errors"
	"github.com/jrsteele09/gatekeeper/server/flash"
	"github.com/jrsteele09/gatekeeper/users"
	"github.com/rs/zerolog/log"
)

const (
	msgDuplicateEmail   = "A user with this email already exists."
	msgSaveFailed       = "Could not save the user. Please try again."
	msgUserCreated      = "User created successfully!"
	msgFirstUserCreated = "First user created! Log in to continue."
)

// SignUserHandler shows and processes the registration form (GET|POST /sign-user).
// While no user exists it is open to anonymous visitors; the first account created
// that way is not logged in automatically.
func (s *Server) SignUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		anyUser, err := s.users.HasAnyUser(r.Context())
		if err != nil {
			http.Error(w, msgStoreUnavailable, http.StatusServiceUnavailable)
			return
		}
		bootstrap := !anyUser
		if !bootstrap && !isAuthenticated(r) {
			seeOther(w, r, RouteLogin)
			return
		}

		if r.Method != http.MethodPost {
			s.render(w, pageSignUser, PageData{Flashes: s.flashes.Pop(w, r), Bootstrap: bootstrap})
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := users.RegistrationForm{
			FullName:        r.PostFormValue("full_name"),
			Email:           r.PostFormValue("email"),
			Password:        r.PostFormValue("password"),
			ConfirmPassword: r.PostFormValue("confirm_password"),
		}
		form.Normalize()

		rerender := func(messages []string) {
			s.render(w, pageSignUser, PageData{
				Errors:    messages,
				Email:     form.Email,
				FullName:  form.FullName,
				Bootstrap: bootstrap,
			})
		}

		problems := form.Validate()
		if form.Email != "" {
			_, err := s.users.FindByEmail(r.Context(), form.Email)
			switch {
			case err == nil:
				problems = append(problems, msgDuplicateEmail)
			case !errors.Is(err, apperrors.ErrNotFound):
				problems = append(problems, msgStoreUnavailable)
			}
		}
		if len(problems) > 0 {
			rerender(problems)
			return
		}

		user, err := s.users.Create(r.Context(), form.Email, form.FullName, form.Password)
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			rerender([]string{msgDuplicateEmail})
			return
		}
		if err != nil {
			log.Err(err).Msg("failed to create user")
			rerender([]string{msgSaveFailed})
			return
		}
		log.Info().Str("user_id", user.ID).Bool("bootstrap", bootstrap).Msg("user registered")

		if bootstrap {
			s.flashes.Add(w, r, flash.Success(msgUserCreated), flash.Success(msgFirstUserCreated))
			seeOther(w, r, RouteLogin)
			return
		}
		s.flashes.Add(w, r, flash.Success(msgUserCreated))
		seeOther(w, r, RouteSignUser)
	}
}
