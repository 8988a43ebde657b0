package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// RouteKind is the access class of a request.
type RouteKind int

const (
	RouteKindProtected RouteKind = iota
	RouteKindStatic
	RouteKindPublic
	RouteKindRegistration
)

func (k RouteKind) String() string {
	switch k {
	case RouteKindStatic:
		return "static"
	case RouteKindPublic:
		return "public"
	case RouteKindRegistration:
		return "registration"
	default:
		return "protected"
	}
}

// Decision is the gate's verdict for a request.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionRedirectLogin
)

// publicRoutes are reachable without a session.
var publicRoutes = map[string]bool{
	http.MethodGet + " " + RouteLogin:        true,
	http.MethodPost + " " + RouteLogin:       true,
	http.MethodGet + " " + RouteLoginNoSlash: true,
	http.MethodGet + " " + RouteLogout:       true,
}

// ClassifyRoute maps a method and path onto its access class. Anything not listed is protected,
// including paths no handler serves.
func ClassifyRoute(method, path string) RouteKind {
	if method == http.MethodHead {
		method = http.MethodGet
	}
	switch {
	case method == http.MethodGet && strings.HasPrefix(path, RouteStaticPrefix):
		return RouteKindStatic
	case publicRoutes[method+" "+path]:
		return RouteKindPublic
	case path == RouteSignUser && (method == http.MethodGet || method == http.MethodPost):
		return RouteKindRegistration
	default:
		return RouteKindProtected
	}
}

// Decide applies the access rules. anyUser is only consulted for the registration route.
func Decide(kind RouteKind, authenticated, anyUser bool) Decision {
	switch kind {
	case RouteKindStatic, RouteKindPublic:
		return DecisionAllow
	case RouteKindRegistration:
		if authenticated || !anyUser {
			return DecisionAllow
		}
		return DecisionRedirectLogin
	default:
		if authenticated {
			return DecisionAllow
		}
		return DecisionRedirectLogin
	}
}

// AccessGateMiddleware redirects anonymous requests for non-public routes to the login page.
// It must run after SessionMiddleware.
func (s *Server) AccessGateMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := ClassifyRoute(r.Method, r.URL.Path)
		authenticated := isAuthenticated(r)

		anyUser := true
		if kind == RouteKindRegistration && !authenticated {
			exists, err := s.users.HasAnyUser(r.Context())
			if err != nil {
				// Fail closed: registration stays locked while the store cannot answer.
				log.Err(err).Str("path", r.URL.Path).Msg("access gate could not read bootstrap state")
			} else {
				anyUser = exists
			}
		}

		if Decide(kind, authenticated, anyUser) == DecisionRedirectLogin {
			seeOther(w, r, RouteLogin)
			return
		}
		next(w, r)
	}
}
