package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/gatekeeper/internal/config"
	"github.com/jrsteele09/gatekeeper/server/flash"
	"github.com/jrsteele09/gatekeeper/server/loginsession"
	"github.com/jrsteele09/gatekeeper/users"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *chi.Mux
	handler  http.Handler
	routes   []string
	config   config.Config
	users    *users.Store
	sessions *loginsession.Manager
	flashes  *flash.Store
	pages    pageTemplates
}

func New(config config.Config, userStore *users.Store, sessionRepo loginsession.Repo) (*Server, error) {
	if userStore == nil {
		return nil, errors.New("[Server New] user store is required")
	}
	if sessionRepo == nil {
		return nil, errors.New("[Server New] session repo is required")
	}

	sessions, err := loginsession.NewManager(sessionRepo, config.GetSecretKey(), config.GetMaxSessionAge(),
		loginsession.WithSecureCookies(config.GetSecureCookies()))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session manager: %w", err)
	}

	flashes, err := flash.NewStore(config.GetSecretKey(), config.GetSecureCookies())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create flash store: %w", err)
	}

	pages, err := parsePageTemplates()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	s := &Server{
		env:      config.GetEnv(),
		mux:      chi.NewRouter(),
		config:   config,
		users:    userStore,
		sessions: sessions,
		flashes:  flashes,
		pages:    pages,
	}

	// HEAD is answered by the GET handlers.
	s.mux.Use(middleware.GetHead)
	s.initRoutes()
	s.handler = ChainMiddleware(s.mux.ServeHTTP, s.HTMLMiddleWare(s.SessionMiddleware, s.AccessGateMiddleware)...)
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// RegisterRouteFunc registers handler for a "METHOD /path" pattern.
func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		s.mux.HandleFunc(pattern, handler)
		return
	}
	s.mux.MethodFunc(method, path, handler)
}

// RegisterRouteHandler registers handler for a "METHOD /path" pattern.
func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		s.mux.Handle(pattern, handler)
		return
	}
	s.mux.Method(method, path, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
