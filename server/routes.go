package server

import (
	"net/http"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHome, s.HomeHandler())

	// LOGIN
	s.RegisterRouteFunc("GET "+RouteLoginNoSlash, redirectTo(RouteLogin))
	s.RegisterRouteFunc("GET "+RouteLogin, s.LoginPageUIHandler())
	s.RegisterRouteFunc("POST "+RouteLogin, s.LoginSubmissionHandler())
	s.RegisterRouteFunc("GET "+RouteLogout, s.LogoutHandler())

	// REGISTRATION
	signUser := s.SignUserHandler()
	s.RegisterRouteFunc("GET "+RouteSignUser, signUser)
	s.RegisterRouteFunc("POST "+RouteSignUser, signUser)

	s.RegisterRouteHandler("GET "+RouteStaticPrefix+"*", http.StripPrefix(RouteStaticPrefix, s.staticFileHandler()))

	s.mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 - Page Not Found", http.StatusNotFound)
	})
}
