package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteHome = "/"

	// Auth Routes - Login & Logout
	RouteLogin        = "/login/"
	RouteLoginNoSlash = "/login"
	RouteLogout       = "/login/logout"

	// Registration, public only while no user exists
	RouteSignUser = "/sign-user"

	// Static Asset Routes (prefix)
	RouteStaticPrefix = "/static/"
)
