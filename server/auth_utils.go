package server

import (
	"net/http"
)

// seeOther redirects with 303 so a POST is never replayed by the browser.
func seeOther(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func redirectTo(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seeOther(w, r, path)
	}
}

func isAuthenticated(r *http.Request) bool {
	_, ok := sessionFromContext(r.Context())
	return ok
}
