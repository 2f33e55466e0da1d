package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	SignInPath = "/auth/signin"
	SignUpPath = "/auth/signup"
)

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// AccessControl guards the admin area before routing. Admin pages redirect
// to sign-in (or home for a non-admin), admin API calls get JSON 401/403,
// and signed-in users are sent away from the sign-in and sign-up pages.
func (s *Sessions) AccessControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		switch {
		case underPrefix(path, "/api/admin"):
			claims, err := s.FromRequest(r)
			if err != nil {
				unauthorized(w)
				return
			}
			if !claims.IsAdmin() {
				forbidden(w)
				return
			}

		case underPrefix(path, "/admin"):
			claims, err := s.FromRequest(r)
			if err != nil {
				target := SignInPath + "?callbackUrl=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			if !claims.IsAdmin() {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}

		case path == SignInPath || path == SignUpPath:
			if _, err := s.FromRequest(r); err == nil {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
