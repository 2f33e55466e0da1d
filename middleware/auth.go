package middleware

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"wanderlust/utils"
)

func unauthorized(w http.ResponseWriter) {
	utils.RespondWithJSON(w, http.StatusUnauthorized, utils.M{"success": false, "message": "Unauthorized"})
}

func forbidden(w http.ResponseWriter) {
	utils.RespondWithJSON(w, http.StatusForbidden, utils.M{"success": false, "message": "Forbidden"})
}

// Authenticate rejects requests without a valid session.
func (s *Sessions) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := s.FromRequest(r)
		if err != nil {
			unauthorized(w)
			return
		}
		next(w, s.attach(r, claims), ps)
	}
}

// RequireAdmin is Authenticate plus a role check.
func (s *Sessions) RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return s.Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, _ := ClaimsFrom(r.Context())
		if !claims.IsAdmin() {
			forbidden(w)
			return
		}
		next(w, r, ps)
	})
}

// OptionalAuth attaches the session when one is valid and carries on either way.
func (s *Sessions) OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if claims, err := s.FromRequest(r); err == nil {
			r = s.attach(r, claims)
		}
		next(w, r, ps)
	}
}

func (s *Sessions) attach(r *http.Request, claims *Claims) *http.Request {
	ctx := WithClaims(r.Context(), claims)
	zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("user_id", claims.UserID)
	})
	return r.WithContext(ctx)
}
