// Package admin holds the dashboard mutation endpoints. Every action checks
// the admin role itself, on top of the route middleware.
package admin

import (
	"context"
	"net/http"

	"wanderlust/middleware"
	"wanderlust/services"
	"wanderlust/utils"
)

// Result is the envelope every admin action answers with.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string)
}

func respond(w http.ResponseWriter, status int, res Result) {
	utils.RespondWithJSON(w, status, res)
}

func failed(w http.ResponseWriter, status int, msg string) {
	respond(w, status, Result{Message: msg})
}

// requireAdmin writes the rejection and returns false unless the request
// carries an admin session.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		failed(w, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	if !claims.IsAdmin() {
		failed(w, http.StatusForbidden, "Unauthorized")
		return false
	}
	return true
}

// outcome maps an update result. Not found and unchanged keep the shared
// message; reason tells them apart.
func outcome(w http.ResponseWriter, entity string, o services.Outcome, okMsg string) {
	if o.Changed() {
		respond(w, http.StatusOK, Result{Success: true, Message: okMsg})
		return
	}
	respond(w, http.StatusNotFound, Result{
		Message: entity + " not found or unchanged",
		Reason:  o.Reason(),
	})
}
