// Package profile holds the signed-in user's account actions.
package profile

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"wanderlust/logx"
	"wanderlust/middleware"
	"wanderlust/models"
	"wanderlust/services"
	"wanderlust/utils"
	"wanderlust/validation"
)

const accountPath = "/account"

type UserStore interface {
	Get(ctx context.Context, id string) (*models.User, error)
	ChangePassword(ctx context.Context, id, current, next string) error
	UpdateProfile(ctx context.Context, id string, in *validation.UserUpdateInput) (services.Outcome, error)
	UpdatePreferences(ctx context.Context, id string, in *validation.PreferencesInput) (services.Outcome, error)
	AddToWishlist(ctx context.Context, id, packageID string) (services.Outcome, error)
	RemoveFromWishlist(ctx context.Context, id, packageID string) (services.Outcome, error)
}

type PackageLister interface {
	ByIDs(ctx context.Context, ids []string) ([]models.Package, error)
}

type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string)
}

type Handler struct {
	users    UserStore
	packages PackageLister
	rv       Revalidator
}

func NewHandler(users UserStore, packages PackageLister, rv Revalidator) *Handler {
	return &Handler{users: users, packages: packages, rv: rv}
}

// Result mirrors the admin action envelope.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func respond(w http.ResponseWriter, status int, res Result) {
	utils.RespondWithJSON(w, status, res)
}

// currentUser returns the session user id or writes the 401.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, Result{Message: "Unauthorized"})
		return "", false
	}
	return claims.UserID, true
}

func (h *Handler) internal(ctx context.Context, w http.ResponseWriter, err error, op string) {
	logx.FromContext(ctx).Error().Err(err).Msg(op)
	respond(w, http.StatusInternalServerError, Result{Message: "Failed to " + op})
}

func (h *Handler) outcome(ctx context.Context, w http.ResponseWriter, o services.Outcome, err error, entity, op, okMsg string) {
	if err != nil && !errors.Is(err, services.ErrInvalidID) {
		h.internal(ctx, w, err, op)
		return
	}
	if !o.Changed() {
		respond(w, http.StatusNotFound, Result{Message: entity + " not found or unchanged", Reason: o.Reason()})
		return
	}
	h.rv.Revalidate(ctx, accountPath)
	respond(w, http.StatusOK, Result{Success: true, Message: okMsg})
}

// POST /api/account/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in validation.ChangePasswordInput
	if err := validation.Decode(r, &in); err != nil {
		respond(w, http.StatusBadRequest, Result{Message: validation.Message(err)})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.users.ChangePassword(ctx, uid, in.CurrentPassword, in.NewPassword)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		respond(w, http.StatusBadRequest, Result{Message: "Current password is incorrect"})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrInvalidID):
		respond(w, http.StatusUnauthorized, Result{Message: "Unauthorized"})
	case err != nil:
		h.internal(ctx, w, err, "change password")
	default:
		respond(w, http.StatusOK, Result{Success: true, Message: "Password updated successfully"})
	}
}

// PUT /api/account/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in validation.UserUpdateInput
	if err := validation.Decode(r, &in); err != nil {
		respond(w, http.StatusBadRequest, Result{Message: validation.Message(err)})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.users.UpdateProfile(ctx, uid, &in)
	h.outcome(ctx, w, o, err, "Profile", "update profile", "Profile updated successfully")
}

// PUT /api/account/preferences
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in validation.PreferencesInput
	if err := validation.Decode(r, &in); err != nil {
		respond(w, http.StatusBadRequest, Result{Message: validation.Message(err)})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.users.UpdatePreferences(ctx, uid, &in)
	h.outcome(ctx, w, o, err, "Preferences", "update preferences", "Preferences updated successfully")
}

// POST /api/account/wishlist/:packageId
func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.wishlist(w, r, ps, "add to wishlist", "Added to wishlist", h.users.AddToWishlist)
}

// DELETE /api/account/wishlist/:packageId
func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.wishlist(w, r, ps, "remove from wishlist", "Removed from wishlist", h.users.RemoveFromWishlist)
}

func (h *Handler) wishlist(w http.ResponseWriter, r *http.Request, ps httprouter.Params, op, okMsg string,
	apply func(ctx context.Context, id, packageID string) (services.Outcome, error)) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	pkgID := ps.ByName("packageId")
	if _, err := services.ParseID(pkgID); err != nil {
		respond(w, http.StatusBadRequest, Result{Message: "Invalid package id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := apply(ctx, uid, pkgID)
	h.outcome(ctx, w, o, err, "Wishlist", op, okMsg)
}

// GET /api/account/wishlist
func (h *Handler) Wishlist(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.users.Get(ctx, uid)
	if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrInvalidID) {
		respond(w, http.StatusUnauthorized, Result{Message: "Unauthorized"})
		return
	}
	if err != nil {
		h.internal(ctx, w, err, "load wishlist")
		return
	}
	pkgs, err := h.packages.ByIDs(ctx, u.Wishlist)
	if err != nil {
		h.internal(ctx, w, err, "load wishlist")
		return
	}
	// hidden packages stay saved but are not shown
	visible := make([]models.Package, 0, len(pkgs))
	for _, p := range pkgs {
		if p.Visible() {
			visible = append(visible, p)
		}
	}
	respond(w, http.StatusOK, Result{Success: true, Data: visible})
}
