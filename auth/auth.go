// Package auth handles sign up, sign in and password resets.
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"wanderlust/logx"
	"wanderlust/mailer"
	"wanderlust/middleware"
	"wanderlust/models"
	"wanderlust/services"
	"wanderlust/utils"
	"wanderlust/validation"
)

type UserStore interface {
	Register(ctx context.Context, in *validation.RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetPassword(ctx context.Context, id, password string) error
}

type ResetStore interface {
	Issue(ctx context.Context, userID primitive.ObjectID, ttl time.Duration) (string, error)
	FindValidByToken(ctx context.Context, raw string) (*models.PasswordResetToken, error)
	Consume(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type Mailer interface {
	Go(ctx context.Context, msg mailer.Message)
}

type Handler struct {
	users     UserStore
	resets    ResetStore
	sessions  *middleware.Sessions
	mail      Mailer
	resetTTL  time.Duration
	publicURL string
}

func NewHandler(users UserStore, resets ResetStore, sessions *middleware.Sessions, mail Mailer, resetTTL time.Duration, publicURL string) *Handler {
	return &Handler{
		users:     users,
		resets:    resets,
		sessions:  sessions,
		mail:      mail,
		resetTTL:  resetTTL,
		publicURL: publicURL,
	}
}

// POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in validation.RegisterInput
	if err := validation.Decode(r, &in); err != nil {
		utils.NotOK(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.users.Register(ctx, &in)
	if errors.Is(err, services.ErrDuplicate) {
		utils.NotOK(w, http.StatusConflict, "An account with this email already exists")
		return
	}
	if err != nil {
		logx.FromContext(ctx).Error().Err(err).Msg("register user")
		utils.NotOK(w, http.StatusInternalServerError, "Failed to create account")
		return
	}
	h.startSession(w, r, u, http.StatusCreated)
}

// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in validation.LoginInput
	if err := validation.Decode(r, &in); err != nil {
		utils.NotOK(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.users.Authenticate(ctx, in.Email, in.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.NotOK(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		logx.FromContext(ctx).Error().Err(err).Msg("login")
		utils.NotOK(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}
	h.startSession(w, r, u, http.StatusOK)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, u *models.User, status int) {
	token, exp, err := h.sessions.Issue(u)
	if err != nil {
		logx.FromContext(r.Context()).Error().Err(err).Msg("issue session")
		utils.NotOK(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}
	h.sessions.SetCookie(w, token, exp)
	utils.OK(w, status, utils.M{"token": token, "expiresAt": exp, "user": u})
}

// POST /api/auth/logout
//
// Sessions are stateless; dropping the cookie is all there is to do.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.sessions.ClearCookie(w)
	utils.OK(w, http.StatusOK, nil)
}

// POST /api/auth/forgot-password
//
// Always answers {ok:true} so the response never tells whether an account
// exists.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer utils.OK(w, http.StatusOK, nil)

	var in validation.ForgotPasswordInput
	if err := validation.Decode(r, &in); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	log := logx.FromContext(ctx)

	u, err := h.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			log.Error().Err(err).Msg("forgot password: lookup user")
		}
		return
	}

	raw, err := h.resets.Issue(ctx, u.ID, h.resetTTL)
	if err != nil {
		log.Error().Err(err).Msg("forgot password: issue token")
		return
	}
	link := h.publicURL + "/auth/reset-password?token=" + url.QueryEscape(raw)
	msg, err := mailer.PasswordReset(u, link, int(h.resetTTL/time.Minute))
	if err != nil {
		log.Error().Err(err).Msg("forgot password: build email")
		return
	}
	h.mail.Go(ctx, msg)
}

// POST /api/auth/reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in validation.ResetPasswordInput
	if err := validation.Decode(r, &in); err != nil {
		utils.NotOK(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	log := logx.FromContext(ctx)

	tok, err := h.resets.FindValidByToken(ctx, in.Token)
	if errors.Is(err, services.ErrNotFound) {
		utils.NotOK(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("reset password: find token")
		utils.NotOK(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	// Consume before writing so two concurrent resets cannot both succeed.
	consumed, err := h.resets.Consume(ctx, tok.ID)
	if err != nil {
		log.Error().Err(err).Msg("reset password: consume token")
		utils.NotOK(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}
	if !consumed {
		utils.NotOK(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}

	if err := h.users.SetPassword(ctx, tok.UserID.Hex(), in.Password); err != nil {
		log.Error().Err(err).Str("user_id", tok.UserID.Hex()).Msg("reset password: store hash")
		utils.NotOK(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}
	utils.OK(w, http.StatusOK, nil)
}
