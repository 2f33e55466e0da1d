// Package booking takes booking inquiries for listed packages.
package booking

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"wanderlust/live"
	"wanderlust/logx"
	"wanderlust/mailer"
	"wanderlust/middleware"
	"wanderlust/models"
	"wanderlust/services"
	"wanderlust/utils"
	"wanderlust/validation"
)

type Store interface {
	Create(ctx context.Context, pkg *models.Package, in *validation.BookingInput) (*models.Booking, error)
}

type PackageGetter interface {
	Get(ctx context.Context, id string) (*models.Package, error)
}

type Mailer interface {
	Go(ctx context.Context, msg mailer.Message)
}

type Handler struct {
	store    Store
	packages PackageGetter
	mail     Mailer
	feed     live.Publisher
	admin    string
}

func NewHandler(store Store, packages PackageGetter, mail Mailer, feed live.Publisher, adminAddress string) *Handler {
	return &Handler{store: store, packages: packages, mail: mail, feed: feed, admin: adminAddress}
}

// POST /api/bookings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in validation.BookingInput
	if err := validation.Decode(r, &in); err != nil {
		utils.Fail(w, http.StatusBadRequest, validation.Message(err))
		return
	}
	if claims, ok := middleware.ClaimsFrom(r.Context()); ok {
		in.UserID = claims.UserID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	log := logx.FromContext(ctx)

	pkg, err := h.packages.Get(ctx, in.PackageID)
	if errors.Is(err, services.ErrNotFound) || (err == nil && !pkg.Visible()) {
		utils.Fail(w, http.StatusNotFound, "Package not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("package_id", in.PackageID).Msg("booking: load package")
		utils.Fail(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	b, err := h.store.Create(ctx, pkg, &in)
	if err != nil {
		log.Error().Err(err).Msg("save booking")
		utils.Fail(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	if msg, err := mailer.BookingReceived(h.admin, b); err != nil {
		log.Error().Err(err).Msg("build booking email")
	} else {
		h.mail.Go(ctx, msg)
	}
	h.feed.Broadcast(live.Event{Type: live.BookingCreated, ID: b.ID.Hex(), Title: b.PackageTitle})

	utils.Success(w, http.StatusCreated, utils.M{"id": b.ID.Hex(), "status": b.Status})
}
