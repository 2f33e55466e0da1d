// Package contact accepts contact form submissions.
package contact

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"wanderlust/live"
	"wanderlust/logx"
	"wanderlust/mailer"
	"wanderlust/models"
	"wanderlust/utils"
	"wanderlust/validation"
)

type Store interface {
	Create(ctx context.Context, in *validation.ContactInput) (*models.Contact, error)
}

type Mailer interface {
	Go(ctx context.Context, msg mailer.Message)
}

type Handler struct {
	store Store
	mail  Mailer
	feed  live.Publisher
	admin string
}

func NewHandler(store Store, mail Mailer, feed live.Publisher, adminAddress string) *Handler {
	return &Handler{store: store, mail: mail, feed: feed, admin: adminAddress}
}

// POST /api/contact
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in validation.ContactInput
	if err := validation.Decode(r, &in); err != nil {
		utils.Fail(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	log := logx.FromContext(ctx)

	c, err := h.store.Create(ctx, &in)
	if err != nil {
		log.Error().Err(err).Msg("save contact")
		utils.Fail(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	if msg, err := mailer.ContactReceived(h.admin, c); err != nil {
		log.Error().Err(err).Msg("build contact email")
	} else {
		h.mail.Go(ctx, msg)
	}
	h.feed.Broadcast(live.Event{Type: live.ContactCreated, ID: c.ID.Hex(), Title: c.Subject})

	utils.Success(w, http.StatusCreated, utils.M{"id": c.ID.Hex()})
}
