// Package itinerary accepts custom itinerary requests.
package itinerary

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
	Create(ctx context.Context, in *validation.ItineraryInput) (*models.CustomItinerary, error)
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

// POST /api/itinerary-request
//
// Responds with the {ok, ...} envelope. Nothing is mailed unless the request
// was stored.
func (h *Handler) Request(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in validation.ItineraryInput
	if err := validation.Decode(r, &in); err != nil {
		utils.NotOK(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	log := logx.FromContext(ctx)

	it, err := h.store.Create(ctx, &in)
	if err != nil {
		log.Error().Err(err).Msg("save itinerary request")
		utils.NotOK(w, http.StatusInternalServerError, "Failed to submit itinerary request")
		return
	}

	for _, build := range []func() (mailer.Message, error){
		func() (mailer.Message, error) { return mailer.ItineraryReceived(h.admin, it) },
		func() (mailer.Message, error) { return mailer.ItineraryConfirmation(it) },
	} {
		msg, err := build()
		if err != nil {
			log.Error().Err(err).Msg("build itinerary email")
			continue
		}
		h.mail.Go(ctx, msg)
	}
	h.feed.Broadcast(live.Event{Type: live.ItineraryCreated, ID: it.ID.Hex(), Title: it.TravelDetails.Destination})

	utils.OK(w, http.StatusCreated, utils.M{"id": it.ID.Hex()})
}
