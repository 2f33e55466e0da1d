package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"wanderlust/logx"
	"wanderlust/models"
	"wanderlust/services"
	"wanderlust/utils"
	"wanderlust/validation"
)

// InboxStore lists and updates submissions of type T: contacts, itinerary
// requests or bookings.
type InboxStore[T any] interface {
	List(ctx context.Context, status string, page int) (*services.Page[T], error)
	UpdateStatus(ctx context.Context, id, status string) (services.Outcome, error)
}

type Inbox[T any] struct {
	store  InboxStore[T]
	entity string
	// decodes and validates the status payload for this kind
	status func(r *http.Request) (string, error)
}

func NewContactInbox(store InboxStore[models.Contact]) *Inbox[models.Contact] {
	return &Inbox[models.Contact]{store: store, entity: "Contact", status: func(r *http.Request) (string, error) {
		var in validation.ContactStatusInput
		err := validation.Decode(r, &in)
		return in.Status, err
	}}
}

func NewItineraryInbox(store InboxStore[models.CustomItinerary]) *Inbox[models.CustomItinerary] {
	return &Inbox[models.CustomItinerary]{store: store, entity: "Itinerary request", status: func(r *http.Request) (string, error) {
		var in validation.ItineraryStatusInput
		err := validation.Decode(r, &in)
		return in.Status, err
	}}
}

func NewBookingInbox(store InboxStore[models.Booking]) *Inbox[models.Booking] {
	return &Inbox[models.Booking]{store: store, entity: "Booking", status: func(r *http.Request) (string, error) {
		var in validation.BookingStatusInput
		err := validation.Decode(r, &in)
		return in.Status, err
	}}
}

// List handles GET /api/admin/{contacts,itineraries,bookings}?status=&page=.
func (b *Inbox[T]) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !requireAdmin(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := utils.ParseQueryOptions(r)
	page, err := b.store.List(ctx, q.Status, q.Page)
	if err != nil {
		logx.FromContext(ctx).Error().Err(err).Str("entity", b.entity).Msg("list inbox")
		failed(w, http.StatusInternalServerError, "Failed to fetch data")
		return
	}
	respond(w, http.StatusOK, Result{Success: true, Data: page})
}

// UpdateStatus handles POST /api/admin/{contacts,itineraries,bookings}/:id/status.
func (b *Inbox[T]) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !requireAdmin(w, r) {
		return
	}
	status, err := b.status(r)
	if err != nil {
		failed(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := ps.ByName("id")
	o, err := b.store.UpdateStatus(ctx, id, status)
	if err != nil && !errors.Is(err, services.ErrInvalidID) {
		logx.FromContext(ctx).Error().Err(err).Str("entity", b.entity).Str("id", id).Msg("update status")
		failed(w, http.StatusInternalServerError, "Failed to update status")
		return
	}
	outcome(w, b.entity, o, b.entity+" marked "+status)
}
