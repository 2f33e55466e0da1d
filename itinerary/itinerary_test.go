package itinerary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"wanderlust/live"
	"wanderlust/mailer"
	"wanderlust/models"
	"wanderlust/validation"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, in *validation.ItineraryInput) (*models.CustomItinerary, error) {
	args := m.Called(ctx, in)
	it, _ := args.Get(0).(*models.CustomItinerary)
	return it, args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Go(ctx context.Context, msg mailer.Message) {
	m.Called(msg)
}

type MockFeed struct {
	mock.Mock
}

func (m *MockFeed) Broadcast(ev live.Event) {
	m.Called(ev)
}

func post(h *Handler, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.Request(rr, httptest.NewRequest(http.MethodPost, "/api/itinerary-request", strings.NewReader(body)), nil)
	return rr
}

func body(start, end time.Time) string {
	return `{"customerInfo":{"name":"Lee Park","email":"lee@example.com","phone":"+82 10 5555 0100"},` +
		`"travelDetails":{"destination":"Patagonia","startDate":"` + start.Format(time.DateOnly) +
		`","endDate":"` + end.Format(time.DateOnly) + `","travelers":2,"budget":"5000-8000"},` +
		`"interests":["hiking","wildlife"]}`
}

func validBody() string {
	return body(time.Now().AddDate(0, 2, 0), time.Now().AddDate(0, 2, 10))
}

func TestRequestSendsBothEmails(t *testing.T) {
	store, mail, feed := &MockStore{}, &MockMailer{}, &MockFeed{}
	it := &models.CustomItinerary{
		ID:            primitive.NewObjectID(),
		CustomerInfo:  models.CustomerInfo{Name: "Lee Park", Email: "lee@example.com"},
		TravelDetails: models.TravelDetails{Destination: "Patagonia"},
		Status:        models.ItineraryNew,
	}
	store.On("Create", mock.Anything, mock.Anything).Return(it, nil)
	mail.On("Go", mock.MatchedBy(func(msg mailer.Message) bool { return msg.To[0] == "admin@example.com" })).Return().Once()
	mail.On("Go", mock.MatchedBy(func(msg mailer.Message) bool { return msg.To[0] == "lee@example.com" })).Return().Once()
	feed.On("Broadcast", mock.MatchedBy(func(ev live.Event) bool { return ev.Type == live.ItineraryCreated })).Return()

	rr := post(NewHandler(store, mail, feed, "admin@example.com"), validBody())

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"ok":true,"id":"`+it.ID.Hex()+`"}`, rr.Body.String())
	mock.AssertExpectationsForObjects(t, store, mail, feed)
}

func TestMalformedRequestsSendNoEmail(t *testing.T) {
	cases := map[string]string{
		"empty body":       ``,
		"not json":         `customerInfo=1`,
		"wrong type":       `{"customerInfo":"lee"}`,
		"unknown field":    `{"coupon":"FREE"}`,
		"missing fields":   `{"customerInfo":{"name":"Lee"}}`,
		"end before start": body(time.Now().AddDate(0, 2, 10), time.Now().AddDate(0, 2, 0)),
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			store, mail, feed := &MockStore{}, &MockMailer{}, &MockFeed{}

			rr := post(NewHandler(store, mail, feed, "admin@example.com"), payload)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), `"ok":false`)
			assert.Contains(t, rr.Body.String(), `"error":`)
			mail.AssertNotCalled(t, "Go", mock.Anything)
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			feed.AssertNotCalled(t, "Broadcast", mock.Anything)
		})
	}
}
