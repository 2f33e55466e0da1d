package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"wanderlust/config"
	"wanderlust/mailer"
	"wanderlust/middleware"
	"wanderlust/models"
	"wanderlust/services"
	"wanderlust/validation"
)

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) Register(ctx context.Context, in *validation.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUsers) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUsers) SetPassword(ctx context.Context, id, password string) error {
	return m.Called(ctx, id, password).Error(0)
}

type MockResets struct {
	mock.Mock
}

func (m *MockResets) Issue(ctx context.Context, userID primitive.ObjectID, ttl time.Duration) (string, error) {
	args := m.Called(ctx, userID, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockResets) FindValidByToken(ctx context.Context, raw string) (*models.PasswordResetToken, error) {
	args := m.Called(ctx, raw)
	tok, _ := args.Get(0).(*models.PasswordResetToken)
	return tok, args.Error(1)
}

func (m *MockResets) Consume(ctx context.Context, id primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Go(ctx context.Context, msg mailer.Message) {
	m.Called(msg)
}

type fixture struct {
	users    *MockUsers
	resets   *MockResets
	mail     *MockMailer
	sessions *middleware.Sessions
	h        *Handler
}

func newFixture() *fixture {
	f := &fixture{users: &MockUsers{}, resets: &MockResets{}, mail: &MockMailer{}}
	f.sessions = middleware.NewSessions(config.AuthConfig{
		JWTSecret:       strings.Repeat("s", 32),
		SessionTTLHours: 1,
	})
	f.h = NewHandler(f.users, f.resets, f.sessions, f.mail, time.Hour, "https://wanderlust.example.com")
	return f
}

func call(handler func(http.ResponseWriter, *http.Request), body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return rr
}

func (f *fixture) forgot(body string) *httptest.ResponseRecorder {
	return call(func(w http.ResponseWriter, r *http.Request) { f.h.ForgotPassword(w, r, nil) }, body)
}

func (f *fixture) reset(body string) *httptest.ResponseRecorder {
	return call(func(w http.ResponseWriter, r *http.Request) { f.h.ResetPassword(w, r, nil) }, body)
}

var rawToken = strings.Repeat("ab", 32)

func TestForgotPasswordSameResponseForKnownAndUnknownEmail(t *testing.T) {
	f := newFixture()
	known := &models.User{ID: primitive.NewObjectID(), Email: "known@example.com", Name: "Known"}
	f.users.On("GetByEmail", mock.Anything, "known@example.com").Return(known, nil)
	f.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, services.ErrNotFound)
	f.resets.On("Issue", mock.Anything, known.ID, time.Hour).Return(rawToken, nil)
	f.mail.On("Go", mock.MatchedBy(func(msg mailer.Message) bool {
		return msg.To[0] == "known@example.com" && strings.Contains(msg.HTML, "token="+rawToken)
	})).Return().Once()

	knownRR := f.forgot(`{"email":"known@example.com"}`)
	unknownRR := f.forgot(`{"email":"ghost@example.com"}`)

	assert.Equal(t, http.StatusOK, knownRR.Code)
	assert.Equal(t, knownRR.Code, unknownRR.Code)
	assert.Equal(t, knownRR.Body.String(), unknownRR.Body.String())
	assert.JSONEq(t, `{"ok":true}`, knownRR.Body.String())
	f.mail.AssertExpectations(t)
}

func TestForgotPasswordSwallowsBadInput(t *testing.T) {
	f := newFixture()
	for _, body := range []string{``, `{"email":"nope"}`, `{"email":"a@b.co","x":1}`} {
		rr := f.forgot(body)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
	}
	f.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	f.mail.AssertNotCalled(t, "Go", mock.Anything)
}

func TestForgotPasswordSwallowsStoreErrors(t *testing.T) {
	f := newFixture()
	u := &models.User{ID: primitive.NewObjectID(), Email: "a@example.com"}
	f.users.On("GetByEmail", mock.Anything, "a@example.com").Return(u, nil)
	f.resets.On("Issue", mock.Anything, u.ID, time.Hour).Return("", errors.New("db down"))

	rr := f.forgot(`{"email":"a@example.com"}`)

	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
	f.mail.AssertNotCalled(t, "Go", mock.Anything)
}

func TestResetPassword(t *testing.T) {
	f := newFixture()
	tok := &models.PasswordResetToken{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID()}
	f.resets.On("FindValidByToken", mock.Anything, rawToken).Return(tok, nil)
	f.resets.On("Consume", mock.Anything, tok.ID).Return(true, nil)
	f.users.On("SetPassword", mock.Anything, tok.UserID.Hex(), "new-secret-1").Return(nil)

	rr := f.reset(`{"token":"` + rawToken + `","password":"new-secret-1"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
	mock.AssertExpectationsForObjects(t, f.resets, f.users)
}

func TestResetPasswordRejectsInvalidToken(t *testing.T) {
	t.Run("expired or used", func(t *testing.T) {
		f := newFixture()
		f.resets.On("FindValidByToken", mock.Anything, rawToken).Return(nil, services.ErrNotFound)

		rr := f.reset(`{"token":"` + rawToken + `","password":"new-secret-1"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"ok":false,"error":"Invalid or expired reset token"}`, rr.Body.String())
		f.users.AssertNotCalled(t, "SetPassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("consumed concurrently", func(t *testing.T) {
		f := newFixture()
		tok := &models.PasswordResetToken{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID()}
		f.resets.On("FindValidByToken", mock.Anything, rawToken).Return(tok, nil)
		f.resets.On("Consume", mock.Anything, tok.ID).Return(false, nil)

		rr := f.reset(`{"token":"` + rawToken + `","password":"new-secret-1"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		f.users.AssertNotCalled(t, "SetPassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed", func(t *testing.T) {
		f := newFixture()
		rr := f.reset(`{"token":"short","password":"new-secret-1"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"ok":false,"error":"token must be exactly 64 characters"}`, rr.Body.String())
	})
}

func TestPasswordOverBcryptLimitIsRejected(t *testing.T) {
	wide := strings.Repeat("é", 40)

	t.Run("register", func(t *testing.T) {
		f := newFixture()
		rr := call(func(w http.ResponseWriter, r *http.Request) { f.h.Register(w, r, nil) },
			`{"name":"Ana","email":"ana@example.com","password":"`+wide+`"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"ok":false,"error":"password must not exceed 72 bytes"}`, rr.Body.String())
		f.users.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("reset keeps the token", func(t *testing.T) {
		f := newFixture()
		rr := f.reset(`{"token":"` + rawToken + `","password":"` + wide + `"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"ok":false,"error":"password must not exceed 72 bytes"}`, rr.Body.String())
		f.resets.AssertNotCalled(t, "FindValidByToken", mock.Anything, mock.Anything)
		f.resets.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything)
		f.users.AssertNotCalled(t, "SetPassword", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLoginSetsSessionCookie(t *testing.T) {
	f := newFixture()
	u := &models.User{ID: primitive.NewObjectID(), Email: "ana@example.com", Role: models.RoleAdmin}
	f.users.On("Authenticate", mock.Anything, "ana@example.com", "pa55word!").Return(u, nil)

	rr := call(func(w http.ResponseWriter, r *http.Request) { f.h.Login(w, r, nil) },
		`{"email":"ana@example.com","password":"pa55word!"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		OK    bool   `json:"ok"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.OK)

	claims, err := f.sessions.Parse(body.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)
	assert.True(t, claims.IsAdmin())

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.Equal(t, body.Token, cookies[0].Value)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture()
	f.users.On("Authenticate", mock.Anything, "ana@example.com", "wrong").Return(nil, services.ErrInvalidCredentials)

	rr := call(func(w http.ResponseWriter, r *http.Request) { f.h.Login(w, r, nil) },
		`{"email":"ana@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Invalid email or password"}`, rr.Body.String())
	assert.Empty(t, rr.Result().Cookies())
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture()
	f.users.On("Register", mock.Anything, mock.Anything).Return(nil, services.ErrDuplicate)

	rr := call(func(w http.ResponseWriter, r *http.Request) { f.h.Register(w, r, nil) },
		`{"name":"Ana","email":"ana@example.com","password":"long-enough"}`)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	f := newFixture()
	rr := call(func(w http.ResponseWriter, r *http.Request) { f.h.Logout(w, r, nil) }, "")

	assert.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
