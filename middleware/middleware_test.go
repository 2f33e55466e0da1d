package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"wanderlust/config"
	"wanderlust/logx"
	"wanderlust/models"
)

func testSessions() *Sessions {
	return NewSessions(config.AuthConfig{
		JWTSecret:       "0123456789abcdef0123456789abcdef",
		SessionTTLHours: 1,
	})
}

func tokenFor(t *testing.T, s *Sessions, role string) string {
	t.Helper()
	token, _, err := s.Issue(&models.User{ID: primitive.NewObjectID(), Email: "ana@example.com", Role: role})
	require.NoError(t, err)
	return token
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
})

func TestIssueAndParse(t *testing.T) {
	s := testSessions()
	token := tokenFor(t, s, models.RoleAdmin)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.True(t, claims.IsAdmin())

	other := NewSessions(config.AuthConfig{JWTSecret: "another-secret-another-secret-!!", SessionTTLHours: 1})
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	s := testSessions()
	s.ttl = -time.Minute
	token := tokenFor(t, s, models.RoleUser)

	_, err := s.Parse(token)
	assert.Error(t, err)
}

func TestFromRequest(t *testing.T) {
	s := testSessions()
	token := tokenFor(t, s, models.RoleUser)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := s.FromRequest(r)
	assert.ErrorIs(t, err, ErrNoSession)

	r.Header.Set("Authorization", "Bearer "+token)
	claims, err := s.FromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, claims.Role)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	_, err = s.FromRequest(r)
	assert.NoError(t, err)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", token)
	_, err = s.FromRequest(r)
	assert.Error(t, err)
}

func TestAccessControl(t *testing.T) {
	s := testSessions()
	admin := tokenFor(t, s, models.RoleAdmin)
	user := tokenFor(t, s, models.RoleUser)
	h := s.AccessControl(okHandler)

	tests := []struct {
		name     string
		path     string
		token    string
		code     int
		location string
	}{
		{"admin page anonymous", "/admin/packages?tab=2", "", http.StatusFound, "/auth/signin?callbackUrl=%2Fadmin%2Fpackages%3Ftab%3D2"},
		{"admin page wrong role", "/admin", user, http.StatusFound, "/"},
		{"admin page admin", "/admin/posts", admin, http.StatusTeapot, ""},
		{"admin api anonymous", "/api/admin/packages", "", http.StatusUnauthorized, ""},
		{"admin api wrong role", "/api/admin/packages", user, http.StatusForbidden, ""},
		{"admin api admin", "/api/admin/packages", admin, http.StatusTeapot, ""},
		{"signin signed in", "/auth/signin", user, http.StatusFound, "/"},
		{"signup anonymous", "/auth/signup", "", http.StatusTeapot, ""},
		{"lookalike prefix", "/administrators", "", http.StatusTeapot, ""},
		{"public page", "/packages", "", http.StatusTeapot, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				r.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.token})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			assert.Equal(t, tt.code, rec.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
			}
		})
	}
}

func TestAuthenticateHandle(t *testing.T) {
	s := testSessions()
	var seen *Claims
	h := s.Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		seen, _ = ClaimsFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/account/password", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{"success": false, "message": "Unauthorized"}, body)

	r := httptest.NewRequest(http.MethodPost, "/api/account/password", nil)
	r.Header.Set("Authorization", "Bearer "+tokenFor(t, s, models.RoleUser))
	rec = httptest.NewRecorder()
	h(rec, r, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "ana@example.com", seen.Email)
}

func TestRequireAdminHandle(t *testing.T) {
	s := testSessions()
	h := s.RequireAdmin(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusNoContent)
	})

	r := httptest.NewRequest(http.MethodDelete, "/api/admin/packages/x", nil)
	r.Header.Set("Authorization", "Bearer "+tokenFor(t, s, models.RoleUser))
	rec := httptest.NewRecorder()
	h(rec, r, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	r.Header.Set("Authorization", "Bearer "+tokenFor(t, s, models.RoleAdmin))
	rec = httptest.NewRecorder()
	h(rec, r, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLoggingAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	h := Logging(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logx.FromContext(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/contact", nil))

	id := rec.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var access map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &access))
	assert.Equal(t, id, access["request_id"])
	assert.Equal(t, "/api/contact", access["path"])
	assert.EqualValues(t, http.StatusCreated, access["status"])
	assert.Contains(t, string(lines[0]), id)
}

func TestLoggingRecoversPanics(t *testing.T) {
	h := Logging(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
