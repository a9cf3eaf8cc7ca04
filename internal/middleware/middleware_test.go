package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greengrocer/grocery-api/internal/model"
	"github.com/greengrocer/grocery-api/internal/service"
)

type stubAuthenticator map[string]model.Identity

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*model.Identity, error) {
	if token == "broken" {
		return nil, errors.New("session store down")
	}
	identity, ok := s[token]
	if !ok {
		return nil, service.ErrInvalidToken
	}
	return &identity, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(auth Authenticator) *gin.Engine {
	r := gin.New()
	authed := r.Group("", AuthMiddleware(auth, "gg_session"))
	authed.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "role": GetUserRole(c), "sid": GetIdentity(c).SessionID})
	})
	authed.GET("/admin", AdminOnly(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

var identities = stubAuthenticator{
	"customer-token": {SessionID: "s1", UserID: 7, Role: model.RoleCustomer},
	"admin-token":    {SessionID: "s2", UserID: 1, Role: model.RoleAdmin},
}

func TestAuthMiddleware(t *testing.T) {
	r := newTestRouter(identities)

	tests := []struct {
		name   string
		setup  func(*http.Request)
		path   string
		status int
	}{
		{"no token", func(*http.Request) {}, "/me", http.StatusUnauthorized},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, "/me", http.StatusUnauthorized},
		{"store failure", func(r *http.Request) { r.Header.Set("Authorization", "Bearer broken") }, "/me", http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer customer-token") }, "/me", http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "gg_session", Value: "customer-token"}) }, "/me", http.StatusOK},
		{"customer on admin route", func(r *http.Request) { r.Header.Set("Authorization", "Bearer customer-token") }, "/admin", http.StatusForbidden},
		{"admin on admin route", func(r *http.Request) { r.Header.Set("Authorization", "Bearer admin-token") }, "/admin", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAuthMiddleware_SetsIdentity(t *testing.T) {
	r := newTestRouter(identities)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer customer-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"role":"customer","sid":"s1"}`, w.Body.String())
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("db exploded"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), "db exploded")

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Contains(t, buf.String(), `"level":"INFO"`)
	assert.Contains(t, buf.String(), `"path":"/ok"`)
}
