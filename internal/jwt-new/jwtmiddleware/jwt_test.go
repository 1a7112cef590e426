package jwtmiddleware_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	security "github.com/linemk/tool-shop/internal/jwt-new"
	"github.com/linemk/tool-shop/internal/jwt-new/jwtmiddleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("testsecret")

// newGuarded оборачивает обработчик, который отмечает факт вызова.
func newGuarded(called *bool) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	middleware := jwtmiddleware.NewJWTMiddleware(logger, secret)
	return middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		email, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			http.Error(w, "email not found", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(email))
	}))
}

func TestJWTMiddleware_MissingAuthorization(t *testing.T) {
	var called bool
	handler := newGuarded(&called)

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status when no token provided")
	assert.True(t, strings.Contains(rr.Body.String(), "Can't Authorize the Access"))
	assert.False(t, called, "handler must not run without a token")
}

func TestJWTMiddleware_InvalidAuthorizationFormat(t *testing.T) {
	var called bool
	handler := newGuarded(&called)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "InvalidFormat")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status for invalid token format")
	assert.False(t, called)
}

func TestJWTMiddleware_InvalidToken(t *testing.T) {
	var called bool
	handler := newGuarded(&called)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer invalid.token.value")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code, "Expected forbidden status for invalid token")
	assert.True(t, strings.Contains(rr.Body.String(), "Forbidden Access"))
	assert.False(t, called)
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	var called bool
	handler := newGuarded(&called)

	tokenStr, err := security.NewToken("a@x.com", secret, -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.False(t, called)
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	var called bool
	handler := newGuarded(&called)

	tokenStr, err := security.NewToken("a@x.com", secret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "Expected OK status for valid token")
	assert.Equal(t, "a@x.com", rr.Body.String())
	assert.True(t, called)
}

func TestNewJWTMiddleware_EmptySecretPanics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Panics(t, func() {
		jwtmiddleware.NewJWTMiddleware(logger, nil)
	})
}

func TestFromContext(t *testing.T) {
	ctx := jwtmiddleware.WithEmail(context.Background(), "b@x.com")
	email, ok := jwtmiddleware.FromContext(ctx)
	assert.True(t, ok, "Expected to retrieve email from context")
	assert.Equal(t, "b@x.com", email)

	_, ok = jwtmiddleware.FromContext(context.Background())
	assert.False(t, ok)
}
