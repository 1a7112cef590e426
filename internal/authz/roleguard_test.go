package authz_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linemk/tool-shop/internal/authz"
	"github.com/linemk/tool-shop/internal/domain/models"
	"github.com/linemk/tool-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/tool-shop/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	users map[string]*models.User
	err   error
}

func (f *fakeUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func newUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*models.User{
		"admin@x.com": {ID: 1, Email: "admin@x.com", Role: models.RoleAdmin},
		"a@x.com":     {ID: 2, Email: "a@x.com"},
	}}
}

func serveGuarded(t *testing.T, users authz.UserLookup, email string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var called bool
	guard := authz.RoleGuard(logger, users, authz.NewPolicy(), authz.ActionToolCreate)
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/tool", nil)
	if email != "" {
		req = req.WithContext(jwtmiddleware.WithEmail(req.Context(), email))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr, called
}

func TestRoleGuard_Admin(t *testing.T) {
	rr, called := serveGuarded(t, newUsers(), "admin@x.com")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, called)
}

func TestRoleGuard_NonAdmin(t *testing.T) {
	rr, called := serveGuarded(t, newUsers(), "a@x.com")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.False(t, called)
}

func TestRoleGuard_UnknownUser(t *testing.T) {
	// нет записи пользователя - это отказ, а не падение
	rr, called := serveGuarded(t, newUsers(), "ghost@x.com")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.False(t, called)
}

func TestRoleGuard_NoClaims(t *testing.T) {
	rr, called := serveGuarded(t, newUsers(), "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, called)
}

func TestRoleGuard_StorageError(t *testing.T) {
	rr, called := serveGuarded(t, &fakeUsers{err: errors.New("db down")}, "admin@x.com")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.False(t, called)
}

func TestResolveIdentity(t *testing.T) {
	ctx := context.Background()

	id, err := authz.ResolveIdentity(ctx, newUsers(), "admin@x.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", id.Role)

	id, err = authz.ResolveIdentity(ctx, newUsers(), "ghost@x.com")
	require.NoError(t, err)
	assert.Equal(t, "ghost@x.com", id.Email)
	assert.Empty(t, id.Role)
}
