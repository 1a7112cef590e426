package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/tool-shop/internal/domain/models"
	"github.com/linemk/tool-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/tool-shop/internal/lib/api"
	"github.com/linemk/tool-shop/internal/storage"
)

// UserLookup - всё, что нужно гарду от хранилища пользователей
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// ResolveIdentity строит Identity по email из токена.
// Отсутствие записи - не ошибка: получается Identity без роли
func ResolveIdentity(ctx context.Context, users UserLookup, email string) (*Identity, error) {
	user, err := users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return &Identity{Email: email}, nil
		}
		return nil, err
	}
	return &Identity{Email: email, Role: user.Role}, nil
}

// RoleGuard - middleware после JWT-гарда: загружает роль вызывающего и спрашивает политику
func RoleGuard(log *slog.Logger, users UserLookup, policy *Policy, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "authz.RoleGuard"
			logger := log.With(slog.String("op", op), slog.String("action", string(action)))

			email, ok := jwtmiddleware.FromContext(r.Context())
			if !ok {
				api.Error(w, http.StatusUnauthorized, api.MsgUnauthorized)
				return
			}

			identity, err := ResolveIdentity(r.Context(), users, email)
			if err != nil {
				logger.Error("failed to load caller", slog.Any("error", err))
				api.Error(w, http.StatusInternalServerError, api.MsgInternal)
				return
			}

			if err := policy.Authorize(identity, action, Resource{}); err != nil {
				logger.Warn("access denied", slog.String("email", email), slog.Any("error", err))
				api.Error(w, http.StatusForbidden, api.MsgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
