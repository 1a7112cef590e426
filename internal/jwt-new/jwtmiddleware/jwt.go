package jwtmiddleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	security "github.com/linemk/tool-shop/internal/jwt-new"
	"github.com/linemk/tool-shop/internal/lib/api"
)

type contextKey string

const EmailKey contextKey = "email"

// NewJWTMiddleware создаёт middleware для проверки JWT.
// Нет заголовка или неверный формат - 401, невалидный или истёкший токен - 403
func NewJWTMiddleware(log *slog.Logger, secret []byte) func(http.Handler) http.Handler {
	if len(secret) == 0 {
		panic("JWT_SECRET is not set")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization (формат: "Bearer <token>")
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, api.MsgUnauthorized)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				api.Error(w, http.StatusUnauthorized, api.MsgUnauthorized)
				return
			}

			claims, err := security.ParseToken(parts[1], secret)
			if err != nil {
				log.Debug("token rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
				api.Error(w, http.StatusForbidden, api.MsgForbidden)
				return
			}

			// Кладём email из токена в контекст запроса
			ctx := WithEmail(r.Context(), claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithEmail возвращает контекст с email вызывающего
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, EmailKey, email)
}

// FromContext извлекает email из контекста.
func FromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok && email != ""
}
