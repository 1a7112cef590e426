package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/tool-shop/internal/domain/models"
	"github.com/linemk/tool-shop/internal/lib/api"
	"github.com/linemk/tool-shop/internal/service"
)

// UserRequest - тело PUT /user/{email}; роль из тела не принимается
type UserRequest struct {
	Name string `json:"name"`
}

type LoginResponse struct {
	Result      UpdateResult `json:"result"`
	AccessToken string       `json:"accessToken"`
}

type AdminResponse struct {
	Admin bool `json:"admin"`
}

// ListUsersHandler обрабатывает GET /users
func ListUsersHandler(log *slog.Logger, users service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListUsersHandler"
		logger := log.With(slog.String("op", op))

		list, err := users.ListUsers(r.Context())
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, list)
	}
}

// UpsertUserHandler обрабатывает PUT /user/{email}: создаёт или обновляет пользователя и выдаёт токен
func UpsertUserHandler(log *slog.Logger, users service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpsertUserHandler"
		logger := log.With(slog.String("op", op))

		email, err := emailParam(r)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid email")
			return
		}

		var req UserRequest
		if !decodeJSON(logger, w, r, &req) {
			return
		}

		res, err := users.Login(r.Context(), &models.User{Email: email, Name: req.Name})
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, LoginResponse{
			Result:      newUpdateResult(res.Result),
			AccessToken: res.AccessToken,
		})
	}
}

// PromoteUserHandler обрабатывает PATCH /user/{email}, доступен только администратору
func PromoteUserHandler(log *slog.Logger, users service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PromoteUserHandler"
		logger := log.With(slog.String("op", op))

		email, err := emailParam(r)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid email")
			return
		}

		res, err := users.Promote(r.Context(), email)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, newUpdateResult(res))
	}
}

// AdminCheckHandler обрабатывает GET /admin/{email}
func AdminCheckHandler(log *slog.Logger, users service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminCheckHandler"
		logger := log.With(slog.String("op", op))

		email, err := emailParam(r)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid email")
			return
		}

		isAdmin, err := users.IsAdmin(r.Context(), email)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, AdminResponse{Admin: isAdmin})
	}
}
