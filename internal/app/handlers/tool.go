package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/tool-shop/internal/domain/models"
	"github.com/linemk/tool-shop/internal/lib/api"
	"github.com/linemk/tool-shop/internal/service"
)

// UpdateQuantityRequest - тело PUT /tool/{id}; имя поля сохранено как у существующих клиентов
type UpdateQuantityRequest struct {
	RemainingQuantity *int `json:"remaniningQuantity" validate:"required,gte=0"`
}

// ListToolsHandler обрабатывает GET /tools
func ListToolsHandler(log *slog.Logger, tools service.ToolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListToolsHandler"
		logger := log.With(slog.String("op", op))

		list, err := tools.ListTools(r.Context())
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, list)
	}
}

// GetToolHandler обрабатывает GET /purchase/{id}
func GetToolHandler(log *slog.Logger, tools service.ToolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetToolHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		tool, err := tools.GetTool(r.Context(), id)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, tool)
	}
}

// CreateToolHandler обрабатывает POST /tool, доступен только администратору
func CreateToolHandler(log *slog.Logger, tools service.ToolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateToolHandler"
		logger := log.With(slog.String("op", op))

		var tool models.Tool
		if !decodeJSON(logger, w, r, &tool) {
			return
		}

		id, err := tools.CreateTool(r.Context(), &tool)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, InsertResult{Acknowledged: true, InsertedID: id})
	}
}

// UpdateToolQuantityHandler обрабатывает PUT /tool/{id}
func UpdateToolQuantityHandler(log *slog.Logger, tools service.ToolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateToolQuantityHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		var req UpdateQuantityRequest
		if !decodeJSON(logger, w, r, &req) {
			return
		}

		res, err := tools.UpdateQuantity(r.Context(), id, *req.RemainingQuantity)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, newUpdateResult(res))
	}
}

// DeleteToolHandler обрабатывает DELETE /tool/{id}, доступен только администратору
func DeleteToolHandler(log *slog.Logger, tools service.ToolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteToolHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		deleted, err := tools.DeleteTool(r.Context(), id)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, DeleteResult{Acknowledged: true, DeletedCount: deleted})
	}
}
