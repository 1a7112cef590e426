package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/linemk/tool-shop/internal/authz"
	"github.com/linemk/tool-shop/internal/lib/api"
	"github.com/linemk/tool-shop/internal/payment"
	"github.com/linemk/tool-shop/internal/service"
	"github.com/linemk/tool-shop/internal/storage"
)

var validate = validator.New()

var errInvalidID = errors.New("invalid id")

// InsertResult - ответ на создание записи
type InsertResult struct {
	Acknowledged bool  `json:"acknowledged"`
	InsertedID   int64 `json:"insertedId"`
}

// UpdateResult - ответ на изменение записи; upsertedId заполнен, только если запись создана
type UpdateResult struct {
	Acknowledged  bool   `json:"acknowledged"`
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	UpsertedID    *int64 `json:"upsertedId"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

func newUpdateResult(res *storage.UpdateResult) UpdateResult {
	return UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedID:    res.UpsertedID,
	}
}

// idParam читает числовой {id} из пути
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// emailParam читает {email} из пути и проверяет формат
func emailParam(r *http.Request) (string, error) {
	email := chi.URLParam(r, "email")
	if err := validate.Var(email, "required,email"); err != nil {
		return "", err
	}
	return email, nil
}

// decodeJSON разбирает и валидирует тело запроса; при ошибке сам отвечает 400
func decodeJSON(logger *slog.Logger, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("invalid request: decoding error", slog.Any("error", err))
		api.Error(w, http.StatusBadRequest, "invalid request")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		logger.Warn("invalid request: validation error", slog.Any("error", err))
		api.Error(w, http.StatusBadRequest, "validation error")
		return false
	}
	return true
}

// respond пишет успешный JSON-ответ
func respond(logger *slog.Logger, w http.ResponseWriter, v any) {
	if err := api.JSON(w, http.StatusOK, v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// respondError переводит ошибку сервиса в статус; внутренние детали наружу не уходят
func respondError(logger *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrToolNotFound):
		api.Error(w, http.StatusNotFound, storage.ErrToolNotFound.Error())
	case errors.Is(err, storage.ErrOrderNotFound):
		api.Error(w, http.StatusNotFound, storage.ErrOrderNotFound.Error())
	case errors.Is(err, storage.ErrUserNotFound):
		api.Error(w, http.StatusNotFound, storage.ErrUserNotFound.Error())
	case errors.Is(err, storage.ErrReviewNotFound):
		api.Error(w, http.StatusNotFound, storage.ErrReviewNotFound.Error())
	case errors.Is(err, storage.ErrOrderAlreadyPaid):
		api.Error(w, http.StatusConflict, storage.ErrOrderAlreadyPaid.Error())
	case errors.Is(err, storage.ErrDuplicatePayment):
		api.Error(w, http.StatusConflict, storage.ErrDuplicatePayment.Error())
	case errors.Is(err, payment.ErrInvalidAmount):
		api.Error(w, http.StatusBadRequest, payment.ErrInvalidAmount.Error())
	case errors.Is(err, authz.ErrForbidden):
		api.Error(w, http.StatusForbidden, api.MsgForbidden)
	case errors.Is(err, service.ErrPaymentGateway):
		logger.Error("payment gateway error", slog.Any("error", err))
		api.Error(w, http.StatusBadGateway, "payment provider unavailable")
	default:
		logger.Error("request failed", slog.Any("error", err))
		api.Error(w, http.StatusInternalServerError, api.MsgInternal)
	}
}
