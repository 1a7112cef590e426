package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/tool-shop/internal/lib/api"
	"github.com/linemk/tool-shop/internal/service"
	"github.com/shopspring/decimal"
)

// ConfirmPaymentRequest - тело PATCH /order/{id}
type ConfirmPaymentRequest struct {
	TransactionID string `json:"transactionId" validate:"required"`
}

type PaymentIntentRequest struct {
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// ConfirmPaymentHandler обрабатывает PATCH /order/{id}: записывает платёж и помечает заказ оплаченным
func ConfirmPaymentHandler(log *slog.Logger, payments service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ConfirmPaymentHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		var req ConfirmPaymentRequest
		if !decodeJSON(logger, w, r, &req) {
			return
		}

		res, err := payments.ConfirmPayment(r.Context(), id, req.TransactionID)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, newUpdateResult(res))
	}
}

// CreatePaymentIntentHandler обрабатывает POST /create-payment-intent
func CreatePaymentIntentHandler(log *slog.Logger, payments service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreatePaymentIntentHandler"
		logger := log.With(slog.String("op", op))

		var req PaymentIntentRequest
		if !decodeJSON(logger, w, r, &req) {
			return
		}

		secret, err := payments.CreatePaymentIntent(r.Context(), req.TotalPrice)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, PaymentIntentResponse{ClientSecret: secret})
	}
}
