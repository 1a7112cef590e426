package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/tool-shop/internal/authz"
	"github.com/linemk/tool-shop/internal/domain/models"
	"github.com/linemk/tool-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/tool-shop/internal/lib/api"
	"github.com/linemk/tool-shop/internal/service"
	"github.com/shopspring/decimal"
)

// OrderRequest - тело POST /order
type OrderRequest struct {
	Name       string          `json:"name"`
	Email      string          `json:"email" validate:"required,email"`
	ToolID     *int64          `json:"toolId"`
	ToolName   string          `json:"toolName" validate:"required"`
	Quantity   *int            `json:"quantity" validate:"omitnil,gte=1"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// defaultOrderQuantity подставляется, когда quantity не передан
const defaultOrderQuantity = 1

// PlaceOrderResponse - либо результат вставки, либо уже существующий заказ
type PlaceOrderResponse struct {
	Success      bool          `json:"success"`
	Result       *InsertResult `json:"result,omitempty"`
	OrderDetails *models.Order `json:"orderDetails,omitempty"`
}

// ListOrdersByEmailHandler обрабатывает GET /orders?email=.
// Видеть чужие заказы может только администратор
func ListOrdersByEmailHandler(log *slog.Logger, orders service.OrderService, users authz.UserLookup, policy *authz.Policy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersByEmailHandler"
		logger := log.With(slog.String("op", op))

		email := r.URL.Query().Get("email")
		if email == "" {
			api.Error(w, http.StatusBadRequest, "email query parameter is required")
			return
		}

		caller, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			api.Error(w, http.StatusUnauthorized, api.MsgUnauthorized)
			return
		}

		identity, err := authz.ResolveIdentity(r.Context(), users, caller)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		if err := policy.Authorize(identity, authz.ActionOrderList, authz.Resource{Owner: email}); err != nil {
			logger.Warn("access denied", slog.String("caller", caller), slog.String("owner", email))
			respondError(logger, w, err)
			return
		}

		list, err := orders.ListOrdersByEmail(r.Context(), email)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, list)
	}
}

// ListAllOrdersHandler обрабатывает GET /get/orders
func ListAllOrdersHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListAllOrdersHandler"
		logger := log.With(slog.String("op", op))

		list, err := orders.ListOrders(r.Context())
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, list)
	}
}

// GetOrderHandler обрабатывает GET /order/{id}
func GetOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		order, err := orders.GetOrder(r.Context(), id)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, order)
	}
}

// PlaceOrderHandler обрабатывает POST /order
func PlaceOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PlaceOrderHandler"
		logger := log.With(slog.String("op", op))

		var req OrderRequest
		if !decodeJSON(logger, w, r, &req) {
			return
		}

		quantity := defaultOrderQuantity
		if req.Quantity != nil {
			quantity = *req.Quantity
		}

		res, err := orders.PlaceOrder(r.Context(), &models.Order{
			Name:       req.Name,
			Email:      req.Email,
			ToolID:     req.ToolID,
			ToolName:   req.ToolName,
			Quantity:   quantity,
			TotalPrice: req.TotalPrice,
		})
		if err != nil {
			respondError(logger, w, err)
			return
		}

		if !res.Created {
			respond(logger, w, PlaceOrderResponse{Success: false, OrderDetails: res.Order})
			return
		}
		respond(logger, w, PlaceOrderResponse{
			Success: true,
			Result:  &InsertResult{Acknowledged: true, InsertedID: res.Order.ID},
		})
	}
}

// ShiftOrderHandler обрабатывает PATCH /shift/order/{id}
func ShiftOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ShiftOrderHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := orders.MarkShifted(r.Context(), id)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, newUpdateResult(res))
	}
}

// CancelOrderHandler обрабатывает DELETE /cancel/order/{id}
func CancelOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CancelOrderHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		deleted, err := orders.CancelOrder(r.Context(), id)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, DeleteResult{Acknowledged: true, DeletedCount: deleted})
	}
}
