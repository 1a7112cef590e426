package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/tool-shop/internal/domain/models"
	"github.com/linemk/tool-shop/internal/lib/metrics"
	"github.com/linemk/tool-shop/internal/storage"
)

// PlaceOrderResult - итог оформления заказа.
// Created == false означает, что заказ с той же парой (email, toolName) уже был, он в Order
type PlaceOrderResult struct {
	Created bool
	Order   *models.Order
}

type OrderService interface {
	ListOrders(ctx context.Context) ([]*models.Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]*models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	PlaceOrder(ctx context.Context, order *models.Order) (*PlaceOrderResult, error)
	MarkShifted(ctx context.Context, id int64) (*storage.UpdateResult, error)
	CancelOrder(ctx context.Context, id int64) (int64, error)
}

type orderService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
}

func NewOrderService(log *slog.Logger, orderRepo storage.OrderStorage) OrderService {
	return &orderService{
		log:       log,
		orderRepo: orderRepo,
	}
}

func (s *orderService) ListOrders(ctx context.Context) ([]*models.Order, error) {
	const op = "service.OrderService.ListOrders"

	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) ListOrdersByEmail(ctx context.Context, email string) ([]*models.Order, error) {
	const op = "service.OrderService.ListOrdersByEmail"

	orders, err := s.orderRepo.ListOrdersByEmail(ctx, email)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	const op = "service.OrderService.GetOrder"

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

// PlaceOrder вставляет заказ, если у покупателя ещё нет заказа на этот инструмент.
// Уникальность держит индекс в БД, поэтому два одновременных запроса не создадут дубль
func (s *orderService) PlaceOrder(ctx context.Context, order *models.Order) (*PlaceOrderResult, error) {
	const op = "service.OrderService.PlaceOrder"
	logger := s.log.With(
		slog.String("op", op),
		slog.String("email", order.Email),
		slog.String("tool", order.ToolName),
	)

	created, err := s.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		if errors.Is(err, storage.ErrToolNotFound) {
			logger.Warn("order references unknown tool")
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if created {
		metrics.OrdersCreated.Inc()
		logger.Info("order created", slog.Int64("id", order.ID))
		return &PlaceOrderResult{Created: true, Order: order}, nil
	}

	existing, err := s.orderRepo.FindOrder(ctx, order.Email, order.ToolName)
	if err != nil {
		logger.Error("failed to load existing order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to load existing order: %w", op, err)
	}

	metrics.OrdersDuplicate.Inc()
	logger.Info("order already exists", slog.Int64("id", existing.ID))
	return &PlaceOrderResult{Created: false, Order: existing}, nil
}

func (s *orderService) MarkShifted(ctx context.Context, id int64) (*storage.UpdateResult, error) {
	const op = "service.OrderService.MarkShifted"

	res, err := s.orderRepo.MarkOrderShifted(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (s *orderService) CancelOrder(ctx context.Context, id int64) (int64, error) {
	const op = "service.OrderService.CancelOrder"

	deleted, err := s.orderRepo.DeleteOrder(ctx, id)
	if errors.Is(err, storage.ErrOrderAlreadyPaid) {
		s.log.Warn("paid order cannot be cancelled", slog.String("op", op), slog.Int64("id", id))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err != nil {
		s.log.Error("failed to cancel order", slog.String("op", op), slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("order cancelled", slog.String("op", op), slog.Int64("id", id), slog.Int64("deleted", deleted))
	return deleted, nil
}
