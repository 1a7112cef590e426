package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/tool-shop/internal/domain/models"
	"github.com/linemk/tool-shop/internal/lib/metrics"
	"github.com/linemk/tool-shop/internal/payment"
	"github.com/linemk/tool-shop/internal/storage"
	"github.com/shopspring/decimal"
)

// ErrPaymentGateway - платёжный провайдер не смог создать намерение оплаты
var ErrPaymentGateway = errors.New("payment gateway failure")

type PaymentService interface {
	// ConfirmPayment в одной транзакции записывает платёж и помечает заказ оплаченным
	ConfirmPayment(ctx context.Context, orderID int64, transactionID string) (*storage.UpdateResult, error)
	CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (string, error)
}

type paymentService struct {
	log         *slog.Logger
	db          *sql.DB
	orderRepo   storage.OrderStorage
	paymentRepo storage.PaymentStorage
	gateway     payment.Gateway
}

func NewPaymentService(
	log *slog.Logger,
	db *sql.DB,
	orderRepo storage.OrderStorage,
	paymentRepo storage.PaymentStorage,
	gateway payment.Gateway,
) PaymentService {
	return &paymentService{
		log:         log,
		db:          db,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
	}
}

// ConfirmPayment переводит заказ в оплаченный ровно один раз.
// Повтор с тем же transactionID ничего не меняет, с другим возвращает ErrOrderAlreadyPaid.
// Если что-то идет не так, транзакция откатывается
func (s *paymentService) ConfirmPayment(ctx context.Context, orderID int64, transactionID string) (*storage.UpdateResult, error) {
	const op = "service.PaymentService.ConfirmPayment"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID), slog.String("transactionID", transactionID))
	logger.Info("starting payment transaction")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	rollback := func() {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
	}

	// Блокируем заказ до конца транзакции
	order, err := s.orderRepo.LockOrderByIDTx(ctx, tx, orderID)
	if err != nil {
		rollback()
		logger.Warn("failed to lock order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to lock order: %w", op, err)
	}

	if order.Paid {
		rollback()
		if order.TransactionID != nil && *order.TransactionID == transactionID {
			logger.Info("payment already confirmed")
			return &storage.UpdateResult{MatchedCount: 1}, nil
		}
		logger.Warn("order already paid with another transaction")
		return nil, fmt.Errorf("%s: %w", op, storage.ErrOrderAlreadyPaid)
	}

	if err := s.paymentRepo.CreatePaymentTx(ctx, tx, &models.Payment{
		OrderID:       orderID,
		TransactionID: transactionID,
	}); err != nil {
		rollback()
		logger.Error("failed to create payment", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create payment: %w", op, err)
	}

	if err := s.orderRepo.MarkOrderPaidTx(ctx, tx, orderID, transactionID); err != nil {
		rollback()
		logger.Error("failed to mark order paid", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to mark order paid: %w", op, err)
	}

	// Коммит транзакции
	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	metrics.PaymentsConfirmed.Inc()
	logger.Info("payment confirmed")
	return &storage.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (s *paymentService) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (string, error) {
	const op = "service.PaymentService.CreatePaymentIntent"
	logger := s.log.With(slog.String("op", op), slog.String("amount", amount.StringFixed(2)))

	if !amount.IsPositive() {
		return "", fmt.Errorf("%s: %w", op, payment.ErrInvalidAmount)
	}

	secret, err := s.gateway.CreatePaymentIntent(ctx, amount)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidAmount) {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to create payment intent", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w: %w", op, ErrPaymentGateway, err)
	}

	logger.Info("payment intent created")
	return secret, nil
}
