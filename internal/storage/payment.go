package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/tool-shop/internal/domain/models"
)

// PaymentStorage описывает методы для журнала оплат.
type PaymentStorage interface {
	// CreatePaymentTx добавляет запись об оплате в рамках транзакции.
	CreatePaymentTx(ctx context.Context, tx *sql.Tx, payment *models.Payment) error
}

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentStorage {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreatePaymentTx(ctx context.Context, tx *sql.Tx, payment *models.Payment) error {
	query := `INSERT INTO payments (order_id, transaction_id, created_at)
	          VALUES ($1, $2, NOW()) RETURNING id, created_at`
	err := tx.QueryRowContext(ctx, query, payment.OrderID, payment.TransactionID).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return ErrDuplicatePayment
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}
