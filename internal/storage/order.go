package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/tool-shop/internal/domain/models"
)

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrder вставляет заказ, если для пары (email, tool_name) его ещё нет.
	// Возвращает false, если такой заказ уже существует.
	CreateOrder(ctx context.Context, order *models.Order) (bool, error)
	// FindOrder ищет заказ по покупателю и названию инструмента.
	FindOrder(ctx context.Context, email, toolName string) (*models.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context) ([]*models.Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]*models.Order, error)
	MarkOrderShifted(ctx context.Context, id int64) (*UpdateResult, error)
	DeleteOrder(ctx context.Context, id int64) (int64, error)
	// LockOrderByIDTx получает заказ с блокировкой строки до конца транзакции.
	LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error)
	// MarkOrderPaidTx выставляет paid и status, запоминая идентификатор транзакции.
	MarkOrderPaidTx(ctx context.Context, tx *sql.Tx, id int64, transactionID string) error
}

// orderRepository - конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = "id, name, email, tool_id, tool_name, quantity, total_price, paid, status, shift, transaction_id, created_at"

func scanOrder(row interface{ Scan(dest ...any) error }) (*models.Order, error) {
	o := &models.Order{}
	err := row.Scan(&o.ID, &o.Name, &o.Email, &o.ToolID, &o.ToolName, &o.Quantity, &o.TotalPrice,
		&o.Paid, &o.Status, &o.Shift, &o.TransactionID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) (bool, error) {
	query := `INSERT INTO orders (name, email, tool_id, tool_name, quantity, total_price)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (email, tool_name) DO NOTHING
	          RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		order.Name, order.Email, order.ToolID, order.ToolName, order.Quantity, order.TotalPrice,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		// ON CONFLICT DO NOTHING не возвращает строк
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation: tool_id
			return false, ErrToolNotFound
		}
		return false, fmt.Errorf("failed to create order: %w", err)
	}
	return true, nil
}

func (r *orderRepository) FindOrder(ctx context.Context, email, toolName string) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE email = $1 AND tool_name = $2", email, toolName)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]*models.Order, error) {
	return r.queryOrders(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC")
}

// ListOrdersByEmail возвращает заказы покупателя, новые первыми. Регистр email не учитывается.
func (r *orderRepository) ListOrdersByEmail(ctx context.Context, email string) ([]*models.Order, error) {
	return r.queryOrders(ctx, "SELECT "+orderColumns+" FROM orders WHERE lower(email) = lower($1) ORDER BY created_at DESC", email)
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) MarkOrderShifted(ctx context.Context, id int64) (*UpdateResult, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET shift = TRUE WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark order shifted: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrOrderNotFound
	}
	return &UpdateResult{MatchedCount: affected, ModifiedCount: affected}, nil
}

// DeleteOrder удаляет заказ. Оплаченный заказ удалить нельзя: на него ссылается платёж
func (r *orderRepository) DeleteOrder(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation: payments.order_id
			return 0, ErrOrderAlreadyPaid
		}
		return 0, fmt.Errorf("failed to delete order: %w", err)
	}
	return res.RowsAffected()
}

func (r *orderRepository) LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1 FOR UPDATE", id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) MarkOrderPaidTx(ctx context.Context, tx *sql.Tx, id int64, transactionID string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE orders SET paid = TRUE, status = TRUE, transaction_id = $1 WHERE id = $2",
		transactionID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
