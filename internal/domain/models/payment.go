package models

import "time"

// Payment - запись об оплате заказа, только добавляется
type Payment struct {
	ID            int64     `json:"_id"`
	OrderID       int64     `json:"orderId"`
	TransactionID string    `json:"transactionId"`
	CreatedAt     time.Time `json:"createdAt"`
}
