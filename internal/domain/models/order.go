package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order представляет заказ покупателя на инструмент.
// Пара (Email, ToolName) уникальна - повторный заказ не создаётся
type Order struct {
	ID            int64           `json:"_id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	ToolID        *int64          `json:"toolId,omitempty"`
	ToolName      string          `json:"toolName"`
	Quantity      int             `json:"quantity"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Paid          bool            `json:"paid"`
	Status        bool            `json:"status"`
	Shift         bool            `json:"shift"`
	TransactionID *string         `json:"transactionId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}
