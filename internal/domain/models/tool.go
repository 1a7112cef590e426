package models

import "github.com/shopspring/decimal"

// Tool представляет инструмент, доступный для покупки
type Tool struct {
	ID                int64           `json:"_id"`
	Name              string          `json:"name" validate:"required"`
	Description       string          `json:"description"`
	Image             string          `json:"image"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"availableQuantity" validate:"gte=0"`
}
