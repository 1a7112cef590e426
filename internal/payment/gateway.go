package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var ErrInvalidAmount = errors.New("amount must be positive and within the provider limit")

// MaxMinorUnits - верхняя граница суммы одного платежа у Stripe (999 999.99 в валюте)
const MaxMinorUnits int64 = 99999999

var maxMinorUnits = decimal.NewFromInt(MaxMinorUnits)

// Gateway создаёт намерение оплаты у платёжного провайдера и возвращает client secret
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (string, error)
}

// StripeGateway - реализация Gateway поверх Stripe PaymentIntents
type StripeGateway struct {
	api      *client.API
	currency string
}

// NewStripeGateway создаёт шлюз; backends == nil означает стандартный API Stripe
func NewStripeGateway(secretKey, currency string, backends *stripe.Backends) *StripeGateway {
	return &StripeGateway{
		api:      client.New(secretKey, backends),
		currency: currency,
	}
}

// ToMinorUnits переводит сумму в центы с банковским округлением до целого.
// Суммы вне (0, MaxMinorUnits] отклоняются до приведения к int64
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	cents := amount.Mul(decimal.NewFromInt(100)).RoundBank(0)
	if !cents.IsPositive() || cents.GreaterThan(maxMinorUnits) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (string, error) {
	const op = "payment.StripeGateway.CreatePaymentIntent"

	cents, err := ToMinorUnits(amount)
	if err != nil {
		return "", err
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(cents),
		Currency:           stripe.String(g.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return intent.ClientSecret, nil
}
