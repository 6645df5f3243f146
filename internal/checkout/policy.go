package checkout

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/customer"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/value"
	"github.com/shopspring/decimal"
)

// TaxPolicy prices the tax of a freshly built order.
type TaxPolicy interface {
	Tax(ctx context.Context, o *order.Order) (value.Money, error)
}

// DiscountPolicy prices the discount of a freshly built order. The result
// must not exceed the order subtotal.
type DiscountPolicy interface {
	Discount(ctx context.Context, c *customer.Customer, o *order.Order) (value.Money, error)
}

type NoTax struct{}

func (NoTax) Tax(_ context.Context, o *order.Order) (value.Money, error) {
	return value.ZeroMoney(o.Currency())
}

// RateTax charges Rate times the subtotal, rounded to the currency.
type RateTax struct {
	Rate decimal.Decimal
}

func (t RateTax) Tax(_ context.Context, o *order.Order) (value.Money, error) {
	return o.Subtotal.Multiply(t.Rate), nil
}

type NoDiscount struct{}

func (NoDiscount) Discount(_ context.Context, _ *customer.Customer, o *order.Order) (value.Money, error) {
	return value.ZeroMoney(o.Currency())
}
