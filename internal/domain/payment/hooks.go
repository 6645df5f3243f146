package payment

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/value"
)

// Request describes the order a payment is authorized for.
type Request struct {
	OrderID    string
	CustomerID string
	Amount     value.Money
	Method     Method
}

// Authorizer runs before an order is persisted. Returning an error aborts
// checkout.
type Authorizer interface {
	Authorize(ctx context.Context, req Request) (*Payment, error)
}

// NoopAuthorizer records a PENDING payment without contacting a gateway.
type NoopAuthorizer struct{}

func (NoopAuthorizer) Authorize(_ context.Context, req Request) (*Payment, error) {
	method := req.Method
	if method == "" {
		method = DefaultMethod
	}
	return New(req.OrderID, req.Amount, method)
}

// RefundRecorder is notified after a completed payment is refunded.
type RefundRecorder interface {
	RecordRefund(ctx context.Context, p *Payment) error
}

type NoopRefundRecorder struct{}

func (NoopRefundRecorder) RecordRefund(context.Context, *Payment) error { return nil }
