package store

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/customer"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/product"
)

// EventAppender records an event in the outbox of the current unit of work.
type EventAppender interface {
	Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error)
}

// Tx exposes the repositories bound to one unit of work.
type Tx interface {
	Products() product.Store
	Carts() cart.Store
	Orders() order.Store
	Customers() customer.Store
	Events() EventAppender
}

// UnitOfWork runs fn atomically: every write made through tx, outbox events
// included, is committed when fn returns nil and discarded otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Outbox is read by the relay. Pending returns unpublished events oldest
// first.
type Outbox interface {
	Pending(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, ids []string) error
}

// Backend is a complete storage driver.
type Backend interface {
	UnitOfWork
	Outbox
	Close(ctx context.Context) error
}
