// Package query serves reads straight from the backing store. Each read
// runs in its own unit of work.
package query

import (
	"context"
	"errors"

	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/customer"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"github.com/example/ec-fulfillment/internal/domain/status"
	"github.com/example/ec-fulfillment/internal/infrastructure/store"
)

type Handler struct {
	uow store.UnitOfWork
}

func NewHandler(uow store.UnitOfWork) *Handler {
	return &Handler{uow: uow}
}

func read[T any](ctx context.Context, uow store.UnitOfWork, fn func(ctx context.Context, tx store.Tx) (T, error)) (T, error) {
	var out T
	err := uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = fn(ctx, tx)
		return err
	})
	return out, err
}

// Products
func (h *Handler) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	return read(ctx, h.uow, func(ctx context.Context, tx store.Tx) (*product.Product, error) {
		return tx.Products().FindByID(ctx, id)
	})
}

// Cart
func (h *Handler) GetCart(ctx context.Context, customerID string) (*CartView, error) {
	return read(ctx, h.uow, func(ctx context.Context, tx store.Tx) (*CartView, error) {
		if _, err := tx.Customers().FindByID(ctx, customerID); err != nil {
			return nil, err
		}
		c, err := tx.Carts().FindByCustomerID(ctx, customerID)
		switch {
		case err == nil && c.IsActive():
			return cartView(c), nil
		case err == nil, errors.Is(err, cart.ErrCartNotFound):
			return &CartView{CustomerID: customerID, Status: status.CartActive, Items: []cart.Item{}}, nil
		default:
			return nil, err
		}
	})
}

// Orders
func (h *Handler) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return read(ctx, h.uow, func(ctx context.Context, tx store.Tx) (*order.Order, error) {
		return tx.Orders().FindByID(ctx, id)
	})
}

// ListOrders returns the customer's orders, newest first.
func (h *Handler) ListOrders(ctx context.Context, customerID string) ([]OrderSummary, error) {
	return read(ctx, h.uow, func(ctx context.Context, tx store.Tx) ([]OrderSummary, error) {
		if _, err := tx.Customers().FindByID(ctx, customerID); err != nil {
			return nil, err
		}
		orders, err := tx.Orders().FindByCustomerID(ctx, customerID)
		if err != nil {
			return nil, err
		}
		out := make([]OrderSummary, 0, len(orders))
		for _, o := range orders {
			out = append(out, orderSummary(o))
		}
		return out, nil
	})
}

// Customers
func (h *Handler) GetCustomer(ctx context.Context, id string) (*customer.Customer, error) {
	return read(ctx, h.uow, func(ctx context.Context, tx store.Tx) (*customer.Customer, error) {
		return tx.Customers().FindByID(ctx, id)
	})
}
