package query

import (
	"context"
	"testing"

	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/customer"
	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"github.com/example/ec-fulfillment/internal/domain/status"
	"github.com/example/ec-fulfillment/internal/domain/value"
	"github.com/example/ec-fulfillment/internal/infrastructure/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var homeAddress = value.Address{Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}

func newTestQueryHandler(t *testing.T) (*Handler, *store.Memory, *customer.Customer) {
	t.Helper()
	backend := store.NewMemory()
	c, err := customer.New("alice@example.com", "Alice")
	require.NoError(t, err)
	seed(t, backend, func(ctx context.Context, tx store.Tx) error {
		return tx.Customers().Save(ctx, c)
	})
	return NewHandler(backend), backend, c
}

func seed(t *testing.T, backend *store.Memory, fn func(ctx context.Context, tx store.Tx) error) {
	t.Helper()
	require.NoError(t, backend.Do(context.Background(), fn))
}

func newOrder(t *testing.T, customerID, price string) *order.Order {
	t.Helper()
	item, err := order.NewItem("prod-1", "Widget", value.Qty(1), value.MustMoney(price, "USD"))
	require.NoError(t, err)
	o, err := order.New(customerID, []order.Item{item}, homeAddress, homeAddress)
	require.NoError(t, err)
	return o
}

// ============================================
// Product Query Tests
// ============================================

func TestHandler_GetProduct(t *testing.T) {
	handler, backend, _ := newTestQueryHandler(t)
	p, err := product.New("Widget", "", "W-1", value.MustMoney("10", "USD"))
	require.NoError(t, err)
	seed(t, backend, func(ctx context.Context, tx store.Tx) error {
		return tx.Products().Save(ctx, p)
	})

	found, err := handler.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", found.Name)

	_, err = handler.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, domainerr.ErrNotFound)
}

// ============================================
// Cart Query Tests
// ============================================

func TestHandler_GetCart_Active(t *testing.T) {
	handler, backend, c := newTestQueryHandler(t)
	crt, err := cart.New(c.ID)
	require.NoError(t, err)
	require.NoError(t, crt.AddItem("prod-1", value.Qty(2), value.MustMoney("4.50", "USD")))
	seed(t, backend, func(ctx context.Context, tx store.Tx) error {
		return tx.Carts().Save(ctx, crt)
	})

	view, err := handler.GetCart(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Equal(t, crt.ID, view.ID)
	assert.Len(t, view.Items, 1)
	assert.True(t, view.Subtotal.Equal(value.MustMoney("9", "USD")))
}

func TestHandler_GetCart_NoActiveCartIsEmpty(t *testing.T) {
	handler, backend, c := newTestQueryHandler(t)
	crt, err := cart.New(c.ID)
	require.NoError(t, err)
	require.NoError(t, crt.Abandon())
	seed(t, backend, func(ctx context.Context, tx store.Tx) error {
		return tx.Carts().Save(ctx, crt)
	})

	view, err := handler.GetCart(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Empty(t, view.ID)
	assert.Equal(t, status.CartActive, view.Status)
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
}

func TestHandler_GetCart_UnknownCustomer(t *testing.T) {
	handler, _, _ := newTestQueryHandler(t)

	_, err := handler.GetCart(context.Background(), "nobody")

	assert.ErrorIs(t, err, domainerr.ErrNotFound)
}

// ============================================
// Order Query Tests
// ============================================

func TestHandler_GetOrder(t *testing.T) {
	handler, backend, c := newTestQueryHandler(t)
	o := newOrder(t, c.ID, "10")
	seed(t, backend, func(ctx context.Context, tx store.Tx) error {
		return tx.Orders().Save(ctx, o)
	})

	found, err := handler.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, status.OrderPending, found.Status)

	_, err = handler.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, domainerr.ErrNotFound)
}

func TestHandler_ListOrders_NewestFirst(t *testing.T) {
	handler, backend, c := newTestQueryHandler(t)
	first := newOrder(t, c.ID, "10")
	second := newOrder(t, c.ID, "20")
	seed(t, backend, func(ctx context.Context, tx store.Tx) error {
		return tx.Orders().Save(ctx, first)
	})
	seed(t, backend, func(ctx context.Context, tx store.Tx) error {
		return tx.Orders().Save(ctx, second)
	})

	summaries, err := handler.ListOrders(context.Background(), c.ID)

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, second.ID, summaries[0].ID)
	assert.Equal(t, first.ID, summaries[1].ID)
	assert.Equal(t, 1, summaries[0].ItemCount)
}

func TestHandler_ListOrders_Empty(t *testing.T) {
	handler, _, c := newTestQueryHandler(t)

	summaries, err := handler.ListOrders(context.Background(), c.ID)

	require.NoError(t, err)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
}

// ============================================
// Customer Query Tests
// ============================================

func TestHandler_GetCustomer(t *testing.T) {
	handler, _, c := newTestQueryHandler(t)

	found, err := handler.GetCustomer(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", found.Email)
}
