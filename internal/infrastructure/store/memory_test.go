package store

import (
	"context"
	"errors"
	"testing"

	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/customer"
	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"github.com/example/ec-fulfillment/internal/domain/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newTestProduct(t *testing.T, sku string) *product.Product {
	t.Helper()
	p, err := product.New("Widget", "", sku, value.MustMoney("10", "USD"))
	require.NoError(t, err)
	return p
}

func newTestCustomer(t *testing.T, email string) *customer.Customer {
	t.Helper()
	c, err := customer.New(email, "Alice")
	require.NoError(t, err)
	return c
}

func saveProduct(t *testing.T, m *Memory, p *product.Product) {
	t.Helper()
	require.NoError(t, m.Do(context.Background(), func(ctx context.Context, tx Tx) error {
		return tx.Products().Save(ctx, p)
	}))
}

// ============================================
// Unit of Work Tests
// ============================================

func TestMemory_Do_CommitsOnSuccess(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	p := newTestProduct(t, "w-1")

	saveProduct(t, m, p)
	assert.Equal(t, 1, p.Version)

	err := m.Do(ctx, func(ctx context.Context, tx Tx) error {
		got, err := tx.Products().FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "W-1", got.SKU)
		assert.Equal(t, 1, got.Version)
		return nil
	})
	require.NoError(t, err)
}

func TestMemory_Do_RollbackDiscardsWritesAndEvents(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	p := newTestProduct(t, "w-1")

	err := m.Do(ctx, func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.Products().Save(ctx, p))
		_, err := tx.Events().Append(ctx, p.ID, product.AggregateType, product.EventProductCreated, map[string]string{"id": p.ID})
		require.NoError(t, err)
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	err = m.Do(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.Products().FindByID(ctx, p.ID)
		return err
	})
	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.Empty(t, m.GetAllEvents())
}

func TestMemory_Do_ReadsOwnWrites(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	p := newTestProduct(t, "w-1")

	err := m.Do(ctx, func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.Products().Save(ctx, p))
		exists, err := tx.Products().ExistsBySKU(ctx, " w-1 ")
		require.NoError(t, err)
		assert.True(t, exists)
		return nil
	})
	require.NoError(t, err)
}

func TestMemory_Do_CanceledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := m.Do(ctx, func(context.Context, Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

// ============================================
// Optimistic Version Tests
// ============================================

func TestMemory_Save_StaleVersionFails(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	p := newTestProduct(t, "w-1")
	saveProduct(t, m, p)

	stale := p.Clone()
	require.NoError(t, p.AddStock(value.Qty(5)))
	saveProduct(t, m, p)

	require.NoError(t, stale.AddStock(value.Qty(1)))
	err := m.Do(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Products().Save(ctx, stale)
	})
	assert.ErrorIs(t, err, domainerr.ErrConcurrentModification)
}

// ============================================
// Uniqueness Tests
// ============================================

func TestMemory_Products_DuplicateSKU(t *testing.T) {
	m := NewMemory()
	saveProduct(t, m, newTestProduct(t, "w-1"))

	err := m.Do(context.Background(), func(ctx context.Context, tx Tx) error {
		return tx.Products().Save(ctx, newTestProduct(t, "W-1"))
	})
	assert.ErrorIs(t, err, product.ErrDuplicateSKU)
	assert.ErrorIs(t, err, domainerr.ErrDuplicate)
}

func TestMemory_Customers_DuplicateEmail(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Do(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Customers().Save(ctx, newTestCustomer(t, "alice@example.com"))
	}))

	err := m.Do(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Customers().Save(ctx, newTestCustomer(t, "ALICE@example.com"))
	})
	assert.ErrorIs(t, err, customer.ErrEmailTaken)
}

func TestMemory_Customers_FindByEmailNormalizes(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	c := newTestCustomer(t, "alice@example.com")

	err := m.Do(ctx, func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.Customers().Save(ctx, c))
		got, err := tx.Customers().FindByEmail(ctx, "  Alice@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
		return nil
	})
	require.NoError(t, err)
}

// ============================================
// Lookup Tests
// ============================================

func TestMemory_Carts_FindByCustomerIDReturnsLatest(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first, err := cart.New("cust-1")
	require.NoError(t, err)
	require.NoError(t, first.Abandon())
	second, err := cart.New("cust-1")
	require.NoError(t, err)

	require.NoError(t, m.Do(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Carts().Save(ctx, first)
	}))
	require.NoError(t, m.Do(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Carts().Save(ctx, second)
	}))

	err = m.Do(ctx, func(ctx context.Context, tx Tx) error {
		got, err := tx.Carts().FindByCustomerID(ctx, "cust-1")
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)

		_, err = tx.Carts().FindByCustomerID(ctx, "cust-2")
		assert.ErrorIs(t, err, cart.ErrCartNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestMemory_Orders_FindByCustomerIDNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	addr := value.Address{Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}

	newOrder := func() *order.Order {
		item, err := order.NewItem("p-1", "Widget", value.Qty(1), value.MustMoney("10", "USD"))
		require.NoError(t, err)
		o, err := order.New("cust-1", []order.Item{item}, addr, addr)
		require.NoError(t, err)
		return o
	}
	older, newer := newOrder(), newOrder()

	require.NoError(t, m.Do(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Orders().Save(ctx, older); err != nil {
			return err
		}
		return tx.Orders().Save(ctx, newer)
	}))

	err := m.Do(ctx, func(ctx context.Context, tx Tx) error {
		got, err := tx.Orders().FindByCustomerID(ctx, "cust-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, newer.ID, got[0].ID)
		assert.Equal(t, older.ID, got[1].ID)

		none, err := tx.Orders().FindByCustomerID(ctx, "cust-2")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
		return nil
	})
	require.NoError(t, err)
}

func TestMemory_FindReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	p := newTestProduct(t, "w-1")
	saveProduct(t, m, p)

	require.NoError(t, m.Do(ctx, func(ctx context.Context, tx Tx) error {
		got, err := tx.Products().FindByID(ctx, p.ID)
		require.NoError(t, err)
		got.Name = "changed"
		return nil
	}))

	require.NoError(t, m.Do(ctx, func(ctx context.Context, tx Tx) error {
		got, err := tx.Products().FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Widget", got.Name)
		return nil
	}))
}

// ============================================
// Password History Tests
// ============================================

func TestMemory_Customers_PasswordHistoryMostRecentFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	c := newTestCustomer(t, "alice@example.com")

	err := m.Do(ctx, func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.Customers().Save(ctx, c))
		for _, d := range []string{"d1", "d2", "d3", "d4"} {
			require.NoError(t, tx.Customers().UpdatePassword(ctx, c.ID, d, 3))
		}
		hist, err := tx.Customers().GetPasswordHistory(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"d4", "d3", "d2"}, hist)
		return nil
	})
	require.NoError(t, err)
}

func TestMemory_Customers_PasswordHistoryUnknownCustomer(t *testing.T) {
	m := NewMemory()
	err := m.Do(context.Background(), func(ctx context.Context, tx Tx) error {
		_, err := tx.Customers().GetPasswordHistory(ctx, "missing")
		assert.ErrorIs(t, err, customer.ErrCustomerNotFound)
		return tx.Customers().UpdatePassword(ctx, "missing", "d", 6)
	})
	assert.ErrorIs(t, err, customer.ErrCustomerNotFound)
}

func TestPrependCapped(t *testing.T) {
	tests := []struct {
		name string
		hist []string
		keep int
		want []string
	}{
		{"empty history", nil, 6, []string{"new"}},
		{"under cap", []string{"a"}, 6, []string{"new", "a"}},
		{"at cap", []string{"a", "b"}, 2, []string{"new", "a"}},
		{"no cap", []string{"a", "b"}, 0, []string{"new", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, prependCapped(tt.hist, "new", tt.keep))
		})
	}
}

// ============================================
// Outbox Tests
// ============================================

func TestMemory_Outbox_PendingAndMarkPublished(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Do(ctx, func(ctx context.Context, tx Tx) error {
		for i := 0; i < 3; i++ {
			if _, err := tx.Events().Append(ctx, "agg-1", "Test", "Happened", map[string]int{"n": i}); err != nil {
				return err
			}
		}
		return nil
	}))

	all := m.GetAllEvents()
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].Version, all[1].Version, all[2].Version})

	pending, err := m.Pending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, all[0].ID, pending[0].ID)

	require.NoError(t, m.MarkPublished(ctx, []string{pending[0].ID, pending[1].ID}))

	pending, err = m.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, all[2].ID, pending[0].ID)
}

func TestPending_NonPositiveLimitReturnsAll(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Do(ctx, func(ctx context.Context, tx Tx) error {
		for i := 0; i < 3; i++ {
			if _, err := tx.Events().Append(ctx, "agg-1", "Test", "Happened", nil); err != nil {
				return err
			}
		}
		return nil
	}))

	for _, limit := range []int{0, -1} {
		pending, err := m.Pending(ctx, limit)
		require.NoError(t, err)
		assert.Len(t, pending, 3)
	}

	assert.Nil(t, sqlLimit(0))
	assert.Nil(t, sqlLimit(-5))
	assert.Equal(t, 25, sqlLimit(25))
}

func TestMemory_Events_VersionContinuesAcrossUnits(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, m.Do(ctx, func(ctx context.Context, tx Tx) error {
			_, err := tx.Events().Append(ctx, "agg-1", "Test", "Happened", nil)
			return err
		}))
	}

	all := m.GetAllEvents()
	require.Len(t, all, 2)
	assert.Equal(t, 2, all[1].Version)
}
