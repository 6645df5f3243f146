package order

import (
	"testing"

	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/domain/payment"
	"github.com/example/ec-fulfillment/internal/domain/status"
	"github.com/example/ec-fulfillment/internal/domain/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddress = value.Address{
	Line1:      "1 Main St",
	City:       "Springfield",
	PostalCode: "12345",
	Country:    "US",
}

func newTestItem(t *testing.T, productID string, qty int64, price string) Item {
	t.Helper()
	it, err := NewItem(productID, "Product "+productID, value.Qty(qty), value.MustMoney(price, "USD"))
	require.NoError(t, err)
	return it
}

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := New("cust-1", []Item{
		newTestItem(t, "p1", 2, "10.25"),
		newTestItem(t, "p2", 1, "4.50"),
	}, testAddress, testAddress)
	require.NoError(t, err)
	return o
}

func advance(t *testing.T, o *Order, to status.Order) {
	t.Helper()
	steps := map[status.Order]func() error{
		status.OrderConfirmed:  o.Confirm,
		status.OrderProcessing: o.StartProcessing,
		status.OrderShipped:    func() error { return o.Ship("TRK-1") },
		status.OrderDelivered:  o.Deliver,
	}
	path := []status.Order{status.OrderConfirmed, status.OrderProcessing, status.OrderShipped, status.OrderDelivered}
	for _, s := range path {
		require.NoError(t, steps[s]())
		if s == to {
			return
		}
	}
}

// ============================================
// Construction Tests
// ============================================

func TestNewItem_ComputesTotal(t *testing.T) {
	it := newTestItem(t, "p1", 3, "1.10")

	assert.Equal(t, "3.30 USD", it.TotalPrice.String())
}

func TestNewItem_Invalid(t *testing.T) {
	_, err := NewItem("", "x", value.Qty(1), value.MustMoney("1", "USD"))
	assert.ErrorIs(t, err, ErrInvalidItem)
	_, err = NewItem("p", "x", value.Qty(0), value.MustMoney("1", "USD"))
	assert.ErrorIs(t, err, ErrInvalidItem)
	_, err = NewItem("p", "x", value.Qty(1), value.MustMoney("0", "USD"))
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestNew_Totals(t *testing.T) {
	o := newTestOrder(t)

	assert.Equal(t, status.OrderPending, o.Status)
	assert.Equal(t, "25.00 USD", o.Subtotal.String())
	assert.Equal(t, "0.00 USD", o.Tax.String())
	assert.Equal(t, "0.00 USD", o.Discount.String())
	assert.Equal(t, "25.00 USD", o.Total.String())
	assert.NoError(t, o.Reconcile())
}

func TestNew_Validation(t *testing.T) {
	item := newTestItem(t, "p1", 1, "1")

	_, err := New("", []Item{item}, testAddress, testAddress)
	assert.ErrorIs(t, err, ErrInvalidCustomer)

	_, err = New("c", nil, testAddress, testAddress)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = New("c", []Item{item}, value.Address{}, testAddress)
	assert.ErrorIs(t, err, domainerr.ErrValidation)

	eur, err := NewItem("p2", "x", value.Qty(1), value.MustMoney("1", "EUR"))
	require.NoError(t, err)
	_, err = New("c", []Item{item, eur}, testAddress, testAddress)
	assert.ErrorIs(t, err, value.ErrCurrencyMismatch)
}

func TestNew_CopiesItems(t *testing.T) {
	items := []Item{newTestItem(t, "p1", 1, "1")}
	o, err := New("c", items, testAddress, testAddress)
	require.NoError(t, err)

	items[0].ProductID = "changed"

	assert.Equal(t, "p1", o.Items[0].ProductID)
}

// ============================================
// Totals Tests
// ============================================

func TestOrder_TaxAndDiscount(t *testing.T) {
	o := newTestOrder(t)

	require.NoError(t, o.SetTax(value.MustMoney("2.125", "USD")))
	require.NoError(t, o.ApplyDiscount(value.MustMoney("5", "USD")))

	assert.Equal(t, "2.13 USD", o.Tax.String())
	assert.Equal(t, "22.13 USD", o.Total.String())
	assert.NoError(t, o.Reconcile())
}

func TestOrder_DiscountBounds(t *testing.T) {
	o := newTestOrder(t)

	assert.ErrorIs(t, o.ApplyDiscount(value.MustMoney("25.01", "USD")), ErrInvalidDiscount)
	assert.ErrorIs(t, o.ApplyDiscount(value.MustMoney("-1", "USD")), ErrInvalidDiscount)
	assert.ErrorIs(t, o.ApplyDiscount(value.MustMoney("1", "EUR")), value.ErrCurrencyMismatch)

	require.NoError(t, o.ApplyDiscount(value.MustMoney("25", "USD")))
	assert.True(t, o.Total.IsZero())
}

func TestOrder_SetTax_Invalid(t *testing.T) {
	o := newTestOrder(t)

	assert.ErrorIs(t, o.SetTax(value.MustMoney("-1", "USD")), ErrNegativeTax)
	assert.ErrorIs(t, o.SetTax(value.MustMoney("1", "EUR")), value.ErrCurrencyMismatch)
	assert.Equal(t, "0.00 USD", o.Tax.String())
	assert.NoError(t, o.Reconcile())
}

func TestOrder_Reconcile_DetectsTampering(t *testing.T) {
	o := newTestOrder(t)
	o.Total = value.MustMoney("1", "USD")

	assert.ErrorIs(t, o.Reconcile(), ErrTotalsMismatch)

	o = newTestOrder(t)
	o.Items[0].TotalPrice = value.MustMoney("99", "USD")
	assert.ErrorIs(t, o.Reconcile(), ErrTotalsMismatch)
}

// ============================================
// Modification Window Tests
// ============================================

func TestOrder_ModifiableOnlyWhilePendingOrConfirmed(t *testing.T) {
	tests := []struct {
		name       string
		to         status.Order
		modifiable bool
	}{
		{"confirmed", status.OrderConfirmed, true},
		{"processing", status.OrderProcessing, false},
		{"shipped", status.OrderShipped, false},
		{"delivered", status.OrderDelivered, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrder(t)
			advance(t, o, tt.to)

			errs := []error{
				o.SetTax(value.MustMoney("1", "USD")),
				o.ApplyDiscount(value.MustMoney("1", "USD")),
				o.UpdateShippingAddress(testAddress),
				o.UpdateBillingAddress(testAddress),
			}
			for _, err := range errs {
				if tt.modifiable {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, ErrOrderNotModifiable)
					assert.ErrorIs(t, err, domainerr.ErrInvalidTransition)
				}
			}
		})
	}
}

func TestOrder_ProcessingRejectsAddressButCancels(t *testing.T) {
	o := newTestOrder(t)
	advance(t, o, status.OrderProcessing)

	err := o.UpdateShippingAddress(value.Address{Line1: "2 Elm", City: "X", PostalCode: "1", Country: "US"})
	assert.ErrorIs(t, err, domainerr.ErrInvalidTransition)
	assert.Equal(t, testAddress, o.ShippingAddress)

	require.NoError(t, o.Cancel(" customer request "))
	assert.Equal(t, status.OrderCancelled, o.Status)
	assert.Equal(t, "customer request", o.CancelReason)
}

// ============================================
// Lifecycle Tests
// ============================================

func TestOrder_FullLifecycle(t *testing.T) {
	o := newTestOrder(t)

	advance(t, o, status.OrderDelivered)

	assert.Equal(t, status.OrderDelivered, o.Status)
	assert.Equal(t, "TRK-1", o.Tracking)
	require.NotNil(t, o.ShippedAt)
	require.NotNil(t, o.DeliveredAt)
	assert.ErrorIs(t, o.Cancel("late"), domainerr.ErrInvalidTransition)
}

func TestOrder_SkippingStepsFails(t *testing.T) {
	o := newTestOrder(t)

	assert.ErrorIs(t, o.Ship("TRK"), domainerr.ErrInvalidTransition)
	assert.ErrorIs(t, o.Deliver(), domainerr.ErrInvalidTransition)
	assert.ErrorIs(t, o.StartProcessing(), domainerr.ErrInvalidTransition)
	assert.Equal(t, status.OrderPending, o.Status)
}

func TestOrder_ShipRequiresTracking(t *testing.T) {
	o := newTestOrder(t)
	advance(t, o, status.OrderProcessing)

	assert.ErrorIs(t, o.Ship(" "), ErrTrackingRequired)
	assert.Equal(t, status.OrderProcessing, o.Status)
}

func TestOrder_CancelledIsTerminal(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.Cancel(""))

	assert.ErrorIs(t, o.Confirm(), domainerr.ErrInvalidTransition)
	assert.ErrorIs(t, o.Cancel(""), domainerr.ErrInvalidTransition)
}

// ============================================
// Payment Tests
// ============================================

func TestOrder_AttachPayment(t *testing.T) {
	o := newTestOrder(t)

	p, err := payment.New(o.ID, o.Total, payment.MethodCard)
	require.NoError(t, err)
	require.NoError(t, o.AttachPayment(p))
	assert.Equal(t, p, o.Payment)

	other, err := payment.New(o.ID, value.MustMoney("1", "USD"), payment.MethodCard)
	require.NoError(t, err)
	assert.ErrorIs(t, o.AttachPayment(other), ErrPaymentMismatch)
	assert.ErrorIs(t, o.AttachPayment(nil), ErrNoPayment)
}

func TestOrder_AttachedPaymentLocksAmount(t *testing.T) {
	o := newTestOrder(t)
	p, err := payment.New(o.ID, o.Total, payment.MethodCard)
	require.NoError(t, err)
	require.NoError(t, o.AttachPayment(p))

	assert.ErrorIs(t, o.SetTax(value.MustMoney("1", "USD")), ErrAmountLocked)
	assert.ErrorIs(t, o.ApplyDiscount(value.MustMoney("1", "USD")), domainerr.ErrInvalidTransition)
	assert.True(t, o.Payment.Amount.Equal(o.Total))

	require.NoError(t, o.Payment.Fail("declined"))
	require.NoError(t, o.SetTax(value.MustMoney("1", "USD")))
	assert.Equal(t, "26.00 USD", o.Total.String())
}

func TestOrder_Clone_IsDeep(t *testing.T) {
	o := newTestOrder(t)
	p, err := payment.New(o.ID, o.Total, payment.MethodCard)
	require.NoError(t, err)
	require.NoError(t, o.AttachPayment(p))

	c := o.Clone()
	c.Items[0].ProductName = "changed"
	require.NoError(t, c.Payment.StartProcessing())

	assert.Equal(t, "Product p1", o.Items[0].ProductName)
	assert.Equal(t, status.PaymentPending, o.Payment.Status)
}
