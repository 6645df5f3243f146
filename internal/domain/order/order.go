package order

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/domain/payment"
	"github.com/example/ec-fulfillment/internal/domain/status"
	"github.com/example/ec-fulfillment/internal/domain/value"
)

const AggregateType = "Order"

var (
	ErrOrderNotFound      = fmt.Errorf("order %w", domainerr.ErrNotFound)
	ErrOrderNotModifiable = fmt.Errorf("%w: order can only be modified while PENDING or CONFIRMED", domainerr.ErrInvalidTransition)
	ErrEmptyOrder         = domainerr.Validationf("order must have at least one item")
	ErrInvalidCustomer    = domainerr.Validationf("customer id is required")
	ErrInvalidItem        = domainerr.Validationf("order item requires product, quantity and positive price")
	ErrNegativeTax        = domainerr.Validationf("tax must not be negative")
	ErrInvalidDiscount    = domainerr.Validationf("discount must be between zero and subtotal")
	ErrTrackingRequired   = domainerr.Validationf("tracking number is required")
	ErrTotalsMismatch     = domainerr.Validationf("order totals do not reconcile")
	ErrPaymentMismatch    = domainerr.Validationf("payment does not match order total")
	ErrNoPayment          = fmt.Errorf("payment %w", domainerr.ErrNotFound)
	ErrAmountLocked       = fmt.Errorf("%w: tax and discount are fixed once a payment is attached", domainerr.ErrInvalidTransition)
)

// Item is an immutable snapshot of a purchased line.
type Item struct {
	ProductID   string         `json:"product_id"`
	ProductName string         `json:"product_name"`
	Quantity    value.Quantity `json:"quantity"`
	UnitPrice   value.Money    `json:"unit_price"`
	TotalPrice  value.Money    `json:"total_price"`
}

func NewItem(productID, productName string, qty value.Quantity, unitPrice value.Money) (Item, error) {
	if strings.TrimSpace(productID) == "" || qty.IsZero() || !unitPrice.IsValid() || !unitPrice.IsPositive() {
		return Item{}, ErrInvalidItem
	}
	return Item{
		ProductID:   productID,
		ProductName: productName,
		Quantity:    qty,
		UnitPrice:   unitPrice,
		TotalPrice:  unitPrice.Times(qty),
	}, nil
}

type Order struct {
	aggregate.Base
	CustomerID      string           `json:"customer_id"`
	Items           []Item           `json:"items"`
	Status          status.Order     `json:"status"`
	Subtotal        value.Money      `json:"subtotal"`
	Tax             value.Money      `json:"tax"`
	Discount        value.Money      `json:"discount"`
	Total           value.Money      `json:"total"`
	ShippingAddress value.Address    `json:"shipping_address"`
	BillingAddress  value.Address    `json:"billing_address"`
	Tracking        string           `json:"tracking,omitempty"`
	Payment         *payment.Payment `json:"payment,omitempty"`
	CancelReason    string           `json:"cancel_reason,omitempty"`
	ShippedAt       *time.Time       `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time       `json:"delivered_at,omitempty"`
}

// New builds a PENDING order with zero tax and discount. All items must share
// one currency.
func New(customerID string, items []Item, shipping, billing value.Address) (*Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrInvalidCustomer
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	if err := shipping.Validate(); err != nil {
		return nil, fmt.Errorf("shipping: %w", err)
	}
	if err := billing.Validate(); err != nil {
		return nil, fmt.Errorf("billing: %w", err)
	}

	subtotal, err := sumItems(items)
	if err != nil {
		return nil, err
	}
	zero, err := value.ZeroMoney(subtotal.Currency())
	if err != nil {
		return nil, err
	}

	o := &Order{
		Base:            aggregate.NewBase(value.NewID()),
		CustomerID:      customerID,
		Items:           slices.Clone(items),
		Status:          status.OrderPending,
		Subtotal:        subtotal,
		Tax:             zero,
		Discount:        zero,
		ShippingAddress: shipping,
		BillingAddress:  billing,
	}
	if err := o.recompute(); err != nil {
		return nil, err
	}
	return o, nil
}

func sumItems(items []Item) (value.Money, error) {
	total := items[0].UnitPrice.Times(items[0].Quantity)
	for _, it := range items[1:] {
		next, err := total.Add(it.UnitPrice.Times(it.Quantity))
		if err != nil {
			return value.Money{}, err
		}
		total = next
	}
	return total, nil
}

func (o *Order) Currency() string { return o.Subtotal.Currency() }

func (o *Order) recompute() error {
	withTax, err := o.Subtotal.Add(o.Tax)
	if err != nil {
		return err
	}
	total, err := withTax.Sub(o.Discount)
	if err != nil {
		return err
	}
	o.Total = total
	return nil
}

// IsModifiable reports whether tax, discount and addresses may change.
func (o *Order) IsModifiable() bool {
	return o.Status == status.OrderPending || o.Status == status.OrderConfirmed
}

func (o *Order) checkModifiable() error {
	if !o.IsModifiable() {
		return fmt.Errorf("%w (status %s)", ErrOrderNotModifiable, o.Status)
	}
	return nil
}

// checkAmountOpen guards the total against drifting from an attached
// payment. A FAILED payment no longer pins the amount.
func (o *Order) checkAmountOpen() error {
	if err := o.checkModifiable(); err != nil {
		return err
	}
	if o.Payment != nil && o.Payment.Status != status.PaymentFailed {
		return ErrAmountLocked
	}
	return nil
}

func (o *Order) SetTax(tax value.Money) error {
	if err := o.checkAmountOpen(); err != nil {
		return err
	}
	if tax.IsNegative() {
		return ErrNegativeTax
	}
	prev := o.Tax
	o.Tax = tax
	if err := o.recompute(); err != nil {
		o.Tax = prev
		return err
	}
	o.Touch()
	return nil
}

// ApplyDiscount replaces the discount; it may not exceed the subtotal.
func (o *Order) ApplyDiscount(discount value.Money) error {
	if err := o.checkAmountOpen(); err != nil {
		return err
	}
	if discount.IsNegative() {
		return ErrInvalidDiscount
	}
	cmp, err := discount.Cmp(o.Subtotal)
	if err != nil {
		return err
	}
	if cmp > 0 {
		return ErrInvalidDiscount
	}
	o.Discount = discount
	if err := o.recompute(); err != nil {
		return err
	}
	o.Touch()
	return nil
}

func (o *Order) UpdateShippingAddress(a value.Address) error {
	if err := o.checkModifiable(); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return err
	}
	o.ShippingAddress = a
	o.Touch()
	return nil
}

func (o *Order) UpdateBillingAddress(a value.Address) error {
	if err := o.checkModifiable(); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return err
	}
	o.BillingAddress = a
	o.Touch()
	return nil
}

// AttachPayment links a payment authorized for the full order total.
func (o *Order) AttachPayment(p *payment.Payment) error {
	if p == nil {
		return ErrNoPayment
	}
	if p.OrderID != o.ID || !p.Amount.Equal(o.Total) {
		return fmt.Errorf("%w: payment %s for %s, order total %s", ErrPaymentMismatch, p.ID, p.Amount, o.Total)
	}
	o.Payment = p
	o.Touch()
	return nil
}

// Reconcile checks Subtotal = sum of item totals, each item total =
// price x quantity, Total = Subtotal + Tax - Discount and
// 0 <= Discount <= Subtotal.
func (o *Order) Reconcile() error {
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}
	for _, it := range o.Items {
		if !it.TotalPrice.Equal(it.UnitPrice.Times(it.Quantity)) {
			return fmt.Errorf("%w: item %s", ErrTotalsMismatch, it.ProductID)
		}
	}
	subtotal, err := sumItems(o.Items)
	if err != nil {
		return err
	}
	if !subtotal.Equal(o.Subtotal) {
		return fmt.Errorf("%w: subtotal %s, items sum to %s", ErrTotalsMismatch, o.Subtotal, subtotal)
	}
	if o.Tax.IsNegative() || o.Discount.IsNegative() {
		return ErrTotalsMismatch
	}
	if cmp, err := o.Discount.Cmp(o.Subtotal); err != nil || cmp > 0 {
		return fmt.Errorf("%w: discount exceeds subtotal", ErrTotalsMismatch)
	}
	withTax, err := o.Subtotal.Add(o.Tax)
	if err != nil {
		return err
	}
	expected, err := withTax.Sub(o.Discount)
	if err != nil {
		return err
	}
	if !expected.Equal(o.Total) {
		return fmt.Errorf("%w: total %s, expected %s", ErrTotalsMismatch, o.Total, expected)
	}
	return nil
}

func (o *Order) transition(to status.Order) error {
	next, err := status.OrderMachine.Transition(o.Status, to)
	if err != nil {
		return err
	}
	o.Status = next
	o.Touch()
	return nil
}

func (o *Order) Confirm() error         { return o.transition(status.OrderConfirmed) }
func (o *Order) StartProcessing() error { return o.transition(status.OrderProcessing) }

func (o *Order) Ship(tracking string) error {
	tracking = strings.TrimSpace(tracking)
	if tracking == "" {
		return ErrTrackingRequired
	}
	if err := o.transition(status.OrderShipped); err != nil {
		return err
	}
	o.Tracking = tracking
	shipped := o.UpdatedAt
	o.ShippedAt = &shipped
	return nil
}

func (o *Order) Deliver() error {
	if err := o.transition(status.OrderDelivered); err != nil {
		return err
	}
	delivered := o.UpdatedAt
	o.DeliveredAt = &delivered
	return nil
}

func (o *Order) Cancel(reason string) error {
	if err := o.transition(status.OrderCancelled); err != nil {
		return err
	}
	o.CancelReason = strings.TrimSpace(reason)
	return nil
}

func (o *Order) Clone() *Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	c.Payment = o.Payment.Clone()
	if o.ShippedAt != nil {
		t := *o.ShippedAt
		c.ShippedAt = &t
	}
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		c.DeliveredAt = &t
	}
	return &c
}
