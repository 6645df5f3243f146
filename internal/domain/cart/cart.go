package cart

import (
	"fmt"
	"slices"
	"strings"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/domain/status"
	"github.com/example/ec-fulfillment/internal/domain/value"
)

const AggregateType = "Cart"

var (
	ErrCartNotFound      = fmt.Errorf("cart %w", domainerr.ErrNotFound)
	ErrItemNotFound      = fmt.Errorf("cart item %w", domainerr.ErrNotFound)
	ErrCartNotModifiable = fmt.Errorf("%w: cart is not active", domainerr.ErrInvalidTransition)
	ErrEmptyCart         = domainerr.Validationf("cart is empty")
	ErrInvalidCustomer   = domainerr.Validationf("customer id is required")
	ErrInvalidProductID  = domainerr.Validationf("product id is required")
	ErrInvalidQuantity   = domainerr.Validationf("quantity must be positive")
	ErrInvalidPrice      = domainerr.Validationf("unit price must be positive")
)

// Item is one cart line. UnitPrice is the catalog price captured when the
// product was last added.
type Item struct {
	ProductID string         `json:"product_id"`
	Quantity  value.Quantity `json:"quantity"`
	UnitPrice value.Money    `json:"unit_price"`
}

func (i Item) Total() value.Money {
	return i.UnitPrice.Times(i.Quantity)
}

// Cart holds a customer's in-progress selection, at most one line per product.
type Cart struct {
	aggregate.Base
	CustomerID string      `json:"customer_id"`
	Items      []Item      `json:"items"`
	Status     status.Cart `json:"status"`
}

func New(customerID string) (*Cart, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, ErrInvalidCustomer
	}
	return &Cart{
		Base:       aggregate.NewBase(value.NewID()),
		CustomerID: customerID,
		Items:      []Item{},
		Status:     status.CartActive,
	}, nil
}

func (c *Cart) IsActive() bool { return c.Status == status.CartActive }
func (c *Cart) IsEmpty() bool  { return len(c.Items) == 0 }

// CheckModifiable fails unless the cart is ACTIVE.
func (c *Cart) CheckModifiable() error {
	if !c.IsActive() {
		return fmt.Errorf("%w (%s)", ErrCartNotModifiable, c.Status)
	}
	return nil
}

func (c *Cart) indexOf(productID string) int {
	return slices.IndexFunc(c.Items, func(i Item) bool { return i.ProductID == productID })
}

// Item returns the line for productID.
func (c *Cart) Item(productID string) (Item, bool) {
	idx := c.indexOf(productID)
	if idx < 0 {
		return Item{}, false
	}
	return c.Items[idx], true
}

func validateLine(productID string, qty value.Quantity, price value.Money) error {
	if strings.TrimSpace(productID) == "" {
		return ErrInvalidProductID
	}
	if qty.IsZero() {
		return ErrInvalidQuantity
	}
	if !price.IsValid() || !price.IsPositive() {
		return ErrInvalidPrice
	}
	return nil
}

func (c *Cart) checkCurrency(productID string, price value.Money) error {
	for _, it := range c.Items {
		if it.ProductID != productID && it.UnitPrice.Currency() != price.Currency() {
			return fmt.Errorf("%w: cart holds %s, item priced in %s",
				value.ErrCurrencyMismatch, it.UnitPrice.Currency(), price.Currency())
		}
	}
	return nil
}

// AddItem sums the quantity into an existing line and refreshes its price
// snapshot, or appends a new line.
func (c *Cart) AddItem(productID string, qty value.Quantity, unitPrice value.Money) error {
	if err := c.CheckModifiable(); err != nil {
		return err
	}
	if err := validateLine(productID, qty, unitPrice); err != nil {
		return err
	}
	if err := c.checkCurrency(productID, unitPrice); err != nil {
		return err
	}

	if idx := c.indexOf(productID); idx >= 0 {
		sum, err := c.Items[idx].Quantity.Add(qty)
		if err != nil {
			return err
		}
		c.Items[idx].Quantity = sum
		c.Items[idx].UnitPrice = unitPrice
	} else {
		c.Items = append(c.Items, Item{ProductID: productID, Quantity: qty, UnitPrice: unitPrice})
	}
	c.Touch()
	return nil
}

// SetItemQuantity replaces the quantity of an existing line.
func (c *Cart) SetItemQuantity(productID string, qty value.Quantity) error {
	if err := c.CheckModifiable(); err != nil {
		return err
	}
	if qty.IsZero() {
		return ErrInvalidQuantity
	}
	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrItemNotFound
	}
	c.Items[idx].Quantity = qty
	c.Touch()
	return nil
}

// RemoveItem is a no-op when the product is not in the cart.
func (c *Cart) RemoveItem(productID string) error {
	if err := c.CheckModifiable(); err != nil {
		return err
	}
	idx := c.indexOf(productID)
	if idx < 0 {
		return nil
	}
	c.Items = slices.Delete(c.Items, idx, idx+1)
	c.Touch()
	return nil
}

func (c *Cart) Clear() error {
	if err := c.CheckModifiable(); err != nil {
		return err
	}
	c.Items = []Item{}
	c.Touch()
	return nil
}

// Subtotal sums the line totals. An empty cart has no currency and yields
// the zero Money.
func (c *Cart) Subtotal() value.Money {
	var total value.Money
	for i, it := range c.Items {
		if i == 0 {
			total = it.Total()
			continue
		}
		// lines share one currency, enforced by AddItem
		total, _ = total.Add(it.Total())
	}
	return total
}

func (c *Cart) transition(to status.Cart) error {
	next, err := status.CartMachine.Transition(c.Status, to)
	if err != nil {
		return err
	}
	c.Status = next
	c.Touch()
	return nil
}

func (c *Cart) Abandon() error { return c.transition(status.CartAbandoned) }
func (c *Cart) Convert() error { return c.transition(status.CartConverted) }
func (c *Cart) Expire() error  { return c.transition(status.CartExpired) }

func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = slices.Clone(c.Items)
	return &cp
}
