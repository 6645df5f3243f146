package cart

import (
	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"github.com/example/ec-fulfillment/internal/domain/value"
)

// Service validates cart edits against the live catalog. It performs no
// I/O; callers load and save both aggregates.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// AddProductToCart adds qty of p at p's current price. Stock must cover the
// added qty; the merged line is checked again at checkout.
func (s *Service) AddProductToCart(c *Cart, p *product.Product, qty value.Quantity) error {
	if err := c.CheckModifiable(); err != nil {
		return err
	}
	if qty.IsZero() {
		return ErrInvalidQuantity
	}
	if err := checkSellable(p); err != nil {
		return err
	}

	if err := checkStock(p, qty); err != nil {
		return err
	}

	return c.AddItem(p.ID, qty, p.Price)
}

// UpdateItemQuantity replaces the line quantity for p.
func (s *Service) UpdateItemQuantity(c *Cart, p *product.Product, qty value.Quantity) error {
	if err := c.CheckModifiable(); err != nil {
		return err
	}
	if qty.IsZero() {
		return ErrInvalidQuantity
	}
	if _, ok := c.Item(p.ID); !ok {
		return ErrItemNotFound
	}
	if err := checkSellable(p); err != nil {
		return err
	}
	if err := checkStock(p, qty); err != nil {
		return err
	}

	return c.SetItemQuantity(p.ID, qty)
}

func (s *Service) RemoveItem(c *Cart, productID string) error {
	return c.RemoveItem(productID)
}

// checkSellable rejects every product that is not ACTIVE.
func checkSellable(p *product.Product) error {
	if !p.IsActive() {
		return product.ErrProductUnavailable
	}
	return nil
}

func checkStock(p *product.Product, want value.Quantity) error {
	if !p.HasStock(want) {
		return &domainerr.InsufficientStockError{
			ProductID: p.ID,
			Requested: want.Int64(),
			Available: p.Stock.Int64(),
		}
	}
	return nil
}
