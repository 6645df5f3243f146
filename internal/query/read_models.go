package query

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/status"
	"github.com/example/ec-fulfillment/internal/domain/value"
)

// CartView is a customer's current cart. A customer without an active cart
// sees an empty one with no ID.
type CartView struct {
	ID         string      `json:"id,omitempty"`
	CustomerID string      `json:"customer_id"`
	Status     status.Cart `json:"status"`
	Items      []cart.Item `json:"items"`
	Subtotal   value.Money `json:"subtotal"`
}

func cartView(c *cart.Cart) *CartView {
	return &CartView{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		Status:     c.Status,
		Items:      c.Items,
		Subtotal:   c.Subtotal(),
	}
}

// OrderSummary is one row of a customer's order history.
type OrderSummary struct {
	ID        string       `json:"id"`
	Status    status.Order `json:"status"`
	ItemCount int          `json:"item_count"`
	Total     value.Money  `json:"total"`
	CreatedAt time.Time    `json:"created_at"`
}

func orderSummary(o *order.Order) OrderSummary {
	return OrderSummary{
		ID:        o.ID,
		Status:    o.Status,
		ItemCount: len(o.Items),
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
	}
}
