package cart

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/value"
)

const (
	EventItemAdded     = "ItemAddedToCart"
	EventItemUpdated   = "CartItemQuantityChanged"
	EventItemRemoved   = "ItemRemovedFromCart"
	EventCartCleared   = "CartCleared"
	EventCartConverted = "CartConverted"
	EventCartAbandoned = "CartAbandoned"
)

type ItemAddedToCart struct {
	CartID       string         `json:"cart_id"`
	CustomerID   string         `json:"customer_id"`
	ProductID    string         `json:"product_id"`
	Quantity     value.Quantity `json:"quantity"`
	LineQuantity value.Quantity `json:"line_quantity"`
	UnitPrice    value.Money    `json:"unit_price"`
	AddedAt      time.Time      `json:"added_at"`
}

type CartItemQuantityChanged struct {
	CartID     string         `json:"cart_id"`
	CustomerID string         `json:"customer_id"`
	ProductID  string         `json:"product_id"`
	Quantity   value.Quantity `json:"quantity"`
	ChangedAt  time.Time      `json:"changed_at"`
}

type ItemRemovedFromCart struct {
	CartID     string    `json:"cart_id"`
	CustomerID string    `json:"customer_id"`
	ProductID  string    `json:"product_id"`
	RemovedAt  time.Time `json:"removed_at"`
}

type CartCleared struct {
	CartID     string    `json:"cart_id"`
	CustomerID string    `json:"customer_id"`
	ClearedAt  time.Time `json:"cleared_at"`
}

type CartConverted struct {
	CartID      string    `json:"cart_id"`
	CustomerID  string    `json:"customer_id"`
	OrderID     string    `json:"order_id"`
	ConvertedAt time.Time `json:"converted_at"`
}

type CartAbandoned struct {
	CartID      string    `json:"cart_id"`
	CustomerID  string    `json:"customer_id"`
	AbandonedAt time.Time `json:"abandoned_at"`
}
