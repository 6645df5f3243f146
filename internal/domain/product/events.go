package product

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/status"
	"github.com/example/ec-fulfillment/internal/domain/value"
)

const (
	EventProductCreated       = "ProductCreated"
	EventProductStockChanged  = "ProductStockChanged"
	EventProductPriceChanged  = "ProductPriceChanged"
	EventProductDiscontinued  = "ProductDiscontinued"
	EventProductCatalogEdited = "ProductCatalogEdited"
)

type ProductCreated struct {
	ProductID string         `json:"product_id"`
	SKU       string         `json:"sku"`
	Name      string         `json:"name"`
	Price     value.Money    `json:"price"`
	Stock     value.Quantity `json:"stock"`
	CreatedAt time.Time      `json:"created_at"`
}

// ProductStockChanged is emitted for every stock mutation, including
// reservations made by checkout (Reason "checkout", OrderID set).
type ProductStockChanged struct {
	ProductID string         `json:"product_id"`
	Previous  value.Quantity `json:"previous"`
	Current   value.Quantity `json:"current"`
	Status    status.Product `json:"status"`
	Reason    string         `json:"reason"`
	OrderID   string         `json:"order_id,omitempty"`
	ChangedAt time.Time      `json:"changed_at"`
}

type ProductPriceChanged struct {
	ProductID string      `json:"product_id"`
	Price     value.Money `json:"price"`
	ChangedAt time.Time   `json:"changed_at"`
}

type ProductDiscontinued struct {
	ProductID      string    `json:"product_id"`
	DiscontinuedAt time.Time `json:"discontinued_at"`
}

type ProductCatalogEdited struct {
	ProductID   string    `json:"product_id"`
	Name        string    `json:"name"`
	CategoryIDs []string  `json:"category_ids"`
	EditedAt    time.Time `json:"edited_at"`
}

// StockChanged builds the event for a stock mutation from previous.
func StockChanged(p *Product, previous value.Quantity, reason, orderID string) ProductStockChanged {
	return ProductStockChanged{
		ProductID: p.ID,
		Previous:  previous,
		Current:   p.Stock,
		Status:    p.Status,
		Reason:    reason,
		OrderID:   orderID,
		ChangedAt: p.UpdatedAt,
	}
}
