package order

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/value"
)

const (
	EventOrderPlaced         = "OrderPlaced"
	EventOrderConfirmed      = "OrderConfirmed"
	EventOrderProcessing     = "OrderProcessingStarted"
	EventOrderPaid           = "OrderPaid"
	EventOrderPaymentFailed  = "OrderPaymentFailed"
	EventOrderShipped        = "OrderShipped"
	EventOrderDelivered      = "OrderDelivered"
	EventOrderCancelled      = "OrderCancelled"
	EventOrderRefunded       = "OrderRefunded"
	EventOrderAddressChanged = "OrderAddressChanged"
)

// OrderPlaced carries what the notifier needs to send a confirmation
// without reading the order store.
type OrderPlaced struct {
	OrderID         string        `json:"order_id"`
	CustomerID      string        `json:"customer_id"`
	CustomerEmail   string        `json:"customer_email"`
	CustomerName    string        `json:"customer_name"`
	Items           []Item        `json:"items"`
	Subtotal        value.Money   `json:"subtotal"`
	Tax             value.Money   `json:"tax"`
	Discount        value.Money   `json:"discount"`
	Total           value.Money   `json:"total"`
	ShippingAddress value.Address `json:"shipping_address"`
	PlacedAt        time.Time     `json:"placed_at"`
}

type OrderStatusChanged struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

type OrderPaid struct {
	OrderID       string      `json:"order_id"`
	PaymentID     string      `json:"payment_id"`
	TransactionID string      `json:"transaction_id"`
	Amount        value.Money `json:"amount"`
	PaidAt        time.Time   `json:"paid_at"`
}

type OrderPaymentFailed struct {
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id"`
	Reason    string    `json:"reason"`
	FailedAt  time.Time `json:"failed_at"`
}

type OrderShipped struct {
	OrderID   string    `json:"order_id"`
	Tracking  string    `json:"tracking"`
	ShippedAt time.Time `json:"shipped_at"`
}

type OrderCancelled struct {
	OrderID     string    `json:"order_id"`
	Reason      string    `json:"reason"`
	Restocked   []Item    `json:"restocked"`
	Refunded    bool      `json:"refunded"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type OrderAddressChanged struct {
	OrderID   string        `json:"order_id"`
	Kind      string        `json:"kind"`
	Address   value.Address `json:"address"`
	ChangedAt time.Time     `json:"changed_at"`
}

func Placed(o *Order, email, name string) OrderPlaced {
	return OrderPlaced{
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
		CustomerEmail:   email,
		CustomerName:    name,
		Items:           o.Items,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		Discount:        o.Discount,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		PlacedAt:        o.CreatedAt,
	}
}

func StatusChanged(o *Order) OrderStatusChanged {
	return OrderStatusChanged{OrderID: o.ID, Status: string(o.Status), ChangedAt: o.UpdatedAt}
}
