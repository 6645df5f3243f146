package command

import "github.com/example/ec-fulfillment/internal/domain/value"

// Product Commands
type CreateProduct struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	SKU         string   `json:"sku"`
	Price       string   `json:"price"`
	Currency    string   `json:"currency"`
	Stock       int64    `json:"stock"`
	CategoryIDs []string `json:"category_ids"`
	Images      []string `json:"images"`
}

// AdjustStock adds Quantity, removes it, or sets stock to it depending on
// Mode.
type AdjustStock struct {
	ProductID string    `json:"product_id"`
	Mode      StockMode `json:"mode"`
	Quantity  int64     `json:"quantity"`
	Reason    string    `json:"reason"`
}

type StockMode string

const (
	StockAdd    StockMode = "add"
	StockRemove StockMode = "remove"
	StockSet    StockMode = "set"
)

type ChangePrice struct {
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
	Currency  string `json:"currency"`
}

// EditProduct renames and recategorizes a product. Empty fields are left
// unchanged.
type EditProduct struct {
	ProductID        string   `json:"product_id"`
	Name             string   `json:"name"`
	AddCategories    []string `json:"add_categories"`
	RemoveCategories []string `json:"remove_categories"`
}

type DiscontinueProduct struct {
	ProductID string `json:"product_id"`
}

// Cart Commands
type AddToCart struct {
	CustomerID string `json:"customer_id"`
	ProductID  string `json:"product_id"`
	Quantity   int64  `json:"quantity"`
}

type UpdateCartItem struct {
	CustomerID string `json:"customer_id"`
	ProductID  string `json:"product_id"`
	Quantity   int64  `json:"quantity"`
}

type RemoveFromCart struct {
	CustomerID string `json:"customer_id"`
	ProductID  string `json:"product_id"`
}

type ClearCart struct {
	CustomerID string `json:"customer_id"`
}

type AbandonCart struct {
	CustomerID string `json:"customer_id"`
}

// Order Commands
type PlaceOrder struct {
	CustomerID     string         `json:"customer_id"`
	BillingAddress *value.Address `json:"billing_address,omitempty"`
	PaymentMethod  string         `json:"payment_method"`
}

// AdvanceOrder moves an order to the next fulfillment step.
type AdvanceOrder struct {
	OrderID  string `json:"order_id"`
	Tracking string `json:"tracking,omitempty"`
}

type CancelOrder struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

type ChangeOrderAddress struct {
	OrderID string        `json:"order_id"`
	Kind    AddressKind   `json:"kind"`
	Address value.Address `json:"address"`
}

type AddressKind string

const (
	AddressShipping AddressKind = "shipping"
	AddressBilling  AddressKind = "billing"
)

// Payment Commands
type CapturePayment struct {
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id"`
}

type FailPayment struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// Customer Commands
type RegisterCustomer struct {
	Email           string         `json:"email"`
	Name            string         `json:"name"`
	Password        string         `json:"password"`
	ShippingAddress *value.Address `json:"shipping_address,omitempty"`
	BillingAddress  *value.Address `json:"billing_address,omitempty"`
}

type UpdateCustomerAddresses struct {
	CustomerID      string         `json:"customer_id"`
	ShippingAddress *value.Address `json:"shipping_address,omitempty"`
	BillingAddress  *value.Address `json:"billing_address,omitempty"`
}

type DeactivateCustomer struct {
	CustomerID string `json:"customer_id"`
}

type ChangePassword struct {
	CustomerID      string `json:"customer_id"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
