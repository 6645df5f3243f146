package status

// Cart lifecycle.
type Cart string

const (
	CartActive    Cart = "ACTIVE"
	CartAbandoned Cart = "ABANDONED"
	CartConverted Cart = "CONVERTED"
	CartExpired   Cart = "EXPIRED"
)

var CartMachine = newMachine("cart", map[Cart][]Cart{
	CartActive:    {CartAbandoned, CartConverted, CartExpired},
	CartAbandoned: {},
	CartConverted: {},
	CartExpired:   {},
})

// Product lifecycle. ACTIVE and OUT_OF_STOCK follow the stock level.
type Product string

const (
	ProductActive       Product = "ACTIVE"
	ProductOutOfStock   Product = "OUT_OF_STOCK"
	ProductDiscontinued Product = "DISCONTINUED"
)

var ProductMachine = newMachine("product", map[Product][]Product{
	ProductActive:       {ProductOutOfStock, ProductDiscontinued},
	ProductOutOfStock:   {ProductActive, ProductDiscontinued},
	ProductDiscontinued: {},
})

// DeriveProductStatus returns the status implied by a stock level.
// DISCONTINUED is never left.
func DeriveProductStatus(current Product, stockIsZero bool) Product {
	switch {
	case current == ProductActive && stockIsZero:
		return ProductOutOfStock
	case current == ProductOutOfStock && !stockIsZero:
		return ProductActive
	}
	return current
}

// Order lifecycle.
type Order string

const (
	OrderPending    Order = "PENDING"
	OrderConfirmed  Order = "CONFIRMED"
	OrderProcessing Order = "PROCESSING"
	OrderShipped    Order = "SHIPPED"
	OrderDelivered  Order = "DELIVERED"
	OrderCancelled  Order = "CANCELLED"
)

var OrderMachine = newMachine("order", map[Order][]Order{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {},
	OrderCancelled:  {},
})

// Payment lifecycle.
type Payment string

const (
	PaymentPending    Payment = "PENDING"
	PaymentProcessing Payment = "PROCESSING"
	PaymentCompleted  Payment = "COMPLETED"
	PaymentFailed     Payment = "FAILED"
	PaymentRefunded   Payment = "REFUNDED"
)

var PaymentMachine = newMachine("payment", map[Payment][]Payment{
	PaymentPending:    {PaymentProcessing, PaymentFailed},
	PaymentProcessing: {PaymentCompleted, PaymentFailed},
	PaymentCompleted:  {PaymentRefunded},
	PaymentFailed:     {},
	PaymentRefunded:   {},
})
