package order

import "context"

// Store persists orders. FindByCustomerID returns newest first and an empty
// slice when the customer has none.
type Store interface {
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByCustomerID(ctx context.Context, customerID string) ([]*Order, error)
}
