package cart

import "context"

// Store persists carts. FindByCustomerID returns the customer's most
// recently created cart, whatever its status, or ErrCartNotFound.
type Store interface {
	FindByCustomerID(ctx context.Context, customerID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
}
