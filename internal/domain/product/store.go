package product

import "context"

// Store persists products. FindByID returns ErrProductNotFound for an
// unknown id; Save bumps the version and fails with
// domainerr.ErrConcurrentModification on a stale one.
type Store interface {
	FindByID(ctx context.Context, id string) (*Product, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	Save(ctx context.Context, p *Product) error
}
