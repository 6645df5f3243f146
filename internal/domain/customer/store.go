package customer

import "context"

// Store persists customers and their password digests.
//
// GetPasswordHistory returns digests most recent first; the first entry is
// the current password. UpdatePassword prepends digest and keeps at most
// keep entries.
type Store interface {
	FindByID(ctx context.Context, id string) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	GetPasswordHistory(ctx context.Context, id string) ([]string, error)
	UpdatePassword(ctx context.Context, id, digest string, keep int) error
	Save(ctx context.Context, c *Customer) error
}
