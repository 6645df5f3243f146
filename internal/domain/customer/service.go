package customer

import (
	"context"
	"errors"

	"github.com/example/ec-fulfillment/internal/domain/value"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register creates an active customer; the email must be unused.
func (s *Service) Register(ctx context.Context, email, name string) (*Customer, error) {
	c, err := New(email, name)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindByEmail(ctx, c.Email)
	switch {
	case err == nil && existing != nil:
		return nil, ErrEmailTaken
	case err != nil && !errors.Is(err, ErrCustomerNotFound):
		return nil, err
	}

	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Customer, error) {
	return s.store.FindByID(ctx, id)
}

// UpdateAddresses replaces both profile addresses; nil clears one.
func (s *Service) UpdateAddresses(ctx context.Context, id string, shipping, billing *value.Address) (*Customer, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.SetShippingAddress(shipping); err != nil {
		return nil, err
	}
	if err := c.SetBillingAddress(billing); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (*Customer, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Deactivate()
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
