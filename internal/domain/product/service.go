package product

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/value"
)

// Service applies catalog and stock mutations through a Store.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type CreateInput struct {
	Name         string
	Description  string
	SKU          string
	Price        value.Money
	InitialStock value.Quantity
	CategoryIDs  []string
	Images       []string
}

// Create rejects a SKU that already exists, ignoring case.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	p, err := New(in.Name, in.Description, in.SKU, in.Price)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.ExistsBySKU(ctx, p.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateSKU
	}

	for _, id := range in.CategoryIDs {
		if err := p.AssignCategory(id); err != nil {
			return nil, err
		}
	}
	if len(in.Images) > 0 {
		if err := p.SetImages(in.Images); err != nil {
			return nil, err
		}
	}
	if !in.InitialStock.IsZero() {
		p.SetStock(in.InitialStock)
	}

	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*Product) error) (*Product, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) AddStock(ctx context.Context, id string, q value.Quantity) (*Product, error) {
	return s.mutate(ctx, id, func(p *Product) error { return p.AddStock(q) })
}

func (s *Service) RemoveStock(ctx context.Context, id string, q value.Quantity) (*Product, error) {
	return s.mutate(ctx, id, func(p *Product) error { return p.RemoveStock(q) })
}

func (s *Service) SetStock(ctx context.Context, id string, q value.Quantity) (*Product, error) {
	return s.mutate(ctx, id, func(p *Product) error {
		p.SetStock(q)
		return nil
	})
}

func (s *Service) ChangePrice(ctx context.Context, id string, price value.Money) (*Product, error) {
	return s.mutate(ctx, id, func(p *Product) error { return p.ChangePrice(price) })
}

func (s *Service) Rename(ctx context.Context, id, name string) (*Product, error) {
	return s.mutate(ctx, id, func(p *Product) error { return p.Rename(name) })
}

func (s *Service) AssignCategory(ctx context.Context, id, categoryID string) (*Product, error) {
	return s.mutate(ctx, id, func(p *Product) error { return p.AssignCategory(categoryID) })
}

func (s *Service) RemoveCategory(ctx context.Context, id, categoryID string) (*Product, error) {
	return s.mutate(ctx, id, func(p *Product) error {
		p.RemoveCategory(categoryID)
		return nil
	})
}

func (s *Service) Discontinue(ctx context.Context, id string) (*Product, error) {
	return s.mutate(ctx, id, func(p *Product) error { return p.Discontinue() })
}
