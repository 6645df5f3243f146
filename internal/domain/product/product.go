package product

import (
	"fmt"
	"slices"
	"strings"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/domain/status"
	"github.com/example/ec-fulfillment/internal/domain/value"
	"github.com/shopspring/decimal"
)

const AggregateType = "Product"

var (
	ErrProductNotFound    = fmt.Errorf("product %w", domainerr.ErrNotFound)
	ErrDuplicateSKU       = fmt.Errorf("sku %w", domainerr.ErrDuplicate)
	ErrInvalidName        = domainerr.Validationf("name is required")
	ErrInvalidSKU         = domainerr.Validationf("sku is required")
	ErrInvalidPrice       = domainerr.Validationf("price must be positive")
	ErrInvalidQuantity    = domainerr.Validationf("quantity must be positive")
	ErrInvalidCategory    = domainerr.Validationf("category id is required")
	ErrInvalidImage       = domainerr.Validationf("image url is required")
	ErrInvalidWeight      = domainerr.Validationf("weight must not be negative")
	ErrInvalidDimensions  = domainerr.Validationf("dimensions must not be negative")
	ErrProductUnavailable = domainerr.Validationf("product is not active")
)

// Dimensions are measured in centimetres.
type Dimensions struct {
	Length decimal.Decimal `json:"length"`
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
}

// Product is a catalog item and the single source of truth for its stock.
type Product struct {
	aggregate.Base
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Price       value.Money      `json:"price"`
	Stock       value.Quantity   `json:"stock"`
	CategoryIDs []string         `json:"category_ids"`
	Images      []string         `json:"images"`
	SKU         string           `json:"sku"`
	Status      status.Product   `json:"status"`
	Weight      *decimal.Decimal `json:"weight,omitempty"` // kilograms
	Dimensions  *Dimensions      `json:"dimensions,omitempty"`
}

// NormalizeSKU trims and upper-cases a SKU so uniqueness is case-insensitive.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// New creates an ACTIVE product with zero stock.
func New(name, description, sku string, price value.Money) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	sku = NormalizeSKU(sku)
	if sku == "" {
		return nil, ErrInvalidSKU
	}
	if !price.IsValid() || !price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	return &Product{
		Base:        aggregate.NewBase(value.NewID()),
		Name:        name,
		Description: description,
		Price:       price,
		SKU:         sku,
		Status:      status.ProductActive,
		CategoryIDs: []string{},
		Images:      []string{},
	}, nil
}

func (p *Product) IsActive() bool { return p.Status == status.ProductActive }

func (p *Product) HasStock(q value.Quantity) bool {
	return p.Stock.Cmp(q) >= 0
}

func (p *Product) AddStock(q value.Quantity) error {
	if q.IsZero() {
		return ErrInvalidQuantity
	}
	next, err := p.Stock.Add(q)
	if err != nil {
		return err
	}
	p.applyStock(next)
	return nil
}

// RemoveStock fails with an InsufficientStockError when q exceeds stock.
func (p *Product) RemoveStock(q value.Quantity) error {
	if q.IsZero() {
		return ErrInvalidQuantity
	}
	if !p.HasStock(q) {
		return &domainerr.InsufficientStockError{
			ProductID: p.ID,
			Requested: q.Int64(),
			Available: p.Stock.Int64(),
		}
	}
	next, err := p.Stock.Sub(q)
	if err != nil {
		return err
	}
	p.applyStock(next)
	return nil
}

func (p *Product) SetStock(q value.Quantity) {
	p.applyStock(q)
}

func (p *Product) applyStock(q value.Quantity) {
	p.Stock = q
	p.Status = status.DeriveProductStatus(p.Status, q.IsZero())
	p.Touch()
}

func (p *Product) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	p.Name = name
	p.Touch()
	return nil
}

func (p *Product) Describe(description string) {
	p.Description = description
	p.Touch()
}

// ChangePrice keeps the currency of the catalog; existing cart snapshots
// are unaffected until the item is added again.
func (p *Product) ChangePrice(price value.Money) error {
	if !price.IsValid() || !price.IsPositive() {
		return ErrInvalidPrice
	}
	if p.Price.IsValid() && p.Price.Currency() != price.Currency() {
		return fmt.Errorf("%w: %s to %s", value.ErrCurrencyMismatch, p.Price.Currency(), price.Currency())
	}
	p.Price = price
	p.Touch()
	return nil
}

func (p *Product) AssignCategory(categoryID string) error {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return ErrInvalidCategory
	}
	idx, found := slices.BinarySearch(p.CategoryIDs, categoryID)
	if found {
		return nil
	}
	p.CategoryIDs = slices.Insert(p.CategoryIDs, idx, categoryID)
	p.Touch()
	return nil
}

func (p *Product) RemoveCategory(categoryID string) {
	idx, found := slices.BinarySearch(p.CategoryIDs, categoryID)
	if !found {
		return
	}
	p.CategoryIDs = slices.Delete(p.CategoryIDs, idx, idx+1)
	p.Touch()
}

// SetImages replaces the ordered image list.
func (p *Product) SetImages(urls []string) error {
	for _, u := range urls {
		if strings.TrimSpace(u) == "" {
			return ErrInvalidImage
		}
	}
	p.Images = slices.Clone(urls)
	if p.Images == nil {
		p.Images = []string{}
	}
	p.Touch()
	return nil
}

func (p *Product) AddImage(url string) error {
	if strings.TrimSpace(url) == "" {
		return ErrInvalidImage
	}
	p.Images = append(p.Images, url)
	p.Touch()
	return nil
}

// SetWeight clears the weight when w is nil.
func (p *Product) SetWeight(w *decimal.Decimal) error {
	if w != nil && w.IsNegative() {
		return ErrInvalidWeight
	}
	p.Weight = w
	p.Touch()
	return nil
}

func (p *Product) SetDimensions(d *Dimensions) error {
	if d != nil && (d.Length.IsNegative() || d.Width.IsNegative() || d.Height.IsNegative()) {
		return ErrInvalidDimensions
	}
	p.Dimensions = d
	p.Touch()
	return nil
}

// Discontinue is terminal; the product is never physically deleted.
func (p *Product) Discontinue() error {
	next, err := status.ProductMachine.Transition(p.Status, status.ProductDiscontinued)
	if err != nil {
		return err
	}
	p.Status = next
	p.Touch()
	return nil
}

// Clone returns a deep copy.
func (p *Product) Clone() *Product {
	c := *p
	c.CategoryIDs = slices.Clone(p.CategoryIDs)
	c.Images = slices.Clone(p.Images)
	if p.Weight != nil {
		w := *p.Weight
		c.Weight = &w
	}
	if p.Dimensions != nil {
		d := *p.Dimensions
		c.Dimensions = &d
	}
	return &c
}
