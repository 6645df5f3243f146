package customer

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/domain/value"
)

const AggregateType = "Customer"

var (
	ErrCustomerNotFound = fmt.Errorf("customer %w", domainerr.ErrNotFound)
	ErrEmailTaken       = fmt.Errorf("email %w", domainerr.ErrDuplicate)
	ErrInvalidEmail     = domainerr.Validationf("a valid email is required")
	ErrInvalidName      = domainerr.Validationf("name is required")
	ErrCustomerInactive = fmt.Errorf("%w: customer account is deactivated", domainerr.ErrInvalidTransition)
)

type Customer struct {
	aggregate.Base
	Email           string         `json:"email"`
	Name            string         `json:"name"`
	Active          bool           `json:"active"`
	ShippingAddress *value.Address `json:"shipping_address,omitempty"`
	BillingAddress  *value.Address `json:"billing_address,omitempty"`
}

// NormalizeEmail trims and lower-cases an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func New(email, name string) (*Customer, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, ErrInvalidEmail
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	return &Customer{
		Base:   aggregate.NewBase(value.NewID()),
		Email:  email,
		Name:   name,
		Active: true,
	}, nil
}

func (c *Customer) Deactivate() {
	c.Active = false
	c.Touch()
}

func (c *Customer) Activate() {
	c.Active = true
	c.Touch()
}

// SetShippingAddress clears the address when a is nil.
func (c *Customer) SetShippingAddress(a *value.Address) error {
	if a != nil {
		if err := a.Validate(); err != nil {
			return err
		}
		cp := *a
		a = &cp
	}
	c.ShippingAddress = a
	c.Touch()
	return nil
}

func (c *Customer) SetBillingAddress(a *value.Address) error {
	if a != nil {
		if err := a.Validate(); err != nil {
			return err
		}
		cp := *a
		a = &cp
	}
	c.BillingAddress = a
	c.Touch()
	return nil
}

func (c *Customer) Clone() *Customer {
	cp := *c
	if c.ShippingAddress != nil {
		a := *c.ShippingAddress
		cp.ShippingAddress = &a
	}
	if c.BillingAddress != nil {
		a := *c.BillingAddress
		cp.BillingAddress = &a
	}
	return &cp
}
