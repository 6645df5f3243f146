// Package checkout converts a customer's active cart into an order while
// reserving stock, all inside one unit of work.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/customer"
	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/payment"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"github.com/example/ec-fulfillment/internal/domain/value"
	"github.com/example/ec-fulfillment/internal/infrastructure/store"
	"github.com/example/ec-fulfillment/internal/lock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ReasonCheckout marks stock changes made by a checkout.
const ReasonCheckout = "checkout"

var ErrShippingAddressMissing = domainerr.Validationf("customer has no shipping address")

type Request struct {
	CustomerID string
	// BillingAddress overrides the profile billing address when set.
	BillingAddress *value.Address
	// PaymentMethod defaults to payment.DefaultMethod when empty.
	PaymentMethod string
}

type Orchestrator struct {
	uow        store.UnitOfWork
	tax        TaxPolicy
	discount   DiscountPolicy
	authorizer payment.Authorizer
	locker     lock.Locker
	logger     *zap.Logger
	tracer     trace.Tracer
}

type Option func(*Orchestrator)

func WithTaxPolicy(p TaxPolicy) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.tax = p
		}
	}
}

func WithDiscountPolicy(p DiscountPolicy) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.discount = p
		}
	}
}

func WithAuthorizer(a payment.Authorizer) Option {
	return func(o *Orchestrator) {
		if a != nil {
			o.authorizer = a
		}
	}
}

// WithLocker serializes checkouts of one customer across callers sharing l.
func WithLocker(l lock.Locker) Option {
	return func(o *Orchestrator) { o.locker = l }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func NewOrchestrator(uow store.UnitOfWork, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		uow:        uow,
		tax:        NoTax{},
		discount:   NoDiscount{},
		authorizer: payment.NoopAuthorizer{},
		logger:     zap.NewNop(),
		tracer:     otel.Tracer("ec-fulfillment/checkout"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Checkout turns the customer's cart into a PENDING order. Stock of every
// line is reserved, the order is saved and the cart is converted; any failure
// leaves all three untouched.
func (o *Orchestrator) Checkout(ctx context.Context, req Request) (_ *order.Order, err error) {
	ctx, span := o.tracer.Start(ctx, "checkout.Checkout",
		trace.WithAttributes(attribute.String("customer.id", req.CustomerID)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	method, err := payment.ParseMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	if o.locker != nil {
		unlock, err := o.locker.Lock(ctx, "checkout:"+req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("checkout lock: %w", err)
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				o.logger.Warn("failed to release checkout lock",
					zap.String("customer_id", req.CustomerID), zap.Error(uerr))
			}
		}()
	}

	var placed *order.Order
	err = o.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		var cerr error
		placed, cerr = o.checkout(ctx, tx, req, method)
		return cerr
	})
	if err != nil {
		o.logger.Info("checkout failed",
			zap.String("customer_id", req.CustomerID),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(attribute.String("order.id", placed.ID))
	o.logger.Info("order placed",
		zap.String("order_id", placed.ID),
		zap.String("customer_id", placed.CustomerID),
		zap.Int("items", len(placed.Items)),
		zap.String("total", placed.Total.String()),
	)
	return placed, nil
}

type reservation struct {
	product  *product.Product
	previous value.Quantity
}

// checkout must only depend on what it reads through tx: some backends
// re-run it when the transaction is retried.
func (o *Orchestrator) checkout(ctx context.Context, tx store.Tx, req Request, method payment.Method) (*order.Order, error) {
	c, err := tx.Customers().FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, customer.ErrCustomerInactive
	}

	crt, err := tx.Carts().FindByCustomerID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if crt.IsEmpty() {
		return nil, cart.ErrEmptyCart
	}
	if err := crt.CheckModifiable(); err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(crt.Items))
	reservations := make([]reservation, 0, len(crt.Items))
	for _, line := range crt.Items {
		p, err := tx.Products().FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		previous := p.Stock
		if err := p.RemoveStock(line.Quantity); err != nil {
			return nil, err
		}
		item, err := order.NewItem(p.ID, p.Name, line.Quantity, line.UnitPrice)
		if err != nil {
			return nil, err
		}
		if err := tx.Products().Save(ctx, p); err != nil {
			return nil, err
		}
		items = append(items, item)
		reservations = append(reservations, reservation{product: p, previous: previous})
	}

	if c.ShippingAddress == nil {
		return nil, ErrShippingAddressMissing
	}
	shipping := *c.ShippingAddress
	billing := shipping
	switch {
	case req.BillingAddress != nil:
		billing = *req.BillingAddress
	case c.BillingAddress != nil:
		billing = *c.BillingAddress
	}

	placed, err := order.New(c.ID, items, shipping, billing)
	if err != nil {
		return nil, err
	}
	if err := o.price(ctx, c, placed, method); err != nil {
		return nil, err
	}
	if err := placed.Reconcile(); err != nil {
		return nil, err
	}
	if err := tx.Orders().Save(ctx, placed); err != nil {
		return nil, err
	}

	if err := crt.Convert(); err != nil {
		return nil, err
	}
	if err := tx.Carts().Save(ctx, crt); err != nil {
		return nil, err
	}

	return placed, appendCheckoutEvents(ctx, tx.Events(), c, crt, placed, reservations)
}

// price applies tax, discount and payment authorization to a new order.
func (o *Orchestrator) price(ctx context.Context, c *customer.Customer, placed *order.Order, method payment.Method) error {
	tax, err := o.tax.Tax(ctx, placed)
	if err != nil {
		return fmt.Errorf("tax: %w", err)
	}
	if err := placed.SetTax(tax); err != nil {
		return err
	}

	discount, err := o.discount.Discount(ctx, c, placed)
	if err != nil {
		return fmt.Errorf("discount: %w", err)
	}
	if err := placed.ApplyDiscount(discount); err != nil {
		return err
	}

	p, err := o.authorizer.Authorize(ctx, payment.Request{
		OrderID:    placed.ID,
		CustomerID: c.ID,
		Amount:     placed.Total,
		Method:     method,
	})
	if err != nil {
		return fmt.Errorf("payment authorization: %w", err)
	}
	// A nil payment leaves the order unpaid until one is attached later.
	if p == nil {
		return nil
	}
	return placed.AttachPayment(p)
}

func appendCheckoutEvents(ctx context.Context, events store.EventAppender, c *customer.Customer, crt *cart.Cart, placed *order.Order, reservations []reservation) error {
	var errs []error
	for _, r := range reservations {
		_, err := events.Append(ctx, r.product.ID, product.AggregateType, product.EventProductStockChanged,
			product.StockChanged(r.product, r.previous, ReasonCheckout, placed.ID))
		errs = append(errs, err)
	}
	_, err := events.Append(ctx, placed.ID, order.AggregateType, order.EventOrderPlaced,
		order.Placed(placed, c.Email, c.Name))
	errs = append(errs, err)
	_, err = events.Append(ctx, crt.ID, cart.AggregateType, cart.EventCartConverted, cart.CartConverted{
		CartID:      crt.ID,
		CustomerID:  crt.CustomerID,
		OrderID:     placed.ID,
		ConvertedAt: crt.UpdatedAt,
	})
	errs = append(errs, err)
	return errors.Join(errs...)
}
