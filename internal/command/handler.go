package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/ec-fulfillment/internal/auth"
	"github.com/example/ec-fulfillment/internal/checkout"
	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/customer"
	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/payment"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"github.com/example/ec-fulfillment/internal/domain/status"
	"github.com/example/ec-fulfillment/internal/domain/value"
	"github.com/example/ec-fulfillment/internal/infrastructure/store"
	"go.uber.org/zap"
)

// Stock change reasons recorded on ProductStockChanged.
const (
	ReasonRestock    = "restock"
	ReasonAdjustment = "adjustment"
	ReasonStockTake  = "stock_take"
	ReasonCancel     = "order_cancelled"
)

var (
	ErrInvalidStockMode   = domainerr.Validationf("stock mode must be add, remove or set")
	ErrInvalidAddressKind = domainerr.Validationf("address kind must be shipping or billing")
)

// Handler executes write commands. Every command runs in one unit of work
// and appends its events there, so state and outbox commit together.
type Handler struct {
	uow         store.UnitOfWork
	checkout    *checkout.Orchestrator
	credentials *auth.CredentialService
	refunds     payment.RefundRecorder
	carts       *cart.Service
	currency    string
	logger      *zap.Logger
}

type Option func(*Handler)

func WithRefundRecorder(r payment.RefundRecorder) Option {
	return func(h *Handler) {
		if r != nil {
			h.refunds = r
		}
	}
}

// WithDefaultCurrency sets the currency used when a command omits one.
func WithDefaultCurrency(code string) Option {
	return func(h *Handler) {
		if code != "" {
			h.currency = code
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHandler(
	uow store.UnitOfWork,
	orchestrator *checkout.Orchestrator,
	credentials *auth.CredentialService,
	opts ...Option,
) *Handler {
	h := &Handler{
		uow:         uow,
		checkout:    orchestrator,
		credentials: credentials,
		refunds:     payment.NoopRefundRecorder{},
		carts:       cart.NewService(),
		currency:    "USD",
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) money(amount, code string) (value.Money, error) {
	if code == "" {
		code = h.currency
	}
	return value.ParseMoney(amount, code)
}

func appendEvent(ctx context.Context, tx store.Tx, aggregateID, aggregateType, eventType string, data any) error {
	_, err := tx.Events().Append(ctx, aggregateID, aggregateType, eventType, data)
	return err
}

// ============================================
// Products
// ============================================

// CreateProduct adds a product to the catalog with its initial stock.
func (h *Handler) CreateProduct(ctx context.Context, cmd CreateProduct) (*product.Product, error) {
	price, err := h.money(cmd.Price, cmd.Currency)
	if err != nil {
		return nil, err
	}
	stock, err := value.NewQuantity(cmd.Stock)
	if err != nil {
		return nil, err
	}

	var created *product.Product
	err = h.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		p, err := product.NewService(tx.Products()).Create(ctx, product.CreateInput{
			Name:         cmd.Name,
			Description:  cmd.Description,
			SKU:          cmd.SKU,
			Price:        price,
			InitialStock: stock,
			CategoryIDs:  cmd.CategoryIDs,
			Images:       cmd.Images,
		})
		if err != nil {
			return err
		}
		created = p
		return appendEvent(ctx, tx, p.ID, product.AggregateType, product.EventProductCreated, product.ProductCreated{
			ProductID: p.ID,
			SKU:       p.SKU,
			Name:      p.Name,
			Price:     p.Price,
			Stock:     p.Stock,
			CreatedAt: p.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("product created", zap.String("product_id", created.ID), zap.String("sku", created.SKU))
	return created, nil
}

// AdjustStock applies a manual stock movement.
func (h *Handler) AdjustStock(ctx context.Context, cmd AdjustStock) (*product.Product, error) {
	qty, err := value.NewQuantity(cmd.Quantity)
	if err != nil {
		return nil, err
	}

	var adjusted *product.Product
	err = h.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		svc := product.NewService(tx.Products())
		before, err := svc.Get(ctx, cmd.ProductID)
		if err != nil {
			return err
		}

		var p *product.Product
		reason := cmd.Reason
		switch cmd.Mode {
		case StockAdd:
			p, err = svc.AddStock(ctx, cmd.ProductID, qty)
			reason = orDefault(reason, ReasonRestock)
		case StockRemove:
			p, err = svc.RemoveStock(ctx, cmd.ProductID, qty)
			reason = orDefault(reason, ReasonAdjustment)
		case StockSet:
			p, err = svc.SetStock(ctx, cmd.ProductID, qty)
			reason = orDefault(reason, ReasonStockTake)
		default:
			return ErrInvalidStockMode
		}
		if err != nil {
			return err
		}
		adjusted = p
		return appendEvent(ctx, tx, p.ID, product.AggregateType, product.EventProductStockChanged,
			product.StockChanged(p, before.Stock, reason, ""))
	})
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}

func (h *Handler) ChangePrice(ctx context.Context, cmd ChangePrice) (*product.Product, error) {
	price, err := h.money(cmd.Price, cmd.Currency)
	if err != nil {
		return nil, err
	}

	var changed *product.Product
	err = h.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		p, err := product.NewService(tx.Products()).ChangePrice(ctx, cmd.ProductID, price)
		if err != nil {
			return err
		}
		changed = p
		return appendEvent(ctx, tx, p.ID, product.AggregateType, product.EventProductPriceChanged, product.ProductPriceChanged{
			ProductID: p.ID,
			Price:     p.Price,
			ChangedAt: p.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

// EditProduct renames and recategorizes a product in one step.
func (h *Handler) EditProduct(ctx context.Context, cmd EditProduct) (*product.Product, error) {
	var edited *product.Product
	err := h.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		p, err := tx.Products().FindByID(ctx, cmd.ProductID)
		if err != nil {
			return err
		}
		if strings.TrimSpace(cmd.Name) != "" {
			if err := p.Rename(cmd.Name); err != nil {
				return err
			}
		}
		for _, id := range cmd.AddCategories {
			if err := p.AssignCategory(id); err != nil {
				return err
			}
		}
		for _, id := range cmd.RemoveCategories {
			p.RemoveCategory(id)
		}
		if err := tx.Products().Save(ctx, p); err != nil {
			return err
		}
		edited = p
		return appendEvent(ctx, tx, p.ID, product.AggregateType, product.EventProductCatalogEdited, product.ProductCatalogEdited{
			ProductID:   p.ID,
			Name:        p.Name,
			CategoryIDs: p.CategoryIDs,
			EditedAt:    p.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}

func (h *Handler) DiscontinueProduct(ctx context.Context, cmd DiscontinueProduct) (*product.Product, error) {
	var discontinued *product.Product
	err := h.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		p, err := product.NewService(tx.Products()).Discontinue(ctx, cmd.ProductID)
		if err != nil {
			return err
		}
		discontinued = p
		return appendEvent(ctx, tx, p.ID, product.AggregateType, product.EventProductDiscontinued, product.ProductDiscontinued{
			ProductID:      p.ID,
			DiscontinuedAt: p.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("product discontinued", zap.String("product_id", discontinued.ID))
	return discontinued, nil
}

// ============================================
// Cart
// ============================================

// activeCart returns the customer's latest cart if it is still ACTIVE and a
// fresh unsaved cart otherwise. The customer must exist and be active.
func activeCart(ctx context.Context, tx store.Tx, customerID string) (*cart.Cart, error) {
	c, err := tx.Customers().FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, customer.ErrCustomerInactive
	}

	crt, err := tx.Carts().FindByCustomerID(ctx, customerID)
	switch {
	case err == nil && crt.IsActive():
		return crt, nil
	case err == nil, errors.Is(err, cart.ErrCartNotFound):
		return cart.New(customerID)
	default:
		return nil, err
	}
}

// existingCart returns the customer's latest cart, which must be ACTIVE.
func existingCart(ctx context.Context, tx store.Tx, customerID string) (*cart.Cart, error) {
	crt, err := tx.Carts().FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := crt.CheckModifiable(); err != nil {
		return nil, err
	}
	return crt, nil
}

// AddToCart adds a product at its current catalog price, creating the cart
// on first use.
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) (*cart.Cart, error) {
	qty, err := value.NewQuantity(cmd.Quantity)
	if err != nil {
		return nil, err
	}

	var updated *cart.Cart
	err = h.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		crt, err := activeCart(ctx, tx, cmd.CustomerID)
		if err != nil {
			return err
		}
		p, err := tx.Products().FindByID(ctx, cmd.ProductID)
		if err != nil {
			return err
		}
		if err := h.carts.AddProductToCart(crt, p, qty); err != nil {
			return err
		}
		if err := tx.Carts().Save(ctx, crt); err != nil {
			return err
		}
		updated = crt

		line, _ := crt.Item(p.ID)
		return appendEvent(ctx, tx, crt.ID, cart.AggregateType, cart.EventItemAdded, cart.ItemAddedToCart{
			CartID:       crt.ID,
			CustomerID:   crt.CustomerID,
			ProductID:    p.ID,
			Quantity:     qty,
			LineQuantity: line.Quantity,
			UnitPrice:    line.UnitPrice,
			AddedAt:      crt.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (h *Handler) UpdateCartItem(ctx context.Context, cmd UpdateCartItem) (*cart.Cart, error) {
	qty, err := value.NewQuantity(cmd.Quantity)
	if err != nil {
		return nil, err
	}

	var updated *cart.Cart
	err = h.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		crt, err := existingCart(ctx, tx, cmd.CustomerID)
		if err != nil {
			return err
		}
		p, err := tx.Products().FindByID(ctx, cmd.ProductID)
		if err != nil {
			return err
		}
		if err := h.carts.UpdateItemQuantity(crt, p, qty); err != nil {
			return err
		}
		if err := tx.Carts().Save(ctx, crt); err != nil {
			return err
		}
		updated = crt
		return appendEvent(ctx, tx, crt.ID, cart.AggregateType, cart.EventItemUpdated, cart.CartItemQuantityChanged{
			CartID:     crt.ID,
			CustomerID: crt.CustomerID,
			ProductID:  p.ID,
			Quantity:   qty,
			ChangedAt:  crt.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveFromCart drops a line. Removing a product that is not in the cart
// changes nothing and emits no event.
func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) (*cart.Cart, error) {
	var updated *cart.Cart
	err := h.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		crt, err := existingCart(ctx, tx, cmd.CustomerID)
		if err != nil {
			return err
		}
		updated = crt
		if _, ok := crt.Item(cmd.ProductID); !ok {
			return nil
		}
		if err := h.carts.RemoveItem(crt, cmd.ProductID); err != nil {
			return err
		}
		if err := tx.Carts().Save(ctx, crt); err != nil {
			return err
		}
		return appendEvent(ctx, tx, crt.ID, cart.AggregateType, cart.EventItemRemoved, cart.ItemRemovedFromCart{
			CartID:     crt.ID,
			CustomerID: crt.CustomerID,
			ProductID:  cmd.ProductID,
			RemovedAt:  crt.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) (*cart.Cart, error) {
	var cleared *cart.Cart
	err := h.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		crt, err := existingCart(ctx, tx, cmd.CustomerID)
		if err != nil {
			return err
		}
		if err := crt.Clear(); err != nil {
			return err
		}
		if err := tx.Carts().Save(ctx, crt); err != nil {
			return err
		}
		cleared = crt
		return appendEvent(ctx, tx, crt.ID, cart.AggregateType, cart.EventCartCleared, cart.CartCleared{
			CartID:     crt.ID,
			CustomerID: crt.CustomerID,
			ClearedAt:  crt.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return cleared, nil
}

func (h *Handler) AbandonCart(ctx context.Context, cmd AbandonCart) (*cart.Cart, error) {
	var abandoned *cart.Cart
	err := h.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		crt, err := tx.Carts().FindByCustomerID(ctx, cmd.CustomerID)
		if err != nil {
			return err
		}
		if err := crt.Abandon(); err != nil {
			return err
		}
		if err := tx.Carts().Save(ctx, crt); err != nil {
			return err
		}
		abandoned = crt
		return appendEvent(ctx, tx, crt.ID, cart.AggregateType, cart.EventCartAbandoned, cart.CartAbandoned{
			CartID:      crt.ID,
			CustomerID:  crt.CustomerID,
			AbandonedAt: crt.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return abandoned, nil
}

// ============================================
// Orders
// ============================================

// PlaceOrder checks out the customer's active cart.
func (h *Handler) PlaceOrder(ctx context.Context, cmd PlaceOrder) (*order.Order, error) {
	return h.checkout.Checkout(ctx, checkout.Request{
		CustomerID:     cmd.CustomerID,
		BillingAddress: cmd.BillingAddress,
		PaymentMethod:  cmd.PaymentMethod,
	})
}

// mutateOrder loads an order, applies fn and saves it, then appends the
// events fn returned.
func (h *Handler) mutateOrder(ctx context.Context, orderID string, fn func(ctx context.Context, tx store.Tx, o *order.Order) ([]orderEvent, error)) (*order.Order, error) {
	var updated *order.Order
	err := h.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		o, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		events, err := fn(ctx, tx, o)
		if err != nil {
			return err
		}
		if err := tx.Orders().Save(ctx, o); err != nil {
			return err
		}
		updated = o
		for _, e := range events {
			if err := appendEvent(ctx, tx, o.ID, order.AggregateType, e.eventType, e.data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type orderEvent struct {
	eventType string
	data      any
}

func (h *Handler) ConfirmOrder(ctx context.Context, cmd AdvanceOrder) (*order.Order, error) {
	return h.mutateOrder(ctx, cmd.OrderID, func(_ context.Context, _ store.Tx, o *order.Order) ([]orderEvent, error) {
		if err := o.Confirm(); err != nil {
			return nil, err
		}
		return []orderEvent{{order.EventOrderConfirmed, order.StatusChanged(o)}}, nil
	})
}

func (h *Handler) StartProcessing(ctx context.Context, cmd AdvanceOrder) (*order.Order, error) {
	return h.mutateOrder(ctx, cmd.OrderID, func(_ context.Context, _ store.Tx, o *order.Order) ([]orderEvent, error) {
		if err := o.StartProcessing(); err != nil {
			return nil, err
		}
		return []orderEvent{{order.EventOrderProcessing, order.StatusChanged(o)}}, nil
	})
}

func (h *Handler) ShipOrder(ctx context.Context, cmd AdvanceOrder) (*order.Order, error) {
	o, err := h.mutateOrder(ctx, cmd.OrderID, func(_ context.Context, _ store.Tx, o *order.Order) ([]orderEvent, error) {
		if err := o.Ship(cmd.Tracking); err != nil {
			return nil, err
		}
		return []orderEvent{{order.EventOrderShipped, order.OrderShipped{
			OrderID:   o.ID,
			Tracking:  o.Tracking,
			ShippedAt: *o.ShippedAt,
		}}}, nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("order shipped", zap.String("order_id", o.ID), zap.String("tracking", o.Tracking))
	return o, nil
}

func (h *Handler) DeliverOrder(ctx context.Context, cmd AdvanceOrder) (*order.Order, error) {
	return h.mutateOrder(ctx, cmd.OrderID, func(_ context.Context, _ store.Tx, o *order.Order) ([]orderEvent, error) {
		if err := o.Deliver(); err != nil {
			return nil, err
		}
		return []orderEvent{{order.EventOrderDelivered, order.StatusChanged(o)}}, nil
	})
}

// CancelOrder cancels an order that has not shipped. Reserved stock goes
// back to each product. A completed payment is refunded; an open one is
// failed.
func (h *Handler) CancelOrder(ctx context.Context, cmd CancelOrder) (*order.Order, error) {
	o, err := h.mutateOrder(ctx, cmd.OrderID, func(ctx context.Context, tx store.Tx, o *order.Order) ([]orderEvent, error) {
		if err := o.Cancel(cmd.Reason); err != nil {
			return nil, err
		}

		for _, it := range o.Items {
			p, err := tx.Products().FindByID(ctx, it.ProductID)
			if err != nil {
				return nil, fmt.Errorf("restock %s: %w", it.ProductID, err)
			}
			previous := p.Stock
			if err := p.AddStock(it.Quantity); err != nil {
				return nil, err
			}
			if err := tx.Products().Save(ctx, p); err != nil {
				return nil, err
			}
			if err := appendEvent(ctx, tx, p.ID, product.AggregateType, product.EventProductStockChanged,
				product.StockChanged(p, previous, ReasonCancel, o.ID)); err != nil {
				return nil, err
			}
		}

		refunded, err := h.settleCancelledPayment(ctx, o.Payment, o.CancelReason)
		if err != nil {
			return nil, err
		}

		events := []orderEvent{{order.EventOrderCancelled, order.OrderCancelled{
			OrderID:     o.ID,
			Reason:      o.CancelReason,
			Restocked:   o.Items,
			Refunded:    refunded,
			CancelledAt: o.UpdatedAt,
		}}}
		if refunded {
			events = append(events, orderEvent{order.EventOrderRefunded, order.StatusChanged(o)})
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("order cancelled",
		zap.String("order_id", o.ID),
		zap.String("reason", o.CancelReason),
	)
	return o, nil
}

func (h *Handler) settleCancelledPayment(ctx context.Context, p *payment.Payment, reason string) (bool, error) {
	if p == nil {
		return false, nil
	}
	switch p.Status {
	case status.PaymentCompleted:
		if err := p.Refund(); err != nil {
			return false, err
		}
		if err := h.refunds.RecordRefund(ctx, p); err != nil {
			return false, fmt.Errorf("record refund: %w", err)
		}
		return true, nil
	case status.PaymentPending, status.PaymentProcessing:
		return false, p.Fail(orDefault(reason, "order cancelled"))
	default:
		return false, nil
	}
}

// ChangeOrderAddress replaces the shipping or billing address while the
// order is PENDING or CONFIRMED.
func (h *Handler) ChangeOrderAddress(ctx context.Context, cmd ChangeOrderAddress) (*order.Order, error) {
	return h.mutateOrder(ctx, cmd.OrderID, func(_ context.Context, _ store.Tx, o *order.Order) ([]orderEvent, error) {
		var err error
		switch cmd.Kind {
		case AddressShipping:
			err = o.UpdateShippingAddress(cmd.Address)
		case AddressBilling:
			err = o.UpdateBillingAddress(cmd.Address)
		default:
			err = ErrInvalidAddressKind
		}
		if err != nil {
			return nil, err
		}
		return []orderEvent{{order.EventOrderAddressChanged, order.OrderAddressChanged{
			OrderID:   o.ID,
			Kind:      string(cmd.Kind),
			Address:   cmd.Address,
			ChangedAt: o.UpdatedAt,
		}}}, nil
	})
}

// ============================================
// Payments
// ============================================

// CapturePayment completes the order's payment with the gateway transaction.
func (h *Handler) CapturePayment(ctx context.Context, cmd CapturePayment) (*order.Order, error) {
	return h.mutateOrder(ctx, cmd.OrderID, func(_ context.Context, _ store.Tx, o *order.Order) ([]orderEvent, error) {
		p := o.Payment
		if p == nil {
			return nil, order.ErrNoPayment
		}
		if o.Status == status.OrderCancelled {
			return nil, order.ErrOrderNotModifiable
		}
		if p.Status == status.PaymentPending {
			if err := p.StartProcessing(); err != nil {
				return nil, err
			}
		}
		if err := p.Complete(cmd.TransactionID); err != nil {
			return nil, err
		}
		o.Touch()
		return []orderEvent{{order.EventOrderPaid, order.OrderPaid{
			OrderID:       o.ID,
			PaymentID:     p.ID,
			TransactionID: p.TransactionID,
			Amount:        p.Amount,
			PaidAt:        p.UpdatedAt,
		}}}, nil
	})
}

func (h *Handler) FailPayment(ctx context.Context, cmd FailPayment) (*order.Order, error) {
	return h.mutateOrder(ctx, cmd.OrderID, func(_ context.Context, _ store.Tx, o *order.Order) ([]orderEvent, error) {
		p := o.Payment
		if p == nil {
			return nil, order.ErrNoPayment
		}
		if err := p.Fail(cmd.Reason); err != nil {
			return nil, err
		}
		o.Touch()
		return []orderEvent{{order.EventOrderPaymentFailed, order.OrderPaymentFailed{
			OrderID:   o.ID,
			PaymentID: p.ID,
			Reason:    p.FailureReason,
			FailedAt:  p.UpdatedAt,
		}}}, nil
	})
}

// ============================================
// Customers
// ============================================

// RegisterCustomer creates an active customer with an initial password.
func (h *Handler) RegisterCustomer(ctx context.Context, cmd RegisterCustomer) (*customer.Customer, error) {
	if err := auth.ValidatePassword(cmd.Password); err != nil {
		return nil, err
	}

	var registered *customer.Customer
	err := h.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		c, err := customer.New(cmd.Email, cmd.Name)
		if err != nil {
			return err
		}
		if err := c.SetShippingAddress(cmd.ShippingAddress); err != nil {
			return err
		}
		if err := c.SetBillingAddress(cmd.BillingAddress); err != nil {
			return err
		}
		if _, err := tx.Customers().FindByEmail(ctx, c.Email); err == nil {
			return customer.ErrEmailTaken
		} else if !errors.Is(err, customer.ErrCustomerNotFound) {
			return err
		}
		if err := tx.Customers().Save(ctx, c); err != nil {
			return err
		}
		if err := h.credentials.SetInitialPassword(ctx, tx, c.ID, cmd.Password); err != nil {
			return err
		}
		registered = c
		return appendEvent(ctx, tx, c.ID, customer.AggregateType, customer.EventCustomerRegistered, customer.CustomerRegistered{
			CustomerID:   c.ID,
			Email:        c.Email,
			Name:         c.Name,
			RegisteredAt: c.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("customer registered", zap.String("customer_id", registered.ID))
	return registered, nil
}

func (h *Handler) UpdateCustomerAddresses(ctx context.Context, cmd UpdateCustomerAddresses) (*customer.Customer, error) {
	var updated *customer.Customer
	err := h.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		c, err := customer.NewService(tx.Customers()).UpdateAddresses(ctx, cmd.CustomerID, cmd.ShippingAddress, cmd.BillingAddress)
		if err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (h *Handler) DeactivateCustomer(ctx context.Context, cmd DeactivateCustomer) (*customer.Customer, error) {
	var deactivated *customer.Customer
	err := h.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		c, err := customer.NewService(tx.Customers()).Deactivate(ctx, cmd.CustomerID)
		if err != nil {
			return err
		}
		deactivated = c
		return appendEvent(ctx, tx, c.ID, customer.AggregateType, customer.EventCustomerDeactivated, customer.CustomerDeactivated{
			CustomerID:    c.ID,
			DeactivatedAt: c.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return deactivated, nil
}

func (h *Handler) ChangePassword(ctx context.Context, cmd ChangePassword) error {
	return h.credentials.ChangePassword(ctx, cmd.CustomerID, cmd.CurrentPassword, cmd.NewPassword)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
