package store

import (
	"context"
	"slices"
	"sync"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/customer"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/product"
)

// Memory is an in-process Backend. Units of work are serialized by a single
// mutex and stage their writes until fn succeeds.
type Memory struct {
	mu        sync.Mutex
	seq       int64
	created   map[string]int64
	products  map[string]*product.Product
	carts     map[string]*cart.Cart
	orders    map[string]*order.Order
	customers map[string]*customer.Customer
	passwords map[string][]string

	events      []Event
	eventCounts map[string]int
	published   map[string]bool
}

var _ Backend = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		created:     make(map[string]int64),
		products:    make(map[string]*product.Product),
		carts:       make(map[string]*cart.Cart),
		orders:      make(map[string]*order.Order),
		customers:   make(map[string]*customer.Customer),
		passwords:   make(map[string][]string),
		eventCounts: make(map[string]int),
		published:   make(map[string]bool),
	}
}

func (m *Memory) Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{
		m:           m,
		seq:         m.seq,
		created:     make(map[string]int64),
		products:    make(map[string]*product.Product),
		carts:       make(map[string]*cart.Cart),
		orders:      make(map[string]*order.Order),
		customers:   make(map[string]*customer.Customer),
		passwords:   make(map[string][]string),
		eventCounts: make(map[string]int),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (m *Memory) Pending(ctx context.Context, limit int) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Event
	for _, e := range m.events {
		if limit > 0 && len(out) == limit {
			break
		}
		if !m.published[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) MarkPublished(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		m.published[id] = true
	}
	return nil
}

// GetAllEvents returns every committed event in append order.
func (m *Memory) GetAllEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}

func (m *Memory) Close(context.Context) error { return nil }

type memTx struct {
	m           *Memory
	seq         int64
	created     map[string]int64
	products    map[string]*product.Product
	carts       map[string]*cart.Cart
	orders      map[string]*order.Order
	customers   map[string]*customer.Customer
	passwords   map[string][]string
	events      []Event
	eventCounts map[string]int
}

func (tx *memTx) Products() product.Store   { return memProducts{tx} }
func (tx *memTx) Carts() cart.Store         { return memCarts{tx} }
func (tx *memTx) Orders() order.Store       { return memOrders{tx} }
func (tx *memTx) Customers() customer.Store { return memCustomers{tx} }
func (tx *memTx) Events() EventAppender     { return memEvents{tx} }

func (tx *memTx) commit() {
	m := tx.m
	m.seq = tx.seq
	copyInto(m.created, tx.created)
	copyInto(m.products, tx.products)
	copyInto(m.carts, tx.carts)
	copyInto(m.orders, tx.orders)
	copyInto(m.customers, tx.customers)
	copyInto(m.passwords, tx.passwords)
	copyInto(m.eventCounts, tx.eventCounts)
	m.events = append(m.events, tx.events...)
}

func (tx *memTx) creationOrder(id string) int64 {
	if n, ok := tx.created[id]; ok {
		return n
	}
	return tx.m.created[id]
}

func (tx *memTx) markCreated(id string) {
	if _, ok := tx.m.created[id]; ok {
		return
	}
	if _, ok := tx.created[id]; ok {
		return
	}
	tx.seq++
	tx.created[id] = tx.seq
}

func copyInto[T any](dst, src map[string]T) {
	for k, v := range src {
		dst[k] = v
	}
}

func lookup[T any](pending, committed map[string]T, id string) (T, bool) {
	if v, ok := pending[id]; ok {
		return v, true
	}
	v, ok := committed[id]
	return v, ok
}

// each visits the staged view: pending entries shadow committed ones.
func each[T any](pending, committed map[string]T, fn func(id string, v T)) {
	for id, v := range committed {
		if _, shadowed := pending[id]; !shadowed {
			fn(id, v)
		}
	}
	for id, v := range pending {
		fn(id, v)
	}
}

func checkVersion[T aggregate.Aggregate](kind string, current T, found bool, incoming aggregate.Aggregate) error {
	stored := 0
	if found {
		stored = current.GetVersion()
	}
	return aggregate.CheckVersion(kind, incoming.GetID(), stored, incoming.GetVersion())
}

type memProducts struct{ tx *memTx }

func (r memProducts) FindByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := lookup(r.tx.products, r.tx.m.products, id)
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return p.Clone(), nil
}

func (r memProducts) ExistsBySKU(_ context.Context, sku string) (bool, error) {
	sku = product.NormalizeSKU(sku)
	exists := false
	each(r.tx.products, r.tx.m.products, func(_ string, p *product.Product) {
		if p.SKU == sku {
			exists = true
		}
	})
	return exists, nil
}

func (r memProducts) Save(_ context.Context, p *product.Product) error {
	current, found := lookup(r.tx.products, r.tx.m.products, p.ID)
	if err := checkVersion(product.AggregateType, current, found, p); err != nil {
		return err
	}
	taken := false
	each(r.tx.products, r.tx.m.products, func(id string, other *product.Product) {
		if id != p.ID && other.SKU == p.SKU {
			taken = true
		}
	})
	if taken {
		return product.ErrDuplicateSKU
	}

	p.Version++
	r.tx.products[p.ID] = p.Clone()
	r.tx.markCreated(p.ID)
	return nil
}

type memCarts struct{ tx *memTx }

func (r memCarts) FindByCustomerID(_ context.Context, customerID string) (*cart.Cart, error) {
	var (
		latest *cart.Cart
		rank   int64
	)
	each(r.tx.carts, r.tx.m.carts, func(id string, c *cart.Cart) {
		if c.CustomerID != customerID {
			return
		}
		if n := r.tx.creationOrder(id); latest == nil || n > rank {
			latest, rank = c, n
		}
	})
	if latest == nil {
		return nil, cart.ErrCartNotFound
	}
	return latest.Clone(), nil
}

func (r memCarts) Save(_ context.Context, c *cart.Cart) error {
	current, found := lookup(r.tx.carts, r.tx.m.carts, c.ID)
	if err := checkVersion(cart.AggregateType, current, found, c); err != nil {
		return err
	}
	c.Version++
	r.tx.carts[c.ID] = c.Clone()
	r.tx.markCreated(c.ID)
	return nil
}

type memOrders struct{ tx *memTx }

func (r memOrders) Save(_ context.Context, o *order.Order) error {
	current, found := lookup(r.tx.orders, r.tx.m.orders, o.ID)
	if err := checkVersion(order.AggregateType, current, found, o); err != nil {
		return err
	}
	o.Version++
	r.tx.orders[o.ID] = o.Clone()
	r.tx.markCreated(o.ID)
	return nil
}

func (r memOrders) FindByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := lookup(r.tx.orders, r.tx.m.orders, id)
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (r memOrders) FindByCustomerID(_ context.Context, customerID string) ([]*order.Order, error) {
	out := []*order.Order{}
	each(r.tx.orders, r.tx.m.orders, func(_ string, o *order.Order) {
		if o.CustomerID == customerID {
			out = append(out, o.Clone())
		}
	})
	slices.SortFunc(out, func(a, b *order.Order) int {
		return int(r.tx.creationOrder(b.ID) - r.tx.creationOrder(a.ID))
	})
	return out, nil
}

type memCustomers struct{ tx *memTx }

func (r memCustomers) FindByID(_ context.Context, id string) (*customer.Customer, error) {
	c, ok := lookup(r.tx.customers, r.tx.m.customers, id)
	if !ok {
		return nil, customer.ErrCustomerNotFound
	}
	return c.Clone(), nil
}

func (r memCustomers) FindByEmail(_ context.Context, email string) (*customer.Customer, error) {
	email = customer.NormalizeEmail(email)
	var found *customer.Customer
	each(r.tx.customers, r.tx.m.customers, func(_ string, c *customer.Customer) {
		if c.Email == email {
			found = c
		}
	})
	if found == nil {
		return nil, customer.ErrCustomerNotFound
	}
	return found.Clone(), nil
}

func (r memCustomers) GetPasswordHistory(_ context.Context, id string) ([]string, error) {
	if _, ok := lookup(r.tx.customers, r.tx.m.customers, id); !ok {
		return nil, customer.ErrCustomerNotFound
	}
	hist, _ := lookup(r.tx.passwords, r.tx.m.passwords, id)
	return slices.Clone(hist), nil
}

func (r memCustomers) UpdatePassword(_ context.Context, id, digest string, keep int) error {
	if _, ok := lookup(r.tx.customers, r.tx.m.customers, id); !ok {
		return customer.ErrCustomerNotFound
	}
	hist, _ := lookup(r.tx.passwords, r.tx.m.passwords, id)
	r.tx.passwords[id] = prependCapped(hist, digest, keep)
	return nil
}

func (r memCustomers) Save(_ context.Context, c *customer.Customer) error {
	current, found := lookup(r.tx.customers, r.tx.m.customers, c.ID)
	if err := checkVersion(customer.AggregateType, current, found, c); err != nil {
		return err
	}
	taken := false
	each(r.tx.customers, r.tx.m.customers, func(id string, other *customer.Customer) {
		if id != c.ID && other.Email == c.Email {
			taken = true
		}
	})
	if taken {
		return customer.ErrEmailTaken
	}

	c.Version++
	r.tx.customers[c.ID] = c.Clone()
	r.tx.markCreated(c.ID)
	return nil
}

// prependCapped returns digest followed by hist, keeping at most keep
// entries. keep <= 0 keeps everything.
func prependCapped(hist []string, digest string, keep int) []string {
	out := make([]string, 0, len(hist)+1)
	out = append(out, digest)
	out = append(out, hist...)
	if keep > 0 && len(out) > keep {
		out = out[:keep]
	}
	return out
}

type memEvents struct{ tx *memTx }

func (r memEvents) Append(_ context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error) {
	count, ok := r.tx.eventCounts[aggregateID]
	if !ok {
		count = r.tx.m.eventCounts[aggregateID]
	}
	event, err := newEvent(aggregateID, aggregateType, eventType, count+1, data)
	if err != nil {
		return nil, err
	}
	r.tx.eventCounts[aggregateID] = count + 1
	r.tx.events = append(r.tx.events, event)
	return &event, nil
}
