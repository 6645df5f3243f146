package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/customer"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"github.com/lib/pq"
)

type pgProducts struct{ t *pgTx }

func (r pgProducts) FindByID(ctx context.Context, id string) (*product.Product, error) {
	return queryDoc[product.Product](ctx, r.t.tx, product.ErrProductNotFound,
		`SELECT data FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r pgProducts) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var exists bool
	err := r.t.tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1)`,
		product.NormalizeSKU(sku),
	).Scan(&exists)
	return exists, err
}

func (r pgProducts) Save(ctx context.Context, p *product.Product) error {
	err := r.t.save(ctx, product.AggregateType, p,
		`INSERT INTO products (id, version, data, sku) VALUES ($1, $2, $3, $4)`,
		`UPDATE products SET version = $2, data = $3, sku = $5, updated_at = now()
		 WHERE id = $1 AND version = $4`,
		p.SKU,
	)
	if name, ok := uniqueConstraint(err); ok && name == "products_sku_key" {
		return product.ErrDuplicateSKU
	}
	return err
}

type pgCarts struct{ t *pgTx }

func (r pgCarts) FindByCustomerID(ctx context.Context, customerID string) (*cart.Cart, error) {
	return queryDoc[cart.Cart](ctx, r.t.tx, cart.ErrCartNotFound,
		`SELECT data FROM carts WHERE customer_id = $1 ORDER BY seq DESC LIMIT 1 FOR UPDATE`,
		customerID)
}

func (r pgCarts) Save(ctx context.Context, c *cart.Cart) error {
	return r.t.save(ctx, cart.AggregateType, c,
		`INSERT INTO carts (id, version, data, customer_id, status) VALUES ($1, $2, $3, $4, $5)`,
		`UPDATE carts SET version = $2, data = $3, customer_id = $5, status = $6, updated_at = now()
		 WHERE id = $1 AND version = $4`,
		c.CustomerID, string(c.Status),
	)
}

type pgOrders struct{ t *pgTx }

func (r pgOrders) Save(ctx context.Context, o *order.Order) error {
	return r.t.save(ctx, order.AggregateType, o,
		`INSERT INTO orders (id, version, data, customer_id, status) VALUES ($1, $2, $3, $4, $5)`,
		`UPDATE orders SET version = $2, data = $3, customer_id = $5, status = $6, updated_at = now()
		 WHERE id = $1 AND version = $4`,
		o.CustomerID, string(o.Status),
	)
}

func (r pgOrders) FindByID(ctx context.Context, id string) (*order.Order, error) {
	return queryDoc[order.Order](ctx, r.t.tx, order.ErrOrderNotFound,
		`SELECT data FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r pgOrders) FindByCustomerID(ctx context.Context, customerID string) ([]*order.Order, error) {
	return queryDocs[order.Order](ctx, r.t.tx,
		`SELECT data FROM orders WHERE customer_id = $1 ORDER BY seq DESC`, customerID)
}

type pgCustomers struct{ t *pgTx }

func (r pgCustomers) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	return queryDoc[customer.Customer](ctx, r.t.tx, customer.ErrCustomerNotFound,
		`SELECT data FROM customers WHERE id = $1 FOR UPDATE`, id)
}

func (r pgCustomers) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return queryDoc[customer.Customer](ctx, r.t.tx, customer.ErrCustomerNotFound,
		`SELECT data FROM customers WHERE email = $1`, customer.NormalizeEmail(email))
}

func (r pgCustomers) GetPasswordHistory(ctx context.Context, id string) ([]string, error) {
	var hist []string
	err := r.t.tx.QueryRowContext(ctx,
		`SELECT password_history FROM customers WHERE id = $1`, id,
	).Scan(pq.Array(&hist))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customer.ErrCustomerNotFound
	}
	return hist, err
}

func (r pgCustomers) UpdatePassword(ctx context.Context, id, digest string, keep int) error {
	var hist []string
	err := r.t.tx.QueryRowContext(ctx,
		`SELECT password_history FROM customers WHERE id = $1 FOR UPDATE`, id,
	).Scan(pq.Array(&hist))
	if errors.Is(err, sql.ErrNoRows) {
		return customer.ErrCustomerNotFound
	}
	if err != nil {
		return err
	}

	_, err = r.t.tx.ExecContext(ctx,
		`UPDATE customers SET password_history = $2, updated_at = now() WHERE id = $1`,
		id, pq.Array(prependCapped(hist, digest, keep)),
	)
	return err
}

func (r pgCustomers) Save(ctx context.Context, c *customer.Customer) error {
	err := r.t.save(ctx, customer.AggregateType, c,
		`INSERT INTO customers (id, version, data, email) VALUES ($1, $2, $3, $4)`,
		`UPDATE customers SET version = $2, data = $3, email = $5, updated_at = now()
		 WHERE id = $1 AND version = $4`,
		c.Email,
	)
	if name, ok := uniqueConstraint(err); ok && name == "customers_email_key" {
		return customer.ErrEmailTaken
	}
	return err
}

type pgEvents struct{ t *pgTx }

func (r pgEvents) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error) {
	var currentVersion int
	err := r.t.tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = $1",
		aggregateID,
	).Scan(&currentVersion)
	if err != nil {
		return nil, err
	}

	event, err := newEvent(aggregateID, aggregateType, eventType, currentVersion+1, data)
	if err != nil {
		return nil, err
	}

	_, err = r.t.tx.ExecContext(ctx,
		`INSERT INTO events (id, aggregate_id, aggregate_type, event_type, data, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID,
		event.AggregateID,
		event.AggregateType,
		event.EventType,
		string(event.Data),
		event.Version,
		event.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
