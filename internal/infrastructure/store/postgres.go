package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/customer"
	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"github.com/lib/pq"
)

// Postgres is a Backend on PostgreSQL. Rows read inside a unit of work are
// locked with FOR UPDATE, so concurrent checkouts of the same product queue
// behind each other.
type Postgres struct {
	db *sql.DB
}

var _ Backend = (*Postgres)(nil)

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, postgresSchema)
	return err
}

func (p *Postgres) Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) (err error) {
	sqlTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	if err = fn(ctx, &pgTx{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// Pending returns unpublished events oldest first. A limit <= 0 returns all.
func (p *Postgres) Pending(ctx context.Context, limit int) ([]Event, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, aggregate_id, aggregate_type, event_type, data, version, created_at
		 FROM events
		 WHERE published_at IS NULL
		 ORDER BY seq ASC
		 LIMIT $1`,
		sqlLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Data, &e.Version, &e.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// sqlLimit binds LIMIT NULL, which Postgres reads as LIMIT ALL.
func sqlLimit(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func (p *Postgres) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := p.db.ExecContext(ctx,
		`UPDATE events SET published_at = now() WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	return err
}

func (p *Postgres) Close(context.Context) error {
	return p.db.Close()
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) Products() product.Store   { return pgProducts{t} }
func (t *pgTx) Carts() cart.Store         { return pgCarts{t} }
func (t *pgTx) Orders() order.Store       { return pgOrders{t} }
func (t *pgTx) Customers() customer.Store { return pgCustomers{t} }
func (t *pgTx) Events() EventAppender     { return pgEvents{t} }

const uniqueViolation = "23505"

// uniqueConstraint returns the constraint name when err is a unique
// violation.
func uniqueConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return "", false
	}
	return pqErr.Constraint, true
}

// save writes agg with a version check. insert binds $1 id, $2 version,
// $3 data, then extra; update binds $1 id, $2 version, $3 data,
// $4 loaded version, then extra.
func (t *pgTx) save(ctx context.Context, kind string, agg aggregate.Aggregate, insert, update string, extra ...any) error {
	loaded := agg.GetVersion()
	agg.SetVersion(loaded + 1)
	err := t.write(ctx, kind, agg, loaded, insert, update, extra)
	if err != nil {
		agg.SetVersion(loaded)
	}
	return err
}

func (t *pgTx) write(ctx context.Context, kind string, agg aggregate.Aggregate, loaded int, insert, update string, extra []any) error {
	data, err := json.Marshal(agg)
	if err != nil {
		return err
	}

	if loaded == 0 {
		args := append([]any{agg.GetID(), agg.GetVersion(), string(data)}, extra...)
		if _, err := t.tx.ExecContext(ctx, insert, args...); err != nil {
			if name, ok := uniqueConstraint(err); ok && strings.HasSuffix(name, "_pkey") {
				return fmt.Errorf("%w: %s %s was created concurrently",
					domainerr.ErrConcurrentModification, kind, agg.GetID())
			}
			return err
		}
		return nil
	}

	args := append([]any{agg.GetID(), agg.GetVersion(), string(data), loaded}, extra...)
	res, err := t.tx.ExecContext(ctx, update, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s changed since version %d",
			domainerr.ErrConcurrentModification, kind, agg.GetID(), loaded)
	}
	return nil
}

// queryDoc decodes the JSONB document selected by query into a new T.
func queryDoc[T any](ctx context.Context, tx *sql.Tx, notFound error, query string, args ...any) (*T, error) {
	var data []byte
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		return nil, err
	}
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

func queryDocs[T any](ctx context.Context, tx *sql.Tx, query string, args ...any) ([]*T, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*T{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		v := new(T)
		if err := json.Unmarshal(data, v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
