package store

// postgresSchema is applied by EnsureSchema. Aggregates are stored as JSONB
// documents next to the columns used for lookups and version checks.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS products (
	id         TEXT PRIMARY KEY,
	sku        TEXT NOT NULL UNIQUE,
	version    INTEGER NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS carts (
	id          TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL,
	status      TEXT NOT NULL,
	version     INTEGER NOT NULL,
	data        JSONB NOT NULL,
	seq         BIGSERIAL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS carts_customer_idx ON carts (customer_id, seq DESC);

CREATE TABLE IF NOT EXISTS orders (
	id          TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL,
	status      TEXT NOT NULL,
	version     INTEGER NOT NULL,
	data        JSONB NOT NULL,
	seq         BIGSERIAL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS orders_customer_idx ON orders (customer_id, seq DESC);

CREATE TABLE IF NOT EXISTS customers (
	id               TEXT PRIMARY KEY,
	email            TEXT NOT NULL UNIQUE,
	version          INTEGER NOT NULL,
	data             JSONB NOT NULL,
	password_history TEXT[] NOT NULL DEFAULT '{}',
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS events (
	seq            BIGSERIAL PRIMARY KEY,
	id             TEXT NOT NULL UNIQUE,
	aggregate_id   TEXT NOT NULL,
	aggregate_type TEXT NOT NULL,
	event_type     TEXT NOT NULL,
	data           JSONB NOT NULL,
	version        INTEGER NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL,
	published_at   TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS events_unpublished_idx ON events (seq) WHERE published_at IS NULL;
`
