// Package outbox moves committed domain events from the store to the broker.
package outbox

import (
	"context"
	"time"

	"github.com/example/ec-fulfillment/internal/infrastructure/store"
	"go.uber.org/zap"
)

// HeaderEventType carries store.Event.EventType on published messages.
const HeaderEventType = "event_type"

type Publisher interface {
	Publish(ctx context.Context, key string, event any, headers map[string]string) error
}

// Relay polls the outbox and publishes every pending event keyed by its
// aggregate id. Delivery is at least once: an event is marked published only
// after the broker accepted it.
type Relay struct {
	outbox    store.Outbox
	publisher Publisher
	logger    *zap.Logger
	interval  time.Duration
	batch     int
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRelay(outbox store.Outbox, publisher Publisher, opts ...Option) *Relay {
	r := &Relay{
		outbox:    outbox,
		publisher: publisher,
		logger:    zap.NewNop(),
		interval:  time.Second,
		batch:     100,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is done. Publish failures are logged and retried on the
// next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		for {
			n, err := r.RelayOnce(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.logger.Error("outbox relay failed", zap.Error(err))
				break
			}
			// A full batch means more may be waiting.
			if n < r.batch {
				break
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes one batch in outbox order and returns how many events
// were published. It stops at the first failure so later events of the same
// aggregate are never delivered ahead of an earlier one.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	events, err := r.outbox.Pending(ctx, r.batch)
	if err != nil {
		return 0, err
	}

	published := make([]string, 0, len(events))
	var publishErr error
	for _, e := range events {
		headers := map[string]string{HeaderEventType: e.EventType}
		if err := r.publisher.Publish(ctx, e.AggregateID, e, headers); err != nil {
			publishErr = err
			r.logger.Warn("failed to publish event",
				zap.String("event_id", e.ID),
				zap.String("event_type", e.EventType),
				zap.String("aggregate_id", e.AggregateID),
				zap.Error(err),
			)
			break
		}
		published = append(published, e.ID)
	}

	if err := r.outbox.MarkPublished(ctx, published); err != nil {
		return 0, err
	}
	if len(published) > 0 {
		r.logger.Debug("relayed events", zap.Int("count", len(published)))
	}
	return len(published), publishErr
}
