// Package notification turns published domain events into customer mail.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/email"
	"github.com/example/ec-fulfillment/internal/infrastructure/kafka"
	"github.com/example/ec-fulfillment/internal/infrastructure/store"
	"github.com/example/ec-fulfillment/internal/outbox"
	"go.uber.org/zap"
)

type Mailer interface {
	SendOrderConfirmation(to string, c email.OrderConfirmation) error
}

// Handler processes events for sending notifications
type Handler struct {
	mailer Mailer
	dedupe Deduper
	logger *zap.Logger
}

type Option func(*Handler)

// WithDeduper suppresses repeat mail for events delivered more than once.
func WithDeduper(d Deduper) Option {
	return func(h *Handler) {
		if d != nil {
			h.dedupe = d
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

func NewHandler(mailer Mailer, opts ...Option) *Handler {
	h := &Handler{
		mailer: mailer,
		dedupe: NewMemoryDeduper(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleMessage processes one relayed event. Events other than OrderPlaced
// are skipped without decoding the payload.
func (h *Handler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	if t, ok := msg.Headers[outbox.HeaderEventType]; ok && t != order.EventOrderPlaced {
		return nil
	}

	var event store.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if event.EventType != order.EventOrderPlaced {
		return nil
	}
	return h.handleOrderPlaced(ctx, event)
}

func (h *Handler) handleOrderPlaced(ctx context.Context, event store.Event) error {
	var e order.OrderPlaced
	if err := json.Unmarshal(event.Data, &e); err != nil {
		return fmt.Errorf("decode %s: %w", event.EventType, err)
	}
	if e.CustomerEmail == "" {
		h.logger.Warn("order placed without customer email", zap.String("order_id", e.OrderID))
		return nil
	}

	first, err := h.dedupe.Claim(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("dedupe %s: %w", event.ID, err)
	}
	if !first {
		h.logger.Debug("confirmation already sent",
			zap.String("event_id", event.ID),
			zap.String("order_id", e.OrderID),
		)
		return nil
	}

	if err := h.mailer.SendOrderConfirmation(e.CustomerEmail, email.ConfirmationFromEvent(e)); err != nil {
		if rerr := h.dedupe.Release(context.WithoutCancel(ctx), event.ID); rerr != nil {
			h.logger.Warn("failed to release dedupe claim", zap.String("event_id", event.ID), zap.Error(rerr))
		}
		return fmt.Errorf("send confirmation for order %s: %w", e.OrderID, err)
	}

	h.logger.Info("order confirmation sent",
		zap.String("order_id", e.OrderID),
		zap.String("customer_id", e.CustomerID),
	)
	return nil
}
