package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/customer"
	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/infrastructure/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultHistoryDepth is how many recent passwords a new one must differ from.
const DefaultHistoryDepth = 6

var (
	ErrCurrentPasswordIncorrect = fmt.Errorf("%w: current password incorrect", domainerr.ErrCredentialMismatch)
	ErrPasswordReused           = fmt.Errorf("%w: password must differ from recent passwords", domainerr.ErrCredentialMismatch)
	ErrPasswordAlreadySet       = fmt.Errorf("password %w", domainerr.ErrDuplicate)
)

// CredentialService rotates customer passwords against a digest history
// kept most recent first.
type CredentialService struct {
	uow          store.UnitOfWork
	digester     Digester
	historyDepth int
	logger       *zap.Logger
	tracer       trace.Tracer
}

type Option func(*CredentialService)

func WithDigester(d Digester) Option {
	return func(s *CredentialService) {
		if d != nil {
			s.digester = d
		}
	}
}

func WithHistoryDepth(n int) Option {
	return func(s *CredentialService) {
		if n > 0 {
			s.historyDepth = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *CredentialService) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewCredentialService(uow store.UnitOfWork, opts ...Option) *CredentialService {
	s := &CredentialService{
		uow:          uow,
		digester:     SHA256Digester{},
		historyDepth: DefaultHistoryDepth,
		logger:       zap.NewNop(),
		tracer:       otel.Tracer("ec-fulfillment/auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CredentialService) HistoryDepth() int { return s.historyDepth }

// ChangePassword verifies current against the latest digest and stores next
// unless it matches one of the last HistoryDepth digests.
func (s *CredentialService) ChangePassword(ctx context.Context, customerID, current, next string) (err error) {
	ctx, span := s.tracer.Start(ctx, "auth.ChangePassword",
		trace.WithAttributes(attribute.String("customer.id", customerID)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	err = s.uow.Do(ctx, func(ctx context.Context, tx store.Tx) error {
		return s.changeIn(ctx, tx, customerID, current, next)
	})
	if err != nil {
		s.logger.Info("password change rejected",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("password changed", zap.String("customer_id", customerID))
	return nil
}

func (s *CredentialService) changeIn(ctx context.Context, tx store.Tx, customerID, current, next string) error {
	customers := tx.Customers()
	c, err := customers.FindByID(ctx, customerID)
	if err != nil {
		return err
	}
	if !c.Active {
		return customer.ErrCustomerInactive
	}

	history, err := customers.GetPasswordHistory(ctx, customerID)
	if err != nil {
		return err
	}
	if len(history) == 0 || !digestsEqual(s.digester.Digest(current), history[0]) {
		return ErrCurrentPasswordIncorrect
	}

	if err := ValidatePassword(next); err != nil {
		return err
	}
	nextDigest := s.digester.Digest(next)
	for i, d := range history {
		if i == s.historyDepth {
			break
		}
		if digestsEqual(nextDigest, d) {
			return ErrPasswordReused
		}
	}

	if err := customers.UpdatePassword(ctx, customerID, nextDigest, s.historyDepth); err != nil {
		return err
	}
	_, err = tx.Events().Append(ctx, customerID, customer.AggregateType, customer.EventCustomerPasswordChanged,
		customer.CustomerPasswordChanged{CustomerID: customerID, ChangedAt: time.Now().UTC()})
	return err
}

// SetInitialPassword seeds the history of a customer that has none. It runs
// inside the caller's unit of work so registration stays atomic.
func (s *CredentialService) SetInitialPassword(ctx context.Context, tx store.Tx, customerID, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	customers := tx.Customers()
	history, err := customers.GetPasswordHistory(ctx, customerID)
	if err != nil {
		return err
	}
	if len(history) > 0 {
		return ErrPasswordAlreadySet
	}
	return customers.UpdatePassword(ctx, customerID, s.digester.Digest(password), s.historyDepth)
}
