package payment

import (
	"strings"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/domain/status"
	"github.com/example/ec-fulfillment/internal/domain/value"
)

type Method string

const (
	MethodCard           Method = "CARD"
	MethodBankTransfer   Method = "BANK_TRANSFER"
	MethodCashOnDelivery Method = "CASH_ON_DELIVERY"
)

// DefaultMethod is used when checkout names none.
const DefaultMethod = MethodCard

var (
	ErrInvalidAmount        = domainerr.Validationf("payment amount must be positive")
	ErrInvalidMethod        = domainerr.Validationf("unknown payment method")
	ErrInvalidOrder         = domainerr.Validationf("order id is required")
	ErrTransactionIDMissing = domainerr.Validationf("transaction id is required")
)

func (m Method) Valid() bool {
	switch m {
	case MethodCard, MethodBankTransfer, MethodCashOnDelivery:
		return true
	}
	return false
}

// ParseMethod accepts any case; an empty string selects DefaultMethod.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if m == "" {
		return DefaultMethod, nil
	}
	if !m.Valid() {
		return "", ErrInvalidMethod
	}
	return m, nil
}

// Payment belongs to one order and follows status.PaymentMachine.
type Payment struct {
	ID            string         `json:"id"`
	OrderID       string         `json:"order_id"`
	Amount        value.Money    `json:"amount"`
	Method        Method         `json:"method"`
	Status        status.Payment `json:"status"`
	TransactionID string         `json:"transaction_id,omitempty"`
	FailureReason string         `json:"failure_reason,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func New(orderID string, amount value.Money, method Method) (*Payment, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrInvalidOrder
	}
	if !amount.IsValid() || !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !method.Valid() {
		return nil, ErrInvalidMethod
	}
	now := time.Now().UTC()
	return &Payment{
		ID:        value.NewID(),
		OrderID:   orderID,
		Amount:    amount,
		Method:    method,
		Status:    status.PaymentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *Payment) transition(to status.Payment) error {
	next, err := status.PaymentMachine.Transition(p.Status, to)
	if err != nil {
		return err
	}
	p.Status = next
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (p *Payment) StartProcessing() error {
	return p.transition(status.PaymentProcessing)
}

func (p *Payment) Complete(transactionID string) error {
	if strings.TrimSpace(transactionID) == "" {
		return ErrTransactionIDMissing
	}
	if err := p.transition(status.PaymentCompleted); err != nil {
		return err
	}
	p.TransactionID = transactionID
	return nil
}

func (p *Payment) Fail(reason string) error {
	if err := p.transition(status.PaymentFailed); err != nil {
		return err
	}
	p.FailureReason = reason
	return nil
}

func (p *Payment) Refund() error {
	return p.transition(status.PaymentRefunded)
}

func (p *Payment) IsCompleted() bool { return p.Status == status.PaymentCompleted }

func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
