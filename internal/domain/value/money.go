package value

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	ErrInvalidCurrency  = fmt.Errorf("%w: unknown currency", domainerr.ErrValidation)
	ErrCurrencyMismatch = fmt.Errorf("%w: currency mismatch", domainerr.ErrValidation)
	ErrInvalidAmount    = fmt.Errorf("%w: invalid amount", domainerr.ErrValidation)
)

// Money is an amount held at its currency's canonical fraction digits.
// The zero value has no currency and fails every binary operation.
type Money struct {
	amount   decimal.Decimal
	currency currency.Unit
	valid    bool
}

// NewMoney rounds amount half-up to the fraction digits of code.
func NewMoney(amount decimal.Decimal, code string) (Money, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return Money{amount: amount.Round(scaleOf(unit)), currency: unit, valid: true}, nil
}

// ParseMoney parses a decimal string such as "12.30".
func ParseMoney(amount, code string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	return NewMoney(d, code)
}

// MustMoney is ParseMoney that panics; intended for literals.
func MustMoney(amount, code string) Money {
	m, err := ParseMoney(amount, code)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney returns a zero amount in code.
func ZeroMoney(code string) (Money, error) {
	return NewMoney(decimal.Zero, code)
}

func scaleOf(unit currency.Unit) int32 {
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the ISO 4217 code, or "" for the zero value.
func (m Money) Currency() string {
	if !m.valid {
		return ""
	}
	return m.currency.String()
}

// Scale is the number of fraction digits of the currency.
func (m Money) Scale() int32 { return scaleOf(m.currency) }

func (m Money) IsValid() bool    { return m.valid }
func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

func (m Money) sameCurrency(o Money) error {
	if !m.valid || !o.valid || m.currency != o.currency {
		return fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency(), o.Currency())
	}
	return nil
}

func (m Money) Add(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(o.amount), currency: m.currency, valid: true}, nil
}

func (m Money) Sub(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(o.amount), currency: m.currency, valid: true}, nil
}

// Cmp returns -1, 0 or +1 like decimal.Cmp.
func (m Money) Cmp(o Money) (int, error) {
	if err := m.sameCurrency(o); err != nil {
		return 0, err
	}
	return m.amount.Cmp(o.amount), nil
}

// Multiply scales the amount by factor and re-rounds to the currency.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor).Round(m.Scale()), currency: m.currency, valid: m.valid}
}

func (m Money) Times(q Quantity) Money {
	return m.Multiply(decimal.NewFromInt(q.Int64()))
}

// Equal reports same currency and numerically equal amounts.
func (m Money) Equal(o Money) bool {
	return m.valid == o.valid && m.currency == o.currency && m.amount.Equal(o.amount)
}

func (m Money) String() string {
	if !m.valid {
		return "<no currency>"
	}
	return m.amount.StringFixed(m.Scale()) + " " + m.Currency()
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	if !m.valid {
		return []byte("null"), nil
	}
	return json.Marshal(moneyJSON{Amount: m.amount.StringFixed(m.Scale()), Currency: m.Currency()})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Money{}
		return nil
	}
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseMoney(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
