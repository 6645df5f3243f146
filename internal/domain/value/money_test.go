package value

import (
	"encoding/json"
	"testing"

	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// Construction and Rounding Tests
// ============================================

func TestNewMoney_RoundsToCurrencyScale(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{"USD two digits", "10.005", "USD", "10.01"},
		{"USD round down", "10.004", "USD", "10"},
		{"EUR lowercase code", "3.333", "eur", "3.33"},
		{"JPY no fraction", "1234.5", "JPY", "1235"},
		{"BHD three digits", "1.2345", "BHD", "1.235"},
		{"whole amount", "42", "USD", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMoney(tt.amount, tt.currency)
			require.NoError(t, err)
			assert.True(t, m.Amount().Equal(decimal.RequireFromString(tt.want)), "got %s", m.Amount())
		})
	}
}

func TestNewMoney_UnknownCurrency(t *testing.T) {
	_, err := ParseMoney("1.00", "ZZQ")

	assert.ErrorIs(t, err, ErrInvalidCurrency)
	assert.ErrorIs(t, err, domainerr.ErrValidation)
}

func TestParseMoney_InvalidAmount(t *testing.T) {
	_, err := ParseMoney("ten", "USD")

	assert.ErrorIs(t, err, ErrInvalidAmount)
}

// ============================================
// Arithmetic Tests
// ============================================

func TestMoney_Add(t *testing.T) {
	sum, err := MustMoney("1.10", "USD").Add(MustMoney("2.25", "USD"))

	require.NoError(t, err)
	assert.True(t, sum.Equal(MustMoney("3.35", "USD")))
}

func TestMoney_Sub(t *testing.T) {
	diff, err := MustMoney("5.00", "USD").Sub(MustMoney("7.50", "USD"))

	require.NoError(t, err)
	assert.True(t, diff.IsNegative())
	assert.Equal(t, "-2.50 USD", diff.String())
}

func TestMoney_CurrencyMismatchAlwaysFails(t *testing.T) {
	usd := MustMoney("1.00", "USD")
	eur := MustMoney("1.00", "EUR")

	_, err := usd.Add(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = usd.Sub(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = usd.Cmp(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = usd.Add(Money{})
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMoney_Multiply_Rescales(t *testing.T) {
	m := MustMoney("10.00", "USD").Multiply(decimal.RequireFromString("0.075"))

	assert.Equal(t, "0.75 USD", m.String())
}

func TestMoney_Times(t *testing.T) {
	m := MustMoney("19.99", "USD").Times(Qty(3))

	assert.True(t, m.Equal(MustMoney("59.97", "USD")))
}

func TestMoney_Cmp(t *testing.T) {
	c, err := MustMoney("2", "USD").Cmp(MustMoney("1.99", "USD"))

	require.NoError(t, err)
	assert.Equal(t, 1, c)
}

func TestMoney_Predicates(t *testing.T) {
	zero, err := ZeroMoney("USD")
	require.NoError(t, err)

	assert.True(t, zero.IsZero())
	assert.False(t, zero.IsPositive())
	assert.True(t, MustMoney("0.01", "USD").IsPositive())
	assert.False(t, Money{}.IsValid())
	assert.Equal(t, "", Money{}.Currency())
}

// ============================================
// JSON Tests
// ============================================

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(MustMoney("12.3", "USD"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"12.30","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equal(MustMoney("12.30", "USD")))
}

func TestMoney_UnmarshalJSON_InvalidCurrency(t *testing.T) {
	var m Money
	err := json.Unmarshal([]byte(`{"amount":"1","currency":"???"}`), &m)

	assert.ErrorIs(t, err, ErrInvalidCurrency)
}
