package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/example/ec-fulfillment/internal/domain/domainerr"
)

var (
	ErrNegativeQuantity  = fmt.Errorf("%w: quantity must not be negative", domainerr.ErrValidation)
	ErrQuantityUnderflow = fmt.Errorf("%w: quantity subtraction below zero", domainerr.ErrValidation)
	ErrQuantityOverflow  = fmt.Errorf("%w: quantity overflow", domainerr.ErrValidation)
)

// Quantity is a non-negative count of units.
type Quantity struct {
	n int64
}

func NewQuantity(n int64) (Quantity, error) {
	if n < 0 {
		return Quantity{}, fmt.Errorf("%w: %d", ErrNegativeQuantity, n)
	}
	return Quantity{n: n}, nil
}

// Qty panics on negative input; intended for literals.
func Qty(n int64) Quantity {
	q, err := NewQuantity(n)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quantity) Int64() int64  { return q.n }
func (q Quantity) IsZero() bool  { return q.n == 0 }
func (q Quantity) String() string { return strconv.FormatInt(q.n, 10) }

func (q Quantity) Add(o Quantity) (Quantity, error) {
	if q.n > math.MaxInt64-o.n {
		return Quantity{}, ErrQuantityOverflow
	}
	return Quantity{n: q.n + o.n}, nil
}

// Sub fails iff o is greater than q.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	if o.n > q.n {
		return Quantity{}, fmt.Errorf("%w: %d - %d", ErrQuantityUnderflow, q.n, o.n)
	}
	return Quantity{n: q.n - o.n}, nil
}

func (q Quantity) Multiply(factor int64) (Quantity, error) {
	if factor < 0 {
		return Quantity{}, fmt.Errorf("%w: factor %d", ErrNegativeQuantity, factor)
	}
	if factor != 0 && q.n > math.MaxInt64/factor {
		return Quantity{}, ErrQuantityOverflow
	}
	return Quantity{n: q.n * factor}, nil
}

func (q Quantity) Cmp(o Quantity) int {
	switch {
	case q.n < o.n:
		return -1
	case q.n > o.n:
		return 1
	}
	return 0
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.n)
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	parsed, err := NewQuantity(n)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
