package value

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuantity_Negative(t *testing.T) {
	_, err := NewQuantity(-1)

	assert.ErrorIs(t, err, ErrNegativeQuantity)
}

func TestQty_PanicsOnNegative(t *testing.T) {
	assert.Panics(t, func() { Qty(-5) })
}

func TestQuantity_SubFailsIffGreater(t *testing.T) {
	for a := int64(0); a <= 6; a++ {
		for b := int64(0); b <= 6; b++ {
			diff, err := Qty(a).Sub(Qty(b))
			if b > a {
				assert.ErrorIs(t, err, ErrQuantityUnderflow, "%d - %d", a, b)
				continue
			}
			require.NoError(t, err)

			back, err := diff.Add(Qty(b))
			require.NoError(t, err)
			assert.Equal(t, Qty(a), back, "(%d - %d) + %d", a, b, b)
		}
	}
}

func TestQuantity_AddNeverDecreases(t *testing.T) {
	sum, err := Qty(3).Add(Qty(0))
	require.NoError(t, err)
	assert.Equal(t, int64(3), sum.Int64())

	_, err = Qty(math.MaxInt64).Add(Qty(1))
	assert.ErrorIs(t, err, ErrQuantityOverflow)
}

func TestQuantity_Multiply(t *testing.T) {
	product, err := Qty(4).Multiply(3)
	require.NoError(t, err)
	assert.Equal(t, int64(12), product.Int64())

	_, err = Qty(4).Multiply(-1)
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	_, err = Qty(math.MaxInt64).Multiply(2)
	assert.ErrorIs(t, err, ErrQuantityOverflow)
}

func TestQuantity_Cmp(t *testing.T) {
	assert.Equal(t, -1, Qty(1).Cmp(Qty(2)))
	assert.Equal(t, 0, Qty(2).Cmp(Qty(2)))
	assert.Equal(t, 1, Qty(3).Cmp(Qty(2)))
	assert.True(t, Quantity{}.IsZero())
}

func TestQuantity_JSON(t *testing.T) {
	data, err := json.Marshal(Qty(7))
	require.NoError(t, err)
	assert.Equal(t, "7", string(data))

	var q Quantity
	require.NoError(t, json.Unmarshal([]byte("9"), &q))
	assert.Equal(t, Qty(9), q)

	assert.ErrorIs(t, json.Unmarshal([]byte("-2"), &q), ErrNegativeQuantity)
}
