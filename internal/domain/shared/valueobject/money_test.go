package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(10.50), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(10.50)))
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), Currency(""))
		assert.Error(t, err)
	})

	t.Run("BRL constructors default the currency", func(t *testing.T) {
		assert.Equal(t, BRL, NewMoneyBRLFromFloat(5).Currency())
		assert.Equal(t, BRL, ZeroBRL().Currency())

		m, err := NewMoneyBRLFromString("123.45")
		require.NoError(t, err)
		assert.Equal(t, "123.45", m.StringFixed(2))

		_, err = NewMoneyBRLFromString("not-a-number")
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		a := NewMoneyBRLFromFloat(10.10)
		b := NewMoneyBRLFromFloat(20.25)

		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "30.35", sum.StringFixed(2))
	})

	t.Run("subtract", func(t *testing.T) {
		a := NewMoneyBRLFromFloat(30.00)
		b := NewMoneyBRLFromFloat(12.75)

		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, "17.25", diff.StringFixed(2))
	})

	t.Run("avoids binary float drift", func(t *testing.T) {
		sum := ZeroBRL()
		for range 3 {
			sum = sum.MustAdd(NewMoneyBRLFromFloat(0.10))
		}
		assert.True(t, sum.Equals(NewMoneyBRLFromFloat(0.30)))
	})

	t.Run("rejects mixed currencies", func(t *testing.T) {
		brl := NewMoneyBRLFromFloat(10)
		usd, _ := NewMoney(decimal.NewFromInt(10), USD)

		_, err := brl.Add(usd)
		assert.Error(t, err)
		_, err = brl.Subtract(usd)
		assert.Error(t, err)
		_, err = brl.LessThan(usd)
		assert.Error(t, err)
	})

	t.Run("multiply and negate", func(t *testing.T) {
		m := NewMoneyBRLFromFloat(100)

		assert.Equal(t, "15.00", m.Multiply(decimal.NewFromFloat(0.15)).StringFixed(2))
		assert.True(t, m.Negate().IsNegative())
	})

	t.Run("round", func(t *testing.T) {
		m := NewMoneyBRLFromFloat(10.456)
		assert.Equal(t, "10.46", m.Round(2).StringFixed(2))
	})
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyBRLFromFloat(5)
	big := NewMoneyBRLFromFloat(10)

	lt, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	assert.True(t, small.Equals(NewMoneyBRLFromFloat(5)))
	assert.False(t, small.Equals(big))
	assert.True(t, ZeroBRL().IsZero())
	assert.True(t, big.IsPositive())
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyBRLFromFloat(1234.56)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1234.56","currency":"BRL"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equals(back))

	assert.Error(t, back.UnmarshalJSON([]byte(`{"amount":"abc","currency":"BRL"}`)))
}

func TestMoney_SQL(t *testing.T) {
	t.Run("value stores the amount as string", func(t *testing.T) {
		v, err := NewMoneyBRLFromFloat(99.90).Value()
		require.NoError(t, err)
		assert.Equal(t, "99.9", v)
	})

	t.Run("scan parses string and bytes", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("42.42"))
		assert.Equal(t, "42.42", m.StringFixed(2))
		assert.Equal(t, BRL, m.Currency())

		var b Money
		require.NoError(t, b.Scan([]byte("7.77")))
		assert.Equal(t, "7.77", b.StringFixed(2))
	})

	t.Run("scan nil defaults to zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("scan rejects unsupported types", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(12.5))
	})
}
