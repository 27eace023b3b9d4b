package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "integer amount", input: "5000", want: "5000.00"},
		{name: "decimal amount", input: "1250.50", want: "1250.50"},
		{name: "zero", input: "0", want: "0.00"},
		{name: "negative", input: "-10", want: "-10.00"},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyFromString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.StringFixed(2))
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	total := NewMoneyFromInt(5000)
	paid := NewMoneyFromFloat(1250.50)

	outstanding := total.Subtract(paid)
	assert.Equal(t, "3749.50", outstanding.StringFixed(2))

	repaid := paid.Add(outstanding)
	assert.True(t, repaid.Equals(total))
}

func TestMoneyComparisons(t *testing.T) {
	small := NewMoneyFromInt(100)
	big := NewMoneyFromInt(500)

	assert.True(t, small.LessThan(big))
	assert.True(t, big.GreaterThan(small))
	assert.True(t, big.GreaterThanOrEqual(big))
	assert.False(t, small.GreaterThan(big))

	assert.True(t, Zero().IsZero())
	assert.True(t, big.IsPositive())
	assert.True(t, small.Subtract(big).IsNegative())
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := NewMoneyFromFloat(999.99)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"999.99","currency":"INR"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equals(back))
}

func TestMoneyUnmarshalBareNumber(t *testing.T) {
	var m Money
	require.NoError(t, json.Unmarshal([]byte(`2500.75`), &m))
	assert.Equal(t, "2500.75", m.StringFixed(2))

	var bad Money
	assert.Error(t, json.Unmarshal([]byte(`"not-a-number"`), &bad))
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("1234.56"))
	assert.Equal(t, "1234.56", m.StringFixed(2))

	require.NoError(t, m.Scan([]byte("78.90")))
	assert.Equal(t, "78.90", m.StringFixed(2))

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(struct{}{}))
}

func TestMoneyValue(t *testing.T) {
	m := NewMoney(decimal.RequireFromString("42.42"))
	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "42.42", v)
}
