package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "integer", input: "100", want: "100.00"},
		{name: "one decimal place", input: "10.5", want: "10.50"},
		{name: "two decimal places", input: "10.55", want: "10.55"},
		{name: "zero", input: "0", want: "0.00"},
		{name: "negative", input: "-3.25", want: "-3.25"},
		{name: "three decimal places", input: "10.555", wantErr: true},
		{name: "sub-cent", input: "0.001", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := FromString(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.String())
		})
	}
}

func TestArithmetic(t *testing.T) {
	a := MustFromString("10.25")
	b := MustFromString("0.75")

	assert.Equal(t, "11.00", a.Add(b).String())
	assert.Equal(t, "9.50", a.Sub(b).String())
	assert.Equal(t, "-10.25", a.Neg().String())
	assert.True(t, Zero.IsZero())
	assert.True(t, b.IsPositive())
	assert.True(t, a.Neg().IsNegative())
	assert.True(t, b.LessThan(a))
	assert.True(t, a.GreaterThan(b))
	assert.True(t, a.Equal(MustFromString("10.25")))
}

func TestMulRate(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		rate    string
		want    string
	}{
		{name: "one percent", balance: "1000.00", rate: "0.01", want: "10.00"},
		{name: "rounds half away from zero", balance: "100.25", rate: "0.005", want: "0.50"},
		{name: "rounds up at midpoint", balance: "1.01", rate: "0.5", want: "0.51"},
		{name: "negative balance", balance: "-200.00", rate: "0.01", want: "-2.00"},
		{name: "zero rate", balance: "1000.00", rate: "0", want: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := decimal.NewFromString(tt.rate)
			require.NoError(t, err)
			got := MustFromString(tt.balance).MulRate(rate)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	m := MustFromString("42.10")

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"42.10"`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equal(back))

	var bad Money
	assert.Error(t, json.Unmarshal([]byte(`"1.005"`), &bad))
}

func TestSQLValue(t *testing.T) {
	v, err := MustFromString("7.50").Value()
	require.NoError(t, err)
	assert.Equal(t, "7.50", v)

	var m Money
	require.NoError(t, m.Scan([]byte("12.34")))
	assert.Equal(t, "12.34", m.String())
}
