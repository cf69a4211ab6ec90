package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFromDecimalRounding(t *testing.T) {
	require.Equal(t, Amount(110000), FromDecimal(decimal.NewFromInt(1100)))
	require.Equal(t, Amount(1235), FromDecimal(decimal.RequireFromString("12.345")))
	require.Equal(t, Amount(-1235), FromDecimal(decimal.RequireFromString("-12.345")))
	require.Equal(t, Amount(1234), FromDecimal(decimal.RequireFromString("12.344")))
}

func TestStringAndParse(t *testing.T) {
	a, err := Parse("1250.5")
	require.NoError(t, err)
	require.Equal(t, Amount(125050), a)
	require.Equal(t, "1250.50", a.String())

	_, err = Parse("abc")
	require.Error(t, err)
}

func TestJSON(t *testing.T) {
	var v struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 99.999, "b": "10"}`), &v))
	require.Equal(t, Amount(10000), v.A)
	require.Equal(t, Amount(1000), v.B)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":"100.00","b":"10.00"}`, string(out))

	require.Error(t, json.Unmarshal([]byte(`{"a": "ten"}`), &v))
}
