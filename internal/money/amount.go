// Package money holds the portal's monetary type.
//
// Amounts are persisted as integer minor units (paise) so the wallet can be
// mutated with atomic $inc updates, and rendered as fixed two-decimal strings.
package money

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a quantity of money in minor units.
type Amount int64

var hundred = decimal.NewFromInt(100)

// FromDecimal converts d to minor units, rounding half away from zero.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount(d.Mul(hundred).Round(0).IntPart())
}

// FromFloat converts a major-unit float (as returned by the supplier) to an Amount.
func FromFloat(f float64) Amount {
	return FromDecimal(decimal.NewFromFloat(f))
}

// Parse reads a decimal string such as "1250.50".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// Decimal returns the value in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

func (a Amount) String() string { return a.Decimal().StringFixed(2) }

func (a Amount) IsPositive() bool { return a > 0 }

func (a Amount) Add(b Amount) Amount { return a + b }

func (a Amount) Sub(b Amount) Amount { return a - b }

// MarshalJSON renders the amount as a quoted two-decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	*a = FromDecimal(d)
	return nil
}
