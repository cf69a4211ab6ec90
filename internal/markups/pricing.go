package markups

import (
	"errors"

	"github.com/delonixservices/b2b-agent-sub001/internal/money"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidType     = errors.New("markup type must be percentage or fixed")
	ErrPercentageRange = errors.New("percentage markup must be between 0 and 100")
	ErrNegativeFixed   = errors.New("fixed markup must not be negative")
	ErrHotelRequired   = errors.New("hotel id is required")
)

var (
	maxPercent = money.Amount(100_00)
	hundred    = decimal.NewFromInt(100)
)

func (r Rule) Validate() error {
	switch r.Type {
	case TypePercentage:
		if r.Value < 0 || r.Value > maxPercent {
			return ErrPercentageRange
		}
	case TypeFixed:
		if r.Value < 0 {
			return ErrNegativeFixed
		}
	default:
		return ErrInvalidType
	}
	return nil
}

// Amount returns the markup on base. Percentages round half away from zero to the paisa.
func (r Rule) Amount(base money.Amount) money.Amount {
	switch r.Type {
	case TypePercentage:
		return money.FromDecimal(base.Decimal().Mul(r.Value.Decimal()).Div(hundred))
	case TypeFixed:
		return r.Value
	}
	return 0
}

// Apply prices base with r.
func (r Rule) Apply(base money.Amount) Quote {
	m := r.Amount(base)
	return Quote{Base: base, Markup: m, Total: base.Add(m)}
}
