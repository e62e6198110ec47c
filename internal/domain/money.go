package domain

import "github.com/shopspring/decimal"

// Money is a currency amount. It scans and stores like decimal.Decimal but
// always renders in JSON with two decimal places ("25.00", not "25").
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money { return Money{Decimal: d} }

// MustMoney parses s and panics on malformed input. Intended for literals.
func MustMoney(s string) Money { return NewMoney(decimal.RequireFromString(s)) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}
