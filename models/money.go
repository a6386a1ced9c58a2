package models

import (
	"github.com/shopspring/decimal"
)

// Money is a NUMERIC(8,2) amount. It scans from and writes to PostgreSQL
// through the embedded decimal and always encodes with two decimals.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

// MoneyFromString panics on malformed literals; use it for constants and tests.
func MoneyFromString(s string) Money {
	return NewMoney(decimal.RequireFromString(s))
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

func (m Money) String() string {
	return m.StringFixed(2)
}
