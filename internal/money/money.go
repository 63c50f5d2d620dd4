// Package money holds the fixed-point helpers shared by pricing and settlement.
// Every monetary value is a decimal.Decimal rounded to the cent at each boundary.
package money

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round rounds half away from zero to two decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Cents converts d to integer cents after rounding.
func Cents(d decimal.Decimal) int64 {
	return Round(d).Shift(2).IntPart()
}

// FromCents is the inverse of Cents.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// IsExactCents reports whether d carries no precision beyond the cent.
func IsExactCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// Percent returns base × pct / 100, rounded to the cent.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return Round(base.Mul(pct).Div(hundred))
}

func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// String renders d with exactly two decimals, the wire format for amounts.
func String(d decimal.Decimal) string {
	return d.StringFixed(2)
}
