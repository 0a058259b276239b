package utils

import (
	"github.com/shopspring/decimal"
)

// RoundCurrency rounds to two decimal places, half away from zero, which for
// the non-negative amounts used here is half-up on the cent boundary.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// CurrencyFloat converts a decimal amount to a float64 rounded to cents for
// storage in decimal(10,2) columns and JSON responses.
func CurrencyFloat(d decimal.Decimal) float64 {
	f, _ := RoundCurrency(d).Float64()
	return f
}

// FormatCurrency renders an amount with two fixed decimals, e.g. "22.60".
func FormatCurrency(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}
