package models

import (
	"fmt"
	"math"
)

// CentsFromAmount converts a decimal currency amount to integer cents.
func CentsFromAmount(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// AmountFromCents converts cents back to a decimal amount for display.
func AmountFromCents(cents int64) float64 {
	return float64(cents) / 100
}

// FormatCents renders cents as a fixed two-decimal string.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
