package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CentsToDecimal converts an integer amount in cents to euros.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// DecimalToCents rounds a euro amount to the nearest cent.
func DecimalToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// FormatEuros renders cents the French way, e.g. 123456 -> "1 234,56 €".
func FormatEuros(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	fixed := CentsToDecimal(cents).StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	out := b.String() + "," + frac + " €"
	if neg {
		return "-" + out
	}
	return out
}
