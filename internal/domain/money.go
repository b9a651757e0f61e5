package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places kept on every monetary result (Rappen).
const MoneyPlaces = 2

var (
	// Hundred is used for percent conversions
	Hundred = decimal.NewFromInt(100)
	// Thousand is used for per-mille conversions
	Thousand = decimal.NewFromInt(1000)
)

// RoundMoney rounds an amount half-up to two decimal places.
// Amounts handled by the engine are never negative, so rounding half away from zero
// (what decimal.Round does) is identical to half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// ToCents converts an amount to integer cents after rounding it
func ToCents(d decimal.Decimal) int64 {
	return RoundMoney(d).Shift(MoneyPlaces).IntPart()
}

// FromCents converts integer cents back into a CHF amount
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -MoneyPlaces)
}

// FormatCHF renders an amount as "CHF 1'234.50" using the Swiss thousands separator.
func FormatCHF(d decimal.Decimal) string {
	rounded := RoundMoney(d)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	parts := strings.SplitN(rounded.StringFixed(MoneyPlaces), ".", 2)
	intPart := parts[0]
	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte('\'')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return sign + "CHF " + intPart + "." + parts[1]
}

// FormatPercent renders a percentage with two decimals, e.g. "6.77%"
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

var amountSeparators = strings.NewReplacer("'", "", "’", "", "_", "", " ", "")

// ParseAmount parses a CHF amount, accepting Swiss digit grouping such as 120'000.50
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := amountSeparators.Replace(strings.TrimPrefix(strings.TrimSpace(s), "CHF"))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}
