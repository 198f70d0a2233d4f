package utils

import (
	"fmt"
	"strings"
)

var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"CHF": "CHF",
	"JPY": "¥",
}

// CurrencySymbol returns the display symbol for an ISO currency code,
// falling back to the code itself.
func CurrencySymbol(code string) string {
	if sym, ok := currencySymbols[strings.ToUpper(code)]; ok {
		return sym
	}
	return strings.ToUpper(code)
}

// FormatMoney renders an amount with its currency symbol and a
// thousands-grouped, two-decimal value (e.g. "€ 1,234.56").
func FormatMoney(amount float64, currency string) string {
	return fmt.Sprintf("%s %s", CurrencySymbol(currency), GroupDigits(amount, 2))
}

// FormatPercentage renders a ratio-style number as a percentage string.
func FormatPercentage(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

// GroupDigits formats a float with comma thousands separators.
func GroupDigits(value float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, value)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
