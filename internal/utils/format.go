package utils

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySymbol is the single display currency.
const CurrencySymbol = "₹"

var printer = message.NewPrinter(language.English)

// FormatCurrency renders an amount like ₹1,234.50.
func FormatCurrency(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return CurrencySymbol + printer.Sprintf("%.2f", f)
}

// Truncate shortens s to max runes, ending with "..." when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
