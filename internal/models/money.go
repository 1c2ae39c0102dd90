package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds to two decimal places, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RateFromPercent converts a percentage (18) into a fraction (0.18).
func RateFromPercent(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(hundred)
}

// PercentFromRate converts a fraction (0.18) into a percentage (18).
func PercentFromRate(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(hundred)
}

// Totals are the derived money fields of a document.
type Totals struct {
	Subtotal decimal.Decimal
	TaxRate  decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals applies a fractional tax rate and a flat discount to subtotal.
// The total is computed from the unrounded tax and rounded once.
func ComputeTotals(subtotal, taxRate, discount decimal.Decimal) Totals {
	tax := subtotal.Mul(taxRate)
	return Totals{
		Subtotal: RoundMoney(subtotal),
		TaxRate:  taxRate,
		Tax:      RoundMoney(tax),
		Discount: RoundMoney(discount),
		Total:    RoundMoney(subtotal.Add(tax).Sub(discount)),
	}
}

// ErrInvalidTaxRate is returned for rates outside [0, 1].
var ErrInvalidTaxRate = errors.New("tax rate must be a fraction between 0 and 1")

// CheckTaxRate rejects rates that are not fractions. A rate of 18 almost
// always means someone passed a percentage.
func CheckTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: %s", ErrInvalidTaxRate, rate)
	}
	return nil
}
