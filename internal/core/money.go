package core

import "github.com/shopspring/decimal"

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
