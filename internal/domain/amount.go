package domain

import "github.com/shopspring/decimal"

// FormatAmount serializes a transaction amount for signing and for the
// status query string. The signing message is string-based, so the same
// decimal value must always render to the same bytes: no thousands
// separators, no locale formatting, scale preserved exactly as carried by
// the decimal (100 renders "100", 100.50 renders "100.50").
//
// Callers must carry an amount as a single decimal value end to end;
// reparsing "100.5" as "100.50" produces a different message and therefore
// a different signature.
//
// decimal.String trims trailing zeros, so render at the carried exponent
// instead when the value has fractional digits.
func FormatAmount(amount decimal.Decimal) string {
	if amount.Exponent() < 0 {
		return amount.StringFixed(-amount.Exponent())
	}
	return amount.String()
}
