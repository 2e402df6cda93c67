package recorder

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmount is 2^128, the exclusive upper bound of an amount
var maxAmount = decimal.RequireFromString("340282366920938463463374607431768211456")

// ParseAmount parses a base-10 unsigned 128-bit amount in the smallest
// currency unit. Signs, whitespace, fractions and exponents are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return decimal.Decimal{}, ErrZeroOrInvalidAmount
	}
	v, err := decimal.NewFromString(s)
	if err != nil || !v.IsInteger() || v.Cmp(maxAmount) >= 0 {
		return decimal.Decimal{}, ErrZeroOrInvalidAmount
	}
	return v, nil
}

// parsePositiveAmount is ParseAmount that also rejects zero
func parsePositiveAmount(s string) (decimal.Decimal, error) {
	v, err := ParseAmount(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if v.IsZero() {
		return decimal.Decimal{}, ErrZeroOrInvalidAmount
	}
	return v, nil
}

// formatAmount renders an amount as plain base-10 digits
func formatAmount(v decimal.Decimal) string {
	return v.BigInt().String()
}
