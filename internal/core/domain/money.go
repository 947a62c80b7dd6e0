package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts are int64 minor units (cents). Decimal text only exists at the
// edges: config, inbound events, API and CSV output.
const minorUnitExponent = 2

var minorUnitScale = decimal.New(1, minorUnitExponent)

// ParseAmount converts a decimal string such as "45" or "45.10" to minor units.
// More than two fractional digits is rejected rather than rounded.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return AmountFromDecimal(d)
}

// AmountFromDecimal converts a decimal major-unit value to minor units.
func AmountFromDecimal(d decimal.Decimal) (int64, error) {
	minor := d.Mul(minorUnitScale)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d fractional digits", d.String(), minorUnitExponent)
	}
	if !minor.IsPositive() {
		return 0, fmt.Errorf("amount %s must be positive", d.String())
	}
	return minor.IntPart(), nil
}

// FormatAmount renders minor units as a fixed two-digit decimal string.
func FormatAmount(minor int64) string {
	return decimal.New(minor, -minorUnitExponent).StringFixed(minorUnitExponent)
}
