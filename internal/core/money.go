// Package core holds the domain entities and invariants shared by the
// materializer, the metrics engine and the state container. Everything here
// is plain data plus validation; orchestration lives in the other packages.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string into a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// zero and malformed input are rejected; monetary amounts in this system are
// always strictly positive.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// Percent returns amount × pct with two-decimal rounding. pct is a fraction
// (0.15 for 15%), matching the tax-deduction configuration table.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Round(2)
}
