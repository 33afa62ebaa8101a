// Package money defines the amount bounds and parsing rules shared by
// the ledger and its validators. Amounts are shopspring/decimal values,
// never binary floats, per the two-decimal-digit monetary model.
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MinAmountString = "0.01"
	MaxAmountString = "9999999.99"
)

var (
	MinAmount = decimal.RequireFromString(MinAmountString)
	MaxAmount = decimal.RequireFromString(MaxAmountString)
	Zero      = decimal.Zero

	amountPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// Parse strips thousands-separator commas and a leading dollar sign,
// validates the amount against the canonical regex, and checks it lies
// in [MinAmount, MaxAmount] unless allowZero is set, in which case zero
// is also accepted (used only for the initial balance).
func Parse(raw string, allowZero bool) (decimal.Decimal, bool) {
	cleaned := strings.NewReplacer(",", "", "$", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" || !amountPattern.MatchString(cleaned) {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	amount = amount.Round(2)
	if allowZero && amount.IsZero() {
		return amount, true
	}
	if amount.LessThan(MinAmount) || amount.GreaterThan(MaxAmount) {
		return decimal.Zero, false
	}
	return amount, true
}

// InRange reports whether amount lies within the accepted bounds,
// without the string-parsing step (used once a Decimal already exists).
func InRange(amount decimal.Decimal, allowZero bool) bool {
	if allowZero && amount.IsZero() {
		return true
	}
	return !amount.LessThan(MinAmount) && !amount.GreaterThan(MaxAmount)
}
