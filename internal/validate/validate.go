// Package validate implements the syntactic validators of the
// authorization and input-validation component: amounts, names,
// descriptions, dates, and days-of-month, plus the control-character
// sanitizer every free-text field passes through before storage.
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Juramirezlop/FinanceBot/internal/money"
)

const (
	MaxDescriptionLength       = 500
	MaxCategoryNameLength      = 50
	MaxSubscriptionNameLength  = 100
	MaxDebtCounterpartyLength  = 100
	MinNameLength              = 2
)

// Amount parses and range-checks a raw amount string.
func Amount(raw string, allowZero bool) (decimal.Decimal, error) {
	amount, ok := money.Parse(raw, allowZero)
	if !ok {
		return decimal.Zero, fmt.Errorf("amount must be a number between %s and %s", money.MinAmountString, money.MaxAmountString)
	}
	return amount, nil
}

// Name validates a trimmed, sanitized free-text name field (category,
// subscription, debt counterparty) against a [2, max] length bound.
func Name(raw string, max int) (string, error) {
	clean := Sanitize(raw, max+1)
	clean = strings.TrimSpace(clean)
	if len(clean) < MinNameLength {
		return "", fmt.Errorf("must be at least %d characters", MinNameLength)
	}
	if len(clean) > max {
		clean = clean[:max]
	}
	return clean, nil
}

// Description sanitizes and truncates (never rejects) a movement
// description; an empty description is permitted.
func Description(raw string) string {
	clean := strings.TrimSpace(Sanitize(raw, 0))
	if len(clean) > MaxDescriptionLength {
		clean = clean[:MaxDescriptionLength-len("…")] + "…"
	}
	return clean
}

// emptyDescriptionLiterals are free-text tokens the dialog machine
// interprets as "no description given".
var emptyDescriptionLiterals = map[string]struct{}{
	"no":                {},
	"skip":              {},
	"omitir":            {},
	"sin descripcion":   {},
	"sin descripción":   {},
}

// IsEmptyDescriptionLiteral reports whether raw (case-insensitively,
// trimmed) is one of the recognized "skip the description" phrases.
func IsEmptyDescriptionLiteral(raw string) bool {
	_, ok := emptyDescriptionLiterals[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Day validates an integer day-of-month in [1, 31].
func Day(raw string) (int, error) {
	day, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || day < 1 || day > 31 {
		return 0, fmt.Errorf("day must be an integer between 1 and 31")
	}
	return day, nil
}

// Date parses DD/MM/YYYY or DD/MM (current year implied, evaluated
// against now) into a calendar date, rejecting anything that is not a
// real date (e.g. 31/02).
func Date(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, "/")
	var day, month, year int
	var err error
	switch len(parts) {
	case 2:
		day, err = strconv.Atoi(parts[0])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date")
		}
		month, err = strconv.Atoi(parts[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date")
		}
		year = now.Year()
	case 3:
		day, err = strconv.Atoi(parts[0])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date")
		}
		month, err = strconv.Atoi(parts[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date")
		}
		year, err = strconv.Atoi(parts[2])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date")
		}
	default:
		return time.Time{}, fmt.Errorf("expected DD/MM/YYYY or DD/MM")
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, fmt.Errorf("invalid date")
	}
	parsed := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	if parsed.Day() != day || int(parsed.Month()) != month || parsed.Year() != year {
		return time.Time{}, fmt.Errorf("invalid calendar date")
	}
	return parsed, nil
}

// Sanitize strips ASCII/Latin-1 control characters (\x00-\x1f, \x7f-\x9f)
// and truncates to maxLen runes.
func Sanitize(raw string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= 0x00 && r <= 0x1f) || (r >= 0x7f && r <= 0x9f) {
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if runes := []rune(out); maxLen > 0 && len(runes) > maxLen {
		out = string(runes[:maxLen])
	}
	return out
}

// ClampDay returns the valid day-of-month for the given target month,
// clamping to the last day when day exceeds it (e.g. 31 in February).
func ClampDay(year int, month time.Month, day int) int {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		return lastDay
	}
	return day
}
