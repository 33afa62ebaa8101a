package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseValidAmount(t *testing.T) {
	amount, ok := Parse("1234.5", false)
	require.True(t, ok)
	require.True(t, amount.Equal(decimal.NewFromFloat(1234.5)))
}

func TestParseStripsCommasAndDollarSign(t *testing.T) {
	amount, ok := Parse("$1,234.56", false)
	require.True(t, ok)
	require.True(t, amount.Equal(decimal.RequireFromString("1234.56")))
}

func TestParseRoundsToTwoDecimals(t *testing.T) {
	amount, ok := Parse("10.005", false)
	require.True(t, ok)
	require.Equal(t, "10.01", amount.StringFixed(2))
}

func TestParseRejectsBelowMinimum(t *testing.T) {
	_, ok := Parse("0.001", false)
	require.False(t, ok)
}

func TestParseRejectsAboveMaximum(t *testing.T) {
	_, ok := Parse("10000000.00", false)
	require.False(t, ok)
}

func TestParseZeroRejectedUnlessAllowed(t *testing.T) {
	_, ok := Parse("0", false)
	require.False(t, ok)

	amount, ok := Parse("0", true)
	require.True(t, ok)
	require.True(t, amount.IsZero())
}

func TestParseRejectsNonNumeric(t *testing.T) {
	_, ok := Parse("abc", false)
	require.False(t, ok)

	_, ok = Parse("-5", false)
	require.False(t, ok)
}

func TestInRange(t *testing.T) {
	require.True(t, InRange(decimal.RequireFromString("50.00"), false))
	require.False(t, InRange(decimal.Zero, false))
	require.True(t, InRange(decimal.Zero, true))
	require.False(t, InRange(MaxAmount.Add(decimal.RequireFromString("0.01")), false))
}
