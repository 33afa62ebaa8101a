package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAmountRejectsOutOfRange(t *testing.T) {
	_, err := Amount("0", false)
	require.Error(t, err)

	amount, err := Amount("25.5", false)
	require.NoError(t, err)
	require.Equal(t, "25.50", amount.StringFixed(2))
}

func TestNameTrimsAndRejectsShort(t *testing.T) {
	_, err := Name(" a ", MaxCategoryNameLength)
	require.Error(t, err)

	name, err := Name("  Groceries  ", MaxCategoryNameLength)
	require.NoError(t, err)
	require.Equal(t, "Groceries", name)
}

func TestNameTruncatesToMax(t *testing.T) {
	long := make([]byte, MaxCategoryNameLength+20)
	for i := range long {
		long[i] = 'x'
	}
	name, err := Name(string(long), MaxCategoryNameLength)
	require.NoError(t, err)
	require.Len(t, name, MaxCategoryNameLength)
}

func TestDescriptionNeverRejectsAndTruncates(t *testing.T) {
	require.Equal(t, "", Description("   "))

	long := make([]byte, MaxDescriptionLength+50)
	for i := range long {
		long[i] = 'y'
	}
	desc := Description(string(long))
	require.True(t, len(desc) <= MaxDescriptionLength)
	require.Contains(t, desc, "…")
}

func TestIsEmptyDescriptionLiteral(t *testing.T) {
	require.True(t, IsEmptyDescriptionLiteral("Skip"))
	require.True(t, IsEmptyDescriptionLiteral(" omitir "))
	require.False(t, IsEmptyDescriptionLiteral("groceries"))
}

func TestDayBounds(t *testing.T) {
	_, err := Day("0")
	require.Error(t, err)
	_, err = Day("32")
	require.Error(t, err)
	day, err := Day("15")
	require.NoError(t, err)
	require.Equal(t, 15, day)
}

func TestDateParsesDDMMAndDDMMYYYY(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	d, err := Date("14/02", now)
	require.NoError(t, err)
	require.Equal(t, 2026, d.Year())
	require.Equal(t, time.February, d.Month())
	require.Equal(t, 14, d.Day())

	d, err = Date("14/02/2025", now)
	require.NoError(t, err)
	require.Equal(t, 2025, d.Year())
}

func TestDateRejectsInvalidCalendarDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := Date("31/02/2026", now)
	require.Error(t, err)
}

func TestSanitizeStripsControlCharacters(t *testing.T) {
	out := Sanitize("hi\x00there\x1f", 100)
	require.Equal(t, "hithere", out)
}

func TestSanitizeTruncates(t *testing.T) {
	out := Sanitize("abcdef", 3)
	require.Equal(t, "abc", out)
}

func TestClampDayLastDayOfMonth(t *testing.T) {
	require.Equal(t, 28, ClampDay(2026, time.February, 31))
	require.Equal(t, 29, ClampDay(2028, time.February, 31))
	require.Equal(t, 15, ClampDay(2026, time.April, 15))
}
