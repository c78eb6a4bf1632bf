package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := ParseDay(value)
	require.NoError(t, err)
	return d
}

func TestNewRejectsInvertedAndZeroNightRanges(t *testing.T) {
	_, err := New(day(t, "2025-12-27"), day(t, "2025-12-24"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(day(t, "2025-12-24"), day(t, "2025-12-24"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestNewTruncatesToCalendarDays(t *testing.T) {
	checkIn := time.Date(2025, 12, 24, 15, 30, 0, 0, time.FixedZone("X", 3*3600))
	checkOut := time.Date(2025, 12, 27, 11, 0, 0, 0, time.UTC)

	dr, err := New(checkIn, checkOut)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-24", DayKey(dr.CheckIn))
	assert.Equal(t, "2025-12-27", DayKey(dr.CheckOut))
}

func TestDaysExcludeCheckoutDay(t *testing.T) {
	dr, err := New(day(t, "2025-12-24"), day(t, "2025-12-27"))
	require.NoError(t, err)

	days := dr.Days()
	require.Len(t, days, 3)
	assert.Equal(t, "2025-12-24", DayKey(days[0]))
	assert.Equal(t, "2025-12-25", DayKey(days[1]))
	assert.Equal(t, "2025-12-26", DayKey(days[2]))
	assert.Equal(t, 3, dr.Nights())
}

func TestContains(t *testing.T) {
	dr, err := New(day(t, "2025-12-24"), day(t, "2025-12-27"))
	require.NoError(t, err)

	assert.True(t, dr.Contains(day(t, "2025-12-24")))
	assert.True(t, dr.Contains(day(t, "2025-12-26")))
	assert.False(t, dr.Contains(day(t, "2025-12-27")))
	assert.False(t, dr.Contains(day(t, "2025-12-23")))
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	a, err := New(day(t, "2025-12-24"), day(t, "2025-12-27"))
	require.NoError(t, err)

	backToBack, err := New(day(t, "2025-12-27"), day(t, "2025-12-29"))
	require.NoError(t, err)
	assert.False(t, a.Overlaps(backToBack), "checkout day is free for the next check-in")

	overlapping, err := New(day(t, "2025-12-26"), day(t, "2025-12-29"))
	require.NoError(t, err)
	assert.True(t, a.Overlaps(overlapping))
}

func TestParseDayRejectsGarbage(t *testing.T) {
	_, err := ParseDay("24-12-2025")
	assert.Error(t, err)
	_, err = ParseDay("")
	assert.Error(t, err)
}
