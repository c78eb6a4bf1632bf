package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "retreat/internal/domain/availability"
	"retreat/internal/domain/shared/daterange"
)

func mustRange(t *testing.T, checkIn, checkOut string) daterange.DateRange {
	t.Helper()
	in, err := daterange.ParseDay(checkIn)
	require.NoError(t, err)
	out, err := daterange.ParseDay(checkOut)
	require.NoError(t, err)
	dr, err := daterange.New(in, out)
	require.NoError(t, err)
	return dr
}

func TestBlockRangeMarksNightsNotCheckoutDay(t *testing.T) {
	ctx := context.Background()
	store := NewBlockedDateStore()

	dr := mustRange(t, "2025-12-24", "2025-12-27")
	require.NoError(t, store.BlockRange(ctx, dr, domainavailability.SourceBooking, "Booking b1", "b1"))

	for _, day := range []string{"2025-12-24", "2025-12-25", "2025-12-26"} {
		d, err := daterange.ParseDay(day)
		require.NoError(t, err)
		blocked, err := store.IsBlocked(ctx, d)
		require.NoError(t, err)
		assert.True(t, blocked, day)
	}
	checkout, err := daterange.ParseDay("2025-12-27")
	require.NoError(t, err)
	blocked, err := store.IsBlocked(ctx, checkout)
	require.NoError(t, err)
	assert.False(t, blocked, "checkout day stays free")
}

func TestSourcesCoexistOnOneDay(t *testing.T) {
	ctx := context.Background()
	store := NewBlockedDateStore()
	dr := mustRange(t, "2026-01-10", "2026-01-11")

	require.NoError(t, store.BlockRange(ctx, dr, domainavailability.SourceManual, "Maintenance", ""))
	require.NoError(t, store.BlockRange(ctx, dr, domainavailability.ExternalSource("airbnb"), "Airbnb", ""))

	records, err := store.BlockedWithin(ctx, dr)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// Removing one source keeps the day blocked through the other.
	require.NoError(t, store.UnblockRange(ctx, dr, domainavailability.SourceManual, ""))
	d, err := daterange.ParseDay("2026-01-10")
	require.NoError(t, err)
	blocked, err := store.IsBlocked(ctx, d)
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestUnblockRangeHonorsBookingRef(t *testing.T) {
	ctx := context.Background()
	store := NewBlockedDateStore()
	dr := mustRange(t, "2026-01-10", "2026-01-12")

	require.NoError(t, store.BlockRange(ctx, dr, domainavailability.SourceBooking, "Booking b1", "b1"))

	// A different intent's release must not free another booking's nights.
	require.NoError(t, store.UnblockRange(ctx, dr, domainavailability.SourceBooking, "b2"))
	records, err := store.BlockedWithin(ctx, dr)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	require.NoError(t, store.UnblockRange(ctx, dr, domainavailability.SourceBooking, "b1"))
	records, err = store.BlockedWithin(ctx, dr)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUnblockRangeMissingIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := NewBlockedDateStore()
	dr := mustRange(t, "2026-01-10", "2026-01-12")

	assert.NoError(t, store.UnblockRange(ctx, dr, domainavailability.SourceBooking, "ghost"))
}

func TestReplaceSourceSwapsOnlyItsOwnRecords(t *testing.T) {
	ctx := context.Background()
	store := NewBlockedDateStore()
	airbnb := domainavailability.ExternalSource("airbnb")

	bookingRange := mustRange(t, "2026-02-01", "2026-02-03")
	require.NoError(t, store.BlockRange(ctx, bookingRange, domainavailability.SourceBooking, "Booking b1", "b1"))
	require.NoError(t, store.BlockRange(ctx, mustRange(t, "2026-02-10", "2026-02-12"), airbnb, "Airbnb", ""))

	day, err := daterange.ParseDay("2026-02-20")
	require.NoError(t, err)
	require.NoError(t, store.ReplaceSource(ctx, airbnb, []domainavailability.BlockedDate{
		{Date: day, Source: airbnb, Label: "Airbnb (Reservation)"},
	}))

	all, err := store.BlockedDates(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	bySource := map[domainavailability.Source]int{}
	for _, record := range all {
		bySource[record.Source]++
	}
	assert.Equal(t, 2, bySource[domainavailability.SourceBooking], "booking blocks survive a feed re-sync")
	assert.Equal(t, 1, bySource[airbnb])
}

func TestReplaceSourceToEmptyClearsStaleRecords(t *testing.T) {
	ctx := context.Background()
	store := NewBlockedDateStore()
	vrbo := domainavailability.ExternalSource("vrbo")

	require.NoError(t, store.BlockRange(ctx, mustRange(t, "2026-03-01", "2026-03-05"), vrbo, "VRBO", ""))
	require.NoError(t, store.ReplaceSource(ctx, vrbo, nil))

	all, err := store.BlockedDates(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReplaceSourceRejectsForeignRecords(t *testing.T) {
	ctx := context.Background()
	store := NewBlockedDateStore()
	day, err := daterange.ParseDay("2026-03-01")
	require.NoError(t, err)

	err = store.ReplaceSource(ctx, domainavailability.ExternalSource("airbnb"), []domainavailability.BlockedDate{
		{Date: day, Source: domainavailability.SourceBooking},
	})
	assert.Error(t, err)
}

func TestBlockRangeUpsertsPerDaySourcePair(t *testing.T) {
	ctx := context.Background()
	store := NewBlockedDateStore()
	dr := mustRange(t, "2026-01-10", "2026-01-11")

	require.NoError(t, store.BlockRange(ctx, dr, domainavailability.SourceManual, "first", ""))
	require.NoError(t, store.BlockRange(ctx, dr, domainavailability.SourceManual, "second", ""))

	records, err := store.BlockedWithin(ctx, dr)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "second", records[0].Label)
}
