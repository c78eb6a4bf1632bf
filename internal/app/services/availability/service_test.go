package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "retreat/internal/domain/availability"
	domainpricing "retreat/internal/domain/pricing"
	"retreat/internal/domain/shared/daterange"
	"retreat/internal/domain/shared/money"
	"retreat/internal/infra/storage/memory"
)

func seedRange(t *testing.T, store *memory.BlockedDateStore, checkIn, checkOut string, source domainavailability.Source, label string) {
	t.Helper()
	in, err := daterange.ParseDay(checkIn)
	require.NoError(t, err)
	out, err := daterange.ParseDay(checkOut)
	require.NoError(t, err)
	dr, err := daterange.New(in, out)
	require.NoError(t, err)
	require.NoError(t, store.BlockRange(context.Background(), dr, source, label, ""))
}

func TestBlockedDatesAreSortedByDateThenSource(t *testing.T) {
	ctx := context.Background()
	store := memory.NewBlockedDateStore()
	seedRange(t, store, "2026-01-12", "2026-01-13", domainavailability.SourceManual, "Maintenance")
	seedRange(t, store, "2026-01-10", "2026-01-12", domainavailability.ExternalSource("airbnb"), "Airbnb")
	seedRange(t, store, "2026-01-10", "2026-01-11", domainavailability.SourceBooking, "Booking b1")

	svc := &Service{Availability: store, Rates: memory.NewRateLog()}
	days, err := svc.BlockedDates(ctx)
	require.NoError(t, err)

	require.Len(t, days, 4)
	assert.Equal(t, "2026-01-10", days[0].Date)
	assert.Equal(t, domainavailability.SourceBooking, days[0].Source)
	assert.Equal(t, "2026-01-10", days[1].Date)
	assert.Equal(t, domainavailability.ExternalSource("airbnb"), days[1].Source)
	assert.Equal(t, "2026-01-11", days[2].Date)
	assert.Equal(t, "2026-01-12", days[3].Date)
	assert.Equal(t, "Maintenance", days[3].Label)
}

func TestQuoteUsesCurrentRate(t *testing.T) {
	ctx := context.Background()
	rates := memory.NewRateLog()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, rates.Append(ctx, domainpricing.RateConfig{
		Nightly:        money.Must(20000, "USD"),
		CleaningFee:    money.Must(10000, "USD"),
		TaxRatePercent: 10,
		CreatedAt:      base,
	}))
	require.NoError(t, rates.Append(ctx, domainpricing.RateConfig{
		Nightly:        money.Must(29500, "USD"),
		CleaningFee:    money.Must(18000, "USD"),
		TaxRatePercent: 8,
		CreatedAt:      base.Add(time.Hour),
	}))

	svc := &Service{Availability: memory.NewBlockedDateStore(), Rates: rates}

	in, err := daterange.ParseDay("2025-12-24")
	require.NoError(t, err)
	out, err := daterange.ParseDay("2025-12-27")
	require.NoError(t, err)
	dr, err := daterange.New(in, out)
	require.NoError(t, err)

	quote, err := svc.Quote(ctx, dr)
	require.NoError(t, err)
	assert.Equal(t, int64(115020), quote.Total.Amount)
}

func TestQuoteWithoutRate(t *testing.T) {
	svc := &Service{Availability: memory.NewBlockedDateStore(), Rates: memory.NewRateLog()}

	in, err := daterange.ParseDay("2025-12-24")
	require.NoError(t, err)
	out, err := daterange.ParseDay("2025-12-27")
	require.NoError(t, err)
	dr, err := daterange.New(in, out)
	require.NoError(t, err)

	_, err = svc.Quote(context.Background(), dr)
	assert.ErrorIs(t, err, domainpricing.ErrNoRateConfigured)
}
