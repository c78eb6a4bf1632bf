package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retreat/internal/domain/shared/daterange"
	"retreat/internal/domain/shared/money"
)

func stay(t *testing.T, checkIn, checkOut string) daterange.DateRange {
	t.Helper()
	in, err := daterange.ParseDay(checkIn)
	require.NoError(t, err)
	out, err := daterange.ParseDay(checkOut)
	require.NoError(t, err)
	dr, err := daterange.New(in, out)
	require.NoError(t, err)
	return dr
}

func TestCalculateItemizesThreeNightStay(t *testing.T) {
	rc := RateConfig{
		Nightly:        money.Must(29500, "USD"),
		CleaningFee:    money.Must(18000, "USD"),
		TaxRatePercent: 8,
	}

	quote, err := Calculate(stay(t, "2025-12-24", "2025-12-27"), rc)
	require.NoError(t, err)

	assert.Equal(t, 3, quote.Nights)
	assert.Equal(t, int64(106500), quote.Subtotal.Amount)
	assert.Equal(t, int64(8520), quote.Tax.Amount)
	assert.Equal(t, int64(115020), quote.Total.Amount)
	assert.Equal(t, "USD", quote.Total.Currency)
}

func TestCalculateIsDeterministic(t *testing.T) {
	rc := RateConfig{
		Nightly:        money.Must(12345, "USD"),
		CleaningFee:    money.Must(6789, "USD"),
		TaxRatePercent: 7.25,
	}
	dr := stay(t, "2026-03-01", "2026-03-11")

	first, err := Calculate(dr, rc)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		again, err := Calculate(dr, rc)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCalculateZeroTaxRate(t *testing.T) {
	rc := RateConfig{
		Nightly:     money.Must(10000, "USD"),
		CleaningFee: money.Must(0, "USD"),
	}

	quote, err := Calculate(stay(t, "2026-01-10", "2026-01-12"), rc)
	require.NoError(t, err)
	assert.Equal(t, int64(0), quote.Tax.Amount)
	assert.Equal(t, quote.Subtotal, quote.Total)
}

func TestRateConfigValidate(t *testing.T) {
	valid := RateConfig{
		Nightly:     money.Must(100, "USD"),
		CleaningFee: money.Must(0, "USD"),
	}
	assert.NoError(t, valid.Validate())

	missingCurrency := RateConfig{Nightly: money.Money{Amount: 100}}
	assert.ErrorIs(t, missingCurrency.Validate(), ErrCurrencyUnset)

	negative := valid
	negative.TaxRatePercent = -1
	assert.ErrorIs(t, negative.Validate(), ErrNegativeComponent)

	negativeFee := valid
	negativeFee.CleaningFee = money.Money{Amount: -1, Currency: "USD"}
	assert.ErrorIs(t, negativeFee.Validate(), ErrNegativeComponent)
}

func TestCalculateRejectsInvalidRate(t *testing.T) {
	_, err := Calculate(stay(t, "2026-01-10", "2026-01-12"), RateConfig{})
	assert.ErrorIs(t, err, ErrCurrencyUnset)
}
