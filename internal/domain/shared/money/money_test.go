package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesCurrency(t *testing.T) {
	m, err := New(2500, "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency)

	_, err = New(2500, "dollars")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestAddRequiresMatchingCurrency(t *testing.T) {
	sum, err := Must(1000, "USD").Add(Must(250, "USD"))
	require.NoError(t, err)
	assert.Equal(t, int64(1250), sum.Amount)

	_, err = Must(1000, "USD").Add(Must(250, "EUR"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestPercentRoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, int64(8520), Must(106500, "USD").Percent(8).Amount)
	// 1.25% of 10.01 is 12.5125 cents.
	assert.Equal(t, int64(13), Must(1001, "USD").Percent(1.25).Amount)
	assert.Equal(t, int64(-13), Must(-1001, "USD").Percent(1.25).Amount)
	assert.Equal(t, int64(0), Must(106500, "USD").Percent(0).Amount)
}

func TestString(t *testing.T) {
	assert.Equal(t, "1150.20 USD", Must(115020, "USD").String())
	assert.Equal(t, "-0.05 USD", Must(-5, "USD").String())
}
