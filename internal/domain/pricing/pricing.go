package pricing

import (
	"context"
	"errors"
	"time"

	"retreat/internal/domain/shared/daterange"
	"retreat/internal/domain/shared/money"
)

var (
	ErrNegativeComponent = errors.New("pricing: rate components cannot be negative")
	ErrCurrencyUnset     = errors.New("pricing: currency must be defined")
	ErrNoRateConfigured  = errors.New("pricing: no rate configured")
)

// RateConfig is an immutable pricing snapshot. Adjustments append a new
// record instead of mutating history; the current rate is the most
// recently created one.
type RateConfig struct {
	Nightly        money.Money
	CleaningFee    money.Money
	TaxRatePercent float64
	EffectiveFrom  time.Time
	CreatedAt      time.Time
}

func (rc RateConfig) Validate() error {
	if rc.Nightly.Currency == "" || rc.CleaningFee.Currency == "" {
		return ErrCurrencyUnset
	}
	if rc.Nightly.Amount < 0 || rc.CleaningFee.Amount < 0 || rc.TaxRatePercent < 0 {
		return ErrNegativeComponent
	}
	return nil
}

// RateLog is the append-only history of rate configurations.
type RateLog interface {
	Append(ctx context.Context, rc RateConfig) error
	// Current returns the most recently created rate or ErrNoRateConfigured.
	Current(ctx context.Context) (RateConfig, error)
}

// Quote is an itemized total for a stay. Amounts are integer cents, so
// identical inputs always produce bit-identical quotes.
type Quote struct {
	Nights   int
	Subtotal money.Money
	Tax      money.Money
	Total    money.Money
}

// Calculate prices a date range against a rate configuration:
// subtotal = nights*nightly + cleaningFee, tax = subtotal*rate/100,
// total = subtotal + tax. Pure function, no clock or store access.
func Calculate(dr daterange.DateRange, rc RateConfig) (Quote, error) {
	if err := rc.Validate(); err != nil {
		return Quote{}, err
	}
	nights := dr.Nights()
	subtotal, err := rc.Nightly.Multiply(int64(nights)).Add(rc.CleaningFee)
	if err != nil {
		return Quote{}, err
	}
	tax := subtotal.Percent(rc.TaxRatePercent)
	total, err := subtotal.Add(tax)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Nights: nights, Subtotal: subtotal, Tax: tax, Total: total}, nil
}
