package dto

import (
	"time"

	domainpricing "retreat/internal/domain/pricing"
)

type RateConfigDTO struct {
	Nightly        MoneyDTO  `json:"nightly"`
	CleaningFee    MoneyDTO  `json:"cleaning_fee"`
	TaxRatePercent float64   `json:"tax_rate_percent"`
	EffectiveFrom  time.Time `json:"effective_from"`
	CreatedAt      time.Time `json:"created_at"`
}

func MapRateConfig(rc domainpricing.RateConfig) RateConfigDTO {
	return RateConfigDTO{
		Nightly:        MapMoney(rc.Nightly),
		CleaningFee:    MapMoney(rc.CleaningFee),
		TaxRatePercent: rc.TaxRatePercent,
		EffectiveFrom:  rc.EffectiveFrom,
		CreatedAt:      rc.CreatedAt,
	}
}
