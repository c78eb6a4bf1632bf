package dto

import (
	appavailability "retreat/internal/app/services/availability"
)

type BlockedDateDTO struct {
	Date   string `json:"date"`
	Source string `json:"source"`
	Label  string `json:"label,omitempty"`
}

type BlockedDateCollection struct {
	Items []BlockedDateDTO `json:"blocked_dates"`
}

func MapBlockedDates(days []appavailability.BlockedDay) BlockedDateCollection {
	items := make([]BlockedDateDTO, 0, len(days))
	for _, day := range days {
		items = append(items, BlockedDateDTO{
			Date:   day.Date,
			Source: string(day.Source),
			Label:  day.Label,
		})
	}
	return BlockedDateCollection{Items: items}
}
