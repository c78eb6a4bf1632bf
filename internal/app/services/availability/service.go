package availability

import (
	"context"
	"sort"

	domainavailability "retreat/internal/domain/availability"
	domainpricing "retreat/internal/domain/pricing"
	"retreat/internal/domain/shared/daterange"
)

// Service answers read-only questions about the calendar and pricing. It
// never mutates state; mutations belong to the booking and sync services.
type Service struct {
	Availability domainavailability.Reader
	Rates        domainpricing.RateLog
}

// BlockedDay is one unavailable night as exposed to clients.
type BlockedDay struct {
	Date   string                    `json:"date"`
	Source domainavailability.Source `json:"source"`
	Label  string                    `json:"label,omitempty"`
}

// BlockedDates returns every blocked night across all sources, ordered by
// date then source so repeated calls render identically.
func (s *Service) BlockedDates(ctx context.Context) ([]BlockedDay, error) {
	records, err := s.Availability.BlockedDates(ctx)
	if err != nil {
		return nil, err
	}
	days := make([]BlockedDay, 0, len(records))
	for _, r := range records {
		days = append(days, BlockedDay{
			Date:   daterange.DayKey(r.Date),
			Source: r.Source,
			Label:  r.Label,
		})
	}
	sort.Slice(days, func(i, j int) bool {
		if days[i].Date != days[j].Date {
			return days[i].Date < days[j].Date
		}
		return days[i].Source < days[j].Source
	})
	return days, nil
}

// Quote prices a candidate stay against the current rate without touching
// booking state. Callers still go through CreateIntent to hold the dates.
func (s *Service) Quote(ctx context.Context, dr daterange.DateRange) (domainpricing.Quote, error) {
	rate, err := s.Rates.Current(ctx)
	if err != nil {
		return domainpricing.Quote{}, err
	}
	return domainpricing.Calculate(dr, rate)
}
