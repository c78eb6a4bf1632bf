package booking

import (
	"context"
	"fmt"

	"retreat/internal/app/outbox"
	domainavailability "retreat/internal/domain/availability"
	domainbooking "retreat/internal/domain/booking"
	"retreat/internal/domain/shared/daterange"
	"retreat/internal/domain/shared/events"
)

// ReconcileReport summarizes one reconciliation sweep.
type ReconcileReport struct {
	CheckedIntents  int      `json:"checked_intents"`
	RepairedIntents []string `json:"repaired_intents"`
	Overlaps        []string `json:"overlaps"`
}

// Reconcile compares confirmed intents against booking-sourced blocked
// dates. Nights a confirmed intent should hold but does not are re-blocked
// (idempotent, safe after a crash between transition and block). Confirmed
// intents overlapping each other are reported as anomalies for an operator;
// the engine does not pick a winner on its own.
func (s *Service) Reconcile(ctx context.Context) (ReconcileReport, error) {
	report := ReconcileReport{}
	confirmed, err := s.Intents.ListConfirmed(ctx)
	if err != nil {
		return report, err
	}
	report.CheckedIntents = len(confirmed)

	var anomalies []events.Event
	now := s.now()

	for _, intent := range confirmed {
		missing, err := s.missingNights(ctx, intent)
		if err != nil {
			return report, err
		}
		if len(missing) == 0 {
			continue
		}
		label := fmt.Sprintf("Booking %s", intent.ID)
		if err := s.Availability.BlockRange(ctx, intent.Range, domainavailability.SourceBooking, label, string(intent.ID)); err != nil {
			return report, err
		}
		report.RepairedIntents = append(report.RepairedIntents, string(intent.ID))
		s.logger().Warn("re-applied missing blocks for confirmed intent",
			"intent_id", intent.ID, "missing_nights", len(missing))
		anomalies = append(anomalies, domainbooking.ReconcileAnomaly{
			IntentID: intent.ID,
			Kind:     "missing_blocks",
			Detail:   fmt.Sprintf("%d nights re-blocked", len(missing)),
			At:       now,
		})
	}

	for i := range confirmed {
		for j := i + 1; j < len(confirmed); j++ {
			if !confirmed[i].Range.Overlaps(confirmed[j].Range) {
				continue
			}
			pair := fmt.Sprintf("%s/%s", confirmed[i].ID, confirmed[j].ID)
			report.Overlaps = append(report.Overlaps, pair)
			s.logger().Error("confirmed intents overlap, manual reconciliation required",
				"intent_a", confirmed[i].ID, "intent_b", confirmed[j].ID)
			anomalies = append(anomalies, domainbooking.ReconcileAnomaly{
				IntentID: confirmed[i].ID,
				Kind:     "double_confirmation",
				Detail:   pair,
				At:       now,
			})
		}
	}

	if err := outbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, anomalies); err != nil {
		s.logger().Error("failed to record reconcile anomalies", "error", err)
	}
	return report, nil
}

func (s *Service) missingNights(ctx context.Context, intent *domainbooking.Intent) ([]string, error) {
	blocked, err := s.Availability.BlockedWithin(ctx, intent.Range)
	if err != nil {
		return nil, err
	}
	covered := make(map[string]bool, len(blocked))
	for _, record := range blocked {
		if record.Source == domainavailability.SourceBooking && record.BookingRef == string(intent.ID) {
			covered[daterange.DayKey(record.Date)] = true
		}
	}
	var missing []string
	for _, day := range intent.Range.Days() {
		if !covered[daterange.DayKey(day)] {
			missing = append(missing, daterange.DayKey(day))
		}
	}
	return missing, nil
}
