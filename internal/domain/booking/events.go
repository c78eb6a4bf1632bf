package booking

import (
	"time"

	"retreat/internal/domain/shared/daterange"
	"retreat/internal/domain/shared/money"
)

type IntentCreated struct {
	IntentID    IntentID
	CheckoutRef string
	Range       daterange.DateRange
	Guests      int
	QuotedTotal money.Money
	At          time.Time
}

func (e IntentCreated) EventName() string     { return "booking.intent_created" }
func (e IntentCreated) AggregateID() string   { return string(e.IntentID) }
func (e IntentCreated) OccurredAt() time.Time { return e.At }

type IntentConfirmed struct {
	IntentID    IntentID
	CheckoutRef string
	Range       daterange.DateRange
	Total       money.Money
	At          time.Time
}

func (e IntentConfirmed) EventName() string     { return "booking.intent_confirmed" }
func (e IntentConfirmed) AggregateID() string   { return string(e.IntentID) }
func (e IntentConfirmed) OccurredAt() time.Time { return e.At }

type IntentFailed struct {
	IntentID    IntentID
	CheckoutRef string
	Reason      string
	At          time.Time
}

func (e IntentFailed) EventName() string     { return "booking.intent_failed" }
func (e IntentFailed) AggregateID() string   { return string(e.IntentID) }
func (e IntentFailed) OccurredAt() time.Time { return e.At }

// ReconcileAnomaly flags a confirmed intent whose nights were not fully
// covered by booking-sourced blocks, or two confirmed intents overlapping.
type ReconcileAnomaly struct {
	IntentID IntentID
	Kind     string
	Detail   string
	At       time.Time
}

func (e ReconcileAnomaly) EventName() string     { return "booking.reconcile_anomaly" }
func (e ReconcileAnomaly) AggregateID() string   { return string(e.IntentID) }
func (e ReconcileAnomaly) OccurredAt() time.Time { return e.At }
