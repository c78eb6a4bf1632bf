package booking

import (
	"context"
	"errors"
	"time"

	"retreat/internal/domain/pricing"
	"retreat/internal/domain/shared/daterange"
	"retreat/internal/domain/shared/events"
)

var (
	ErrInvalidGuests    = errors.New("booking: guests count must be positive")
	ErrGuestEmailEmpty  = errors.New("booking: guest email required")
	ErrInvalidState     = errors.New("booking: invalid state transition")
	ErrIntentNotFound   = errors.New("booking: intent not found")
	ErrConcurrentUpdate = errors.New("booking: concurrent intent update detected")
)

type IntentID string

type IntentStatus string

const (
	StatusPending   IntentStatus = "pending"
	StatusConfirmed IntentStatus = "confirmed"
	StatusFailed    IntentStatus = "failed"
)

// IsTerminal reports whether the status admits no further transitions.
func (s IntentStatus) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// Intent is a single reservation attempt. It starts pending when a payable
// checkout is requested and moves exactly once to confirmed or failed on a
// verified payment notification. The booking service is the sole writer.
type Intent struct {
	ID          IntentID
	GuestEmail  string
	Guests      int
	Range       daterange.DateRange
	Quote       pricing.Quote
	Status      IntentStatus
	CheckoutRef string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.EventRecorder
}

type CreateParams struct {
	ID          IntentID
	GuestEmail  string
	Guests      int
	Range       daterange.DateRange
	Quote       pricing.Quote
	CheckoutRef string
	CreatedAt   time.Time
}

func NewIntent(params CreateParams) (*Intent, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.GuestEmail == "" {
		return nil, ErrGuestEmailEmpty
	}
	if params.CheckoutRef == "" {
		return nil, errors.New("booking: checkout reference required")
	}
	now := params.CreatedAt.UTC()
	intent := &Intent{
		ID:          params.ID,
		GuestEmail:  params.GuestEmail,
		Guests:      params.Guests,
		Range:       params.Range,
		Quote:       params.Quote,
		Status:      StatusPending,
		CheckoutRef: params.CheckoutRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	intent.Record(IntentCreated{
		IntentID:    intent.ID,
		CheckoutRef: intent.CheckoutRef,
		Range:       intent.Range,
		Guests:      intent.Guests,
		QuotedTotal: intent.Quote.Total,
		At:          now,
	})
	return intent, nil
}

// Confirm transitions pending -> confirmed. Confirmed is terminal.
func (i *Intent) Confirm(now time.Time) error {
	if i.Status != StatusPending {
		return ErrInvalidState
	}
	i.Status = StatusConfirmed
	i.UpdatedAt = now.UTC()
	i.Record(IntentConfirmed{
		IntentID:    i.ID,
		CheckoutRef: i.CheckoutRef,
		Range:       i.Range,
		Total:       i.Quote.Total,
		At:          i.UpdatedAt,
	})
	return nil
}

// Fail transitions pending -> failed. Failed is terminal.
func (i *Intent) Fail(reason string, now time.Time) error {
	if i.Status != StatusPending {
		return ErrInvalidState
	}
	i.Status = StatusFailed
	i.UpdatedAt = now.UTC()
	i.Record(IntentFailed{
		IntentID:    i.ID,
		CheckoutRef: i.CheckoutRef,
		Reason:      reason,
		At:          i.UpdatedAt,
	})
	return nil
}

// Repository persists intents. Save performs optimistic concurrency on
// Version and returns ErrConcurrentUpdate when the stored version moved,
// which is how duplicate concurrent notifications lose the transition race.
type Repository interface {
	ByID(ctx context.Context, id IntentID) (*Intent, error)
	ByCheckoutRef(ctx context.Context, ref string) (*Intent, error)
	Save(ctx context.Context, intent *Intent) error
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*Intent, error)
	ListConfirmed(ctx context.Context) ([]*Intent, error)
}
