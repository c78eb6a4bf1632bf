package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"retreat/internal/app/outbox"
	"retreat/internal/app/policies"
	domainavailability "retreat/internal/domain/availability"
	domainbooking "retreat/internal/domain/booking"
	domainpricing "retreat/internal/domain/pricing"
	"retreat/internal/domain/shared/daterange"
)

// Service owns the reservation lifecycle: it is the only writer of booking
// intents and the only caller of booking-sourced availability mutations.
type Service struct {
	Intents      domainbooking.Repository
	Availability domainavailability.Store
	Rates        domainpricing.RateLog
	Payments     policies.PaymentsPort
	Outbox       outbox.Outbox
	Encoder      outbox.EventEncoder
	Logger       *slog.Logger
	Now          func() time.Time
}

type CreateIntentInput struct {
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	GuestEmail string
}

type CreateIntentResult struct {
	IntentID    string
	CheckoutRef string
	RedirectURL string
	Quote       domainpricing.Quote
}

// CreateIntent validates the requested stay, quotes it against the current
// rate, asks the gateway for a payable checkout and persists a pending
// intent keyed by the returned checkout reference. Nothing is persisted
// when the gateway call fails, so a timed-out checkout leaves no residue.
func (s *Service) CreateIntent(ctx context.Context, input CreateIntentInput) (*CreateIntentResult, error) {
	if input.Guests <= 0 {
		return nil, domainbooking.ErrInvalidGuests
	}
	dr, err := daterange.New(input.CheckIn, input.CheckOut)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := domainbooking.ValidateDateRange(dr, now); err != nil {
		return nil, err
	}

	conflict, err := domainavailability.HasConflict(ctx, s.Availability, dr)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, domainavailability.ErrConflict
	}

	rate, err := s.Rates.Current(ctx)
	if err != nil {
		return nil, err
	}
	quote, err := domainpricing.Calculate(dr, rate)
	if err != nil {
		return nil, err
	}

	intentID := domainbooking.IntentID(uuid.NewString())
	checkout, err := s.Payments.CreateCheckout(ctx, policies.CheckoutRequest{
		IntentID:      string(intentID),
		Amount:        quote.Total,
		CustomerEmail: input.GuestEmail,
		Metadata: map[string]string{
			"intent_id":     string(intentID),
			"check_in":      daterange.DayKey(dr.CheckIn),
			"check_out":     daterange.DayKey(dr.CheckOut),
			"guests_count":  fmt.Sprintf("%d", input.Guests),
			"booking_email": input.GuestEmail,
		},
	})
	if err != nil {
		return nil, err
	}

	intent, err := domainbooking.NewIntent(domainbooking.CreateParams{
		ID:          intentID,
		GuestEmail:  input.GuestEmail,
		Guests:      input.Guests,
		Range:       dr,
		Quote:       quote,
		CheckoutRef: checkout.Reference,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Intents.Save(ctx, intent); err != nil {
		return nil, err
	}
	s.recordEvents(ctx, intent)

	return &CreateIntentResult{
		IntentID:    string(intent.ID),
		CheckoutRef: intent.CheckoutRef,
		RedirectURL: checkout.RedirectURL,
		Quote:       quote,
	}, nil
}

// HandlePaymentSucceeded drives pending -> confirmed and then blocks the
// stay's nights. Idempotent: duplicates and unknown references are logged
// and swallowed, since the gateway retries on anything but success. The
// block write happens strictly after the transition, so a crash in between
// leaves a confirmed intent without blocks, which Reconcile repairs; the
// reverse (blocked nights with no confirmed intent) cannot happen.
func (s *Service) HandlePaymentSucceeded(ctx context.Context, checkoutRef string) error {
	intent, done := s.loadForTransition(ctx, checkoutRef, domainbooking.StatusConfirmed)
	if done || intent == nil {
		return nil
	}

	now := s.now()
	if err := intent.Confirm(now); err != nil {
		s.logger().Error("success notification for finalized intent",
			"checkout_ref", checkoutRef, "status", intent.Status, "error", err)
		return nil
	}
	if err := s.Intents.Save(ctx, intent); err != nil {
		if errors.Is(err, domainbooking.ErrConcurrentUpdate) {
			s.logger().Info("lost confirmation race, treating as duplicate", "checkout_ref", checkoutRef)
			return nil
		}
		return err
	}

	label := fmt.Sprintf("Booking %s", intent.ID)
	if err := s.Availability.BlockRange(ctx, intent.Range, domainavailability.SourceBooking, label, string(intent.ID)); err != nil {
		// Intent is confirmed but nights are not blocked yet; Reconcile
		// re-applies the block idempotently.
		s.logger().Error("failed to block nights for confirmed intent",
			"intent_id", intent.ID, "error", err)
		return err
	}
	s.recordEvents(ctx, intent)
	return nil
}

// HandlePaymentFailed drives pending -> failed and releases any provisional
// block. Unblocking is keyed by source and the intent's own reference, so
// it is a safe no-op when blocking never happened and can never touch an
// overlapping block from another source.
func (s *Service) HandlePaymentFailed(ctx context.Context, checkoutRef string) error {
	intent, done := s.loadForTransition(ctx, checkoutRef, domainbooking.StatusFailed)
	if done || intent == nil {
		return nil
	}

	now := s.now()
	if err := intent.Fail("payment failed", now); err != nil {
		s.logger().Error("failure notification for finalized intent",
			"checkout_ref", checkoutRef, "status", intent.Status, "error", err)
		return nil
	}
	if err := s.Intents.Save(ctx, intent); err != nil {
		if errors.Is(err, domainbooking.ErrConcurrentUpdate) {
			s.logger().Info("lost failure race, treating as duplicate", "checkout_ref", checkoutRef)
			return nil
		}
		return err
	}

	if err := s.Availability.UnblockRange(ctx, intent.Range, domainavailability.SourceBooking, string(intent.ID)); err != nil {
		s.logger().Error("failed to release nights for failed intent",
			"intent_id", intent.ID, "error", err)
		return err
	}
	s.recordEvents(ctx, intent)
	return nil
}

// loadForTransition fetches the intent behind a notification. The second
// return is true when the caller should stop: reference unknown (logged,
// ignored) or the intent already carries the target status (duplicate).
func (s *Service) loadForTransition(ctx context.Context, checkoutRef string, target domainbooking.IntentStatus) (*domainbooking.Intent, bool) {
	intent, err := s.Intents.ByCheckoutRef(ctx, checkoutRef)
	if err != nil {
		if errors.Is(err, domainbooking.ErrIntentNotFound) {
			s.logger().Warn("notification for unknown checkout reference", "checkout_ref", checkoutRef)
			return nil, true
		}
		s.logger().Error("intent lookup failed", "checkout_ref", checkoutRef, "error", err)
		return nil, true
	}
	if intent.Status == target {
		s.logger().Debug("duplicate notification", "checkout_ref", checkoutRef, "status", target)
		return nil, true
	}
	return intent, false
}

// ExpireStale fails pending intents older than the TTL and releases their
// provisional blocks, covering checkouts that were created but for which
// the gateway never delivered an outcome.
func (s *Service) ExpireStale(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := s.now().Add(-ttl)
	stale, err := s.Intents.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, intent := range stale {
		if err := intent.Fail("expired", s.now()); err != nil {
			continue
		}
		if err := s.Intents.Save(ctx, intent); err != nil {
			if errors.Is(err, domainbooking.ErrConcurrentUpdate) {
				continue
			}
			return expired, err
		}
		if err := s.Availability.UnblockRange(ctx, intent.Range, domainavailability.SourceBooking, string(intent.ID)); err != nil {
			s.logger().Error("failed to release nights for expired intent",
				"intent_id", intent.ID, "error", err)
		}
		s.recordEvents(ctx, intent)
		expired++
	}
	return expired, nil
}

func (s *Service) recordEvents(ctx context.Context, intent *domainbooking.Intent) {
	pending := intent.PendingEvents()
	intent.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, pending); err != nil {
		s.logger().Error("failed to record domain events", "intent_id", intent.ID, "error", err)
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
