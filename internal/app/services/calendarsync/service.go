package calendarsync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"retreat/internal/app/outbox"
	domainavailability "retreat/internal/domain/availability"
	"retreat/internal/domain/shared/events"
	"retreat/internal/infra/ics"
)

// FeedFetcher downloads raw feed text; it must not retry on its own.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Service refreshes externally-sourced blocked dates from calendar feeds.
// A failed fetch or parse leaves the previous records for that source
// untouched; only a successful parse reaches the store, and then as an
// atomic per-source swap.
type Service struct {
	Feeds        FeedFetcher
	Availability domainavailability.Store
	Outbox       outbox.Outbox
	Encoder      outbox.EventEncoder
	Logger       *slog.Logger
	Now          func() time.Time
}

// Result reports one completed sync.
type Result struct {
	Source  domainavailability.Source `json:"source"`
	Records int                       `json:"records"`
	Skipped int                       `json:"skipped"`
}

// Sync fetches and parses one feed, then swaps every source the feed
// produced records for. The platform's own source is always swapped, even
// to empty, so cancelled external reservations disappear on re-sync.
// Records never carry the booking source, so a re-sync cannot disturb
// confirmed reservations.
func (s *Service) Sync(ctx context.Context, url, platform string) (Result, error) {
	feed, err := s.Feeds.Fetch(ctx, url)
	if err != nil {
		return Result{}, fmt.Errorf("calendarsync: %w", err)
	}

	parsed := ics.Parse(feed, platform)
	platformSource := domainavailability.ExternalSource(platform)

	bySource := make(map[domainavailability.Source][]domainavailability.BlockedDate)
	bySource[platformSource] = nil
	for _, record := range parsed.Records {
		bySource[record.Source] = append(bySource[record.Source], record)
	}

	for source, records := range bySource {
		if err := s.Availability.ReplaceSource(ctx, source, records); err != nil {
			return Result{}, fmt.Errorf("calendarsync: replace %s: %w", source, err)
		}
	}

	if parsed.Skipped > 0 {
		s.logger().Warn("skipped malformed feed events", "source", platformSource, "skipped", parsed.Skipped)
	}
	s.logger().Info("calendar source synced",
		"source", platformSource, "records", len(parsed.Records), "skipped", parsed.Skipped)

	synced := domainavailability.SourceSynced{
		Source:  platformSource,
		Records: len(parsed.Records),
		Skipped: parsed.Skipped,
		At:      s.now(),
	}
	if err := outbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, []events.Event{synced}); err != nil {
		s.logger().Error("failed to record sync event", "source", platformSource, "error", err)
	}

	return Result{Source: platformSource, Records: len(parsed.Records), Skipped: parsed.Skipped}, nil
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
