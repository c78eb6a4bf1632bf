package availability

import (
	"context"
	"errors"
	"strings"
	"time"

	"retreat/internal/domain/shared/daterange"
)

var (
	// ErrConflict indicates at least one requested night is already blocked.
	ErrConflict = errors.New("availability: requested nights are no longer available")
)

// Source identifies the origin system that blocked a date. A date may be
// blocked by several sources at once; it stays unavailable while any
// record for it exists.
type Source string

const (
	SourceBooking Source = "booking"
	SourceManual  Source = "manual"

	externalPrefix = "external:"
)

// ExternalSource tags a synced feed origin, e.g. ExternalSource("airbnb")
// yields "external:airbnb". An empty platform maps to "external:other".
func ExternalSource(platform string) Source {
	platform = strings.ToLower(strings.TrimSpace(platform))
	if platform == "" {
		platform = "other"
	}
	return Source(externalPrefix + platform)
}

// IsExternal reports whether the source originates from a synced feed.
func (s Source) IsExternal() bool {
	return strings.HasPrefix(string(s), externalPrefix)
}

// BlockedDate marks a single calendar night as unavailable. At most one
// record exists per (date, source) pair; upserts are keyed on that pair.
type BlockedDate struct {
	Date       time.Time
	Source     Source
	Label      string
	BookingRef string
}

// Key returns the upsert key for the record.
func (b BlockedDate) Key() string {
	return daterange.DayKey(b.Date) + "|" + string(b.Source)
}

// Reader is the query side of the availability calendar.
type Reader interface {
	// IsBlocked reports whether any record exists for the day, regardless
	// of source.
	IsBlocked(ctx context.Context, day time.Time) (bool, error)
	// BlockedWithin returns every record whose date falls inside the range.
	BlockedWithin(ctx context.Context, dr daterange.DateRange) ([]BlockedDate, error)
	// BlockedDates returns all records across all sources.
	BlockedDates(ctx context.Context) ([]BlockedDate, error)
}

// Store is the single owner of blocked-date mutations. It knows nothing
// about payment state; callers decide when ranges come and go.
type Store interface {
	Reader

	// BlockRange upserts one record per night in [CheckIn, CheckOut),
	// keyed by (date, source). Existing labels and references for the
	// same pair are overwritten.
	BlockRange(ctx context.Context, dr daterange.DateRange, source Source, label, bookingRef string) error

	// UnblockRange deletes records matching the range and source. A
	// non-empty bookingRef further restricts the delete so releasing a
	// failed booking never removes an overlapping block from another
	// origin. Deleting nothing is not an error.
	UnblockRange(ctx context.Context, dr daterange.DateRange, source Source, bookingRef string) error

	// ReplaceSource atomically swaps every record of one source for the
	// provided set. Readers must never observe the intermediate empty
	// state. Records carrying a different source are rejected.
	ReplaceSource(ctx context.Context, source Source, records []BlockedDate) error
}

// HasConflict reports whether any night in the range is blocked by any
// source. The check is advisory at intent-creation time; it narrows the
// race window but final correctness rests on per-intent block keying.
func HasConflict(ctx context.Context, r Reader, dr daterange.DateRange) (bool, error) {
	blocked, err := r.BlockedWithin(ctx, dr)
	if err != nil {
		return false, err
	}
	return len(blocked) > 0, nil
}
