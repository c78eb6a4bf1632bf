package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: check-out must be after check-in")

// DayFormat is the canonical wire and storage layout for calendar days.
const DayFormat = "2006-01-02"

// DateRange is a half-open interval of calendar days. The guest occupies
// every night in [CheckIn, CheckOut); the check-out day itself is free.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New builds a DateRange, truncating both endpoints to UTC calendar days.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	in := Day(checkIn)
	out := Day(checkOut)
	if !out.After(in) {
		return DateRange{}, ErrInvalidRange
	}
	return DateRange{CheckIn: in, CheckOut: out}, nil
}

// Nights counts the whole days between check-in and check-out.
func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Days returns one entry per occupied night, check-out day excluded.
func (r DateRange) Days() []time.Time {
	days := make([]time.Time, 0, r.Nights())
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Contains reports whether the given day is an occupied night of the range.
func (r DateRange) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}

// Overlaps reports whether two ranges share at least one night.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

// Day truncates a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey formats a day for use as a storage key.
func DayKey(t time.Time) string {
	return Day(t).Format(DayFormat)
}

// ParseDay parses a YYYY-MM-DD day into a UTC timestamp.
func ParseDay(value string) (time.Time, error) {
	return time.Parse(DayFormat, value)
}
