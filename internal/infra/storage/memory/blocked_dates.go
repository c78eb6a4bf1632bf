package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainavailability "retreat/internal/domain/availability"
	"retreat/internal/domain/shared/daterange"
)

// BlockedDateStore is an in-memory availability calendar. Records are
// bucketed per day and keyed by source inside the bucket, so upserts to
// different (date, source) pairs never clobber each other and a day reads
// as blocked while any source still holds it.
type BlockedDateStore struct {
	mu   sync.RWMutex
	days map[string]map[domainavailability.Source]domainavailability.BlockedDate
}

func NewBlockedDateStore() *BlockedDateStore {
	return &BlockedDateStore{
		days: make(map[string]map[domainavailability.Source]domainavailability.BlockedDate),
	}
}

func (s *BlockedDateStore) IsBlocked(ctx context.Context, day time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.days[daterange.DayKey(day)]) > 0, nil
}

func (s *BlockedDateStore) BlockedWithin(ctx context.Context, dr daterange.DateRange) ([]domainavailability.BlockedDate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domainavailability.BlockedDate
	for _, day := range dr.Days() {
		for _, record := range s.days[daterange.DayKey(day)] {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *BlockedDateStore) BlockedDates(ctx context.Context) ([]domainavailability.BlockedDate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domainavailability.BlockedDate
	for _, bucket := range s.days {
		for _, record := range bucket {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *BlockedDateStore) BlockRange(ctx context.Context, dr daterange.DateRange, source domainavailability.Source, label, bookingRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, day := range dr.Days() {
		s.put(domainavailability.BlockedDate{
			Date:       day,
			Source:     source,
			Label:      label,
			BookingRef: bookingRef,
		})
	}
	return nil
}

func (s *BlockedDateStore) UnblockRange(ctx context.Context, dr daterange.DateRange, source domainavailability.Source, bookingRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, day := range dr.Days() {
		key := daterange.DayKey(day)
		bucket, ok := s.days[key]
		if !ok {
			continue
		}
		record, ok := bucket[source]
		if !ok {
			continue
		}
		if bookingRef != "" && record.BookingRef != bookingRef {
			continue
		}
		delete(bucket, source)
		if len(bucket) == 0 {
			delete(s.days, key)
		}
	}
	return nil
}

// ReplaceSource swaps all records of one source under the write lock, so
// readers see either the old set or the new set, never the gap between.
func (s *BlockedDateStore) ReplaceSource(ctx context.Context, source domainavailability.Source, records []domainavailability.BlockedDate) error {
	for _, record := range records {
		if record.Source != source {
			return fmt.Errorf("memory: record for source %q in replace of %q", record.Source, source)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, bucket := range s.days {
		if _, ok := bucket[source]; !ok {
			continue
		}
		delete(bucket, source)
		if len(bucket) == 0 {
			delete(s.days, key)
		}
	}
	for _, record := range records {
		s.put(record)
	}
	return nil
}

func (s *BlockedDateStore) put(record domainavailability.BlockedDate) {
	record.Date = daterange.Day(record.Date)
	key := daterange.DayKey(record.Date)
	bucket, ok := s.days[key]
	if !ok {
		bucket = make(map[domainavailability.Source]domainavailability.BlockedDate)
		s.days[key] = bucket
	}
	bucket[record.Source] = record
}

var _ domainavailability.Store = (*BlockedDateStore)(nil)
