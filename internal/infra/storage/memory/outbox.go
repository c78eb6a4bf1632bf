package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "retreat/internal/app/outbox"
	infraoutbox "retreat/internal/infra/outbox"
)

type outboxEntry struct {
	doc         infraoutbox.EventDocument
	availableAt time.Time
	claimedBy   string
}

// Outbox is the in-memory event queue. Services Add records to it and the
// publisher worker Claims them back out.
type Outbox struct {
	mu      sync.Mutex
	entries []*outboxEntry
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, &outboxEntry{
		doc: infraoutbox.EventDocument{
			ID:         record.ID,
			Name:       record.Name,
			Aggregate:  record.Aggregate,
			Payload:    record.Payload,
			Headers:    record.Headers,
			OccurredAt: record.OccurredAt,
		},
	})
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	for _, entry := range o.entries {
		if entry.claimedBy != "" || entry.availableAt.After(now) {
			continue
		}
		entry.claimedBy = workerID
		doc := entry.doc
		return &doc, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, entry := range o.entries {
		if entry.doc.ID == id {
			o.entries = append(o.entries[:i], o.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, entry := range o.entries {
		if entry.doc.ID == id {
			entry.claimedBy = ""
			entry.availableAt = retryAt
			entry.doc.Attempts++
			return nil
		}
	}
	return nil
}

// Pending reports how many events still await delivery.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries)
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Store = (*Outbox)(nil)
)
