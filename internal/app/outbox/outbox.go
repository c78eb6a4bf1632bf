package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"retreat/internal/domain/shared/events"
)

// EventRecord is the serialized form of a domain event awaiting publication.
type EventRecord struct {
	ID         string
	Name       string
	Aggregate  string
	Payload    []byte
	Headers    map[string]string
	OccurredAt time.Time
}

// Outbox collects event records inside the same logical write as the state
// change that produced them; a worker drains it asynchronously.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
}

// EventEncoder turns a domain event into a transportable record.
type EventEncoder interface {
	Encode(ev events.Event) (EventRecord, error)
}

type JSONEventEncoder struct{}

func (JSONEventEncoder) Encode(ev events.Event) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	return EventRecord{
		ID:         uuid.NewString(),
		Name:       ev.EventName(),
		Aggregate:  ev.AggregateID(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt(),
	}, nil
}

// RecordDomainEvents encodes and stores a batch of pending domain events.
// A nil outbox is a no-op so callers can run without a broker configured.
func RecordDomainEvents(ctx context.Context, ob Outbox, enc EventEncoder, evs []events.Event) error {
	if ob == nil || len(evs) == 0 {
		return nil
	}
	if enc == nil {
		enc = JSONEventEncoder{}
	}
	for _, ev := range evs {
		record, err := enc.Encode(ev)
		if err != nil {
			return err
		}
		if err := ob.Add(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
