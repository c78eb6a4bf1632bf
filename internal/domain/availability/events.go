package availability

import "time"

type SourceSynced struct {
	Source  Source
	Records int
	Skipped int
	At      time.Time
}

func (e SourceSynced) EventName() string     { return "calendar.source_synced" }
func (e SourceSynced) AggregateID() string   { return string(e.Source) }
func (e SourceSynced) OccurredAt() time.Time { return e.At }
