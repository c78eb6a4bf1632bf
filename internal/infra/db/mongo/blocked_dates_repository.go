package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "retreat/internal/domain/availability"
	"retreat/internal/domain/shared/daterange"
)

const blockedDatesCollection = "blocked_dates"

// BlockedDateRepository stores one document per (date, source) pair, keyed
// by the pair itself so upserts are naturally idempotent.
type BlockedDateRepository struct {
	col *mongo.Collection
}

func NewBlockedDateRepository(db *mongo.Database) *BlockedDateRepository {
	return &BlockedDateRepository{col: db.Collection(blockedDatesCollection)}
}

type blockedDateDocument struct {
	ID         string `bson:"_id"`
	Date       string `bson:"date"`
	Source     string `bson:"source"`
	Label      string `bson:"label"`
	BookingRef string `bson:"booking_ref,omitempty"`
}

func newBlockedDateDocument(record domainavailability.BlockedDate) blockedDateDocument {
	return blockedDateDocument{
		ID:         record.Key(),
		Date:       daterange.DayKey(record.Date),
		Source:     string(record.Source),
		Label:      record.Label,
		BookingRef: record.BookingRef,
	}
}

func (d blockedDateDocument) toRecord() (domainavailability.BlockedDate, error) {
	day, err := daterange.ParseDay(d.Date)
	if err != nil {
		return domainavailability.BlockedDate{}, fmt.Errorf("mongo: corrupt blocked date %q: %w", d.Date, err)
	}
	return domainavailability.BlockedDate{
		Date:       day,
		Source:     domainavailability.Source(d.Source),
		Label:      d.Label,
		BookingRef: d.BookingRef,
	}, nil
}

func (r *BlockedDateRepository) IsBlocked(ctx context.Context, day time.Time) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"date": daterange.DayKey(day)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *BlockedDateRepository) BlockedWithin(ctx context.Context, dr daterange.DateRange) ([]domainavailability.BlockedDate, error) {
	filter := bson.M{"date": bson.M{
		"$gte": daterange.DayKey(dr.CheckIn),
		"$lt":  daterange.DayKey(dr.CheckOut),
	}}
	return r.find(ctx, filter)
}

func (r *BlockedDateRepository) BlockedDates(ctx context.Context) ([]domainavailability.BlockedDate, error) {
	return r.find(ctx, bson.M{})
}

func (r *BlockedDateRepository) find(ctx context.Context, filter bson.M) ([]domainavailability.BlockedDate, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []domainavailability.BlockedDate
	for cursor.Next(ctx) {
		var doc blockedDateDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		record, err := doc.toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, cursor.Err()
}

func (r *BlockedDateRepository) BlockRange(ctx context.Context, dr daterange.DateRange, source domainavailability.Source, label, bookingRef string) error {
	models := make([]mongo.WriteModel, 0, dr.Nights())
	for _, day := range dr.Days() {
		doc := newBlockedDateDocument(domainavailability.BlockedDate{
			Date:       day,
			Source:     source,
			Label:      label,
			BookingRef: bookingRef,
		})
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetUpdate(bson.M{"$set": doc}).
			SetUpsert(true))
	}
	_, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

func (r *BlockedDateRepository) UnblockRange(ctx context.Context, dr daterange.DateRange, source domainavailability.Source, bookingRef string) error {
	filter := bson.M{
		"date": bson.M{
			"$gte": daterange.DayKey(dr.CheckIn),
			"$lt":  daterange.DayKey(dr.CheckOut),
		},
		"source": string(source),
	}
	if bookingRef != "" {
		filter["booking_ref"] = bookingRef
	}
	_, err := r.col.DeleteMany(ctx, filter)
	return err
}

// ReplaceSource swaps a source's records inside a session transaction so
// concurrent readers see the old set or the new set, never the gap.
func (r *BlockedDateRepository) ReplaceSource(ctx context.Context, source domainavailability.Source, records []domainavailability.BlockedDate) error {
	docs := make([]any, 0, len(records))
	for _, record := range records {
		if record.Source != source {
			return fmt.Errorf("mongo: record for source %q in replace of %q", record.Source, source)
		}
		docs = append(docs, newBlockedDateDocument(record))
	}

	session, err := r.col.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		if _, err := r.col.DeleteMany(sessCtx, bson.M{"source": string(source)}); err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, nil
		}
		_, err := r.col.InsertMany(sessCtx, docs)
		return nil, err
	})
	return err
}

var _ domainavailability.Store = (*BlockedDateRepository)(nil)
