package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "retreat/internal/domain/booking"
	domainpricing "retreat/internal/domain/pricing"
	"retreat/internal/domain/shared/daterange"
	"retreat/internal/domain/shared/money"
)

const intentsCollection = "booking_intents"

type IntentRepository struct {
	col *mongo.Collection
}

func NewIntentRepository(db *mongo.Database) *IntentRepository {
	return &IntentRepository{col: db.Collection(intentsCollection)}
}

func (r *IntentRepository) ByID(ctx context.Context, id domainbooking.IntentID) (*domainbooking.Intent, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *IntentRepository) ByCheckoutRef(ctx context.Context, ref string) (*domainbooking.Intent, error) {
	return r.findOne(ctx, bson.M{"checkout_ref": ref})
}

func (r *IntentRepository) findOne(ctx context.Context, filter bson.M) (*domainbooking.Intent, error) {
	var doc intentDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrIntentNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts with an optimistic version filter; a lost race surfaces as
// ErrConcurrentUpdate so duplicate notification handlers back off.
func (r *IntentRepository) Save(ctx context.Context, intent *domainbooking.Intent) error {
	doc := newIntentDocument(intent)
	filter := bson.M{"_id": doc.ID, "version": intent.Version}
	doc.Version = intent.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainbooking.ErrConcurrentUpdate
	}
	intent.Version = doc.Version
	return nil
}

func (r *IntentRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*domainbooking.Intent, error) {
	return r.findMany(ctx, bson.M{
		"status":     string(domainbooking.StatusPending),
		"created_at": bson.M{"$lt": cutoff.UTC().UnixMilli()},
	})
}

func (r *IntentRepository) ListConfirmed(ctx context.Context) ([]*domainbooking.Intent, error) {
	return r.findMany(ctx, bson.M{"status": string(domainbooking.StatusConfirmed)})
}

func (r *IntentRepository) findMany(ctx context.Context, filter bson.M) ([]*domainbooking.Intent, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainbooking.Intent
	for cursor.Next(ctx) {
		var doc intentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type intentDocument struct {
	ID          string        `bson:"_id"`
	GuestEmail  string        `bson:"guest_email"`
	Guests      int           `bson:"guests"`
	Range       rangeDocument `bson:"range"`
	Quote       quoteDocument `bson:"quote"`
	Status      string        `bson:"status"`
	CheckoutRef string        `bson:"checkout_ref"`
	CreatedAt   int64         `bson:"created_at"`
	UpdatedAt   int64         `bson:"updated_at"`
	Version     int64         `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

type quoteDocument struct {
	Nights   int    `bson:"nights"`
	Subtotal int64  `bson:"subtotal"`
	Tax      int64  `bson:"tax"`
	Total    int64  `bson:"total"`
	Currency string `bson:"currency"`
}

func newIntentDocument(intent *domainbooking.Intent) intentDocument {
	return intentDocument{
		ID:         string(intent.ID),
		GuestEmail: intent.GuestEmail,
		Guests:     intent.Guests,
		Range: rangeDocument{
			CheckIn:  intent.Range.CheckIn.UnixMilli(),
			CheckOut: intent.Range.CheckOut.UnixMilli(),
		},
		Quote: quoteDocument{
			Nights:   intent.Quote.Nights,
			Subtotal: intent.Quote.Subtotal.Amount,
			Tax:      intent.Quote.Tax.Amount,
			Total:    intent.Quote.Total.Amount,
			Currency: intent.Quote.Total.Currency,
		},
		Status:      string(intent.Status),
		CheckoutRef: intent.CheckoutRef,
		CreatedAt:   intent.CreatedAt.UnixMilli(),
		UpdatedAt:   intent.UpdatedAt.UnixMilli(),
		Version:     intent.Version,
	}
}

func (d intentDocument) toAggregate() *domainbooking.Intent {
	return &domainbooking.Intent{
		ID:         domainbooking.IntentID(d.ID),
		GuestEmail: d.GuestEmail,
		Guests:     d.Guests,
		Range: daterange.DateRange{
			CheckIn:  timestampToTime(d.Range.CheckIn),
			CheckOut: timestampToTime(d.Range.CheckOut),
		},
		Quote: domainpricing.Quote{
			Nights:   d.Quote.Nights,
			Subtotal: money.Money{Amount: d.Quote.Subtotal, Currency: d.Quote.Currency},
			Tax:      money.Money{Amount: d.Quote.Tax, Currency: d.Quote.Currency},
			Total:    money.Money{Amount: d.Quote.Total, Currency: d.Quote.Currency},
		},
		Status:      domainbooking.IntentStatus(d.Status),
		CheckoutRef: d.CheckoutRef,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainbooking.Repository = (*IntentRepository)(nil)
