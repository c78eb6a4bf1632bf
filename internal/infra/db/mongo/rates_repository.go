package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpricing "retreat/internal/domain/pricing"
	"retreat/internal/domain/shared/money"
)

const ratesCollection = "rate_configs"

// RateLogRepository is the append-only rate history; documents are never
// updated, only inserted.
type RateLogRepository struct {
	col *mongo.Collection
}

func NewRateLogRepository(db *mongo.Database) *RateLogRepository {
	return &RateLogRepository{col: db.Collection(ratesCollection)}
}

type rateDocument struct {
	Nightly        int64   `bson:"nightly"`
	CleaningFee    int64   `bson:"cleaning_fee"`
	Currency       string  `bson:"currency"`
	TaxRatePercent float64 `bson:"tax_rate_percent"`
	EffectiveFrom  int64   `bson:"effective_from"`
	CreatedAt      int64   `bson:"created_at"`
}

func (r *RateLogRepository) Append(ctx context.Context, rc domainpricing.RateConfig) error {
	if err := rc.Validate(); err != nil {
		return err
	}
	_, err := r.col.InsertOne(ctx, rateDocument{
		Nightly:        rc.Nightly.Amount,
		CleaningFee:    rc.CleaningFee.Amount,
		Currency:       rc.Nightly.Currency,
		TaxRatePercent: rc.TaxRatePercent,
		EffectiveFrom:  rc.EffectiveFrom.UTC().UnixMilli(),
		CreatedAt:      rc.CreatedAt.UTC().UnixMilli(),
	})
	return err
}

func (r *RateLogRepository) Current(ctx context.Context) (domainpricing.RateConfig, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var doc rateDocument
	if err := r.col.FindOne(ctx, bson.M{}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainpricing.RateConfig{}, domainpricing.ErrNoRateConfigured
		}
		return domainpricing.RateConfig{}, err
	}
	return domainpricing.RateConfig{
		Nightly:        money.Money{Amount: doc.Nightly, Currency: doc.Currency},
		CleaningFee:    money.Money{Amount: doc.CleaningFee, Currency: doc.Currency},
		TaxRatePercent: doc.TaxRatePercent,
		EffectiveFrom:  time.UnixMilli(doc.EffectiveFrom).UTC(),
		CreatedAt:      time.UnixMilli(doc.CreatedAt).UTC(),
	}, nil
}

var _ domainpricing.RateLog = (*RateLogRepository)(nil)
