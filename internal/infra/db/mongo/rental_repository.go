package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainitem "gearshare/internal/domain/item"
	domainrental "gearshare/internal/domain/rental"
	"gearshare/internal/domain/shared/dateinterval"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type RentalRepository struct {
	col *mongo.Collection
}

func NewRentalRepository(db *mongo.Database) *RentalRepository {
	return &RentalRepository{col: db.Collection("agg_rental")}
}

func (r *RentalRepository) ByID(ctx context.Context, id domainrental.RentalID) (*domainrental.Rental, error) {
	var doc rentalDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrental.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save uses the version as part of the update filter so two writers racing on
// the same rental cannot both win.
func (r *RentalRepository) Save(ctx context.Context, rental *domainrental.Rental) error {
	doc := newRentalDocument(rental)
	filter := bson.M{"_id": doc.ID, "version": rental.Version}
	doc.Version = rental.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	rental.Version = doc.Version
	return nil
}

func (r *RentalRepository) ListByItem(ctx context.Context, itemID domainitem.ItemID) ([]*domainrental.Rental, error) {
	return r.list(ctx, bson.M{"item_id": itemID})
}

func (r *RentalRepository) ListByParty(ctx context.Context, userID string) ([]*domainrental.Rental, error) {
	return r.list(ctx, bson.M{"$or": bson.A{bson.M{"owner_id": userID}, bson.M{"renter_id": userID}}})
}

func (r *RentalRepository) list(ctx context.Context, filter bson.M) ([]*domainrental.Rental, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainrental.Rental
	for cur.Next(ctx) {
		var doc rentalDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type rentalDocument struct {
	ID             string `bson:"_id"`
	ItemID         string `bson:"item_id"`
	RenterID       string `bson:"renter_id"`
	OwnerID        string `bson:"owner_id"`
	StartDate      int64  `bson:"start_date"`
	EndDate        int64  `bson:"end_date"`
	StartTime      string `bson:"start_time"`
	EndTime        string `bson:"end_time"`
	DailyRateCents int64  `bson:"daily_rate_cents"`
	TotalCents     int64  `bson:"total_cents"`
	Status         string `bson:"status"`
	Reviewed       bool   `bson:"reviewed"`
	CreatedAt      int64  `bson:"created_at"`
	UpdatedAt      int64  `bson:"updated_at"`
	Version        int64  `bson:"version"`
}

func newRentalDocument(r *domainrental.Rental) rentalDocument {
	return rentalDocument{
		ID:             string(r.ID),
		ItemID:         string(r.ItemID),
		RenterID:       r.RenterID,
		OwnerID:        r.OwnerID,
		StartDate:      r.Period.Start.UnixMilli(),
		EndDate:        r.Period.End.UnixMilli(),
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		DailyRateCents: r.DailyRateCents,
		TotalCents:     r.TotalCents,
		Status:         string(r.Status),
		Reviewed:       r.Reviewed,
		CreatedAt:      r.CreatedAt.UnixMilli(),
		UpdatedAt:      r.UpdatedAt.UnixMilli(),
		Version:        r.Version,
	}
}

func (d rentalDocument) toAggregate() *domainrental.Rental {
	return &domainrental.Rental{
		ID:       domainrental.RentalID(d.ID),
		ItemID:   domainitem.ItemID(d.ItemID),
		RenterID: d.RenterID,
		OwnerID:  d.OwnerID,
		Period: dateinterval.Interval{
			Start: timestampToTime(d.StartDate),
			End:   timestampToTime(d.EndDate),
		},
		StartTime:      d.StartTime,
		EndTime:        d.EndTime,
		DailyRateCents: d.DailyRateCents,
		TotalCents:     d.TotalCents,
		Status:         domainrental.Status(d.Status),
		Reviewed:       d.Reviewed,
		CreatedAt:      timestampToTime(d.CreatedAt),
		UpdatedAt:      timestampToTime(d.UpdatedAt),
		Version:        d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
