package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaindeposit "gearshare/internal/domain/deposit"
	domainrental "gearshare/internal/domain/rental"
)

type DepositRepository struct {
	col *mongo.Collection
}

func NewDepositRepository(db *mongo.Database) *DepositRepository {
	col := db.Collection("agg_deposit_hold")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "opened_at", Value: 1}},
	})
	return &DepositRepository{col: col}
}

func (r *DepositRepository) ByRental(ctx context.Context, rentalID domainrental.RentalID) (*domaindeposit.Hold, error) {
	var doc depositDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": rentalID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaindeposit.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *DepositRepository) ListUnsettled(ctx context.Context, limit int) ([]*domaindeposit.Hold, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "opened_at", Value: 1}})
	if limit > 0 {
		findOpts = findOpts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{"status": string(domaindeposit.StatusHeld)}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domaindeposit.Hold
	for cur.Next(ctx) {
		var doc depositDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

// Save races against concurrent sweeps on the version filter, so a settled
// hold is never flipped back.
func (r *DepositRepository) Save(ctx context.Context, h *domaindeposit.Hold) error {
	doc := newDepositDocument(h)
	filter := bson.M{"_id": doc.ID, "version": h.Version}
	doc.Version = h.Version + 1
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	h.Version = doc.Version
	return nil
}

type depositDocument struct {
	ID          string `bson:"_id"`
	RenterID    string `bson:"renter_id"`
	OwnerID     string `bson:"owner_id"`
	AmountCents int64  `bson:"amount_cents"`
	OpenedAt    int64  `bson:"opened_at"`
	ExpiresAt   int64  `bson:"expires_at"`
	Status      string `bson:"status"`
	SettledAt   int64  `bson:"settled_at"`
	Version     int64  `bson:"version"`
}

func newDepositDocument(h *domaindeposit.Hold) depositDocument {
	doc := depositDocument{
		ID:          string(h.RentalID),
		RenterID:    h.RenterID,
		OwnerID:     h.OwnerID,
		AmountCents: h.AmountCents,
		OpenedAt:    h.OpenedAt.UnixMilli(),
		ExpiresAt:   h.ExpiresAt.UnixMilli(),
		Status:      string(h.Status),
		Version:     h.Version,
	}
	if !h.SettledAt.IsZero() {
		doc.SettledAt = h.SettledAt.UnixMilli()
	}
	return doc
}

func (d depositDocument) toAggregate() *domaindeposit.Hold {
	h := &domaindeposit.Hold{
		RentalID:    domainrental.RentalID(d.ID),
		RenterID:    d.RenterID,
		OwnerID:     d.OwnerID,
		AmountCents: d.AmountCents,
		OpenedAt:    timestampToTime(d.OpenedAt),
		ExpiresAt:   timestampToTime(d.ExpiresAt),
		Status:      domaindeposit.Status(d.Status),
		Version:     d.Version,
	}
	if d.SettledAt != 0 {
		h.SettledAt = timestampToTime(d.SettledAt)
	}
	return h
}
