package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincondition "gearshare/internal/domain/condition"
	domainitem "gearshare/internal/domain/item"
	domainrental "gearshare/internal/domain/rental"
)

type ConditionRepository struct {
	col *mongo.Collection
}

func NewConditionRepository(db *mongo.Database) *ConditionRepository {
	col := db.Collection("agg_condition_report")
	// One report per (rental, kind) is enforced at the storage level too.
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "rental_id", Value: 1}, {Key: "kind", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &ConditionRepository{col: col}
}

func (r *ConditionRepository) ByID(ctx context.Context, id domaincondition.ReportID) (*domaincondition.Report, error) {
	var doc conditionDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincondition.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ConditionRepository) ByRentalAndKind(ctx context.Context, rentalID domainrental.RentalID, kind domaincondition.Kind) (*domaincondition.Report, error) {
	var doc conditionDocument
	if err := r.col.FindOne(ctx, bson.M{"rental_id": rentalID, "kind": kind}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincondition.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ConditionRepository) ListByRental(ctx context.Context, rentalID domainrental.RentalID) ([]*domaincondition.Report, error) {
	cur, err := r.col.Find(ctx, bson.M{"rental_id": rentalID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domaincondition.Report
	for cur.Next(ctx) {
		var doc conditionDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

func (r *ConditionRepository) Save(ctx context.Context, rep *domaincondition.Report) error {
	doc := newConditionDocument(rep)
	filter := bson.M{"_id": doc.ID, "version": rep.Version}
	doc.Version = rep.Version + 1
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domaincondition.ErrAlreadyFiled
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	rep.Version = doc.Version
	return nil
}

type conditionDocument struct {
	ID         string   `bson:"_id"`
	RentalID   string   `bson:"rental_id"`
	ItemID     string   `bson:"item_id"`
	Kind       string   `bson:"kind"`
	AuthorID   string   `bson:"author_id"`
	Notes      string   `bson:"notes"`
	PhotoURLs  []string `bson:"photo_urls"`
	Grade      string   `bson:"grade"`
	VerifiedBy string   `bson:"verified_by"`
	VerifiedAt int64    `bson:"verified_at"`
	CreatedAt  int64    `bson:"created_at"`
	Version    int64    `bson:"version"`
}

func newConditionDocument(rep *domaincondition.Report) conditionDocument {
	doc := conditionDocument{
		ID:         string(rep.ID),
		RentalID:   string(rep.RentalID),
		ItemID:     string(rep.ItemID),
		Kind:       string(rep.Kind),
		AuthorID:   rep.AuthorID,
		Notes:      rep.Notes,
		PhotoURLs:  rep.PhotoURLs,
		Grade:      string(rep.Grade),
		VerifiedBy: rep.VerifiedBy,
		CreatedAt:  rep.CreatedAt.UnixMilli(),
		Version:    rep.Version,
	}
	if !rep.VerifiedAt.IsZero() {
		doc.VerifiedAt = rep.VerifiedAt.UnixMilli()
	}
	return doc
}

func (d conditionDocument) toAggregate() *domaincondition.Report {
	rep := &domaincondition.Report{
		ID:         domaincondition.ReportID(d.ID),
		RentalID:   domainrental.RentalID(d.RentalID),
		ItemID:     domainitem.ItemID(d.ItemID),
		Kind:       domaincondition.Kind(d.Kind),
		AuthorID:   d.AuthorID,
		Notes:      d.Notes,
		PhotoURLs:  d.PhotoURLs,
		Grade:      domaincondition.Grade(d.Grade),
		VerifiedBy: d.VerifiedBy,
		CreatedAt:  timestampToTime(d.CreatedAt),
		Version:    d.Version,
	}
	if d.VerifiedAt != 0 {
		rep.VerifiedAt = timestampToTime(d.VerifiedAt)
	}
	return rep
}
