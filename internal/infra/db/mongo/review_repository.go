package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainitem "gearshare/internal/domain/item"
	domainrental "gearshare/internal/domain/rental"
	domainreview "gearshare/internal/domain/review"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	col := db.Collection("agg_review")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "rental_id", Value: 1}, {Key: "author_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &ReviewRepository{col: col}
}

func (r *ReviewRepository) ByRentalAndAuthor(ctx context.Context, rentalID domainrental.RentalID, authorID string) (*domainreview.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, bson.M{"rental_id": rentalID, "author_id": authorID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreview.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) ListByItem(ctx context.Context, itemID domainitem.ItemID, limit, offset int) ([]*domainreview.Review, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		findOpts = findOpts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{"item_id": itemID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainreview.Review
	for cur.Next(ctx) {
		var doc reviewDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

func (r *ReviewRepository) Save(ctx context.Context, rev *domainreview.Review) error {
	doc := newReviewDocument(rev)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return domainreview.ErrAlreadyReviewed
	}
	return err
}

type reviewDocument struct {
	ID         string `bson:"_id"`
	RentalID   string `bson:"rental_id"`
	ItemID     string `bson:"item_id"`
	AuthorID   string `bson:"author_id"`
	AuthorRole string `bson:"author_role"`
	SubjectID  string `bson:"subject_id"`
	Rating     int    `bson:"rating"`
	Text       string `bson:"text"`
	CreatedAt  int64  `bson:"created_at"`
}

func newReviewDocument(rev *domainreview.Review) reviewDocument {
	return reviewDocument{
		ID:         string(rev.ID),
		RentalID:   string(rev.RentalID),
		ItemID:     string(rev.ItemID),
		AuthorID:   rev.AuthorID,
		AuthorRole: string(rev.AuthorRole),
		SubjectID:  rev.SubjectID,
		Rating:     rev.Rating,
		Text:       rev.Text,
		CreatedAt:  rev.CreatedAt.UnixMilli(),
	}
}

func (d reviewDocument) toAggregate() *domainreview.Review {
	return &domainreview.Review{
		ID:         domainreview.ReviewID(d.ID),
		RentalID:   domainrental.RentalID(d.RentalID),
		ItemID:     domainitem.ItemID(d.ItemID),
		AuthorID:   d.AuthorID,
		AuthorRole: domainrental.Role(d.AuthorRole),
		SubjectID:  d.SubjectID,
		Rating:     d.Rating,
		Text:       d.Text,
		CreatedAt:  timestampToTime(d.CreatedAt),
	}
}
