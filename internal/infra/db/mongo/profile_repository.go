package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaingamification "gearshare/internal/domain/gamification"
)

type ProfileRepository struct {
	col *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{col: db.Collection("agg_reputation_profile")}
}

// ByUser returns the stored profile, or an empty one for unknown users.
func (r *ProfileRepository) ByUser(ctx context.Context, userID string) (*domaingamification.Profile, error) {
	var doc profileDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domaingamification.Profile{UserID: userID}, nil
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Apply increments the counters atomically with $inc, then derives the badge
// set from the post-increment values. Counters are monotonic so the badge
// write cannot regress even if two awards interleave.
func (r *ProfileRepository) Apply(ctx context.Context, userID string, delta domaingamification.Delta) (*domaingamification.Profile, error) {
	update := bson.M{
		"$inc": bson.M{
			"owner_points":       delta.OwnerPoints,
			"renter_points":      delta.RenterPoints,
			"successful_rentals": delta.SuccessfulRentals,
			"reviews_written":    delta.ReviewsWritten,
		},
		"$set":         bson.M{"updated_at": delta.At.UnixMilli()},
		"$setOnInsert": bson.M{"_id": userID},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc profileDocument
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&doc); err != nil {
		return nil, err
	}
	p := doc.toAggregate()
	p.Badges = domaingamification.RecomputeBadges(p)
	if _, err := r.col.UpdateByID(ctx, userID, bson.M{"$set": bson.M{"badges": p.Badges}}); err != nil {
		return nil, err
	}
	return p, nil
}

type profileDocument struct {
	ID                string   `bson:"_id"`
	OwnerPoints       int64    `bson:"owner_points"`
	RenterPoints      int64    `bson:"renter_points"`
	SuccessfulRentals int64    `bson:"successful_rentals"`
	ReviewsWritten    int64    `bson:"reviews_written"`
	Badges            []string `bson:"badges"`
	UpdatedAt         int64    `bson:"updated_at"`
}

func (d profileDocument) toAggregate() *domaingamification.Profile {
	return &domaingamification.Profile{
		UserID:            d.ID,
		OwnerPoints:       d.OwnerPoints,
		RenterPoints:      d.RenterPoints,
		SuccessfulRentals: d.SuccessfulRentals,
		ReviewsWritten:    d.ReviewsWritten,
		Badges:            d.Badges,
		UpdatedAt:         timestampToTime(d.UpdatedAt),
	}
}
