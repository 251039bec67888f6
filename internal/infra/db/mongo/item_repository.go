package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainitem "gearshare/internal/domain/item"
)

type ItemRepository struct {
	col *mongo.Collection
}

func NewItemRepository(db *mongo.Database) *ItemRepository {
	return &ItemRepository{col: db.Collection("agg_item")}
}

func (r *ItemRepository) ByID(ctx context.Context, id domainitem.ItemID) (*domainitem.Item, error) {
	var doc itemDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainitem.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ItemRepository) Save(ctx context.Context, it *domainitem.Item) error {
	doc := newItemDocument(it)
	filter := bson.M{"_id": doc.ID, "version": it.Version}
	doc.Version = it.Version + 1
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
	it.Version = doc.Version
	return nil
}

func (r *ItemRepository) Search(ctx context.Context, params domainitem.SearchParams) ([]*domainitem.Item, error) {
	opts := params.Normalized()
	filter := bson.M{}
	if !opts.IncludeSuspended {
		filter["suspended"] = false
	}
	if opts.OwnerID != "" {
		filter["owner_id"] = opts.OwnerID
	}
	if opts.Category != "" {
		filter["category"] = opts.Category
	}
	if opts.MaxDailyRateCents > 0 {
		filter["daily_rate_cents"] = bson.M{"$lte": opts.MaxDailyRateCents}
	}
	if opts.Query != "" {
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": opts.Query, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": opts.Query, "$options": "i"}},
		}
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit))
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainitem.Item
	for cur.Next(ctx) {
		var doc itemDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type itemDocument struct {
	ID             string   `bson:"_id"`
	OwnerID        string   `bson:"owner_id"`
	Title          string   `bson:"title"`
	Description    string   `bson:"description"`
	Category       string   `bson:"category"`
	DailyRateCents int64    `bson:"daily_rate_cents"`
	PhotoURLs      []string `bson:"photo_urls"`
	Suspended      bool     `bson:"suspended"`
	SuspendedBy    string   `bson:"suspended_by"`
	CreatedAt      int64    `bson:"created_at"`
	UpdatedAt      int64    `bson:"updated_at"`
	Version        int64    `bson:"version"`
}

func newItemDocument(it *domainitem.Item) itemDocument {
	return itemDocument{
		ID:             string(it.ID),
		OwnerID:        it.OwnerID,
		Title:          it.Title,
		Description:    it.Description,
		Category:       it.Category,
		DailyRateCents: it.DailyRateCents,
		PhotoURLs:      it.PhotoURLs,
		Suspended:      it.Suspended,
		SuspendedBy:    it.SuspendedBy,
		CreatedAt:      it.CreatedAt.UnixMilli(),
		UpdatedAt:      it.UpdatedAt.UnixMilli(),
		Version:        it.Version,
	}
}

func (d itemDocument) toAggregate() *domainitem.Item {
	return &domainitem.Item{
		ID:             domainitem.ItemID(d.ID),
		OwnerID:        d.OwnerID,
		Title:          d.Title,
		Description:    d.Description,
		Category:       d.Category,
		DailyRateCents: d.DailyRateCents,
		PhotoURLs:      d.PhotoURLs,
		Suspended:      d.Suspended,
		SuspendedBy:    d.SuspendedBy,
		CreatedAt:      timestampToTime(d.CreatedAt),
		UpdatedAt:      timestampToTime(d.UpdatedAt),
		Version:        d.Version,
	}
}
