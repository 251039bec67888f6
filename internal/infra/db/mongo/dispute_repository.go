package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincondition "gearshare/internal/domain/condition"
	domaindispute "gearshare/internal/domain/dispute"
	domainitem "gearshare/internal/domain/item"
	domainrental "gearshare/internal/domain/rental"
)

type DisputeRepository struct {
	col *mongo.Collection
}

func NewDisputeRepository(db *mongo.Database) *DisputeRepository {
	col := db.Collection("agg_dispute")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "rental_id", Value: 1}, {Key: "status", Value: 1}},
	})
	return &DisputeRepository{col: col}
}

func (r *DisputeRepository) ByID(ctx context.Context, id domaindispute.DisputeID) (*domaindispute.Dispute, error) {
	var doc disputeDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaindispute.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *DisputeRepository) ActiveByRental(ctx context.Context, rentalID domainrental.RentalID) (*domaindispute.Dispute, error) {
	filter := bson.M{
		"rental_id": rentalID,
		"status":    bson.M{"$in": bson.A{string(domaindispute.StatusOpen), string(domaindispute.StatusUnderReview)}},
	}
	var doc disputeDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaindispute.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *DisputeRepository) ListByRental(ctx context.Context, rentalID domainrental.RentalID) ([]*domaindispute.Dispute, error) {
	cur, err := r.col.Find(ctx, bson.M{"rental_id": rentalID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domaindispute.Dispute
	for cur.Next(ctx) {
		var doc disputeDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

func (r *DisputeRepository) Save(ctx context.Context, d *domaindispute.Dispute) error {
	doc := newDisputeDocument(d)
	filter := bson.M{"_id": doc.ID, "version": d.Version}
	doc.Version = d.Version + 1
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
	d.Version = doc.Version
	return nil
}

type disputeDocument struct {
	ID          string                   `bson:"_id"`
	RentalID    string                   `bson:"rental_id"`
	ItemID      string                   `bson:"item_id"`
	RaisedBy    string                   `bson:"raised_by"`
	RaisedRole  string                   `bson:"raised_role"`
	Respondent  string                   `bson:"respondent"`
	Type        string                   `bson:"type"`
	Description string                   `bson:"description"`
	PhotoURLs   []string                 `bson:"photo_urls"`
	ReportRefs  []string                 `bson:"report_refs"`
	Status      string                   `bson:"status"`
	Resolution  *resolutionDocument      `bson:"resolution,omitempty"`
	Messages    []disputeMessageDocument `bson:"messages"`
	CreatedAt   int64                    `bson:"created_at"`
	UpdatedAt   int64                    `bson:"updated_at"`
	Version     int64                    `bson:"version"`
}

type resolutionDocument struct {
	ResolvedBy        string `bson:"resolved_by"`
	ResolvedAt        int64  `bson:"resolved_at"`
	Outcome           string `bson:"outcome"`
	CompensationCents int64  `bson:"compensation_cents"`
}

type disputeMessageDocument struct {
	SenderID   string `bson:"sender_id"`
	SenderRole string `bson:"sender_role"`
	Content    string `bson:"content"`
	SentAt     int64  `bson:"sent_at"`
}

func newDisputeDocument(d *domaindispute.Dispute) disputeDocument {
	doc := disputeDocument{
		ID:          string(d.ID),
		RentalID:    string(d.RentalID),
		ItemID:      string(d.ItemID),
		RaisedBy:    d.RaisedBy,
		RaisedRole:  string(d.RaisedRole),
		Respondent:  d.Respondent,
		Type:        string(d.Type),
		Description: d.Description,
		PhotoURLs:   d.PhotoURLs,
		Status:      string(d.Status),
		CreatedAt:   d.CreatedAt.UnixMilli(),
		UpdatedAt:   d.UpdatedAt.UnixMilli(),
		Version:     d.Version,
	}
	for _, ref := range d.ReportRefs {
		doc.ReportRefs = append(doc.ReportRefs, string(ref))
	}
	if d.Resolution != nil {
		doc.Resolution = &resolutionDocument{
			ResolvedBy:        d.Resolution.ResolvedBy,
			ResolvedAt:        d.Resolution.ResolvedAt.UnixMilli(),
			Outcome:           d.Resolution.Outcome,
			CompensationCents: d.Resolution.CompensationCents,
		}
	}
	for _, m := range d.Messages {
		doc.Messages = append(doc.Messages, disputeMessageDocument{
			SenderID:   m.SenderID,
			SenderRole: string(m.SenderRole),
			Content:    m.Content,
			SentAt:     m.SentAt.UnixMilli(),
		})
	}
	return doc
}

func (d disputeDocument) toAggregate() *domaindispute.Dispute {
	agg := &domaindispute.Dispute{
		ID:          domaindispute.DisputeID(d.ID),
		RentalID:    domainrental.RentalID(d.RentalID),
		ItemID:      domainitem.ItemID(d.ItemID),
		RaisedBy:    d.RaisedBy,
		RaisedRole:  domainrental.Role(d.RaisedRole),
		Respondent:  d.Respondent,
		Type:        domaindispute.Type(d.Type),
		Description: d.Description,
		PhotoURLs:   d.PhotoURLs,
		Status:      domaindispute.Status(d.Status),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
	for _, ref := range d.ReportRefs {
		agg.ReportRefs = append(agg.ReportRefs, domaincondition.ReportID(ref))
	}
	if d.Resolution != nil {
		agg.Resolution = &domaindispute.Resolution{
			ResolvedBy:        d.Resolution.ResolvedBy,
			ResolvedAt:        timestampToTime(d.Resolution.ResolvedAt),
			Outcome:           d.Resolution.Outcome,
			CompensationCents: d.Resolution.CompensationCents,
		}
	}
	for _, m := range d.Messages {
		agg.Messages = append(agg.Messages, domaindispute.Message{
			SenderID:   m.SenderID,
			SenderRole: domainrental.Role(m.SenderRole),
			Content:    m.Content,
			SentAt:     timestampToTime(m.SentAt),
		})
	}
	return agg
}
