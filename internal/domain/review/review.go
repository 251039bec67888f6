package review

import (
	"context"
	"errors"
	"strings"
	"time"

	"gearshare/internal/domain/item"
	"gearshare/internal/domain/rental"
	"gearshare/internal/domain/shared/events"
)

var (
	ErrInvalidRating      = errors.New("review: rating must be between 1 and 5")
	ErrNotFound           = errors.New("review: not found")
	ErrAlreadyReviewed    = errors.New("review: author already reviewed this rental")
	ErrRentalNotCompleted = errors.New("review: rental is not completed")
)

// PositiveThreshold is the minimum rating that earns the reviewed party
// reputation points.
const PositiveThreshold = 4

type ReviewID string

type Review struct {
	ID         ReviewID
	RentalID   rental.RentalID
	ItemID     item.ItemID
	AuthorID   string
	AuthorRole rental.Role
	SubjectID  string
	Rating     int
	Text       string
	CreatedAt  time.Time
	events.EventRecorder
}

type Repository interface {
	ByRentalAndAuthor(ctx context.Context, rentalID rental.RentalID, authorID string) (*Review, error)
	ListByItem(ctx context.Context, itemID item.ItemID, limit, offset int) ([]*Review, error)
	Save(ctx context.Context, rev *Review) error
}

type SubmitParams struct {
	ID         ReviewID
	RentalID   rental.RentalID
	ItemID     item.ItemID
	AuthorID   string
	AuthorRole rental.Role
	SubjectID  string
	Rating     int
	Text       string
	CreatedAt  time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	rev := &Review{
		ID:         params.ID,
		RentalID:   params.RentalID,
		ItemID:     params.ItemID,
		AuthorID:   params.AuthorID,
		AuthorRole: params.AuthorRole,
		SubjectID:  params.SubjectID,
		Rating:     params.Rating,
		Text:       strings.TrimSpace(params.Text),
		CreatedAt:  params.CreatedAt.UTC(),
	}
	rev.Record(ReviewSubmitted{ReviewID: rev.ID, RentalID: rev.RentalID, ItemID: rev.ItemID, AuthorID: rev.AuthorID, Rating: rev.Rating, At: rev.CreatedAt})
	return rev, nil
}

// Positive reports whether the review earns the subject points.
func (r *Review) Positive() bool {
	return r.Rating >= PositiveThreshold
}

type ReviewSubmitted struct {
	ReviewID ReviewID
	RentalID rental.RentalID
	ItemID   item.ItemID
	AuthorID string
	Rating   int
	At       time.Time
}

func (e ReviewSubmitted) EventName() string     { return "review.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }
