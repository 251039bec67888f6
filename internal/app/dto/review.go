package dto

import (
	"time"

	domainreview "gearshare/internal/domain/review"
)

type Review struct {
	ID         string    `json:"id"`
	RentalID   string    `json:"rental_id"`
	ItemID     string    `json:"item_id"`
	AuthorID   string    `json:"author_id"`
	AuthorRole string    `json:"author_role"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func MapReview(rev *domainreview.Review) Review {
	return Review{
		ID:         string(rev.ID),
		RentalID:   string(rev.RentalID),
		ItemID:     string(rev.ItemID),
		AuthorID:   rev.AuthorID,
		AuthorRole: string(rev.AuthorRole),
		Rating:     rev.Rating,
		Text:       rev.Text,
		CreatedAt:  rev.CreatedAt,
	}
}
