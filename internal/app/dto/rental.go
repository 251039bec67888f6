package dto

import (
	"time"

	domainrental "gearshare/internal/domain/rental"
)

type Rental struct {
	ID             string    `json:"id"`
	ItemID         string    `json:"item_id"`
	RenterID       string    `json:"renter_id"`
	OwnerID        string    `json:"owner_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	StartTime      string    `json:"start_time,omitempty"`
	EndTime        string    `json:"end_time,omitempty"`
	DailyRateCents int64     `json:"daily_rate_cents"`
	TotalCents     int64     `json:"total_cents"`
	Status         string    `json:"status"`
	Reviewed       bool      `json:"reviewed"`
	HasDispute     bool      `json:"has_dispute"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func MapRental(r *domainrental.Rental, hasDispute bool) Rental {
	return Rental{
		ID:             string(r.ID),
		ItemID:         string(r.ItemID),
		RenterID:       r.RenterID,
		OwnerID:        r.OwnerID,
		StartDate:      r.Period.Start,
		EndDate:        r.Period.End,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		DailyRateCents: r.DailyRateCents,
		TotalCents:     r.TotalCents,
		Status:         string(r.Status),
		Reviewed:       r.Reviewed,
		HasDispute:     hasDispute,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
