package dto

import (
	"time"

	domaingamification "gearshare/internal/domain/gamification"
)

type Profile struct {
	UserID            string    `json:"user_id"`
	OwnerPoints       int64     `json:"owner_points"`
	RenterPoints      int64     `json:"renter_points"`
	SuccessfulRentals int64     `json:"successful_rentals"`
	ReviewsWritten    int64     `json:"reviews_written"`
	Badges            []string  `json:"badges"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func MapProfile(p *domaingamification.Profile) Profile {
	badges := p.Badges
	if badges == nil {
		badges = []string{}
	}
	return Profile{
		UserID:            p.UserID,
		OwnerPoints:       p.OwnerPoints,
		RenterPoints:      p.RenterPoints,
		SuccessfulRentals: p.SuccessfulRentals,
		ReviewsWritten:    p.ReviewsWritten,
		Badges:            append([]string(nil), badges...),
		UpdatedAt:         p.UpdatedAt,
	}
}
