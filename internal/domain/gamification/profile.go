package gamification

import (
	"context"
	"errors"
	"sort"
	"time"
)

var ErrNotFound = errors.New("gamification: profile not found")

// Role scopes a point award to one side of the marketplace.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleRenter Role = "renter"
)

// EventKind is a lifecycle trigger carrying a fixed point value.
type EventKind string

const (
	EventRentalCompleted      EventKind = "RENTAL_COMPLETED"
	EventRentalApproved       EventKind = "RENTAL_APPROVED"
	EventReviewWritten        EventKind = "REVIEW_WRITTEN"
	EventPositiveReviewGotten EventKind = "POSITIVE_REVIEW_RECEIVED"
	EventListingCreated       EventKind = "LISTING_CREATED"
)

// pointTable holds the fixed increments; awards are never negative and
// accumulators never decrease.
var pointTable = map[EventKind]int64{
	EventRentalCompleted:      30,
	EventRentalApproved:       20,
	EventReviewWritten:        5,
	EventPositiveReviewGotten: 10,
	EventListingCreated:       10,
}

// Points returns the fixed value for an event kind, zero for unknown kinds.
func Points(kind EventKind) int64 {
	return pointTable[kind]
}

// Profile accumulates reputation per user. Counters are monotonic; badges
// are derived from counters and can be recomputed at any time.
type Profile struct {
	UserID            string
	OwnerPoints       int64
	RenterPoints      int64
	SuccessfulRentals int64
	ReviewsWritten    int64
	Badges            []string
	UpdatedAt         time.Time
}

type Repository interface {
	ByUser(ctx context.Context, userID string) (*Profile, error)
	// Apply atomically adds the delta to the stored profile, creating it on
	// first award.
	Apply(ctx context.Context, userID string, delta Delta) (*Profile, error)
}

// Delta is one atomic profile increment. Implementations of Apply recompute
// the badge set from the post-increment counters before returning.
type Delta struct {
	OwnerPoints       int64
	RenterPoints      int64
	SuccessfulRentals int64
	ReviewsWritten    int64
	At                time.Time
}

// Award mutates the profile for one lifecycle event and refreshes badges.
func (p *Profile) Award(role Role, kind EventKind, now time.Time) {
	points := Points(kind)
	switch role {
	case RoleOwner:
		p.OwnerPoints += points
	case RoleRenter:
		p.RenterPoints += points
	}
	switch kind {
	case EventRentalCompleted:
		p.SuccessfulRentals++
	case EventReviewWritten:
		p.ReviewsWritten++
	}
	p.Badges = RecomputeBadges(p)
	p.UpdatedAt = now.UTC()
}

// DeltaFor expresses one award as a repository increment.
func DeltaFor(role Role, kind EventKind, now time.Time) Delta {
	d := Delta{At: now.UTC()}
	points := Points(kind)
	switch role {
	case RoleOwner:
		d.OwnerPoints = points
	case RoleRenter:
		d.RenterPoints = points
	}
	switch kind {
	case EventRentalCompleted:
		d.SuccessfulRentals = 1
	case EventReviewWritten:
		d.ReviewsWritten = 1
	}
	return d
}

type badgeRule struct {
	name string
	met  func(p *Profile) bool
}

var badgeRules = []badgeRule{
	{"first_rental", func(p *Profile) bool { return p.SuccessfulRentals >= 1 }},
	{"reliable_renter", func(p *Profile) bool { return p.SuccessfulRentals >= 3 }},
	{"rental_veteran", func(p *Profile) bool { return p.SuccessfulRentals >= 10 }},
	{"reviewer", func(p *Profile) bool { return p.ReviewsWritten >= 1 }},
	{"critic", func(p *Profile) bool { return p.ReviewsWritten >= 5 }},
	{"trusted_owner", func(p *Profile) bool { return p.OwnerPoints >= 100 }},
	{"power_renter", func(p *Profile) bool { return p.RenterPoints >= 100 }},
}

// RecomputeBadges derives the badge set from the counters alone. Counters
// only grow, so the result is monotonic and re-running it is idempotent.
func RecomputeBadges(p *Profile) []string {
	var badges []string
	for _, rule := range badgeRules {
		if rule.met(p) {
			badges = append(badges, rule.name)
		}
	}
	sort.Strings(badges)
	return badges
}
