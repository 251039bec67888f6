package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var awardedAt = time.Date(2025, 6, 12, 8, 0, 0, 0, time.UTC)

func TestPoints(t *testing.T) {
	assert.Equal(t, int64(30), Points(EventRentalCompleted))
	assert.Equal(t, int64(20), Points(EventRentalApproved))
	assert.Equal(t, int64(5), Points(EventReviewWritten))
	assert.Equal(t, int64(10), Points(EventPositiveReviewGotten))
	assert.Equal(t, int64(10), Points(EventListingCreated))
	assert.Equal(t, int64(0), Points("UNKNOWN"))
}

func TestProfile_Award(t *testing.T) {
	t.Run("owner points accumulate separately", func(t *testing.T) {
		p := &Profile{UserID: "u-1"}
		p.Award(RoleOwner, EventRentalCompleted, awardedAt)
		p.Award(RoleRenter, EventRentalCompleted, awardedAt)
		assert.Equal(t, int64(30), p.OwnerPoints)
		assert.Equal(t, int64(30), p.RenterPoints)
		assert.Equal(t, int64(2), p.SuccessfulRentals)
	})

	t.Run("review counter", func(t *testing.T) {
		p := &Profile{UserID: "u-1"}
		p.Award(RoleRenter, EventReviewWritten, awardedAt)
		assert.Equal(t, int64(1), p.ReviewsWritten)
		assert.Contains(t, p.Badges, "reviewer")
	})
}

func TestDeltaFor(t *testing.T) {
	d := DeltaFor(RoleOwner, EventRentalCompleted, awardedAt)
	assert.Equal(t, int64(30), d.OwnerPoints)
	assert.Equal(t, int64(0), d.RenterPoints)
	assert.Equal(t, int64(1), d.SuccessfulRentals)
	assert.Equal(t, int64(0), d.ReviewsWritten)

	d = DeltaFor(RoleRenter, EventReviewWritten, awardedAt)
	assert.Equal(t, int64(5), d.RenterPoints)
	assert.Equal(t, int64(1), d.ReviewsWritten)
}

func TestRecomputeBadges(t *testing.T) {
	t.Run("thresholds", func(t *testing.T) {
		p := &Profile{SuccessfulRentals: 3, ReviewsWritten: 5, OwnerPoints: 100}
		badges := RecomputeBadges(p)
		assert.ElementsMatch(t, []string{"first_rental", "reliable_renter", "reviewer", "critic", "trusted_owner"}, badges)
	})

	t.Run("empty profile has no badges", func(t *testing.T) {
		assert.Empty(t, RecomputeBadges(&Profile{}))
	})

	t.Run("idempotent", func(t *testing.T) {
		p := &Profile{SuccessfulRentals: 10, RenterPoints: 150}
		first := RecomputeBadges(p)
		second := RecomputeBadges(p)
		assert.Equal(t, first, second)
	})
}
