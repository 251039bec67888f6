package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearshare/internal/domain/rental"
)

func TestSubmit(t *testing.T) {
	at := time.Date(2025, 6, 12, 8, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		rev, err := Submit(SubmitParams{
			ID:         "rv-1",
			RentalID:   "r-1",
			ItemID:     "i-1",
			AuthorID:   "renter",
			AuthorRole: rental.RoleRenter,
			SubjectID:  "owner",
			Rating:     5,
			Text:       "  great gear, smooth handover  ",
			CreatedAt:  at,
		})
		require.NoError(t, err)
		assert.Equal(t, "great gear, smooth handover", rev.Text)
		events := rev.PendingEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "review.submitted", events[0].EventName())
	})

	t.Run("rating bounds", func(t *testing.T) {
		for _, rating := range []int{0, 6, -1} {
			_, err := Submit(SubmitParams{Rating: rating})
			assert.ErrorIs(t, err, ErrInvalidRating)
		}
	})
}

func TestReview_Positive(t *testing.T) {
	for rating, want := range map[int]bool{1: false, 3: false, 4: true, 5: true} {
		rev := &Review{Rating: rating}
		assert.Equal(t, want, rev.Positive(), "rating %d", rating)
	}
}
