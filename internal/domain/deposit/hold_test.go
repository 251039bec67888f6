package deposit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearshare/internal/domain/rental"
)

var completedAt = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

func completedRental() *rental.Rental {
	return &rental.Rental{
		ID:         "r-1",
		RenterID:   "renter",
		OwnerID:    "owner",
		TotalCents: 10000,
		Status:     rental.StatusCompleted,
	}
}

func TestOpen(t *testing.T) {
	h := Open(completedRental(), completedAt)
	assert.Equal(t, rental.RentalID("r-1"), h.RentalID)
	assert.Equal(t, StatusHeld, h.Status)
	assert.Equal(t, int64(2000), h.AmountCents, "20 percent of the total")
	assert.Equal(t, completedAt, h.OpenedAt)
	assert.Equal(t, completedAt.Add(24*time.Hour), h.ExpiresAt)
}

func TestAmountFor(t *testing.T) {
	assert.Equal(t, int64(2000), AmountFor(10000))
	assert.Equal(t, int64(1), AmountFor(9))
	assert.Equal(t, int64(0), AmountFor(4))
}

func TestHold_Decide(t *testing.T) {
	cases := []struct {
		name    string
		at      time.Duration
		dispute bool
		want    Outcome
	}{
		{"inside window, no dispute", 12 * time.Hour, false, OutcomePending},
		{"inside window, owner dispute", 12 * time.Hour, true, OutcomeForfeited},
		{"window expired, no dispute", 24 * time.Hour, false, OutcomeReleased},
		{"well past window, no dispute", 72 * time.Hour, false, OutcomeReleased},
		{"past window, dispute still active", 36 * time.Hour, true, OutcomeForfeited},
		{"just before expiry", 24*time.Hour - time.Second, false, OutcomePending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := Open(completedRental(), completedAt)
			got := h.Decide(completedAt.Add(tc.at), tc.dispute)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("settled hold reports its terminal status", func(t *testing.T) {
		h := Open(completedRental(), completedAt)
		require.NoError(t, h.Settle(OutcomeReleased, completedAt.Add(25*time.Hour)))
		assert.Equal(t, OutcomeReleased, h.Decide(completedAt.Add(48*time.Hour), true))
	})
}

func TestHold_Settle(t *testing.T) {
	t.Run("pending outcome is a no-op", func(t *testing.T) {
		h := Open(completedRental(), completedAt)
		require.NoError(t, h.Settle(OutcomePending, completedAt))
		assert.Equal(t, StatusHeld, h.Status)
		assert.True(t, h.SettledAt.IsZero())
	})

	t.Run("release", func(t *testing.T) {
		h := Open(completedRental(), completedAt)
		settleAt := completedAt.Add(25 * time.Hour)
		require.NoError(t, h.Settle(OutcomeReleased, settleAt))
		assert.Equal(t, StatusReleased, h.Status)
		assert.Equal(t, settleAt, h.SettledAt)
	})

	t.Run("forfeit", func(t *testing.T) {
		h := Open(completedRental(), completedAt)
		require.NoError(t, h.Settle(OutcomeForfeited, completedAt.Add(time.Hour)))
		assert.Equal(t, StatusForfeited, h.Status)
	})

	t.Run("second settle is rejected", func(t *testing.T) {
		h := Open(completedRental(), completedAt)
		require.NoError(t, h.Settle(OutcomeReleased, completedAt.Add(25*time.Hour)))
		err := h.Settle(OutcomeForfeited, completedAt.Add(26*time.Hour))
		assert.ErrorIs(t, err, ErrAlreadySettled)
		assert.Equal(t, StatusReleased, h.Status)
	})
}
