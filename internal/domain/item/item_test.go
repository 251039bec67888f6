package item

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listedAt = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

func newItem(t *testing.T) *Item {
	t.Helper()
	it, err := New(CreateParams{
		ID:             "i-1",
		OwnerID:        "owner",
		Title:          "  Manfrotto tripod  ",
		Category:       "Camera",
		DailyRateCents: 1500,
		CreatedAt:      listedAt,
	})
	require.NoError(t, err)
	return it
}

func TestNew(t *testing.T) {
	t.Run("normalizes fields", func(t *testing.T) {
		it := newItem(t)
		assert.Equal(t, "Manfrotto tripod", it.Title)
		assert.Equal(t, "camera", it.Category)
		assert.False(t, it.Suspended)
	})

	t.Run("title required", func(t *testing.T) {
		_, err := New(CreateParams{OwnerID: "owner", DailyRateCents: 100})
		assert.ErrorIs(t, err, ErrTitleRequired)
	})

	t.Run("positive rate required", func(t *testing.T) {
		_, err := New(CreateParams{OwnerID: "owner", Title: "x", DailyRateCents: 0})
		assert.ErrorIs(t, err, ErrInvalidRate)
	})
}

func TestItem_SuspendResume(t *testing.T) {
	t.Run("suspend records the dispute", func(t *testing.T) {
		it := newItem(t)
		it.Suspend("d-1", listedAt)
		assert.True(t, it.Suspended)
		assert.Equal(t, "d-1", it.SuspendedBy)
	})

	t.Run("second suspend keeps the first dispute", func(t *testing.T) {
		it := newItem(t)
		it.Suspend("d-1", listedAt)
		it.Suspend("d-2", listedAt.Add(time.Hour))
		assert.Equal(t, "d-1", it.SuspendedBy)
	})

	t.Run("resume clears suspension", func(t *testing.T) {
		it := newItem(t)
		it.Suspend("d-1", listedAt)
		require.NoError(t, it.Resume(listedAt.Add(time.Hour)))
		assert.False(t, it.Suspended)
		assert.Empty(t, it.SuspendedBy)
	})

	t.Run("resume without suspension fails", func(t *testing.T) {
		it := newItem(t)
		assert.ErrorIs(t, it.Resume(listedAt), ErrNotSuspended)
	})
}

func TestSearchParams_Normalized(t *testing.T) {
	p := SearchParams{Query: "  drill ", Category: " Power Tools ", Limit: 500, Offset: -2}.Normalized()
	assert.Equal(t, "drill", p.Query)
	assert.Equal(t, "power tools", p.Category)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset)
}
