package dateinterval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNew(t *testing.T) {
	t.Run("normalizes to UTC midnight", func(t *testing.T) {
		loc := time.FixedZone("UTC+3", 3*60*60)
		start := time.Date(2025, 6, 1, 14, 30, 0, 0, loc)
		end := time.Date(2025, 6, 5, 9, 0, 0, 0, loc)
		iv, err := New(start, end)
		require.NoError(t, err)
		assert.Equal(t, day(2025, 6, 1), iv.Start)
		assert.Equal(t, day(2025, 6, 5), iv.End)
	})

	t.Run("rejects reversed range", func(t *testing.T) {
		_, err := New(day(2025, 6, 5), day(2025, 6, 1))
		assert.ErrorIs(t, err, ErrReversed)
	})

	t.Run("rejects same-day range", func(t *testing.T) {
		_, err := New(day(2025, 6, 1), day(2025, 6, 1))
		assert.ErrorIs(t, err, ErrZeroDuration)
	})
}

func TestInterval_Overlaps(t *testing.T) {
	base, err := New(day(2025, 6, 3), day(2025, 6, 7))
	require.NoError(t, err)

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"fully before", day(2025, 6, 1), day(2025, 6, 2), false},
		{"fully after", day(2025, 6, 8), day(2025, 6, 10), false},
		{"identical", day(2025, 6, 3), day(2025, 6, 7), true},
		{"contained", day(2025, 6, 4), day(2025, 6, 6), true},
		{"containing", day(2025, 6, 1), day(2025, 6, 10), true},
		{"ends on start day", day(2025, 6, 1), day(2025, 6, 3), true},
		{"starts on end day", day(2025, 6, 7), day(2025, 6, 9), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other, err := New(tc.start, tc.end)
			require.NoError(t, err)
			assert.Equal(t, tc.want, base.Overlaps(other))
			assert.Equal(t, tc.want, other.Overlaps(base))
		})
	}
}

func TestInterval_Days(t *testing.T) {
	iv, err := New(day(2025, 6, 1), day(2025, 6, 4))
	require.NoError(t, err)
	assert.Equal(t, 3, iv.Days())
}

func TestInterval_ContainsDay(t *testing.T) {
	iv, err := New(day(2025, 6, 3), day(2025, 6, 5))
	require.NoError(t, err)
	assert.True(t, iv.ContainsDay(time.Date(2025, 6, 3, 23, 59, 0, 0, time.UTC)))
	assert.True(t, iv.ContainsDay(day(2025, 6, 5)))
	assert.False(t, iv.ContainsDay(day(2025, 6, 6)))
}
