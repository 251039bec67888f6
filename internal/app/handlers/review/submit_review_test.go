package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainrental "gearshare/internal/domain/rental"
	domainreview "gearshare/internal/domain/review"
	"gearshare/internal/infra/storage/memory"
)

func seedCompletedRental(t *testing.T, factory memory.Factory) *domainrental.Rental {
	t.Helper()
	r, err := domainrental.New(domainrental.CreateParams{
		ID:             "r-1",
		ItemID:         "i-1",
		RenterID:       "renter",
		OwnerID:        "owner",
		StartDate:      time.Now().AddDate(0, 0, 1),
		EndDate:        time.Now().AddDate(0, 0, 3),
		DailyRateCents: 1000,
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)
	r.Status = domainrental.StatusCompleted
	require.NoError(t, factory.RentalRepo.Save(context.Background(), r))
	return r
}

func TestSubmitReviewHandler(t *testing.T) {
	ctx := context.Background()

	newHandler := func(factory memory.Factory) *SubmitReviewHandler {
		return &SubmitReviewHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
	}

	t.Run("positive review rewards author and subject", func(t *testing.T) {
		factory := memory.NewFactory()
		seedCompletedRental(t, factory)
		h := newHandler(factory)

		out, err := h.Handle(ctx, SubmitReviewCommand{
			RentalID: "r-1",
			AuthorID: "renter",
			Rating:   5,
			Text:     "  kept the gear in great shape  ",
		})
		require.NoError(t, err)
		assert.Equal(t, "renter", out.AuthorID)
		assert.Equal(t, string(domainrental.RoleRenter), out.AuthorRole)
		assert.Equal(t, "kept the gear in great shape", out.Text)

		author, err := factory.ProfileRepo.ByUser(ctx, "renter")
		require.NoError(t, err)
		assert.Equal(t, int64(5), author.RenterPoints)
		assert.Equal(t, int64(1), author.ReviewsWritten)
		assert.Contains(t, author.Badges, "reviewer")

		subject, err := factory.ProfileRepo.ByUser(ctx, "owner")
		require.NoError(t, err)
		assert.Equal(t, int64(10), subject.OwnerPoints)

		r, err := factory.RentalRepo.ByID(ctx, "r-1")
		require.NoError(t, err)
		assert.True(t, r.Reviewed)
	})

	t.Run("owner review of the renter flips the subject side", func(t *testing.T) {
		factory := memory.NewFactory()
		seedCompletedRental(t, factory)
		h := newHandler(factory)

		_, err := h.Handle(ctx, SubmitReviewCommand{RentalID: "r-1", AuthorID: "owner", Rating: 4})
		require.NoError(t, err)

		subject, err := factory.ProfileRepo.ByUser(ctx, "renter")
		require.NoError(t, err)
		assert.Equal(t, int64(10), subject.RenterPoints)
	})

	t.Run("neutral rating earns the subject nothing", func(t *testing.T) {
		factory := memory.NewFactory()
		seedCompletedRental(t, factory)
		h := newHandler(factory)

		_, err := h.Handle(ctx, SubmitReviewCommand{RentalID: "r-1", AuthorID: "renter", Rating: 3})
		require.NoError(t, err)

		author, err := factory.ProfileRepo.ByUser(ctx, "renter")
		require.NoError(t, err)
		assert.Equal(t, int64(5), author.RenterPoints)

		subject, err := factory.ProfileRepo.ByUser(ctx, "owner")
		require.NoError(t, err)
		assert.Zero(t, subject.OwnerPoints)
	})

	t.Run("one review per author per rental", func(t *testing.T) {
		factory := memory.NewFactory()
		seedCompletedRental(t, factory)
		h := newHandler(factory)

		_, err := h.Handle(ctx, SubmitReviewCommand{RentalID: "r-1", AuthorID: "renter", Rating: 5})
		require.NoError(t, err)
		_, err = h.Handle(ctx, SubmitReviewCommand{RentalID: "r-1", AuthorID: "renter", Rating: 4})
		assert.ErrorIs(t, err, domainreview.ErrAlreadyReviewed)
	})

	t.Run("both parties may each review once", func(t *testing.T) {
		factory := memory.NewFactory()
		seedCompletedRental(t, factory)
		h := newHandler(factory)

		_, err := h.Handle(ctx, SubmitReviewCommand{RentalID: "r-1", AuthorID: "renter", Rating: 5})
		require.NoError(t, err)
		_, err = h.Handle(ctx, SubmitReviewCommand{RentalID: "r-1", AuthorID: "owner", Rating: 5})
		assert.NoError(t, err)
	})

	t.Run("rental must be completed", func(t *testing.T) {
		factory := memory.NewFactory()
		r := seedCompletedRental(t, factory)
		r.Status = domainrental.StatusActive
		require.NoError(t, factory.RentalRepo.Save(ctx, r))
		h := newHandler(factory)

		_, err := h.Handle(ctx, SubmitReviewCommand{RentalID: "r-1", AuthorID: "renter", Rating: 5})
		assert.ErrorIs(t, err, domainreview.ErrRentalNotCompleted)
	})

	t.Run("stranger cannot review", func(t *testing.T) {
		factory := memory.NewFactory()
		seedCompletedRental(t, factory)
		h := newHandler(factory)

		_, err := h.Handle(ctx, SubmitReviewCommand{RentalID: "r-1", AuthorID: "stranger", Rating: 5})
		assert.ErrorIs(t, err, domainrental.ErrNotAParty)
	})

	t.Run("invalid rating", func(t *testing.T) {
		factory := memory.NewFactory()
		seedCompletedRental(t, factory)
		h := newHandler(factory)

		_, err := h.Handle(ctx, SubmitReviewCommand{RentalID: "r-1", AuthorID: "renter", Rating: 6})
		assert.ErrorIs(t, err, domainreview.ErrInvalidRating)
	})
}
