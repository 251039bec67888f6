package rental

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainitem "gearshare/internal/domain/item"
	domainrental "gearshare/internal/domain/rental"
	"gearshare/internal/infra/storage/memory"
)

func seedItem(t *testing.T, factory memory.Factory) *domainitem.Item {
	t.Helper()
	it, err := domainitem.New(domainitem.CreateParams{
		ID:             "i-1",
		OwnerID:        "owner",
		Title:          "Cordless drill",
		Category:       "tools",
		DailyRateCents: 1000,
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, factory.ItemRepo.Save(context.Background(), it))
	return it
}

func seedRental(t *testing.T, factory memory.Factory, id string, renterID string, start, end time.Time, status domainrental.Status) *domainrental.Rental {
	t.Helper()
	r, err := domainrental.New(domainrental.CreateParams{
		ID:             domainrental.RentalID(id),
		ItemID:         "i-1",
		RenterID:       renterID,
		OwnerID:        "owner",
		StartDate:      start,
		EndDate:        end,
		DailyRateCents: 1000,
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)
	r.Status = status
	require.NoError(t, factory.RentalRepo.Save(context.Background(), r))
	return r
}

func TestSubmitRentalHandler(t *testing.T) {
	ctx := context.Background()
	start := time.Now().AddDate(0, 0, 5)
	end := time.Now().AddDate(0, 0, 8)

	t.Run("creates pending rental priced from the item", func(t *testing.T) {
		factory := memory.NewFactory()
		seedItem(t, factory)
		h := &SubmitRentalHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		res, err := h.Handle(ctx, SubmitRentalCommand{
			CommandID: "r-new",
			ItemID:    "i-1",
			RenterID:  "renter",
			StartDate: start,
			EndDate:   end,
		})
		require.NoError(t, err)
		assert.Equal(t, "r-new", res.RentalID)
		assert.Equal(t, int64(3000), res.TotalCents)

		saved, err := factory.RentalRepo.ByID(ctx, "r-new")
		require.NoError(t, err)
		assert.Equal(t, domainrental.StatusPending, saved.Status)
	})

	t.Run("rejects dates held by an approved rental", func(t *testing.T) {
		factory := memory.NewFactory()
		seedItem(t, factory)
		seedRental(t, factory, "r-blocking", "other-renter", start, end, domainrental.StatusApproved)
		h := &SubmitRentalHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		_, err := h.Handle(ctx, SubmitRentalCommand{
			CommandID: "r-new",
			ItemID:    "i-1",
			RenterID:  "renter",
			StartDate: end, // shares the return day
			EndDate:   end.AddDate(0, 0, 3),
		})
		assert.ErrorIs(t, err, domainrental.ErrDateConflict)
	})

	t.Run("pending rentals do not block", func(t *testing.T) {
		factory := memory.NewFactory()
		seedItem(t, factory)
		seedRental(t, factory, "r-pending", "other-renter", start, end, domainrental.StatusPending)
		h := &SubmitRentalHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		_, err := h.Handle(ctx, SubmitRentalCommand{
			CommandID: "r-new",
			ItemID:    "i-1",
			RenterID:  "renter",
			StartDate: start,
			EndDate:   end,
		})
		assert.NoError(t, err)
	})

	t.Run("unknown item", func(t *testing.T) {
		factory := memory.NewFactory()
		h := &SubmitRentalHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		_, err := h.Handle(ctx, SubmitRentalCommand{
			CommandID: "r-new",
			ItemID:    "missing",
			RenterID:  "renter",
			StartDate: start,
			EndDate:   end,
		})
		assert.ErrorIs(t, err, domainitem.ErrNotFound)
	})

	t.Run("owner cannot rent own item", func(t *testing.T) {
		factory := memory.NewFactory()
		seedItem(t, factory)
		h := &SubmitRentalHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		_, err := h.Handle(ctx, SubmitRentalCommand{
			CommandID: "r-new",
			ItemID:    "i-1",
			RenterID:  "owner",
			StartDate: start,
			EndDate:   end,
		})
		assert.ErrorIs(t, err, domainrental.ErrSelfRental)
	})

	t.Run("parameter validation wins over a date conflict", func(t *testing.T) {
		factory := memory.NewFactory()
		seedItem(t, factory)
		seedRental(t, factory, "r-blocking", "other-renter", start, end, domainrental.StatusApproved)
		h := &SubmitRentalHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		// Self-rental on dates that also collide with the approved booking:
		// the caller should hear about the invalid request, not the calendar.
		_, err := h.Handle(ctx, SubmitRentalCommand{
			CommandID: "r-new",
			ItemID:    "i-1",
			RenterID:  "owner",
			StartDate: start,
			EndDate:   end,
		})
		assert.ErrorIs(t, err, domainrental.ErrSelfRental)

		_, err = h.Handle(ctx, SubmitRentalCommand{
			CommandID: "r-new",
			ItemID:    "i-1",
			RenterID:  "renter",
			StartDate: start.AddDate(0, 0, -30),
			EndDate:   end,
		})
		assert.ErrorIs(t, err, domainrental.ErrPastDate)
	})
}
