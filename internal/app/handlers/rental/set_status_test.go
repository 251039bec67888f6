package rental

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaindeposit "gearshare/internal/domain/deposit"
	domainrental "gearshare/internal/domain/rental"
	"gearshare/internal/infra/storage/memory"
)

func TestSetRentalStatusHandler(t *testing.T) {
	ctx := context.Background()
	start := time.Now().AddDate(0, 0, 5)
	end := time.Now().AddDate(0, 0, 8)

	newHandler := func(factory memory.Factory) *SetRentalStatusHandler {
		return &SetRentalStatusHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
	}

	t.Run("owner approves and earns points", func(t *testing.T) {
		factory := memory.NewFactory()
		seedItem(t, factory)
		seedRental(t, factory, "r-1", "renter", start, end, domainrental.StatusPending)
		h := newHandler(factory)

		res, err := h.Handle(ctx, SetRentalStatusCommand{RentalID: "r-1", ActorID: "owner", Target: domainrental.StatusApproved})
		require.NoError(t, err)
		assert.Equal(t, string(domainrental.StatusApproved), res.Status)

		profile, err := factory.ProfileRepo.ByUser(ctx, "owner")
		require.NoError(t, err)
		assert.Equal(t, int64(20), profile.OwnerPoints)
	})

	t.Run("approval re-checks conflicts against newer approvals", func(t *testing.T) {
		factory := memory.NewFactory()
		seedItem(t, factory)
		seedRental(t, factory, "r-first", "renter-a", start, end, domainrental.StatusPending)
		seedRental(t, factory, "r-second", "renter-b", start, end, domainrental.StatusPending)
		h := newHandler(factory)

		_, err := h.Handle(ctx, SetRentalStatusCommand{RentalID: "r-first", ActorID: "owner", Target: domainrental.StatusApproved})
		require.NoError(t, err)

		_, err = h.Handle(ctx, SetRentalStatusCommand{RentalID: "r-second", ActorID: "owner", Target: domainrental.StatusApproved})
		assert.ErrorIs(t, err, domainrental.ErrDateConflict)

		second, err := factory.RentalRepo.ByID(ctx, "r-second")
		require.NoError(t, err)
		assert.Equal(t, domainrental.StatusPending, second.Status, "failed approval must not move the rental")
	})

	t.Run("completion opens the deposit hold and credits both parties", func(t *testing.T) {
		factory := memory.NewFactory()
		seedItem(t, factory)
		seedRental(t, factory, "r-1", "renter", start, end, domainrental.StatusActive)
		h := newHandler(factory)

		res, err := h.Handle(ctx, SetRentalStatusCommand{RentalID: "r-1", ActorID: "owner", Target: domainrental.StatusCompleted})
		require.NoError(t, err)
		assert.Equal(t, string(domainrental.StatusCompleted), res.Status)

		hold, err := factory.DepositRepo.ByRental(ctx, "r-1")
		require.NoError(t, err)
		assert.Equal(t, domaindeposit.StatusHeld, hold.Status)
		assert.Equal(t, int64(600), hold.AmountCents, "20 percent of the 3000 total")
		assert.Equal(t, hold.OpenedAt.Add(domaindeposit.HoldWindow), hold.ExpiresAt)

		owner, err := factory.ProfileRepo.ByUser(ctx, "owner")
		require.NoError(t, err)
		assert.Equal(t, int64(30), owner.OwnerPoints)
		assert.Equal(t, int64(1), owner.SuccessfulRentals)

		renter, err := factory.ProfileRepo.ByUser(ctx, "renter")
		require.NoError(t, err)
		assert.Equal(t, int64(30), renter.RenterPoints)
		assert.Equal(t, int64(1), renter.SuccessfulRentals)
	})

	t.Run("renter cannot decline", func(t *testing.T) {
		factory := memory.NewFactory()
		seedItem(t, factory)
		seedRental(t, factory, "r-1", "renter", start, end, domainrental.StatusPending)
		h := newHandler(factory)

		_, err := h.Handle(ctx, SetRentalStatusCommand{RentalID: "r-1", ActorID: "renter", Target: domainrental.StatusDeclined})
		assert.ErrorIs(t, err, domainrental.ErrNotAParty)
	})

	t.Run("renter cancels a pending request", func(t *testing.T) {
		factory := memory.NewFactory()
		seedItem(t, factory)
		seedRental(t, factory, "r-1", "renter", start, end, domainrental.StatusPending)
		h := newHandler(factory)

		res, err := h.Handle(ctx, SetRentalStatusCommand{RentalID: "r-1", ActorID: "renter", Target: domainrental.StatusCancelled})
		require.NoError(t, err)
		assert.Equal(t, string(domainrental.StatusCancelled), res.Status)
	})

	t.Run("pending is not a reachable target", func(t *testing.T) {
		factory := memory.NewFactory()
		seedItem(t, factory)
		seedRental(t, factory, "r-1", "renter", start, end, domainrental.StatusApproved)
		h := newHandler(factory)

		_, err := h.Handle(ctx, SetRentalStatusCommand{RentalID: "r-1", ActorID: "owner", Target: domainrental.StatusPending})
		assert.ErrorIs(t, err, domainrental.ErrIllegalTransition)
	})

	t.Run("unknown rental", func(t *testing.T) {
		factory := memory.NewFactory()
		h := newHandler(factory)

		_, err := h.Handle(ctx, SetRentalStatusCommand{RentalID: "missing", ActorID: "owner", Target: domainrental.StatusApproved})
		assert.ErrorIs(t, err, domainrental.ErrNotFound)
	})
}
