package deposit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaindeposit "gearshare/internal/domain/deposit"
	domaindispute "gearshare/internal/domain/dispute"
	domainrental "gearshare/internal/domain/rental"
	"gearshare/internal/infra/storage/memory"
)

func seedHold(t *testing.T, factory memory.Factory, rentalID string, openedAgo time.Duration) *domaindeposit.Hold {
	t.Helper()
	openedAt := time.Now().UTC().Add(-openedAgo)
	h := &domaindeposit.Hold{
		RentalID:    domainrental.RentalID(rentalID),
		RenterID:    "renter",
		OwnerID:     "owner",
		AmountCents: 600,
		OpenedAt:    openedAt,
		ExpiresAt:   openedAt.Add(domaindeposit.HoldWindow),
		Status:      domaindeposit.StatusHeld,
	}
	require.NoError(t, factory.DepositRepo.Save(context.Background(), h))
	return h
}

func seedDispute(t *testing.T, factory memory.Factory, rentalID string, role domainrental.Role, createdAt time.Time) *domaindispute.Dispute {
	t.Helper()
	raisedBy, respondent := "owner", "renter"
	if role == domainrental.RoleRenter {
		raisedBy, respondent = "renter", "owner"
	}
	d, err := domaindispute.Open(domaindispute.OpenParams{
		ID:          domaindispute.DisputeID("d-" + rentalID),
		RentalID:    domainrental.RentalID(rentalID),
		ItemID:      "i-1",
		RaisedBy:    raisedBy,
		RaisedRole:  role,
		Respondent:  respondent,
		Type:        domaindispute.TypeDamage,
		Description: "came back with a bent mounting plate",
		PhotoURLs:   []string{"https://cdn/evidence.jpg"},
		CreatedAt:   createdAt,
	})
	require.NoError(t, err)
	require.NoError(t, factory.DisputeRepo.Save(context.Background(), d))
	return d
}

func TestSettleHoldsHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("expired hold without dispute is released", func(t *testing.T) {
		factory := memory.NewFactory()
		seedHold(t, factory, "r-1", 25*time.Hour)
		h := &SettleHoldsHandler{UoWFactory: factory}

		res, err := h.Handle(ctx, SettleHoldsCommand{})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Evaluated)
		assert.Equal(t, 1, res.Released)
		assert.Equal(t, 0, res.Forfeited)

		hold, err := factory.DepositRepo.ByRental(ctx, "r-1")
		require.NoError(t, err)
		assert.Equal(t, domaindeposit.StatusReleased, hold.Status)
	})

	t.Run("owner dispute inside the window forfeits", func(t *testing.T) {
		factory := memory.NewFactory()
		hold := seedHold(t, factory, "r-1", 12*time.Hour)
		seedDispute(t, factory, "r-1", domainrental.RoleOwner, hold.OpenedAt.Add(time.Hour))
		h := &SettleHoldsHandler{UoWFactory: factory}

		res, err := h.Handle(ctx, SettleHoldsCommand{})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Forfeited)

		got, err := factory.DepositRepo.ByRental(ctx, "r-1")
		require.NoError(t, err)
		assert.Equal(t, domaindeposit.StatusForfeited, got.Status)
	})

	t.Run("renter dispute never touches the deposit", func(t *testing.T) {
		factory := memory.NewFactory()
		hold := seedHold(t, factory, "r-1", 25*time.Hour)
		seedDispute(t, factory, "r-1", domainrental.RoleRenter, hold.OpenedAt.Add(time.Hour))
		h := &SettleHoldsHandler{UoWFactory: factory}

		res, err := h.Handle(ctx, SettleHoldsCommand{})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Released)
		assert.Equal(t, 0, res.Forfeited)
	})

	t.Run("unexpired hold without dispute stays pending", func(t *testing.T) {
		factory := memory.NewFactory()
		seedHold(t, factory, "r-1", 2*time.Hour)
		h := &SettleHoldsHandler{UoWFactory: factory}

		res, err := h.Handle(ctx, SettleHoldsCommand{})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Evaluated)
		assert.Equal(t, 0, res.Released)
		assert.Equal(t, 0, res.Forfeited)

		hold, err := factory.DepositRepo.ByRental(ctx, "r-1")
		require.NoError(t, err)
		assert.Equal(t, domaindeposit.StatusHeld, hold.Status)
	})

	t.Run("second sweep skips settled holds", func(t *testing.T) {
		factory := memory.NewFactory()
		seedHold(t, factory, "r-1", 25*time.Hour)
		h := &SettleHoldsHandler{UoWFactory: factory}

		_, err := h.Handle(ctx, SettleHoldsCommand{})
		require.NoError(t, err)
		res, err := h.Handle(ctx, SettleHoldsCommand{})
		require.NoError(t, err)
		assert.Equal(t, 0, res.Evaluated)
	})

	t.Run("mixed batch", func(t *testing.T) {
		factory := memory.NewFactory()
		seedHold(t, factory, "r-release", 30*time.Hour)
		forfeit := seedHold(t, factory, "r-forfeit", 6*time.Hour)
		seedDispute(t, factory, "r-forfeit", domainrental.RoleOwner, forfeit.OpenedAt.Add(time.Hour))
		seedHold(t, factory, "r-wait", time.Hour)
		h := &SettleHoldsHandler{UoWFactory: factory}

		res, err := h.Handle(ctx, SettleHoldsCommand{})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Evaluated)
		assert.Equal(t, 1, res.Released)
		assert.Equal(t, 1, res.Forfeited)
	})
}

func TestGetHoldHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("expired hold reads as released before any sweep", func(t *testing.T) {
		factory := memory.NewFactory()
		seedHold(t, factory, "r-1", 25*time.Hour)
		h := &GetHoldHandler{UoWFactory: factory}

		out, err := h.Handle(ctx, GetHoldQuery{RentalID: "r-1", UserID: "renter"})
		require.NoError(t, err)
		assert.Equal(t, string(domaindeposit.StatusHeld), out.Status, "persisted status lags until the sweep")
		assert.Equal(t, string(domaindeposit.OutcomeReleased), out.EffectiveOutcome)
	})

	t.Run("pending hold reads as held", func(t *testing.T) {
		factory := memory.NewFactory()
		seedHold(t, factory, "r-1", time.Hour)
		h := &GetHoldHandler{UoWFactory: factory}

		out, err := h.Handle(ctx, GetHoldQuery{RentalID: "r-1", UserID: "owner"})
		require.NoError(t, err)
		assert.Equal(t, string(domaindeposit.StatusHeld), out.EffectiveOutcome)
	})

	t.Run("non-party is rejected", func(t *testing.T) {
		factory := memory.NewFactory()
		seedHold(t, factory, "r-1", time.Hour)
		h := &GetHoldHandler{UoWFactory: factory}

		_, err := h.Handle(ctx, GetHoldQuery{RentalID: "r-1", UserID: "stranger"})
		assert.ErrorIs(t, err, domainrental.ErrNotAParty)
	})

	t.Run("unknown rental", func(t *testing.T) {
		factory := memory.NewFactory()
		h := &GetHoldHandler{UoWFactory: factory}

		_, err := h.Handle(ctx, GetHoldQuery{RentalID: "missing", UserID: "renter"})
		assert.ErrorIs(t, err, domaindeposit.ErrNotFound)
	})
}
