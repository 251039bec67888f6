package dispute

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaincondition "gearshare/internal/domain/condition"
	domaindispute "gearshare/internal/domain/dispute"
	domainitem "gearshare/internal/domain/item"
	domainrental "gearshare/internal/domain/rental"
	"gearshare/internal/infra/storage/memory"
)

func seedRentalWithItem(t *testing.T, factory memory.Factory, status domainrental.Status) *domainrental.Rental {
	t.Helper()
	ctx := context.Background()
	it, err := domainitem.New(domainitem.CreateParams{
		ID:             "i-1",
		OwnerID:        "owner",
		Title:          "Projector",
		DailyRateCents: 2000,
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, factory.ItemRepo.Save(ctx, it))

	r, err := domainrental.New(domainrental.CreateParams{
		ID:             "r-1",
		ItemID:         it.ID,
		RenterID:       "renter",
		OwnerID:        "owner",
		StartDate:      time.Now().AddDate(0, 0, 1),
		EndDate:        time.Now().AddDate(0, 0, 3),
		DailyRateCents: 2000,
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)
	r.Status = status
	require.NoError(t, factory.RentalRepo.Save(ctx, r))
	return r
}

func openCmd(raisedBy string) OpenDisputeCommand {
	return OpenDisputeCommand{
		RentalID:    "r-1",
		RaisedBy:    raisedBy,
		Type:        domaindispute.TypeDamage,
		Description: "lamp housing cracked during the rental period",
		PhotoURLs:   []string{"https://cdn/evidence-1.jpg"},
	}
}

func TestOpenDisputeHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("owner opens a dispute and the item is suspended", func(t *testing.T) {
		factory := memory.NewFactory()
		seedRentalWithItem(t, factory, domainrental.StatusCompleted)
		h := &OpenDisputeHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		out, err := h.Handle(ctx, openCmd("owner"))
		require.NoError(t, err)
		assert.Equal(t, string(domaindispute.StatusOpen), out.Status)
		assert.Equal(t, "renter", out.Respondent)

		it, err := factory.ItemRepo.ByID(ctx, "i-1")
		require.NoError(t, err)
		assert.True(t, it.Suspended)
		assert.Equal(t, out.ID, it.SuspendedBy)
	})

	t.Run("renter may raise with the owner as respondent", func(t *testing.T) {
		factory := memory.NewFactory()
		seedRentalWithItem(t, factory, domainrental.StatusCompleted)
		h := &OpenDisputeHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		out, err := h.Handle(ctx, openCmd("renter"))
		require.NoError(t, err)
		assert.Equal(t, "owner", out.Respondent)
	})

	t.Run("second active dispute is rejected", func(t *testing.T) {
		factory := memory.NewFactory()
		seedRentalWithItem(t, factory, domainrental.StatusCompleted)
		h := &OpenDisputeHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		_, err := h.Handle(ctx, openCmd("owner"))
		require.NoError(t, err)
		_, err = h.Handle(ctx, openCmd("renter"))
		assert.ErrorIs(t, err, domaindispute.ErrDuplicateDispute)
	})

	t.Run("new dispute may follow a resolved one", func(t *testing.T) {
		factory := memory.NewFactory()
		seedRentalWithItem(t, factory, domainrental.StatusCompleted)
		h := &OpenDisputeHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
		mod := &ModerationHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		first, err := h.Handle(ctx, openCmd("owner"))
		require.NoError(t, err)
		_, err = mod.HandleResolve(ctx, ResolveDisputeCommand{DisputeID: first.ID, ResolverID: "mod-1", Outcome: "settled"})
		require.NoError(t, err)

		second, err := h.Handle(ctx, openCmd("renter"))
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("stranger cannot raise", func(t *testing.T) {
		factory := memory.NewFactory()
		seedRentalWithItem(t, factory, domainrental.StatusCompleted)
		h := &OpenDisputeHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		_, err := h.Handle(ctx, openCmd("stranger"))
		assert.ErrorIs(t, err, domainrental.ErrNotAParty)
	})
}

func seedReport(t *testing.T, factory memory.Factory, id domaincondition.ReportID, rentalID domainrental.RentalID) {
	t.Helper()
	rep, err := domaincondition.New(domaincondition.CreateParams{
		ID:        id,
		RentalID:  rentalID,
		ItemID:    "i-1",
		Kind:      domaincondition.KindPreRental,
		AuthorID:  "renter",
		Notes:     "small scratch on the lens cap",
		PhotoURLs: []string{"https://cdn/pre-1.jpg"},
		Grade:     domaincondition.GradeGood,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, factory.ConditionRepo.Save(context.Background(), rep))
}

func TestOpenDisputeEvidenceRefs(t *testing.T) {
	ctx := context.Background()

	withRefs := func(raisedBy string, refs ...string) OpenDisputeCommand {
		cmd := openCmd(raisedBy)
		cmd.ReportRefs = refs
		return cmd
	}

	t.Run("valid reference is attached", func(t *testing.T) {
		factory := memory.NewFactory()
		r := seedRentalWithItem(t, factory, domainrental.StatusCompleted)
		seedReport(t, factory, "rep-1", r.ID)
		h := &OpenDisputeHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		out, err := h.Handle(ctx, withRefs("owner", "rep-1"))
		require.NoError(t, err)
		assert.Equal(t, []string{"rep-1"}, out.ReportRefs)
	})

	t.Run("a report backs at most one dispute", func(t *testing.T) {
		factory := memory.NewFactory()
		r := seedRentalWithItem(t, factory, domainrental.StatusCompleted)
		seedReport(t, factory, "rep-1", r.ID)
		h := &OpenDisputeHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
		mod := &ModerationHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		first, err := h.Handle(ctx, withRefs("owner", "rep-1"))
		require.NoError(t, err)
		_, err = mod.HandleResolve(ctx, ResolveDisputeCommand{DisputeID: first.ID, ResolverID: "mod-1", Outcome: "settled"})
		require.NoError(t, err)

		_, err = h.Handle(ctx, withRefs("renter", "rep-1"))
		assert.ErrorIs(t, err, domaindispute.ErrEvidenceInUse)
	})

	t.Run("duplicate refs within one command are rejected", func(t *testing.T) {
		factory := memory.NewFactory()
		r := seedRentalWithItem(t, factory, domainrental.StatusCompleted)
		seedReport(t, factory, "rep-1", r.ID)
		h := &OpenDisputeHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		_, err := h.Handle(ctx, withRefs("owner", "rep-1", "rep-1"))
		assert.ErrorIs(t, err, domaindispute.ErrEvidenceInUse)
	})

	t.Run("unknown reference is rejected", func(t *testing.T) {
		factory := memory.NewFactory()
		seedRentalWithItem(t, factory, domainrental.StatusCompleted)
		h := &OpenDisputeHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		_, err := h.Handle(ctx, withRefs("owner", "rep-missing"))
		assert.ErrorIs(t, err, domaincondition.ErrNotFound)
	})

	t.Run("report from another rental is rejected", func(t *testing.T) {
		factory := memory.NewFactory()
		seedRentalWithItem(t, factory, domainrental.StatusCompleted)
		seedReport(t, factory, "rep-other", "r-other")
		h := &OpenDisputeHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		_, err := h.Handle(ctx, withRefs("owner", "rep-other"))
		assert.ErrorIs(t, err, domaincondition.ErrNotFound)
	})
}

func TestModerationHandler(t *testing.T) {
	ctx := context.Background()

	open := func(t *testing.T, factory memory.Factory) string {
		t.Helper()
		h := &OpenDisputeHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
		out, err := h.Handle(ctx, openCmd("owner"))
		require.NoError(t, err)
		return out.ID
	}

	t.Run("resolution releases the item", func(t *testing.T) {
		factory := memory.NewFactory()
		seedRentalWithItem(t, factory, domainrental.StatusCompleted)
		id := open(t, factory)
		h := &ModerationHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		out, err := h.HandleResolve(ctx, ResolveDisputeCommand{
			DisputeID:         id,
			ResolverID:        "mod-1",
			Outcome:           "renter pays partial repair",
			CompensationCents: 500,
		})
		require.NoError(t, err)
		assert.Equal(t, string(domaindispute.StatusResolved), out.Status)

		it, err := factory.ItemRepo.ByID(ctx, "i-1")
		require.NoError(t, err)
		assert.False(t, it.Suspended)
	})

	t.Run("close also releases the item", func(t *testing.T) {
		factory := memory.NewFactory()
		seedRentalWithItem(t, factory, domainrental.StatusCompleted)
		id := open(t, factory)
		h := &ModerationHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		_, err := h.HandleClose(ctx, CloseDisputeCommand{DisputeID: id, ClosedBy: "mod-1"})
		require.NoError(t, err)

		it, err := factory.ItemRepo.ByID(ctx, "i-1")
		require.NoError(t, err)
		assert.False(t, it.Suspended)
	})

	t.Run("item held by another dispute stays suspended", func(t *testing.T) {
		factory := memory.NewFactory()
		seedRentalWithItem(t, factory, domainrental.StatusCompleted)
		id := open(t, factory)

		// Simulate an older dispute still holding the item.
		it, err := factory.ItemRepo.ByID(ctx, "i-1")
		require.NoError(t, err)
		it.SuspendedBy = "d-earlier"
		require.NoError(t, factory.ItemRepo.Save(ctx, it))

		h := &ModerationHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
		_, err = h.HandleResolve(ctx, ResolveDisputeCommand{DisputeID: id, ResolverID: "mod-1", Outcome: "no fault"})
		require.NoError(t, err)

		it, err = factory.ItemRepo.ByID(ctx, "i-1")
		require.NoError(t, err)
		assert.True(t, it.Suspended)
		assert.Equal(t, "d-earlier", it.SuspendedBy)
	})

	t.Run("review then resolve", func(t *testing.T) {
		factory := memory.NewFactory()
		seedRentalWithItem(t, factory, domainrental.StatusCompleted)
		id := open(t, factory)
		h := &ModerationHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		out, err := h.HandleStartReview(ctx, StartReviewCommand{DisputeID: id, ModeratorID: "mod-1"})
		require.NoError(t, err)
		assert.Equal(t, string(domaindispute.StatusUnderReview), out.Status)

		_, err = h.HandleResolve(ctx, ResolveDisputeCommand{DisputeID: id, ResolverID: "mod-1", Outcome: "done"})
		require.NoError(t, err)

		_, err = h.HandleResolve(ctx, ResolveDisputeCommand{DisputeID: id, ResolverID: "mod-2", Outcome: "again"})
		assert.ErrorIs(t, err, domaindispute.ErrIllegalTransition)
	})

	t.Run("unknown dispute", func(t *testing.T) {
		factory := memory.NewFactory()
		h := &ModerationHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
		_, err := h.HandleClose(ctx, CloseDisputeCommand{DisputeID: "missing"})
		assert.ErrorIs(t, err, domaindispute.ErrNotFound)
	})
}

func TestAddMessageHandler(t *testing.T) {
	ctx := context.Background()
	factory := memory.NewFactory()
	seedRentalWithItem(t, factory, domainrental.StatusCompleted)
	openHandler := &OpenDisputeHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
	out, err := openHandler.Handle(ctx, openCmd("owner"))
	require.NoError(t, err)

	h := &AddMessageHandler{UoWFactory: factory}

	t.Run("respondent writes into the thread", func(t *testing.T) {
		res, err := h.Handle(ctx, AddMessageCommand{
			DisputeID: out.ID,
			SenderID:  "renter",
			Content:   "the crack was there at pickup",
		})
		require.NoError(t, err)
		require.Len(t, res.Messages, 1)
		assert.Equal(t, "renter", res.Messages[0].SenderID)
	})

	t.Run("outsider is rejected", func(t *testing.T) {
		_, err := h.Handle(ctx, AddMessageCommand{
			DisputeID: out.ID,
			SenderID:  "stranger",
			Content:   "hello",
		})
		assert.ErrorIs(t, err, domaindispute.ErrNotAParty)
	})
}
