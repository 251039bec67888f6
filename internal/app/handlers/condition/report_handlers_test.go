package condition

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaincondition "gearshare/internal/domain/condition"
	domainrental "gearshare/internal/domain/rental"
	"gearshare/internal/infra/storage/memory"
)

func seedActiveRental(t *testing.T, factory memory.Factory) *domainrental.Rental {
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
	r.Status = domainrental.StatusActive
	require.NoError(t, factory.RentalRepo.Save(context.Background(), r))
	return r
}

func reportCmd(author string, kind domaincondition.Kind) CreateReportCommand {
	return CreateReportCommand{
		RentalID:  "r-1",
		AuthorID:  author,
		Kind:      kind,
		Notes:     "small scuff on the left handle",
		PhotoURLs: []string{"https://cdn/pickup-1.jpg"},
		Grade:     domaincondition.GradeGood,
	}
}

func TestCreateReportHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("renter files a pickup report", func(t *testing.T) {
		factory := memory.NewFactory()
		seedActiveRental(t, factory)
		h := &CreateReportHandler{UoWFactory: factory}

		out, err := h.Handle(ctx, reportCmd("renter", domaincondition.KindPreRental))
		require.NoError(t, err)
		assert.Equal(t, string(domaincondition.KindPreRental), out.Kind)
		assert.Equal(t, "renter", out.AuthorID)
		assert.Empty(t, out.VerifiedBy)
	})

	t.Run("one report per kind", func(t *testing.T) {
		factory := memory.NewFactory()
		seedActiveRental(t, factory)
		h := &CreateReportHandler{UoWFactory: factory}

		_, err := h.Handle(ctx, reportCmd("renter", domaincondition.KindPreRental))
		require.NoError(t, err)
		_, err = h.Handle(ctx, reportCmd("owner", domaincondition.KindPreRental))
		assert.ErrorIs(t, err, domaincondition.ErrAlreadyFiled)
	})

	t.Run("different kinds coexist", func(t *testing.T) {
		factory := memory.NewFactory()
		seedActiveRental(t, factory)
		h := &CreateReportHandler{UoWFactory: factory}

		_, err := h.Handle(ctx, reportCmd("renter", domaincondition.KindPreRental))
		require.NoError(t, err)
		_, err = h.Handle(ctx, reportCmd("owner", domaincondition.KindPostRentalOwner))
		assert.NoError(t, err)
	})

	t.Run("stranger cannot file", func(t *testing.T) {
		factory := memory.NewFactory()
		seedActiveRental(t, factory)
		h := &CreateReportHandler{UoWFactory: factory}

		_, err := h.Handle(ctx, reportCmd("stranger", domaincondition.KindPreRental))
		assert.ErrorIs(t, err, domainrental.ErrNotAParty)
	})

	t.Run("unknown rental", func(t *testing.T) {
		factory := memory.NewFactory()
		h := &CreateReportHandler{UoWFactory: factory}

		cmd := reportCmd("renter", domaincondition.KindPreRental)
		cmd.RentalID = "missing"
		_, err := h.Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainrental.ErrNotFound)
	})
}

func TestVerifyReportHandler(t *testing.T) {
	ctx := context.Background()

	file := func(t *testing.T, factory memory.Factory, author string) string {
		t.Helper()
		h := &CreateReportHandler{UoWFactory: factory}
		out, err := h.Handle(ctx, reportCmd(author, domaincondition.KindPreRental))
		require.NoError(t, err)
		return out.ID
	}

	t.Run("counter-party verifies", func(t *testing.T) {
		factory := memory.NewFactory()
		seedActiveRental(t, factory)
		id := file(t, factory, "renter")
		h := &VerifyReportHandler{UoWFactory: factory}

		out, err := h.Handle(ctx, VerifyReportCommand{ReportID: id, VerifierID: "owner"})
		require.NoError(t, err)
		assert.Equal(t, "owner", out.VerifiedBy)
		require.NotNil(t, out.VerifiedAt)
	})

	t.Run("author cannot self-verify", func(t *testing.T) {
		factory := memory.NewFactory()
		seedActiveRental(t, factory)
		id := file(t, factory, "renter")
		h := &VerifyReportHandler{UoWFactory: factory}

		_, err := h.Handle(ctx, VerifyReportCommand{ReportID: id, VerifierID: "renter"})
		assert.ErrorIs(t, err, domaincondition.ErrVerifierIsAuthor)
	})

	t.Run("verification happens once", func(t *testing.T) {
		factory := memory.NewFactory()
		seedActiveRental(t, factory)
		id := file(t, factory, "renter")
		h := &VerifyReportHandler{UoWFactory: factory}

		_, err := h.Handle(ctx, VerifyReportCommand{ReportID: id, VerifierID: "owner"})
		require.NoError(t, err)
		_, err = h.Handle(ctx, VerifyReportCommand{ReportID: id, VerifierID: "owner"})
		assert.ErrorIs(t, err, domaincondition.ErrAlreadyVerified)
	})

	t.Run("stranger cannot verify", func(t *testing.T) {
		factory := memory.NewFactory()
		seedActiveRental(t, factory)
		id := file(t, factory, "renter")
		h := &VerifyReportHandler{UoWFactory: factory}

		_, err := h.Handle(ctx, VerifyReportCommand{ReportID: id, VerifierID: "stranger"})
		assert.ErrorIs(t, err, domainrental.ErrNotAParty)
	})

	t.Run("unknown report", func(t *testing.T) {
		factory := memory.NewFactory()
		h := &VerifyReportHandler{UoWFactory: factory}

		_, err := h.Handle(ctx, VerifyReportCommand{ReportID: "missing", VerifierID: "owner"})
		assert.ErrorIs(t, err, domaincondition.ErrNotFound)
	})
}
