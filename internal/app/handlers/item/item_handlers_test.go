package item

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainitem "gearshare/internal/domain/item"
	"gearshare/internal/infra/storage/memory"
)

func TestCreateItemHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("lists an item and credits the owner", func(t *testing.T) {
		factory := memory.NewFactory()
		h := &CreateItemHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		out, err := h.Handle(ctx, CreateItemCommand{
			OwnerID:        "owner",
			Title:          "  Sony A7 III  ",
			Category:       "Camera",
			DailyRateCents: 4500,
		})
		require.NoError(t, err)
		assert.Equal(t, "Sony A7 III", out.Title)
		assert.Equal(t, "camera", out.Category)
		assert.NotEmpty(t, out.ID)

		profile, err := factory.ProfileRepo.ByUser(ctx, "owner")
		require.NoError(t, err)
		assert.Equal(t, int64(10), profile.OwnerPoints)
	})

	t.Run("rejects a free listing", func(t *testing.T) {
		factory := memory.NewFactory()
		h := &CreateItemHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		_, err := h.Handle(ctx, CreateItemCommand{OwnerID: "owner", Title: "x", DailyRateCents: 0})
		assert.ErrorIs(t, err, domainitem.ErrInvalidRate)
	})
}

func TestSearchItemsHandler(t *testing.T) {
	ctx := context.Background()
	factory := memory.NewFactory()

	seed := func(id, title, category string, rate int64, suspended bool, age time.Duration) {
		it, err := domainitem.New(domainitem.CreateParams{
			ID:             domainitem.ItemID(id),
			OwnerID:        "owner",
			Title:          title,
			Category:       category,
			DailyRateCents: rate,
			CreatedAt:      time.Now().Add(-age),
		})
		require.NoError(t, err)
		if suspended {
			it.Suspend("d-1", time.Now())
		}
		require.NoError(t, factory.ItemRepo.Save(ctx, it))
	}
	seed("i-drill", "Cordless drill", "tools", 1000, false, 3*time.Hour)
	seed("i-saw", "Circular saw", "tools", 2500, false, 2*time.Hour)
	seed("i-cam", "DSLR camera", "camera", 4000, false, time.Hour)
	seed("i-gone", "Impact driver", "tools", 1200, true, 4*time.Hour)

	h := &SearchItemsHandler{UoWFactory: factory}

	t.Run("suspended items are hidden by default", func(t *testing.T) {
		out, err := h.Handle(ctx, SearchItemsQuery{})
		require.NoError(t, err)
		assert.Len(t, out, 3)
		for _, it := range out {
			assert.NotEqual(t, "i-gone", it.ID)
		}
	})

	t.Run("owner dashboards see suspended stock", func(t *testing.T) {
		out, err := h.Handle(ctx, SearchItemsQuery{IncludeSuspended: true})
		require.NoError(t, err)
		assert.Len(t, out, 4)
	})

	t.Run("category filter is case-insensitive", func(t *testing.T) {
		out, err := h.Handle(ctx, SearchItemsQuery{Category: "Tools"})
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})

	t.Run("rate ceiling", func(t *testing.T) {
		out, err := h.Handle(ctx, SearchItemsQuery{MaxDailyRateCents: 1500})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "i-drill", out[0].ID)
	})

	t.Run("text search spans title", func(t *testing.T) {
		out, err := h.Handle(ctx, SearchItemsQuery{Query: "saw"})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "i-saw", out[0].ID)
	})

	t.Run("newest first with paging", func(t *testing.T) {
		out, err := h.Handle(ctx, SearchItemsQuery{Limit: 2})
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "i-cam", out[0].ID)
		assert.Equal(t, "i-saw", out[1].ID)

		rest, err := h.Handle(ctx, SearchItemsQuery{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, "i-drill", rest[0].ID)
	})
}

func TestGetItemHandler(t *testing.T) {
	ctx := context.Background()
	factory := memory.NewFactory()
	h := &GetItemHandler{UoWFactory: factory}

	_, err := h.Handle(ctx, GetItemQuery{ItemID: "missing"})
	assert.ErrorIs(t, err, domainitem.ErrNotFound)
}
