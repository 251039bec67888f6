package item

import (
	"context"

	"gearshare/internal/app/dto"
	"gearshare/internal/app/handlers/support"
	"gearshare/internal/app/queries"
	"gearshare/internal/app/uow"
	domainitem "gearshare/internal/domain/item"
)

const searchItemsKey = "item.search"

// SearchItemsQuery lists rentable equipment. Suspended items are filtered
// out unless the caller explicitly asks for them (owner dashboards do).
type SearchItemsQuery struct {
	OwnerID           string
	Category          string
	Query             string
	MaxDailyRateCents int64
	IncludeSuspended  bool
	Limit             int
	Offset            int
}

func (q SearchItemsQuery) Key() string { return searchItemsKey }

type SearchItemsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchItemsHandler) Handle(ctx context.Context, q SearchItemsQuery) ([]dto.Item, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	items, err := unit.Items().Search(ctx, domainitem.SearchParams{
		OwnerID:           q.OwnerID,
		Category:          q.Category,
		Query:             q.Query,
		MaxDailyRateCents: q.MaxDailyRateCents,
		IncludeSuspended:  q.IncludeSuspended,
		Limit:             q.Limit,
		Offset:            q.Offset,
	}.Normalized())
	if err != nil {
		return nil, err
	}
	return dto.MapItems(items), nil
}

var _ queries.Handler[SearchItemsQuery, []dto.Item] = (*SearchItemsHandler)(nil)

const getItemKey = "item.get"

type GetItemQuery struct {
	ItemID string
}

func (q GetItemQuery) Key() string { return getItemKey }

type GetItemHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetItemHandler) Handle(ctx context.Context, q GetItemQuery) (dto.Item, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Item{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	it, err := unit.Items().ByID(ctx, domainitem.ItemID(q.ItemID))
	if err != nil {
		return dto.Item{}, err
	}
	return dto.MapItem(it), nil
}

var _ queries.Handler[GetItemQuery, dto.Item] = (*GetItemHandler)(nil)
