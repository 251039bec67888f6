package review

import (
	"context"

	"gearshare/internal/app/dto"
	"gearshare/internal/app/handlers/support"
	"gearshare/internal/app/queries"
	"gearshare/internal/app/uow"
	domainitem "gearshare/internal/domain/item"
)

const listReviewsKey = "review.list_by_item"

type ListReviewsQuery struct {
	ItemID string
	Limit  int
	Offset int
}

func (q ListReviewsQuery) Key() string { return listReviewsKey }

type ListReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListReviewsHandler) Handle(ctx context.Context, q ListReviewsQuery) ([]dto.Review, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	reviews, err := unit.Reviews().ListByItem(ctx, domainitem.ItemID(q.ItemID), limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Review, 0, len(reviews))
	for _, rev := range reviews {
		out = append(out, dto.MapReview(rev))
	}
	return out, nil
}

var _ queries.Handler[ListReviewsQuery, []dto.Review] = (*ListReviewsHandler)(nil)
