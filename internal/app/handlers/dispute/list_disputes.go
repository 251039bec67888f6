package dispute

import (
	"context"

	"gearshare/internal/app/dto"
	"gearshare/internal/app/handlers/support"
	"gearshare/internal/app/queries"
	"gearshare/internal/app/uow"
	domaindispute "gearshare/internal/domain/dispute"
	domainrental "gearshare/internal/domain/rental"
)

const listDisputesKey = "dispute.list_by_rental"

type ListDisputesQuery struct {
	RentalID string
	UserID   string
}

func (q ListDisputesQuery) Key() string { return listDisputesKey }

type ListDisputesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListDisputesHandler) Handle(ctx context.Context, q ListDisputesQuery) ([]dto.Dispute, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	r, err := unit.Rentals().ByID(ctx, domainrental.RentalID(q.RentalID))
	if err != nil {
		return nil, err
	}
	if _, ok := r.RoleOf(q.UserID); !ok {
		return nil, domainrental.ErrNotAParty
	}

	disputes, err := unit.Disputes().ListByRental(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return dto.MapDisputes(disputes), nil
}

var _ queries.Handler[ListDisputesQuery, []dto.Dispute] = (*ListDisputesHandler)(nil)

const getDisputeKey = "dispute.get"

type GetDisputeQuery struct {
	DisputeID string
	UserID    string
}

func (q GetDisputeQuery) Key() string { return getDisputeKey }

type GetDisputeHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetDisputeHandler) Handle(ctx context.Context, q GetDisputeQuery) (dto.Dispute, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Dispute{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	d, err := unit.Disputes().ByID(ctx, domaindispute.DisputeID(q.DisputeID))
	if err != nil {
		return dto.Dispute{}, err
	}
	if q.UserID != d.RaisedBy && q.UserID != d.Respondent {
		return dto.Dispute{}, domaindispute.ErrNotAParty
	}
	return dto.MapDispute(d), nil
}

var _ queries.Handler[GetDisputeQuery, dto.Dispute] = (*GetDisputeHandler)(nil)
