package condition

import (
	"context"

	"gearshare/internal/app/dto"
	"gearshare/internal/app/handlers/support"
	"gearshare/internal/app/queries"
	"gearshare/internal/app/uow"
	domainrental "gearshare/internal/domain/rental"
)

const listReportsKey = "condition.list_by_rental"

// ListReportsQuery returns a rental's condition reports oldest first, so the
// pre-rental attestation leads the timeline.
type ListReportsQuery struct {
	RentalID string
	UserID   string
}

func (q ListReportsQuery) Key() string { return listReportsKey }

type ListReportsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListReportsHandler) Handle(ctx context.Context, q ListReportsQuery) ([]dto.ConditionReport, error) {
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

	reports, err := unit.Conditions().ListByRental(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return dto.MapConditionReports(reports), nil
}

var _ queries.Handler[ListReportsQuery, []dto.ConditionReport] = (*ListReportsHandler)(nil)
