package deposit

import (
	"context"
	"time"

	"gearshare/internal/app/dto"
	"gearshare/internal/app/handlers/support"
	"gearshare/internal/app/queries"
	"gearshare/internal/app/uow"
	domaindeposit "gearshare/internal/domain/deposit"
	domainrental "gearshare/internal/domain/rental"
)

const getHoldKey = "deposit.get_by_rental"

// GetHoldQuery returns the deposit hold for a rental. The response carries
// the outcome the hold would settle to right now, so a caller reading an
// expired hold sees RELEASED before any sweep has run.
type GetHoldQuery struct {
	RentalID string
	UserID   string
}

func (q GetHoldQuery) Key() string { return getHoldKey }

type GetHoldHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetHoldHandler) Handle(ctx context.Context, q GetHoldQuery) (dto.DepositHold, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.DepositHold{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	hold, err := unit.Deposits().ByRental(ctx, domainrental.RentalID(q.RentalID))
	if err != nil {
		return dto.DepositHold{}, err
	}
	if q.UserID != hold.RenterID && q.UserID != hold.OwnerID {
		return dto.DepositHold{}, domainrental.ErrNotAParty
	}

	flag, err := hasActiveOwnerDispute(ctx, unit, hold)
	if err != nil {
		return dto.DepositHold{}, err
	}

	out := dto.MapDepositHold(hold)
	out.EffectiveOutcome = string(hold.Decide(time.Now(), flag))
	if out.EffectiveOutcome == string(domaindeposit.OutcomePending) {
		out.EffectiveOutcome = string(domaindeposit.StatusHeld)
	}
	return out, nil
}

var _ queries.Handler[GetHoldQuery, dto.DepositHold] = (*GetHoldHandler)(nil)
