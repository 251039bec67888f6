package deposit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/policies"
	"gearshare/internal/app/uow"
	domaindeposit "gearshare/internal/domain/deposit"
	domaindispute "gearshare/internal/domain/dispute"
	domainrental "gearshare/internal/domain/rental"
)

const settleHoldsKey = "deposit.settle_holds"

// SettleHoldsCommand sweeps every unsettled hold and applies the settlement
// decision. It is fired on a schedule; running it twice in a row is harmless
// because settled holds are skipped.
type SettleHoldsCommand struct {
	BatchSize int
}

func (c SettleHoldsCommand) Key() string { return settleHoldsKey }

type SettleHoldsResult struct {
	Evaluated int `json:"evaluated"`
	Released  int `json:"released"`
	Forfeited int `json:"forfeited"`
}

type SettleHoldsHandler struct {
	UoWFactory uow.UoWFactory
	Notifier   policies.Notifier
	Logger     *slog.Logger
}

func (h *SettleHoldsHandler) Handle(ctx context.Context, cmd SettleHoldsCommand) (*SettleHoldsResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	batch := cmd.BatchSize
	if batch <= 0 {
		batch = 100
	}
	holds, err := unit.Deposits().ListUnsettled(ctx, batch)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := &SettleHoldsResult{}
	var settled []*domaindeposit.Hold

	for _, hold := range holds {
		result.Evaluated++
		flag, err := hasActiveOwnerDispute(ctx, unit, hold)
		if err != nil {
			return nil, err
		}
		outcome := hold.Decide(now, flag)
		if outcome == domaindeposit.OutcomePending {
			continue
		}
		if err := hold.Settle(outcome, now); err != nil {
			if errors.Is(err, domaindeposit.ErrAlreadySettled) {
				continue
			}
			return nil, err
		}
		if err := unit.Deposits().Save(ctx, hold); err != nil {
			return nil, err
		}
		switch outcome {
		case domaindeposit.OutcomeReleased:
			result.Released++
		case domaindeposit.OutcomeForfeited:
			result.Forfeited++
		}
		settled = append(settled, hold)
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	for _, hold := range settled {
		h.notifyRenter(ctx, hold)
	}

	return result, nil
}

// hasActiveOwnerDispute reports whether an owner-raised dispute was filed
// against the hold's rental while the window was still open and has not been
// resolved. Renter-raised disputes never touch the deposit.
func hasActiveOwnerDispute(ctx context.Context, unit uow.UnitOfWork, hold *domaindeposit.Hold) (bool, error) {
	d, err := unit.Disputes().ActiveByRental(ctx, hold.RentalID)
	if err != nil {
		if errors.Is(err, domaindispute.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return d.RaisedRole == domainrental.RoleOwner && d.CreatedAt.Before(hold.ExpiresAt), nil
}

func (h *SettleHoldsHandler) notifyRenter(ctx context.Context, hold *domaindeposit.Hold) {
	if h.Notifier == nil {
		return
	}
	template := "deposit_released"
	if hold.Status == domaindeposit.StatusForfeited {
		template = "deposit_forfeited"
	}
	err := h.Notifier.Send(ctx, hold.RenterID, template, map[string]any{
		"rental_id":    string(hold.RentalID),
		"amount_cents": hold.AmountCents,
	})
	if err != nil && h.Logger != nil {
		h.Logger.Warn("notification dispatch failed", "template", template, "rental_id", hold.RentalID, "error", err)
	}
}

var _ commands.Handler[SettleHoldsCommand, *SettleHoldsResult] = (*SettleHoldsHandler)(nil)
