package rental

import (
	"context"
	"log/slog"
	"time"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/outbox"
	"gearshare/internal/app/policies"
	"gearshare/internal/app/uow"
	domaindeposit "gearshare/internal/domain/deposit"
	domaingamification "gearshare/internal/domain/gamification"
	domainrental "gearshare/internal/domain/rental"
)

const setRentalStatusKey = "rental.set_status"

// SetRentalStatusCommand drives one transition of the rental state machine
// on behalf of the acting party.
type SetRentalStatusCommand struct {
	RentalID string
	ActorID  string
	Target   domainrental.Status
}

func (c SetRentalStatusCommand) Key() string { return setRentalStatusKey }

type SetRentalStatusResult struct {
	RentalID string `json:"rental_id"`
	Status   string `json:"status"`
}

type SetRentalStatusHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Logger     *slog.Logger
}

func (h *SetRentalStatusHandler) Handle(ctx context.Context, cmd SetRentalStatusCommand) (*SetRentalStatusResult, error) {
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

	r, err := unit.Rentals().ByID(ctx, domainrental.RentalID(cmd.RentalID))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	switch cmd.Target {
	case domainrental.StatusApproved:
		// Re-check conflicts at approval time: another request may have been
		// approved since this one was submitted.
		snapshot, err := unit.Rentals().ListByItem(ctx, r.ItemID)
		if err != nil {
			return nil, err
		}
		if domainrental.HasConflict(r.ItemID, r.Period.Start, r.Period.End, snapshot, r.ID) {
			return nil, domainrental.ErrDateConflict
		}
		if err := r.Approve(cmd.ActorID, now); err != nil {
			return nil, err
		}
		if err := h.award(ctx, unit, r.OwnerID, domaingamification.RoleOwner, domaingamification.EventRentalApproved, now); err != nil {
			return nil, err
		}
	case domainrental.StatusDeclined:
		if err := r.Decline(cmd.ActorID, now); err != nil {
			return nil, err
		}
	case domainrental.StatusCancelled:
		if err := r.Cancel(cmd.ActorID, now); err != nil {
			return nil, err
		}
	case domainrental.StatusActive:
		if err := r.Activate(cmd.ActorID, now); err != nil {
			return nil, err
		}
	case domainrental.StatusCompleted:
		if err := r.Complete(cmd.ActorID, now); err != nil {
			return nil, err
		}
		// Completion opens the deposit hold window and credits both parties.
		if err := unit.Deposits().Save(ctx, domaindeposit.Open(r, now)); err != nil {
			return nil, err
		}
		if err := h.award(ctx, unit, r.OwnerID, domaingamification.RoleOwner, domaingamification.EventRentalCompleted, now); err != nil {
			return nil, err
		}
		if err := h.award(ctx, unit, r.RenterID, domaingamification.RoleRenter, domaingamification.EventRentalCompleted, now); err != nil {
			return nil, err
		}
	default:
		return nil, domainrental.ErrIllegalTransition
	}

	if err := unit.Rentals().Save(ctx, r); err != nil {
		return nil, err
	}

	pending := r.PendingEvents()
	r.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	h.notify(ctx, r, cmd.Target)

	return &SetRentalStatusResult{RentalID: string(r.ID), Status: string(r.Status)}, nil
}

func (h *SetRentalStatusHandler) award(ctx context.Context, unit uow.UnitOfWork, userID string, role domaingamification.Role, kind domaingamification.EventKind, now time.Time) error {
	_, err := unit.Profiles().Apply(ctx, userID, domaingamification.DeltaFor(role, kind, now))
	return err
}

// notify runs after commit; delivery failures never undo the transition.
func (h *SetRentalStatusHandler) notify(ctx context.Context, r *domainrental.Rental, target domainrental.Status) {
	if h.Notifier == nil {
		return
	}
	var template string
	switch target {
	case domainrental.StatusApproved:
		template = "rental_approved"
	case domainrental.StatusDeclined:
		template = "rental_declined"
	case domainrental.StatusCompleted:
		template = "rental_completed"
	default:
		return
	}
	fields := map[string]any{
		"rental_id":   string(r.ID),
		"item_id":     string(r.ItemID),
		"total_cents": r.TotalCents,
	}
	if target == domainrental.StatusCompleted {
		fields["deposit_cents"] = domaindeposit.AmountFor(r.TotalCents)
		fields["hold_expires_in"] = domaindeposit.HoldWindow.String()
	}
	if err := h.Notifier.Send(ctx, r.RenterID, template, fields); err != nil && h.Logger != nil {
		h.Logger.Warn("notification dispatch failed", "template", template, "rental_id", r.ID, "error", err)
	}
}

func (h *SetRentalStatusHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[SetRentalStatusCommand, *SetRentalStatusResult] = (*SetRentalStatusHandler)(nil)
