package dispute

import (
	"context"
	"log/slog"
	"time"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	"gearshare/internal/app/outbox"
	"gearshare/internal/app/policies"
	"gearshare/internal/app/uow"
	domaindispute "gearshare/internal/domain/dispute"
)

const (
	startReviewKey    = "dispute.start_review"
	resolveDisputeKey = "dispute.resolve"
	closeDisputeKey   = "dispute.close"
)

// StartReviewCommand moves an open dispute into moderation.
type StartReviewCommand struct {
	DisputeID   string
	ModeratorID string
}

func (c StartReviewCommand) Key() string { return startReviewKey }

// ResolveDisputeCommand records the moderator's terminal decision. Resolving
// releases the item back into availability if this dispute was the one that
// suspended it.
type ResolveDisputeCommand struct {
	DisputeID         string
	ResolverID        string
	Outcome           string
	CompensationCents int64
}

func (c ResolveDisputeCommand) Key() string { return resolveDisputeKey }

// CloseDisputeCommand discards a dispute without a resolution record.
type CloseDisputeCommand struct {
	DisputeID string
	ClosedBy  string
}

func (c CloseDisputeCommand) Key() string { return closeDisputeKey }

// ModerationHandler hosts the three moderation transitions; they share the
// same unit-of-work plumbing and item restoration step.
type ModerationHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Logger     *slog.Logger
}

func (h *ModerationHandler) HandleStartReview(ctx context.Context, cmd StartReviewCommand) (dto.Dispute, error) {
	return h.transition(ctx, cmd.DisputeID, func(d *domaindispute.Dispute, now time.Time) error {
		return d.StartReview(now)
	})
}

func (h *ModerationHandler) HandleResolve(ctx context.Context, cmd ResolveDisputeCommand) (dto.Dispute, error) {
	out, err := h.transition(ctx, cmd.DisputeID, func(d *domaindispute.Dispute, now time.Time) error {
		return d.Resolve(cmd.ResolverID, cmd.Outcome, cmd.CompensationCents, now)
	})
	if err != nil {
		return dto.Dispute{}, err
	}
	h.notifyParties(ctx, out, "dispute_resolved")
	return out, nil
}

func (h *ModerationHandler) HandleClose(ctx context.Context, cmd CloseDisputeCommand) (dto.Dispute, error) {
	out, err := h.transition(ctx, cmd.DisputeID, func(d *domaindispute.Dispute, now time.Time) error {
		return d.Close(now)
	})
	if err != nil {
		return dto.Dispute{}, err
	}
	h.notifyParties(ctx, out, "dispute_closed")
	return out, nil
}

func (h *ModerationHandler) transition(ctx context.Context, disputeID string, apply func(*domaindispute.Dispute, time.Time) error) (dto.Dispute, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return dto.Dispute{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return dto.Dispute{}, err
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

	d, err := unit.Disputes().ByID(ctx, domaindispute.DisputeID(disputeID))
	if err != nil {
		return dto.Dispute{}, err
	}

	now := time.Now().UTC()
	if err := apply(d, now); err != nil {
		return dto.Dispute{}, err
	}

	pending := d.PendingEvents()
	d.ClearEvents()

	// When the dispute leaves its active phase, hand the item back, but only
	// if this dispute is the one holding it.
	if !d.Active() {
		it, err := unit.Items().ByID(ctx, d.ItemID)
		if err != nil {
			return dto.Dispute{}, err
		}
		if it.Suspended && it.SuspendedBy == string(d.ID) {
			if err := it.Resume(now); err != nil {
				return dto.Dispute{}, err
			}
			if err := unit.Items().Save(ctx, it); err != nil {
				return dto.Dispute{}, err
			}
			pending = append(pending, it.PendingEvents()...)
			it.ClearEvents()
		}
	}

	if err := unit.Disputes().Save(ctx, d); err != nil {
		return dto.Dispute{}, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return dto.Dispute{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.Dispute{}, err
		}
		committed = true
	}

	return dto.MapDispute(d), nil
}

func (h *ModerationHandler) notifyParties(ctx context.Context, d dto.Dispute, template string) {
	if h.Notifier == nil {
		return
	}
	fields := map[string]any{
		"dispute_id": d.ID,
		"rental_id":  d.RentalID,
		"status":     d.Status,
	}
	for _, to := range []string{d.RaisedBy, d.Respondent} {
		if err := h.Notifier.Send(ctx, to, template, fields); err != nil && h.Logger != nil {
			h.Logger.Warn("notification dispatch failed", "template", template, "dispute_id", d.ID, "error", err)
		}
	}
}

func (h *ModerationHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

// StartReviewHandler, ResolveDisputeHandler and CloseDisputeHandler adapt the
// shared moderation handler to the command bus, one command type each.
type StartReviewHandler struct{ *ModerationHandler }

func (h StartReviewHandler) Handle(ctx context.Context, cmd StartReviewCommand) (dto.Dispute, error) {
	return h.HandleStartReview(ctx, cmd)
}

type ResolveDisputeHandler struct{ *ModerationHandler }

func (h ResolveDisputeHandler) Handle(ctx context.Context, cmd ResolveDisputeCommand) (dto.Dispute, error) {
	return h.HandleResolve(ctx, cmd)
}

type CloseDisputeHandler struct{ *ModerationHandler }

func (h CloseDisputeHandler) Handle(ctx context.Context, cmd CloseDisputeCommand) (dto.Dispute, error) {
	return h.HandleClose(ctx, cmd)
}

var _ commands.Handler[StartReviewCommand, dto.Dispute] = StartReviewHandler{}
var _ commands.Handler[ResolveDisputeCommand, dto.Dispute] = ResolveDisputeHandler{}
var _ commands.Handler[CloseDisputeCommand, dto.Dispute] = CloseDisputeHandler{}
