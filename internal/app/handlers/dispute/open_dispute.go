package dispute

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	"gearshare/internal/app/middleware"
	"gearshare/internal/app/outbox"
	"gearshare/internal/app/policies"
	"gearshare/internal/app/uow"
	domaincondition "gearshare/internal/domain/condition"
	domaindispute "gearshare/internal/domain/dispute"
	domainrental "gearshare/internal/domain/rental"
)

const openDisputeKey = "dispute.open"

// OpenDisputeCommand escalates a rental disagreement. The raiser must be a
// party to the rental; the other party becomes the respondent. Opening a
// dispute pulls the item from availability until the dispute settles.
type OpenDisputeCommand struct {
	RentalID        string
	RaisedBy        string
	Type            domaindispute.Type
	Description     string
	PhotoURLs       []string
	ReportRefs      []string
	IdempotencyKeyV string
}

func (c OpenDisputeCommand) Key() string { return openDisputeKey }

func (c OpenDisputeCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c OpenDisputeCommand) ResultPrototype() any { return &dto.Dispute{} }

type OpenDisputeHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Logger     *slog.Logger
}

func (h *OpenDisputeHandler) Handle(ctx context.Context, cmd OpenDisputeCommand) (*dto.Dispute, error) {
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
	role, ok := r.RoleOf(cmd.RaisedBy)
	if !ok {
		return nil, domainrental.ErrNotAParty
	}
	respondent := r.OwnerID
	if role == domainrental.RoleOwner {
		respondent = r.RenterID
	}

	if _, err := unit.Disputes().ActiveByRental(ctx, r.ID); err == nil {
		return nil, domaindispute.ErrDuplicateDispute
	} else if !errors.Is(err, domaindispute.ErrNotFound) {
		return nil, err
	}

	refs, err := h.resolveReportRefs(ctx, unit, r, cmd.ReportRefs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	d, err := domaindispute.Open(domaindispute.OpenParams{
		ID:          domaindispute.DisputeID(uuid.NewString()),
		RentalID:    r.ID,
		ItemID:      r.ItemID,
		RaisedBy:    cmd.RaisedBy,
		RaisedRole:  role,
		Respondent:  respondent,
		Type:        cmd.Type,
		Description: cmd.Description,
		PhotoURLs:   cmd.PhotoURLs,
		ReportRefs:  refs,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	it, err := unit.Items().ByID(ctx, r.ItemID)
	if err != nil {
		return nil, err
	}
	it.Suspend(string(d.ID), now)

	if err := unit.Disputes().Save(ctx, d); err != nil {
		return nil, err
	}
	if err := unit.Items().Save(ctx, it); err != nil {
		return nil, err
	}

	pending := append(d.PendingEvents(), it.PendingEvents()...)
	d.ClearEvents()
	it.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	if h.Notifier != nil {
		err := h.Notifier.Send(ctx, respondent, "dispute_opened", map[string]any{
			"dispute_id": string(d.ID),
			"rental_id":  string(r.ID),
			"type":       string(d.Type),
		})
		if err != nil && h.Logger != nil {
			h.Logger.Warn("notification dispatch failed", "template", "dispute_opened", "dispute_id", d.ID, "error", err)
		}
	}

	mapped := dto.MapDispute(d)
	return &mapped, nil
}

// resolveReportRefs checks that every cited condition report exists, belongs
// to this rental, and is not already attached to another dispute. A report
// backs at most one dispute, so evidence cannot be recycled across
// escalations of the same rental.
func (h *OpenDisputeHandler) resolveReportRefs(ctx context.Context, unit uow.UnitOfWork, r *domainrental.Rental, raw []string) ([]domaincondition.ReportID, error) {
	refs := make([]domaincondition.ReportID, 0, len(raw))
	if len(raw) == 0 {
		return refs, nil
	}

	prior, err := unit.Disputes().ListByRental(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	cited := make(map[domaincondition.ReportID]struct{})
	for _, d := range prior {
		for _, ref := range d.ReportRefs {
			cited[ref] = struct{}{}
		}
	}

	for _, s := range raw {
		ref := domaincondition.ReportID(s)
		rep, err := unit.Conditions().ByID(ctx, ref)
		if err != nil {
			return nil, err
		}
		if rep.RentalID != r.ID {
			return nil, domaincondition.ErrNotFound
		}
		if _, taken := cited[ref]; taken {
			return nil, domaindispute.ErrEvidenceInUse
		}
		cited[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (h *OpenDisputeHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[OpenDisputeCommand, *dto.Dispute] = (*OpenDisputeHandler)(nil)
var _ middleware.IdempotentCommand = (*OpenDisputeCommand)(nil)
