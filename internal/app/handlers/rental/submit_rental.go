package rental

import (
	"context"
	"time"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/middleware"
	"gearshare/internal/app/outbox"
	"gearshare/internal/app/uow"
	domainitem "gearshare/internal/domain/item"
	domainrental "gearshare/internal/domain/rental"
)

const submitRentalKey = "rental.submit"

// SubmitRentalCommand creates a new pending rental request.
type SubmitRentalCommand struct {
	CommandID       string
	ItemID          string
	RenterID        string
	StartDate       time.Time
	EndDate         time.Time
	StartTime       string
	EndTime         string
	IdempotencyKeyV string
}

func (c SubmitRentalCommand) Key() string { return submitRentalKey }

// Validate rejects requests that are malformed before any state is touched.
func (c SubmitRentalCommand) Validate() error {
	if c.ItemID == "" || c.RenterID == "" {
		return domainrental.ErrValidation
	}
	if c.EndDate.Before(c.StartDate) {
		return domainrental.ErrValidation
	}
	return nil
}

func (c SubmitRentalCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c SubmitRentalCommand) ResultPrototype() any { return &SubmitRentalResult{} }

type SubmitRentalResult struct {
	RentalID   string `json:"rental_id"`
	TotalCents int64  `json:"total_cents"`
}

type SubmitRentalHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *SubmitRentalHandler) Handle(ctx context.Context, cmd SubmitRentalCommand) (*SubmitRentalResult, error) {
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

	it, err := unit.Items().ByID(ctx, domainitem.ItemID(cmd.ItemID))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	// Parameter validation (self-rental, past dates, duration) comes first;
	// only a structurally valid request is worth checking the calendar for.
	r, err := domainrental.New(domainrental.CreateParams{
		ID:             domainrental.RentalID(cmd.CommandID),
		ItemID:         it.ID,
		RenterID:       cmd.RenterID,
		OwnerID:        it.OwnerID,
		StartDate:      cmd.StartDate,
		EndDate:        cmd.EndDate,
		StartTime:      cmd.StartTime,
		EndTime:        cmd.EndTime,
		DailyRateCents: it.DailyRateCents,
		CreatedAt:      now,
	})
	if err != nil {
		return nil, err
	}

	// Conflict detection runs against the snapshot read inside this unit of
	// work, so a concurrent approval cannot slip between check and save.
	snapshot, err := unit.Rentals().ListByItem(ctx, it.ID)
	if err != nil {
		return nil, err
	}
	if domainrental.HasConflict(it.ID, cmd.StartDate, cmd.EndDate, snapshot, "") {
		return nil, domainrental.ErrDateConflict
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

	return &SubmitRentalResult{RentalID: string(r.ID), TotalCents: r.TotalCents}, nil
}

func (h *SubmitRentalHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[SubmitRentalCommand, *SubmitRentalResult] = (*SubmitRentalHandler)(nil)
var _ middleware.IdempotentCommand = (*SubmitRentalCommand)(nil)
