package item

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	"gearshare/internal/app/outbox"
	"gearshare/internal/app/uow"
	domaingamification "gearshare/internal/domain/gamification"
	domainitem "gearshare/internal/domain/item"
)

const createItemKey = "item.create"

// CreateItemCommand lists a new piece of equipment for rent.
type CreateItemCommand struct {
	OwnerID        string
	Title          string
	Description    string
	Category       string
	DailyRateCents int64
	PhotoURLs      []string
}

func (c CreateItemCommand) Key() string { return createItemKey }

// Validate screens out listings the aggregate would reject anyway, before
// the bus spends an idempotency record or a transaction on them.
func (c CreateItemCommand) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return domainitem.ErrTitleRequired
	}
	if c.DailyRateCents <= 0 {
		return domainitem.ErrInvalidRate
	}
	return nil
}

type CreateItemHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CreateItemHandler) Handle(ctx context.Context, cmd CreateItemCommand) (dto.Item, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return dto.Item{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return dto.Item{}, err
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

	now := time.Now().UTC()
	it, err := domainitem.New(domainitem.CreateParams{
		ID:             domainitem.ItemID(uuid.NewString()),
		OwnerID:        cmd.OwnerID,
		Title:          cmd.Title,
		Description:    cmd.Description,
		Category:       cmd.Category,
		DailyRateCents: cmd.DailyRateCents,
		PhotoURLs:      cmd.PhotoURLs,
		CreatedAt:      now,
	})
	if err != nil {
		return dto.Item{}, err
	}
	if err := unit.Items().Save(ctx, it); err != nil {
		return dto.Item{}, err
	}

	delta := domaingamification.DeltaFor(domaingamification.RoleOwner, domaingamification.EventListingCreated, now)
	if _, err := unit.Profiles().Apply(ctx, cmd.OwnerID, delta); err != nil {
		return dto.Item{}, err
	}

	pending := it.PendingEvents()
	it.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return dto.Item{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.Item{}, err
		}
		committed = true
	}

	return dto.MapItem(it), nil
}

func (h *CreateItemHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateItemCommand, dto.Item] = (*CreateItemHandler)(nil)
