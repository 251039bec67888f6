package dispute

import (
	"context"
	"time"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	"gearshare/internal/app/uow"
	domaindispute "gearshare/internal/domain/dispute"
	domainrental "gearshare/internal/domain/rental"
)

const addMessageKey = "dispute.add_message"

// AddMessageCommand appends to the dispute's conversation thread.
type AddMessageCommand struct {
	DisputeID string
	SenderID  string
	Content   string
}

func (c AddMessageCommand) Key() string { return addMessageKey }

type AddMessageHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *AddMessageHandler) Handle(ctx context.Context, cmd AddMessageCommand) (dto.Dispute, error) {
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

	d, err := unit.Disputes().ByID(ctx, domaindispute.DisputeID(cmd.DisputeID))
	if err != nil {
		return dto.Dispute{}, err
	}

	role := domainrental.RoleRenter
	if cmd.SenderID == d.RaisedBy && d.RaisedRole == domainrental.RoleOwner ||
		cmd.SenderID == d.Respondent && d.RaisedRole == domainrental.RoleRenter {
		role = domainrental.RoleOwner
	}
	if err := d.AddMessage(cmd.SenderID, role, cmd.Content, time.Now()); err != nil {
		return dto.Dispute{}, err
	}

	if err := unit.Disputes().Save(ctx, d); err != nil {
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

var _ commands.Handler[AddMessageCommand, dto.Dispute] = (*AddMessageHandler)(nil)
