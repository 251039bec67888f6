package condition

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	"gearshare/internal/app/uow"
	domaincondition "gearshare/internal/domain/condition"
	domainrental "gearshare/internal/domain/rental"
)

const createReportKey = "condition.create_report"

// CreateReportCommand files a condition attestation against a rental. Only a
// party to the rental may file, and each kind may be filed once.
type CreateReportCommand struct {
	RentalID  string
	AuthorID  string
	Kind      domaincondition.Kind
	Notes     string
	PhotoURLs []string
	Grade     domaincondition.Grade
}

func (c CreateReportCommand) Key() string { return createReportKey }

type CreateReportHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CreateReportHandler) Handle(ctx context.Context, cmd CreateReportCommand) (dto.ConditionReport, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return dto.ConditionReport{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return dto.ConditionReport{}, err
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
		return dto.ConditionReport{}, err
	}
	if _, ok := r.RoleOf(cmd.AuthorID); !ok {
		return dto.ConditionReport{}, domainrental.ErrNotAParty
	}

	if existing, err := unit.Conditions().ByRentalAndKind(ctx, r.ID, cmd.Kind); err == nil && existing != nil {
		return dto.ConditionReport{}, domaincondition.ErrAlreadyFiled
	} else if err != nil && !errors.Is(err, domaincondition.ErrNotFound) {
		return dto.ConditionReport{}, err
	}

	rep, err := domaincondition.New(domaincondition.CreateParams{
		ID:        domaincondition.ReportID(uuid.NewString()),
		RentalID:  r.ID,
		ItemID:    r.ItemID,
		Kind:      cmd.Kind,
		AuthorID:  cmd.AuthorID,
		Notes:     cmd.Notes,
		PhotoURLs: cmd.PhotoURLs,
		Grade:     cmd.Grade,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return dto.ConditionReport{}, err
	}
	if err := unit.Conditions().Save(ctx, rep); err != nil {
		return dto.ConditionReport{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.ConditionReport{}, err
		}
		committed = true
	}

	return dto.MapConditionReport(rep), nil
}

var _ commands.Handler[CreateReportCommand, dto.ConditionReport] = (*CreateReportHandler)(nil)
