package condition

import (
	"context"
	"time"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	"gearshare/internal/app/uow"
	domaincondition "gearshare/internal/domain/condition"
	domainrental "gearshare/internal/domain/rental"
)

const verifyReportKey = "condition.verify_report"

// VerifyReportCommand stamps a report with the counter-party's verification.
// Verification is additive: the report content is never touched.
type VerifyReportCommand struct {
	ReportID   string
	VerifierID string
}

func (c VerifyReportCommand) Key() string { return verifyReportKey }

type VerifyReportHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *VerifyReportHandler) Handle(ctx context.Context, cmd VerifyReportCommand) (dto.ConditionReport, error) {
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

	rep, err := unit.Conditions().ByID(ctx, domaincondition.ReportID(cmd.ReportID))
	if err != nil {
		return dto.ConditionReport{}, err
	}

	r, err := unit.Rentals().ByID(ctx, rep.RentalID)
	if err != nil {
		return dto.ConditionReport{}, err
	}
	if _, ok := r.RoleOf(cmd.VerifierID); !ok {
		return dto.ConditionReport{}, domainrental.ErrNotAParty
	}

	if err := rep.Verify(cmd.VerifierID, time.Now()); err != nil {
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

var _ commands.Handler[VerifyReportCommand, dto.ConditionReport] = (*VerifyReportHandler)(nil)
