package uow

import (
	"context"

	domaincondition "gearshare/internal/domain/condition"
	domaindeposit "gearshare/internal/domain/deposit"
	domaindispute "gearshare/internal/domain/dispute"
	domaingamification "gearshare/internal/domain/gamification"
	domainitem "gearshare/internal/domain/item"
	domainrental "gearshare/internal/domain/rental"
	domainreview "gearshare/internal/domain/review"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Items() domainitem.Repository
	Rentals() domainrental.Repository
	Conditions() domaincondition.Repository
	Disputes() domaindispute.Repository
	Deposits() domaindeposit.Repository
	Profiles() domaingamification.Repository
	Reviews() domainreview.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
