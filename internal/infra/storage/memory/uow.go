package memory

import (
	"context"
	"errors"

	"gearshare/internal/app/uow"
	domaincondition "gearshare/internal/domain/condition"
	domaindeposit "gearshare/internal/domain/deposit"
	domaindispute "gearshare/internal/domain/dispute"
	domaingamification "gearshare/internal/domain/gamification"
	domainitem "gearshare/internal/domain/item"
	domainrental "gearshare/internal/domain/rental"
	domainreview "gearshare/internal/domain/review"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ItemRepo      domainitem.Repository
	RentalRepo    domainrental.Repository
	ConditionRepo domaincondition.Repository
	DisputeRepo   domaindispute.Repository
	DepositRepo   domaindeposit.Repository
	ProfileRepo   domaingamification.Repository
	ReviewRepo    domainreview.Repository
}

// NewFactory builds a factory over a fresh set of empty stores.
func NewFactory() Factory {
	return Factory{
		ItemRepo:      NewItemRepository(),
		RentalRepo:    NewRentalRepository(),
		ConditionRepo: NewConditionRepository(),
		DisputeRepo:   NewDisputeRepository(),
		DepositRepo:   NewDepositRepository(),
		ProfileRepo:   NewProfileRepository(),
		ReviewRepo:    NewReviewRepository(),
	}
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided but
// the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ItemRepo == nil || f.RentalRepo == nil || f.ConditionRepo == nil ||
		f.DisputeRepo == nil || f.DepositRepo == nil || f.ProfileRepo == nil || f.ReviewRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		items:      f.ItemRepo,
		rentals:    f.RentalRepo,
		conditions: f.ConditionRepo,
		disputes:   f.DisputeRepo,
		deposits:   f.DepositRepo,
		profiles:   f.ProfileRepo,
		reviews:    f.ReviewRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	items      domainitem.Repository
	rentals    domainrental.Repository
	conditions domaincondition.Repository
	disputes   domaindispute.Repository
	deposits   domaindeposit.Repository
	profiles   domaingamification.Repository
	reviews    domainreview.Repository
}

func (u *Unit) Items() domainitem.Repository {
	return u.items
}

func (u *Unit) Rentals() domainrental.Repository {
	return u.rentals
}

func (u *Unit) Conditions() domaincondition.Repository {
	return u.conditions
}

func (u *Unit) Disputes() domaindispute.Repository {
	return u.disputes
}

func (u *Unit) Deposits() domaindeposit.Repository {
	return u.deposits
}

func (u *Unit) Profiles() domaingamification.Repository {
	return u.profiles
}

func (u *Unit) Reviews() domainreview.Repository {
	return u.reviews
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
