package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gearshare/internal/app/uow"
	domaincondition "gearshare/internal/domain/condition"
	domaindeposit "gearshare/internal/domain/deposit"
	domaindispute "gearshare/internal/domain/dispute"
	domaingamification "gearshare/internal/domain/gamification"
	domainitem "gearshare/internal/domain/item"
	domainrental "gearshare/internal/domain/rental"
	domainreview "gearshare/internal/domain/review"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	ItemRepo      domainitem.Repository
	RentalRepo    domainrental.Repository
	ConditionRepo domaincondition.Repository
	DisputeRepo   domaindispute.Repository
	DepositRepo   domaindeposit.Repository
	ProfileRepo   domaingamification.Repository
	ReviewRepo    domainreview.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(f.DB.ReadConcern())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:         f.DB,
		session:    session,
		items:      f.ItemRepo,
		rentals:    f.RentalRepo,
		conditions: f.ConditionRepo,
		disputes:   f.DisputeRepo,
		deposits:   f.DepositRepo,
		profiles:   f.ProfileRepo,
		reviews:    f.ReviewRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		return err
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
