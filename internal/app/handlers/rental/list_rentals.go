package rental

import (
	"context"
	"errors"

	"gearshare/internal/app/dto"
	"gearshare/internal/app/handlers/support"
	"gearshare/internal/app/queries"
	"gearshare/internal/app/uow"
	domaindispute "gearshare/internal/domain/dispute"
	domainrental "gearshare/internal/domain/rental"
)

const listRentalsKey = "rental.list_by_party"

// ListRentalsQuery returns every rental the user is a party to, either side.
type ListRentalsQuery struct {
	UserID string
}

func (q ListRentalsQuery) Key() string { return listRentalsKey }

type ListRentalsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListRentalsHandler) Handle(ctx context.Context, q ListRentalsQuery) ([]dto.Rental, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	rentals, err := unit.Rentals().ListByParty(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.Rental, 0, len(rentals))
	for _, r := range rentals {
		hasDispute := false
		if _, err := unit.Disputes().ActiveByRental(ctx, r.ID); err == nil {
			hasDispute = true
		} else if !errors.Is(err, domaindispute.ErrNotFound) {
			return nil, err
		}
		out = append(out, dto.MapRental(r, hasDispute))
	}
	return out, nil
}

var _ queries.Handler[ListRentalsQuery, []dto.Rental] = (*ListRentalsHandler)(nil)

const getRentalKey = "rental.get"

type GetRentalQuery struct {
	RentalID string
	UserID   string
}

func (q GetRentalQuery) Key() string { return getRentalKey }

type GetRentalHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetRentalHandler) Handle(ctx context.Context, q GetRentalQuery) (dto.Rental, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Rental{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	r, err := unit.Rentals().ByID(ctx, domainrental.RentalID(q.RentalID))
	if err != nil {
		return dto.Rental{}, err
	}
	if _, ok := r.RoleOf(q.UserID); !ok {
		return dto.Rental{}, domainrental.ErrNotAParty
	}

	hasDispute := false
	if _, err := unit.Disputes().ActiveByRental(ctx, r.ID); err == nil {
		hasDispute = true
	} else if !errors.Is(err, domaindispute.ErrNotFound) {
		return dto.Rental{}, err
	}
	return dto.MapRental(r, hasDispute), nil
}

var _ queries.Handler[GetRentalQuery, dto.Rental] = (*GetRentalHandler)(nil)
