package gamification

import (
	"context"

	"gearshare/internal/app/dto"
	"gearshare/internal/app/handlers/support"
	"gearshare/internal/app/queries"
	"gearshare/internal/app/uow"
)

const getProfileKey = "gamification.get_profile"

// GetProfileQuery returns a user's reputation profile. Users without any
// recorded activity get an empty profile, not an error.
type GetProfileQuery struct {
	UserID string
}

func (q GetProfileQuery) Key() string { return getProfileKey }

type GetProfileHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetProfileHandler) Handle(ctx context.Context, q GetProfileQuery) (dto.Profile, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Profile{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	p, err := unit.Profiles().ByUser(ctx, q.UserID)
	if err != nil {
		return dto.Profile{}, err
	}
	return dto.MapProfile(p), nil
}

var _ queries.Handler[GetProfileQuery, dto.Profile] = (*GetProfileHandler)(nil)
