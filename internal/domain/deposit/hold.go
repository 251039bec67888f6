package deposit

import (
	"context"
	"errors"
	"time"

	"gearshare/internal/domain/rental"
)

var (
	ErrNotFound       = errors.New("deposit: hold not found")
	ErrAlreadySettled = errors.New("deposit: hold already settled")
)

// HoldWindow is how long after completion the owner can still file a dispute
// before the deposit is released.
const HoldWindow = 24 * time.Hour

// DepositPercent of the rental total withheld as security.
const DepositPercent = 20

type Status string

const (
	StatusHeld      Status = "HELD"
	StatusReleased  Status = "RELEASED"
	StatusForfeited Status = "FORFEITED"
)

// Outcome of one lazy evaluation of a hold.
type Outcome string

const (
	OutcomePending   Outcome = "PENDING"
	OutcomeReleased  Outcome = "RELEASED"
	OutcomeForfeited Outcome = "FORFEITED"
)

// Hold is the withheld deposit opened when a rental completes. Settlement is
// a deferred decision driven by Decide, never by an in-process timer.
type Hold struct {
	RentalID    rental.RentalID
	RenterID    string
	OwnerID     string
	AmountCents int64
	OpenedAt    time.Time
	ExpiresAt   time.Time
	Status      Status
	SettledAt   time.Time
	Version     int64
}

type Repository interface {
	ByRental(ctx context.Context, rentalID rental.RentalID) (*Hold, error)
	// ListUnsettled returns holds still in HELD status, oldest first.
	ListUnsettled(ctx context.Context, limit int) ([]*Hold, error)
	Save(ctx context.Context, h *Hold) error
}

// AmountFor computes the withheld share of a rental total.
func AmountFor(totalCents int64) int64 {
	return totalCents * DepositPercent / 100
}

// Open creates a hold at the moment a rental is marked completed.
func Open(r *rental.Rental, completedAt time.Time) *Hold {
	at := completedAt.UTC()
	return &Hold{
		RentalID:    r.ID,
		RenterID:    r.RenterID,
		OwnerID:     r.OwnerID,
		AmountCents: AmountFor(r.TotalCents),
		OpenedAt:    at,
		ExpiresAt:   at.Add(HoldWindow),
		Status:      StatusHeld,
	}
}

func (h *Hold) Expired(now time.Time) bool {
	return !now.UTC().Before(h.ExpiresAt)
}

// Decide is the pure settlement predicate. An owner dispute filed inside the
// window forfeits the deposit immediately; an expired window with no active
// dispute releases it; anything else stays pending. Safe to drive from a
// scheduled sweep or from an on-read check.
func (h *Hold) Decide(now time.Time, hasActiveOwnerDispute bool) Outcome {
	if h.Status != StatusHeld {
		return Outcome(h.Status)
	}
	if hasActiveOwnerDispute {
		return OutcomeForfeited
	}
	if h.Expired(now) {
		return OutcomeReleased
	}
	return OutcomePending
}

// Settle applies a terminal outcome. Pending outcomes are ignored; settling
// twice is rejected so a racing sweep fails loudly instead of flipping state.
func (h *Hold) Settle(outcome Outcome, now time.Time) error {
	if outcome == OutcomePending {
		return nil
	}
	if h.Status != StatusHeld {
		return ErrAlreadySettled
	}
	switch outcome {
	case OutcomeReleased:
		h.Status = StatusReleased
	case OutcomeForfeited:
		h.Status = StatusForfeited
	default:
		return errors.New("deposit: unknown outcome")
	}
	h.SettledAt = now.UTC()
	return nil
}
