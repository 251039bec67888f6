package dto

import (
	"time"

	domaindeposit "gearshare/internal/domain/deposit"
)

type DepositHold struct {
	RentalID    string     `json:"rental_id"`
	RenterID    string     `json:"renter_id"`
	OwnerID     string     `json:"owner_id"`
	AmountCents int64      `json:"amount_cents"`
	OpenedAt    time.Time  `json:"opened_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Status      string     `json:"status"`
	SettledAt   *time.Time `json:"settled_at,omitempty"`
	// EffectiveOutcome is what the hold evaluates to at read time, which may
	// be ahead of the persisted Status until the sweep catches up.
	EffectiveOutcome string `json:"effective_outcome,omitempty"`
}

func MapDepositHold(h *domaindeposit.Hold) DepositHold {
	out := DepositHold{
		RentalID:    string(h.RentalID),
		RenterID:    h.RenterID,
		OwnerID:     h.OwnerID,
		AmountCents: h.AmountCents,
		OpenedAt:    h.OpenedAt,
		ExpiresAt:   h.ExpiresAt,
		Status:      string(h.Status),
	}
	if !h.SettledAt.IsZero() {
		at := h.SettledAt
		out.SettledAt = &at
	}
	return out
}
