package rental

import (
	"context"
	"errors"
	"time"

	"gearshare/internal/domain/item"
	"gearshare/internal/domain/shared/dateinterval"
	"gearshare/internal/domain/shared/events"
)

var (
	ErrSelfRental        = errors.New("rental: renter and owner are the same user")
	ErrZeroDuration      = errors.New("rental: start and end fall on the same day")
	ErrPastDate          = errors.New("rental: start date is in the past")
	ErrDateConflict      = errors.New("rental: dates conflict with an existing booking")
	ErrIllegalTransition = errors.New("rental: illegal status transition")
	ErrNotAParty         = errors.New("rental: caller is not a party to this rental")
	ErrNotFound          = errors.New("rental: not found")
	ErrValidation        = errors.New("rental: invalid request")
)

type RentalID string

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusDeclined  Status = "DECLINED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Role of a party relative to one rental.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleRenter Role = "renter"
)

// Rental is the binding record of a renter's intent to rent an item for a
// closed day interval. Times are wall-clock strings agreed between the
// parties; only dates take part in conflict detection.
type Rental struct {
	ID             RentalID
	ItemID         item.ItemID
	RenterID       string
	OwnerID        string
	Period         dateinterval.Interval
	StartTime      string
	EndTime        string
	DailyRateCents int64
	TotalCents     int64
	Status         Status
	Reviewed       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id RentalID) (*Rental, error)
	Save(ctx context.Context, r *Rental) error
	// ListByItem returns every rental for the item regardless of status; the
	// caller filters down to the blocking ones for conflict checks.
	ListByItem(ctx context.Context, itemID item.ItemID) ([]*Rental, error)
	ListByParty(ctx context.Context, userID string) ([]*Rental, error)
}

type CreateParams struct {
	ID             RentalID
	ItemID         item.ItemID
	RenterID       string
	OwnerID        string
	StartDate      time.Time
	EndDate        time.Time
	StartTime      string
	EndTime        string
	DailyRateCents int64
	CreatedAt      time.Time
}

func New(params CreateParams) (*Rental, error) {
	if params.RenterID == "" || params.OwnerID == "" {
		return nil, ErrValidation
	}
	if params.RenterID == params.OwnerID {
		return nil, ErrSelfRental
	}
	if params.DailyRateCents <= 0 {
		return nil, ErrValidation
	}
	period, err := dateinterval.New(params.StartDate, params.EndDate)
	if err != nil {
		if errors.Is(err, dateinterval.ErrZeroDuration) {
			return nil, ErrZeroDuration
		}
		return nil, ErrValidation
	}
	now := params.CreatedAt.UTC()
	if period.Start.Before(dateinterval.Day(now)) {
		return nil, ErrPastDate
	}
	r := &Rental{
		ID:             params.ID,
		ItemID:         params.ItemID,
		RenterID:       params.RenterID,
		OwnerID:        params.OwnerID,
		Period:         period,
		StartTime:      params.StartTime,
		EndTime:        params.EndTime,
		DailyRateCents: params.DailyRateCents,
		TotalCents:     int64(period.Days()) * params.DailyRateCents,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.Record(RentalSubmitted{RentalID: r.ID, ItemID: r.ItemID, RenterID: r.RenterID, OwnerID: r.OwnerID, Period: r.Period, TotalCents: r.TotalCents, At: now})
	return r, nil
}

// RoleOf reports which side of the rental the user is on.
func (r *Rental) RoleOf(userID string) (Role, bool) {
	switch userID {
	case r.OwnerID:
		return RoleOwner, true
	case r.RenterID:
		return RoleRenter, true
	default:
		return "", false
	}
}

func (r *Rental) Approve(actorID string, now time.Time) error {
	if err := r.requireRole(actorID, RoleOwner); err != nil {
		return err
	}
	if r.Status != StatusPending {
		return ErrIllegalTransition
	}
	r.setStatus(StatusApproved, now)
	r.Record(RentalApproved{RentalID: r.ID, ItemID: r.ItemID, Period: r.Period, At: r.UpdatedAt})
	return nil
}

func (r *Rental) Decline(actorID string, now time.Time) error {
	if err := r.requireRole(actorID, RoleOwner); err != nil {
		return err
	}
	if r.Status != StatusPending {
		return ErrIllegalTransition
	}
	r.setStatus(StatusDeclined, now)
	r.Record(RentalDeclined{RentalID: r.ID, At: r.UpdatedAt})
	return nil
}

// Cancel is renter-initiated and only valid while the request is pending.
func (r *Rental) Cancel(actorID string, now time.Time) error {
	if err := r.requireRole(actorID, RoleRenter); err != nil {
		return err
	}
	if r.Status != StatusPending {
		return ErrIllegalTransition
	}
	r.setStatus(StatusCancelled, now)
	r.Record(RentalCancelled{RentalID: r.ID, At: r.UpdatedAt})
	return nil
}

func (r *Rental) Activate(actorID string, now time.Time) error {
	if err := r.requireRole(actorID, RoleOwner); err != nil {
		return err
	}
	if r.Status != StatusApproved {
		return ErrIllegalTransition
	}
	r.setStatus(StatusActive, now)
	r.Record(RentalActivated{RentalID: r.ID, At: r.UpdatedAt})
	return nil
}

// Complete closes out the rental. Owners who never marked the pickup can
// complete straight from APPROVED.
func (r *Rental) Complete(actorID string, now time.Time) error {
	if err := r.requireRole(actorID, RoleOwner); err != nil {
		return err
	}
	if r.Status != StatusApproved && r.Status != StatusActive {
		return ErrIllegalTransition
	}
	r.setStatus(StatusCompleted, now)
	r.Record(RentalCompleted{RentalID: r.ID, ItemID: r.ItemID, RenterID: r.RenterID, OwnerID: r.OwnerID, TotalCents: r.TotalCents, At: r.UpdatedAt})
	return nil
}

func (r *Rental) MarkReviewed(now time.Time) {
	if r.Reviewed {
		return
	}
	r.Reviewed = true
	r.UpdatedAt = now.UTC()
}

// Blocking reports whether this rental holds its item's dates against other
// requests.
func (r *Rental) Blocking() bool {
	return r.Status == StatusApproved || r.Status == StatusActive
}

func (r *Rental) requireRole(actorID string, role Role) error {
	got, ok := r.RoleOf(actorID)
	if !ok || got != role {
		return ErrNotAParty
	}
	return nil
}

func (r *Rental) setStatus(s Status, now time.Time) {
	r.Status = s
	r.UpdatedAt = now.UTC()
}
