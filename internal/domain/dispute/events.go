package dispute

import (
	"time"

	"gearshare/internal/domain/item"
	"gearshare/internal/domain/rental"
)

type DisputeOpened struct {
	DisputeID  DisputeID
	RentalID   rental.RentalID
	ItemID     item.ItemID
	RaisedBy   string
	RaisedRole rental.Role
	Type       Type
	At         time.Time
}

func (e DisputeOpened) EventName() string     { return "dispute.opened" }
func (e DisputeOpened) AggregateID() string   { return string(e.DisputeID) }
func (e DisputeOpened) OccurredAt() time.Time { return e.At }

type DisputeUnderReview struct {
	DisputeID DisputeID
	At        time.Time
}

func (e DisputeUnderReview) EventName() string     { return "dispute.under_review" }
func (e DisputeUnderReview) AggregateID() string   { return string(e.DisputeID) }
func (e DisputeUnderReview) OccurredAt() time.Time { return e.At }

type DisputeResolved struct {
	DisputeID         DisputeID
	RentalID          rental.RentalID
	ItemID            item.ItemID
	ResolvedBy        string
	CompensationCents int64
	At                time.Time
}

func (e DisputeResolved) EventName() string     { return "dispute.resolved" }
func (e DisputeResolved) AggregateID() string   { return string(e.DisputeID) }
func (e DisputeResolved) OccurredAt() time.Time { return e.At }

type DisputeClosed struct {
	DisputeID DisputeID
	RentalID  rental.RentalID
	ItemID    item.ItemID
	At        time.Time
}

func (e DisputeClosed) EventName() string     { return "dispute.closed" }
func (e DisputeClosed) AggregateID() string   { return string(e.DisputeID) }
func (e DisputeClosed) OccurredAt() time.Time { return e.At }
