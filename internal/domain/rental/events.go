package rental

import (
	"time"

	"gearshare/internal/domain/item"
	"gearshare/internal/domain/shared/dateinterval"
)

type RentalSubmitted struct {
	RentalID   RentalID
	ItemID     item.ItemID
	RenterID   string
	OwnerID    string
	Period     dateinterval.Interval
	TotalCents int64
	At         time.Time
}

func (e RentalSubmitted) EventName() string     { return "rental.submitted" }
func (e RentalSubmitted) AggregateID() string   { return string(e.RentalID) }
func (e RentalSubmitted) OccurredAt() time.Time { return e.At }

type RentalApproved struct {
	RentalID RentalID
	ItemID   item.ItemID
	Period   dateinterval.Interval
	At       time.Time
}

func (e RentalApproved) EventName() string     { return "rental.approved" }
func (e RentalApproved) AggregateID() string   { return string(e.RentalID) }
func (e RentalApproved) OccurredAt() time.Time { return e.At }

type RentalDeclined struct {
	RentalID RentalID
	At       time.Time
}

func (e RentalDeclined) EventName() string     { return "rental.declined" }
func (e RentalDeclined) AggregateID() string   { return string(e.RentalID) }
func (e RentalDeclined) OccurredAt() time.Time { return e.At }

type RentalCancelled struct {
	RentalID RentalID
	At       time.Time
}

func (e RentalCancelled) EventName() string     { return "rental.cancelled" }
func (e RentalCancelled) AggregateID() string   { return string(e.RentalID) }
func (e RentalCancelled) OccurredAt() time.Time { return e.At }

type RentalActivated struct {
	RentalID RentalID
	At       time.Time
}

func (e RentalActivated) EventName() string     { return "rental.activated" }
func (e RentalActivated) AggregateID() string   { return string(e.RentalID) }
func (e RentalActivated) OccurredAt() time.Time { return e.At }

type RentalCompleted struct {
	RentalID   RentalID
	ItemID     item.ItemID
	RenterID   string
	OwnerID    string
	TotalCents int64
	At         time.Time
}

func (e RentalCompleted) EventName() string     { return "rental.completed" }
func (e RentalCompleted) AggregateID() string   { return string(e.RentalID) }
func (e RentalCompleted) OccurredAt() time.Time { return e.At }
