package item

import (
	"context"
	"errors"
	"strings"
	"time"

	"gearshare/internal/domain/shared/events"
)

var (
	ErrTitleRequired = errors.New("item: title is required")
	ErrInvalidRate   = errors.New("item: daily rate must be positive")
	ErrNotFound      = errors.New("item: not found")
	ErrNotSuspended  = errors.New("item: not suspended")
)

type ItemID string

// Item is a rentable piece of equipment listed by its owner. Suspended items
// stay owned and bookable history stays intact, but they are excluded from
// search results while a dispute on them is unresolved.
type Item struct {
	ID             ItemID
	OwnerID        string
	Title          string
	Description    string
	Category       string
	DailyRateCents int64
	PhotoURLs      []string
	Suspended      bool
	SuspendedBy    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ItemID) (*Item, error)
	Save(ctx context.Context, it *Item) error
	Search(ctx context.Context, params SearchParams) ([]*Item, error)
}

type SearchParams struct {
	OwnerID           string
	Category          string
	Query             string
	MaxDailyRateCents int64
	IncludeSuspended  bool
	Limit             int
	Offset            int
}

func (p SearchParams) Normalized() SearchParams {
	p.Query = strings.TrimSpace(p.Query)
	p.Category = strings.TrimSpace(strings.ToLower(p.Category))
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type CreateParams struct {
	ID             ItemID
	OwnerID        string
	Title          string
	Description    string
	Category       string
	DailyRateCents int64
	PhotoURLs      []string
	CreatedAt      time.Time
}

func New(params CreateParams) (*Item, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.OwnerID == "" {
		return nil, errors.New("item: owner id required")
	}
	if params.DailyRateCents <= 0 {
		return nil, ErrInvalidRate
	}
	now := params.CreatedAt.UTC()
	it := &Item{
		ID:             params.ID,
		OwnerID:        params.OwnerID,
		Title:          strings.TrimSpace(params.Title),
		Description:    strings.TrimSpace(params.Description),
		Category:       strings.TrimSpace(strings.ToLower(params.Category)),
		DailyRateCents: params.DailyRateCents,
		PhotoURLs:      append([]string(nil), params.PhotoURLs...),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	it.Record(ItemListed{ItemID: it.ID, OwnerID: it.OwnerID, DailyRateCents: it.DailyRateCents, At: now})
	return it, nil
}

// Suspend pulls the item from availability listings, recording which dispute
// triggered it. Suspending an already suspended item is a no-op so a second
// evaluation pass stays idempotent.
func (it *Item) Suspend(disputeID string, now time.Time) {
	if it.Suspended {
		return
	}
	it.Suspended = true
	it.SuspendedBy = disputeID
	it.UpdatedAt = now.UTC()
	it.Record(ItemSuspended{ItemID: it.ID, DisputeID: disputeID, At: it.UpdatedAt})
}

func (it *Item) Resume(now time.Time) error {
	if !it.Suspended {
		return ErrNotSuspended
	}
	it.Suspended = false
	it.SuspendedBy = ""
	it.UpdatedAt = now.UTC()
	it.Record(ItemResumed{ItemID: it.ID, At: it.UpdatedAt})
	return nil
}

type ItemListed struct {
	ItemID         ItemID
	OwnerID        string
	DailyRateCents int64
	At             time.Time
}

func (e ItemListed) EventName() string     { return "item.listed" }
func (e ItemListed) AggregateID() string   { return string(e.ItemID) }
func (e ItemListed) OccurredAt() time.Time { return e.At }

type ItemSuspended struct {
	ItemID    ItemID
	DisputeID string
	At        time.Time
}

func (e ItemSuspended) EventName() string     { return "item.suspended" }
func (e ItemSuspended) AggregateID() string   { return string(e.ItemID) }
func (e ItemSuspended) OccurredAt() time.Time { return e.At }

type ItemResumed struct {
	ItemID ItemID
	At     time.Time
}

func (e ItemResumed) EventName() string     { return "item.resumed" }
func (e ItemResumed) AggregateID() string   { return string(e.ItemID) }
func (e ItemResumed) OccurredAt() time.Time { return e.At }
