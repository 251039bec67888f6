package dispute

import (
	"context"
	"errors"
	"strings"
	"time"

	"gearshare/internal/domain/condition"
	"gearshare/internal/domain/item"
	"gearshare/internal/domain/rental"
	"gearshare/internal/domain/shared/events"
)

var (
	ErrDescriptionTooShort = errors.New("dispute: description must be at least 20 characters")
	ErrPhotosRequired      = errors.New("dispute: at least one evidence photo is required")
	ErrTooManyPhotos       = errors.New("dispute: at most ten evidence photos are allowed")
	ErrInvalidType         = errors.New("dispute: unknown dispute type")
	ErrDuplicateDispute    = errors.New("dispute: an active dispute already exists for this rental")
	ErrEvidenceInUse       = errors.New("dispute: condition report already cited as evidence")
	ErrIllegalTransition   = errors.New("dispute: illegal status transition")
	ErrEmptyMessage        = errors.New("dispute: message content is required")
	ErrNotAParty           = errors.New("dispute: caller is not a party to this dispute")
	ErrNotFound            = errors.New("dispute: not found")
)

type DisputeID string

type Status string

const (
	StatusOpen        Status = "OPEN"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusResolved    Status = "RESOLVED"
	StatusClosed      Status = "CLOSED"
)

type Type string

const (
	TypeDamage            Type = "DAMAGE"
	TypeConditionMismatch Type = "CONDITION_MISMATCH"
	TypeMissingItems      Type = "MISSING_ITEMS"
	TypeOther             Type = "OTHER"
)

const (
	minDescriptionLen = 20
	maxPhotos         = 10
)

// Resolution records the terminal decision on a dispute.
type Resolution struct {
	ResolvedBy        string
	ResolvedAt        time.Time
	Outcome           string
	CompensationCents int64
}

// Message is one entry of the append-only conversation thread attached to a
// dispute.
type Message struct {
	SenderID   string
	SenderRole rental.Role
	Content    string
	SentAt     time.Time
}

// Dispute escalates a disagreement over one rental. While it is open or
// under review it is the rental's single active dispute and the item is
// withheld from availability.
type Dispute struct {
	ID          DisputeID
	RentalID    rental.RentalID
	ItemID      item.ItemID
	RaisedBy    string
	RaisedRole  rental.Role
	Respondent  string
	Type        Type
	Description string
	PhotoURLs   []string
	ReportRefs  []condition.ReportID
	Status      Status
	Resolution  *Resolution
	Messages    []Message
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id DisputeID) (*Dispute, error)
	// ActiveByRental returns the open or under-review dispute for a rental,
	// or ErrNotFound when none exists.
	ActiveByRental(ctx context.Context, rentalID rental.RentalID) (*Dispute, error)
	ListByRental(ctx context.Context, rentalID rental.RentalID) ([]*Dispute, error)
	Save(ctx context.Context, d *Dispute) error
}

// Active reports whether the dispute still blocks its rental and item.
func (d *Dispute) Active() bool {
	return d.Status == StatusOpen || d.Status == StatusUnderReview
}

type OpenParams struct {
	ID          DisputeID
	RentalID    rental.RentalID
	ItemID      item.ItemID
	RaisedBy    string
	RaisedRole  rental.Role
	Respondent  string
	Type        Type
	Description string
	PhotoURLs   []string
	ReportRefs  []condition.ReportID
	CreatedAt   time.Time
}

func Open(params OpenParams) (*Dispute, error) {
	switch params.Type {
	case TypeDamage, TypeConditionMismatch, TypeMissingItems, TypeOther:
	default:
		return nil, ErrInvalidType
	}
	desc := strings.TrimSpace(params.Description)
	if len(desc) < minDescriptionLen {
		return nil, ErrDescriptionTooShort
	}
	if len(params.PhotoURLs) == 0 {
		return nil, ErrPhotosRequired
	}
	if len(params.PhotoURLs) > maxPhotos {
		return nil, ErrTooManyPhotos
	}
	if params.RaisedBy == "" || params.Respondent == "" {
		return nil, errors.New("dispute: raiser and respondent are required")
	}
	now := params.CreatedAt.UTC()
	d := &Dispute{
		ID:          params.ID,
		RentalID:    params.RentalID,
		ItemID:      params.ItemID,
		RaisedBy:    params.RaisedBy,
		RaisedRole:  params.RaisedRole,
		Respondent:  params.Respondent,
		Type:        params.Type,
		Description: desc,
		PhotoURLs:   append([]string(nil), params.PhotoURLs...),
		ReportRefs:  append([]condition.ReportID(nil), params.ReportRefs...),
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	d.Record(DisputeOpened{DisputeID: d.ID, RentalID: d.RentalID, ItemID: d.ItemID, RaisedBy: d.RaisedBy, RaisedRole: d.RaisedRole, Type: d.Type, At: now})
	return d, nil
}

// StartReview moves an open dispute into moderation.
func (d *Dispute) StartReview(now time.Time) error {
	if d.Status != StatusOpen {
		return ErrIllegalTransition
	}
	d.setStatus(StatusUnderReview, now)
	d.Record(DisputeUnderReview{DisputeID: d.ID, At: d.UpdatedAt})
	return nil
}

// Resolve is the only path into RESOLVED. A second call is rejected, the
// resolution record is written exactly once.
func (d *Dispute) Resolve(resolverID, outcome string, compensationCents int64, now time.Time) error {
	if d.Status != StatusOpen && d.Status != StatusUnderReview {
		return ErrIllegalTransition
	}
	if resolverID == "" || strings.TrimSpace(outcome) == "" {
		return errors.New("dispute: resolver and outcome are required")
	}
	ts := now.UTC()
	d.Resolution = &Resolution{
		ResolvedBy:        resolverID,
		ResolvedAt:        ts,
		Outcome:           strings.TrimSpace(outcome),
		CompensationCents: compensationCents,
	}
	d.setStatus(StatusResolved, now)
	d.Record(DisputeResolved{DisputeID: d.ID, RentalID: d.RentalID, ItemID: d.ItemID, ResolvedBy: resolverID, CompensationCents: compensationCents, At: ts})
	return nil
}

// Close is the administrative short-circuit out of OPEN or UNDER_REVIEW.
func (d *Dispute) Close(now time.Time) error {
	if d.Status != StatusOpen && d.Status != StatusUnderReview {
		return ErrIllegalTransition
	}
	d.setStatus(StatusClosed, now)
	d.Record(DisputeClosed{DisputeID: d.ID, RentalID: d.RentalID, ItemID: d.ItemID, At: d.UpdatedAt})
	return nil
}

// AddMessage appends to the thread. Either party may write at any stage;
// the status never changes.
func (d *Dispute) AddMessage(senderID string, role rental.Role, content string, now time.Time) error {
	if senderID != d.RaisedBy && senderID != d.Respondent {
		return ErrNotAParty
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}
	d.Messages = append(d.Messages, Message{
		SenderID:   senderID,
		SenderRole: role,
		Content:    content,
		SentAt:     now.UTC(),
	})
	d.UpdatedAt = now.UTC()
	return nil
}

func (d *Dispute) setStatus(s Status, now time.Time) {
	d.Status = s
	d.UpdatedAt = now.UTC()
}
