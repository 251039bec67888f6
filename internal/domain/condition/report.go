package condition

import (
	"context"
	"errors"
	"strings"
	"time"

	"gearshare/internal/domain/item"
	"gearshare/internal/domain/rental"
)

var (
	ErrNotesRequired    = errors.New("condition: notes are required")
	ErrPhotosRequired   = errors.New("condition: at least one photo is required")
	ErrTooManyPhotos    = errors.New("condition: at most five photos are allowed")
	ErrInvalidKind      = errors.New("condition: unknown report kind")
	ErrInvalidGrade     = errors.New("condition: unknown condition grade")
	ErrAlreadyFiled     = errors.New("condition: report of this kind already filed for rental")
	ErrAlreadyVerified  = errors.New("condition: report already verified")
	ErrVerifierIsAuthor = errors.New("condition: author cannot verify own report")
	ErrNotFound         = errors.New("condition: not found")
)

type ReportID string

type Kind string

const (
	KindPreRental       Kind = "PRE_RENTAL"
	KindPostRentalOwner Kind = "POST_RENTAL_OWNER"
	KindPostRentalRent  Kind = "POST_RENTAL_RENTER"
)

type Grade string

const (
	GradeExcellent Grade = "EXCELLENT"
	GradeGood      Grade = "GOOD"
	GradeFair      Grade = "FAIR"
	GradePoor      Grade = "POOR"
)

const maxPhotos = 5

// Report is an attestation of the item's physical state at one point of the
// rental. Immutable once filed; only the counter-party's verification stamp
// may be added afterwards.
type Report struct {
	ID         ReportID
	RentalID   rental.RentalID
	ItemID     item.ItemID
	Kind       Kind
	AuthorID   string
	Notes      string
	PhotoURLs  []string
	Grade      Grade
	VerifiedBy string
	VerifiedAt time.Time
	CreatedAt  time.Time
	Version    int64
}

type Repository interface {
	ByID(ctx context.Context, id ReportID) (*Report, error)
	// ByRentalAndKind returns ErrNotFound when no report of the kind exists.
	ByRentalAndKind(ctx context.Context, rentalID rental.RentalID, kind Kind) (*Report, error)
	// ListByRental returns reports ordered by creation time ascending, so the
	// pre-rental attestation comes first.
	ListByRental(ctx context.Context, rentalID rental.RentalID) ([]*Report, error)
	Save(ctx context.Context, rep *Report) error
}

type CreateParams struct {
	ID        ReportID
	RentalID  rental.RentalID
	ItemID    item.ItemID
	Kind      Kind
	AuthorID  string
	Notes     string
	PhotoURLs []string
	Grade     Grade
	CreatedAt time.Time
}

func New(params CreateParams) (*Report, error) {
	switch params.Kind {
	case KindPreRental, KindPostRentalOwner, KindPostRentalRent:
	default:
		return nil, ErrInvalidKind
	}
	switch params.Grade {
	case GradeExcellent, GradeGood, GradeFair, GradePoor:
	default:
		return nil, ErrInvalidGrade
	}
	notes := strings.TrimSpace(params.Notes)
	if notes == "" {
		return nil, ErrNotesRequired
	}
	if len(params.PhotoURLs) == 0 {
		return nil, ErrPhotosRequired
	}
	if len(params.PhotoURLs) > maxPhotos {
		return nil, ErrTooManyPhotos
	}
	if params.AuthorID == "" {
		return nil, errors.New("condition: author id required")
	}
	return &Report{
		ID:        params.ID,
		RentalID:  params.RentalID,
		ItemID:    params.ItemID,
		Kind:      params.Kind,
		AuthorID:  params.AuthorID,
		Notes:     notes,
		PhotoURLs: append([]string(nil), params.PhotoURLs...),
		Grade:     params.Grade,
		CreatedAt: params.CreatedAt.UTC(),
	}, nil
}

// Verify stamps the report with the counter-party's attestation. It never
// touches notes, grade or photos.
func (r *Report) Verify(verifierID string, now time.Time) error {
	if verifierID == "" {
		return errors.New("condition: verifier id required")
	}
	if verifierID == r.AuthorID {
		return ErrVerifierIsAuthor
	}
	if r.VerifiedBy != "" {
		return ErrAlreadyVerified
	}
	r.VerifiedBy = verifierID
	r.VerifiedAt = now.UTC()
	return nil
}

func (r *Report) Verified() bool {
	return r.VerifiedBy != ""
}
