package review

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	"gearshare/internal/app/outbox"
	"gearshare/internal/app/uow"
	domaingamification "gearshare/internal/domain/gamification"
	domainrental "gearshare/internal/domain/rental"
	domainreview "gearshare/internal/domain/review"
)

const submitReviewKey = "review.submit"

// SubmitReviewCommand rates the other party of a completed rental. One review
// per author per rental; the subject is derived, never supplied.
type SubmitReviewCommand struct {
	RentalID string
	AuthorID string
	Rating   int
	Text     string
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

type SubmitReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.Review, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return dto.Review{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return dto.Review{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	r, err := unit.Rentals().ByID(ctx, domainrental.RentalID(cmd.RentalID))
	if err != nil {
		return dto.Review{}, err
	}
	role, ok := r.RoleOf(cmd.AuthorID)
	if !ok {
		return dto.Review{}, domainrental.ErrNotAParty
	}
	if r.Status != domainrental.StatusCompleted {
		return dto.Review{}, domainreview.ErrRentalNotCompleted
	}

	if existing, err := unit.Reviews().ByRentalAndAuthor(ctx, r.ID, cmd.AuthorID); err == nil && existing != nil {
		return dto.Review{}, domainreview.ErrAlreadyReviewed
	} else if err != nil && !errors.Is(err, domainreview.ErrNotFound) {
		return dto.Review{}, err
	}

	subject := r.OwnerID
	if role == domainrental.RoleOwner {
		subject = r.RenterID
	}

	now := time.Now().UTC()
	rev, err := domainreview.Submit(domainreview.SubmitParams{
		ID:         domainreview.ReviewID(uuid.NewString()),
		RentalID:   r.ID,
		ItemID:     r.ItemID,
		AuthorID:   cmd.AuthorID,
		AuthorRole: role,
		SubjectID:  subject,
		Rating:     cmd.Rating,
		Text:       cmd.Text,
		CreatedAt:  now,
	})
	if err != nil {
		return dto.Review{}, err
	}

	if err := unit.Reviews().Save(ctx, rev); err != nil {
		return dto.Review{}, err
	}

	r.MarkReviewed(now)
	if err := unit.Rentals().Save(ctx, r); err != nil {
		return dto.Review{}, err
	}

	authorDelta := domaingamification.DeltaFor(domaingamification.Role(role), domaingamification.EventReviewWritten, now)
	if _, err := unit.Profiles().Apply(ctx, cmd.AuthorID, authorDelta); err != nil {
		return dto.Review{}, err
	}
	if rev.Positive() {
		subjectRole := domaingamification.RoleOwner
		if role == domainrental.RoleOwner {
			subjectRole = domaingamification.RoleRenter
		}
		subjectDelta := domaingamification.DeltaFor(subjectRole, domaingamification.EventPositiveReviewGotten, now)
		if _, err := unit.Profiles().Apply(ctx, subject, subjectDelta); err != nil {
			return dto.Review{}, err
		}
	}

	pending := append(rev.PendingEvents(), r.PendingEvents()...)
	rev.ClearEvents()
	r.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return dto.Review{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.Review{}, err
		}
		committed = true
	}

	return dto.MapReview(rev), nil
}

func (h *SubmitReviewHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[SubmitReviewCommand, dto.Review] = (*SubmitReviewHandler)(nil)
