package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domaincondition "gearshare/internal/domain/condition"
	domaindeposit "gearshare/internal/domain/deposit"
	domaindispute "gearshare/internal/domain/dispute"
	domaingamification "gearshare/internal/domain/gamification"
	domainitem "gearshare/internal/domain/item"
	domainrental "gearshare/internal/domain/rental"
	domainreview "gearshare/internal/domain/review"
)

// ItemRepository is an in-memory implementation for tests and demos.
type ItemRepository struct {
	mu    sync.RWMutex
	items map[domainitem.ItemID]*domainitem.Item
}

// NewItemRepository builds an empty repository.
func NewItemRepository() *ItemRepository {
	return &ItemRepository{items: make(map[domainitem.ItemID]*domainitem.Item)}
}

// ByID returns an item or domainitem.ErrNotFound.
func (r *ItemRepository) ByID(ctx context.Context, id domainitem.ItemID) (*domainitem.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	if !ok {
		return nil, domainitem.ErrNotFound
	}
	return it, nil
}

// Save stores/updates an item entry.
func (r *ItemRepository) Save(ctx context.Context, it *domainitem.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it.Version++
	r.items[it.ID] = it
	return nil
}

// Search returns items that satisfy the provided filters.
func (r *ItemRepository) Search(ctx context.Context, params domainitem.SearchParams) ([]*domainitem.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainitem.Item, 0, len(r.items))
	for _, it := range r.items {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		if !opts.IncludeSuspended && it.Suspended {
			continue
		}
		if opts.OwnerID != "" && it.OwnerID != opts.OwnerID {
			continue
		}
		if opts.Category != "" && it.Category != opts.Category {
			continue
		}
		if opts.MaxDailyRateCents > 0 && it.DailyRateCents > opts.MaxDailyRateCents {
			continue
		}
		if opts.Query != "" && !matchQuery(it, opts.Query) {
			continue
		}
		matches = append(matches, it)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return matches[start:end], nil
}

func matchQuery(it *domainitem.Item, needle string) bool {
	if it == nil {
		return false
	}
	full := strings.ToLower(it.Title + " " + it.Description)
	return strings.Contains(full, strings.ToLower(needle))
}

// RentalRepository stores rentals in memory.
type RentalRepository struct {
	mu    sync.RWMutex
	items map[domainrental.RentalID]*domainrental.Rental
}

// NewRentalRepository builds an empty rental repo.
func NewRentalRepository() *RentalRepository {
	return &RentalRepository{items: make(map[domainrental.RentalID]*domainrental.Rental)}
}

// ByID fetches a rental.
func (r *RentalRepository) ByID(ctx context.Context, id domainrental.RentalID) (*domainrental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rental, ok := r.items[id]
	if !ok {
		return nil, domainrental.ErrNotFound
	}
	return rental, nil
}

// Save stores the current rental state.
func (r *RentalRepository) Save(ctx context.Context, rental *domainrental.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rental.Version++
	r.items[rental.ID] = rental
	return nil
}

// ListByItem returns every rental against one item, newest first.
func (r *RentalRepository) ListByItem(ctx context.Context, itemID domainitem.ItemID) ([]*domainrental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainrental.Rental, 0)
	for _, rental := range r.items {
		if rental.ItemID == itemID {
			matches = append(matches, rental)
		}
	}
	sortRentals(matches)
	return matches, nil
}

// ListByParty returns rentals where the user is owner or renter.
func (r *RentalRepository) ListByParty(ctx context.Context, userID string) ([]*domainrental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainrental.Rental, 0)
	for _, rental := range r.items {
		if rental.OwnerID == userID || rental.RenterID == userID {
			matches = append(matches, rental)
		}
	}
	sortRentals(matches)
	return matches, nil
}

func sortRentals(matches []*domainrental.Rental) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
}

// ConditionRepository keeps condition reports in memory.
type ConditionRepository struct {
	mu    sync.RWMutex
	items map[domaincondition.ReportID]*domaincondition.Report
}

// NewConditionRepository builds an empty report store.
func NewConditionRepository() *ConditionRepository {
	return &ConditionRepository{items: make(map[domaincondition.ReportID]*domaincondition.Report)}
}

func (r *ConditionRepository) ByID(ctx context.Context, id domaincondition.ReportID) (*domaincondition.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.items[id]
	if !ok {
		return nil, domaincondition.ErrNotFound
	}
	return rep, nil
}

func (r *ConditionRepository) ByRentalAndKind(ctx context.Context, rentalID domainrental.RentalID, kind domaincondition.Kind) (*domaincondition.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rep := range r.items {
		if rep.RentalID == rentalID && rep.Kind == kind {
			return rep, nil
		}
	}
	return nil, domaincondition.ErrNotFound
}

// ListByRental returns a rental's reports oldest first.
func (r *ConditionRepository) ListByRental(ctx context.Context, rentalID domainrental.RentalID) ([]*domaincondition.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domaincondition.Report, 0)
	for _, rep := range r.items {
		if rep.RentalID == rentalID {
			matches = append(matches, rep)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

func (r *ConditionRepository) Save(ctx context.Context, rep *domaincondition.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[rep.ID] = rep
	return nil
}

// DisputeRepository stores disputes in memory.
type DisputeRepository struct {
	mu    sync.RWMutex
	items map[domaindispute.DisputeID]*domaindispute.Dispute
}

// NewDisputeRepository builds an empty dispute store.
func NewDisputeRepository() *DisputeRepository {
	return &DisputeRepository{items: make(map[domaindispute.DisputeID]*domaindispute.Dispute)}
}

func (r *DisputeRepository) ByID(ctx context.Context, id domaindispute.DisputeID) (*domaindispute.Dispute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.items[id]
	if !ok {
		return nil, domaindispute.ErrNotFound
	}
	return d, nil
}

func (r *DisputeRepository) ActiveByRental(ctx context.Context, rentalID domainrental.RentalID) (*domaindispute.Dispute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.items {
		if d.RentalID == rentalID && d.Active() {
			return d, nil
		}
	}
	return nil, domaindispute.ErrNotFound
}

func (r *DisputeRepository) ListByRental(ctx context.Context, rentalID domainrental.RentalID) ([]*domaindispute.Dispute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domaindispute.Dispute, 0)
	for _, d := range r.items {
		if d.RentalID == rentalID {
			matches = append(matches, d)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

func (r *DisputeRepository) Save(ctx context.Context, d *domaindispute.Dispute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.Version++
	r.items[d.ID] = d
	return nil
}

// DepositRepository stores deposit holds in memory, keyed by rental.
type DepositRepository struct {
	mu    sync.RWMutex
	items map[domainrental.RentalID]*domaindeposit.Hold
}

// NewDepositRepository builds an empty hold store.
func NewDepositRepository() *DepositRepository {
	return &DepositRepository{items: make(map[domainrental.RentalID]*domaindeposit.Hold)}
}

func (r *DepositRepository) ByRental(ctx context.Context, rentalID domainrental.RentalID) (*domaindeposit.Hold, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.items[rentalID]
	if !ok {
		return nil, domaindeposit.ErrNotFound
	}
	return h, nil
}

// ListUnsettled returns HELD holds oldest first.
func (r *DepositRepository) ListUnsettled(ctx context.Context, limit int) ([]*domaindeposit.Hold, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domaindeposit.Hold, 0)
	for _, h := range r.items {
		if h.Status == domaindeposit.StatusHeld {
			matches = append(matches, h)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].OpenedAt.Equal(matches[j].OpenedAt) {
			return matches[i].RentalID < matches[j].RentalID
		}
		return matches[i].OpenedAt.Before(matches[j].OpenedAt)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *DepositRepository) Save(ctx context.Context, h *domaindeposit.Hold) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.Version++
	r.items[h.RentalID] = h
	return nil
}

// ProfileRepository keeps reputation profiles in memory.
type ProfileRepository struct {
	mu    sync.RWMutex
	items map[string]*domaingamification.Profile
}

// NewProfileRepository builds an empty profile store.
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{items: make(map[string]*domaingamification.Profile)}
}

// ByUser returns the stored profile, or an empty one for unknown users.
func (r *ProfileRepository) ByUser(ctx context.Context, userID string) (*domaingamification.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.items[userID]; ok {
		return p, nil
	}
	return &domaingamification.Profile{UserID: userID}, nil
}

// Apply adds the delta and recomputes badges under one lock acquisition.
func (r *ProfileRepository) Apply(ctx context.Context, userID string, delta domaingamification.Delta) (*domaingamification.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[userID]
	if !ok {
		p = &domaingamification.Profile{UserID: userID}
		r.items[userID] = p
	}
	p.OwnerPoints += delta.OwnerPoints
	p.RenterPoints += delta.RenterPoints
	p.SuccessfulRentals += delta.SuccessfulRentals
	p.ReviewsWritten += delta.ReviewsWritten
	p.Badges = domaingamification.RecomputeBadges(p)
	p.UpdatedAt = delta.At
	return p, nil
}

// ReviewRepository is a lightweight in-memory review store.
type ReviewRepository struct {
	mu    sync.RWMutex
	items map[string]*domainreview.Review
}

// NewReviewRepository builds an empty review store.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[string]*domainreview.Review)}
}

// ByRentalAndAuthor locates a review using rental and author identifiers.
func (r *ReviewRepository) ByRentalAndAuthor(ctx context.Context, rentalID domainrental.RentalID, authorID string) (*domainreview.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rev, ok := r.items[reviewKey(rentalID, authorID)]; ok {
		return rev, nil
	}
	return nil, domainreview.ErrNotFound
}

// ListByItem returns reviews for one item, newest first.
func (r *ReviewRepository) ListByItem(ctx context.Context, itemID domainitem.ItemID, limit, offset int) ([]*domainreview.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreview.Review, 0)
	for _, rev := range r.items {
		if rev.ItemID == itemID {
			matches = append(matches, rev)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	total := len(matches)
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return matches[offset:end], nil
}

// Save writes the review entry.
func (r *ReviewRepository) Save(ctx context.Context, rev *domainreview.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[reviewKey(rev.RentalID, rev.AuthorID)] = rev
	return nil
}

func reviewKey(rentalID domainrental.RentalID, authorID string) string {
	return string(rentalID) + ":" + authorID
}
