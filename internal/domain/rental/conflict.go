package rental

import (
	"time"

	"gearshare/internal/domain/item"
	"gearshare/internal/domain/shared/dateinterval"
)

// HasConflict reports whether the candidate interval collides with any
// committed (approved or active) rental of the same item in the snapshot.
// The interval is closed on both ends: a rental ending 2025-06-05 conflicts
// with one starting 2025-06-05.
//
// The snapshot is passed in explicitly so the check can run inside whatever
// consistency boundary the caller holds; excludeID skips the rental under
// re-evaluation.
func HasConflict(itemID item.ItemID, start, end time.Time, snapshot []*Rental, excludeID RentalID) bool {
	candidate := dateinterval.Interval{Start: dateinterval.Day(start), End: dateinterval.Day(end)}
	for _, existing := range snapshot {
		if existing == nil || existing.ItemID != itemID {
			continue
		}
		if excludeID != "" && existing.ID == excludeID {
			continue
		}
		if !existing.Blocking() {
			continue
		}
		if candidate.Overlaps(existing.Period) {
			return true
		}
	}
	return false
}
