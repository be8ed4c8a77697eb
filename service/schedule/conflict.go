package schedule

import (
	"context"
	"time"

	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/models"
)

// sameStaff reports whether two assignments fall in the same bucket.
// Two unassigned appointments share the "no staff" bucket and therefore
// conflict with each other; occurrences for different staff members never
// block one another.
func sameStaff(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// IsSlotAvailable reports whether a candidate interval is free for the
// given staff assignment. Only occurrences on the candidate's calendar
// day (in the candidate's zone) are considered. ignoreID exempts one base
// appointment so editing in place does not conflict with itself.
//
// This is a check-then-act read: a concurrent booking can still land
// between this check and the caller's insert. Accepted at this scale.
func (e *Engine) IsSlotAvailable(ctx context.Context, businessID uint, start time.Time, durationMin int, ignoreID uint, staffID *uint) (bool, error) {
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	res, err := e.Expand(ctx, businessID, dayStart, dayEnd)
	if err != nil {
		return false, err
	}

	end := start.Add(time.Duration(durationMin) * time.Minute)
	for _, occ := range res.Occurrences {
		if occ.AppointmentID == ignoreID {
			continue
		}
		if occ.Status == models.StatusCancelled {
			continue
		}
		if !sameStaff(occ.StaffID, staffID) {
			continue
		}
		if intervalsOverlap(occ.StartAt, occ.EndAt, start, end) {
			return false, nil
		}
	}
	return true, nil
}
