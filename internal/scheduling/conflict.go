package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Booking is the slice of an existing appointment the conflict detector
// needs: its identity and when it starts. Cancelled appointments must not
// be passed in; filtering them is the repository's job.
type Booking struct {
	ID        uuid.UUID
	StartTime time.Time
}

// Conflicts returns the identifiers of bookings whose start falls within
// the conflict half-window of the candidate instant, boundary inclusive:
// a booking exactly half-window away still conflicts. excludeID removes
// the appointment being edited from the comparison set so an unchanged
// reschedule does not collide with itself; pass uuid.Nil when creating.
func (p Policy) Conflicts(candidate time.Time, bookings []Booking, excludeID uuid.UUID) []uuid.UUID {
	var conflicting []uuid.UUID
	for _, b := range bookings {
		if excludeID != uuid.Nil && b.ID == excludeID {
			continue
		}
		d := candidate.Sub(b.StartTime)
		if d < 0 {
			d = -d
		}
		if d <= p.ConflictHalfWindow {
			conflicting = append(conflicting, b.ID)
		}
	}
	return conflicting
}

// HasConflict is a convenience wrapper for callers that only need the
// boolean answer.
func (p Policy) HasConflict(candidate time.Time, bookings []Booking, excludeID uuid.UUID) bool {
	return len(p.Conflicts(candidate, bookings, excludeID)) > 0
}

// ConflictWindow returns the query range the persistence layer should
// scan for potential conflicts around a candidate instant.
func (p Policy) ConflictWindow(candidate time.Time) (from, to time.Time) {
	return candidate.Add(-p.ConflictHalfWindow), candidate.Add(p.ConflictHalfWindow)
}
