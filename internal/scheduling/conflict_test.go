package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictsWithinHalfWindow(t *testing.T) {
	p := DefaultPolicy()
	existing := Booking{ID: uuid.New(), StartTime: time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)}

	cases := []struct {
		offset   time.Duration
		conflict bool
	}{
		{0, true},
		{10 * time.Minute, true},
		{-10 * time.Minute, true},
		{15 * time.Minute, true}, // boundary is inclusive
		{-15 * time.Minute, true},
		{16 * time.Minute, false},
		{20 * time.Minute, false},
		{-20 * time.Minute, false},
	}

	for _, tc := range cases {
		candidate := existing.StartTime.Add(tc.offset)
		ids := p.Conflicts(candidate, []Booking{existing}, uuid.Nil)
		if tc.conflict {
			require.Len(t, ids, 1, "offset %v should conflict", tc.offset)
			assert.Equal(t, existing.ID, ids[0])
		} else {
			assert.Empty(t, ids, "offset %v should not conflict", tc.offset)
		}
	}
}

func TestConflictsExcludesEditedAppointment(t *testing.T) {
	p := DefaultPolicy()
	start := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	own := Booking{ID: uuid.New(), StartTime: start}
	other := Booking{ID: uuid.New(), StartTime: start.Add(10 * time.Minute)}

	// Resubmitting an appointment's own unchanged instant is not a
	// self-conflict.
	ids := p.Conflicts(start, []Booking{own}, own.ID)
	assert.Empty(t, ids)

	// But other bookings in the window still count.
	ids = p.Conflicts(start, []Booking{own, other}, own.ID)
	require.Len(t, ids, 1)
	assert.Equal(t, other.ID, ids[0])
}

func TestConflictsReportsAllOffenders(t *testing.T) {
	p := DefaultPolicy()
	candidate := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	bookings := []Booking{
		{ID: uuid.New(), StartTime: candidate.Add(-10 * time.Minute)},
		{ID: uuid.New(), StartTime: candidate.Add(5 * time.Minute)},
		{ID: uuid.New(), StartTime: candidate.Add(45 * time.Minute)},
	}

	ids := p.Conflicts(candidate, bookings, uuid.Nil)
	require.Len(t, ids, 2)
	assert.Contains(t, ids, bookings[0].ID)
	assert.Contains(t, ids, bookings[1].ID)
}

// The database exclusion constraint stores each booking as the closed
// range [start - w/2, start + w/2], so two rows collide exactly when
// their starts are within the full half-window of each other. This pins
// the detector to that encoding: if either side drifts, instants accepted
// here would be rejected at commit (or the other way around).
func TestConflictsAgreeWithRangeEncoding(t *testing.T) {
	p := DefaultPolicy()
	perSide := p.ConflictHalfWindow / 2 // 450s, as in the migration
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

	rangesOverlap := func(a, b time.Time) bool {
		// Closed-range overlap: [a-perSide, a+perSide] && [b-perSide, b+perSide].
		return !a.Add(perSide).Before(b.Add(-perSide)) && !b.Add(perSide).Before(a.Add(-perSide))
	}

	offsets := []time.Duration{
		0,
		10 * time.Minute,
		15 * time.Minute, // inclusive boundary
		16 * time.Minute,
		20 * time.Minute, // accepted: outside the window
		30 * time.Minute, // adjacent grid slots never collide
		45 * time.Minute,
	}

	for _, offset := range offsets {
		existing := Booking{ID: uuid.New(), StartTime: base}
		candidate := base.Add(offset)

		detected := p.HasConflict(candidate, []Booking{existing}, uuid.Nil)
		assert.Equal(t, detected, rangesOverlap(candidate, existing.StartTime),
			"detector and range encoding disagree at offset %v", offset)
		assert.Equal(t, offset <= p.ConflictHalfWindow, detected,
			"offset %v conflicts iff within the half-window", offset)
	}
}

func TestConflictWindow(t *testing.T) {
	p := DefaultPolicy()
	candidate := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

	from, to := p.ConflictWindow(candidate)
	assert.Equal(t, candidate.Add(-15*time.Minute), from)
	assert.Equal(t, candidate.Add(15*time.Minute), to)
}
