package scheduling

import (
	"fmt"
	"time"
)

// Rejection codes returned to callers. Serialized as-is in API responses.
const (
	CodePastDate             = "past_date"
	CodeTooFarFuture         = "too_far_future"
	CodeOutsideBusinessHours = "outside_business_hours"
	CodeNonBusinessDay       = "non_business_day"
	CodeTimeConflict         = "time_conflict"
)

// Rejection is a structured scheduling failure. It implements error so it
// can travel through service call chains unchanged.
type Rejection struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	SuggestedSlots []Slot `json:"suggested_slots,omitempty"`
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// Policy holds the calendar and conflict rules appointments are validated
// against. The half-window and granularity were applied inconsistently in
// older versions of the scheduler; they are single knobs now.
type Policy struct {
	OpenHour           int
	CloseHour          int
	MaxAdvance         time.Duration
	ConflictHalfWindow time.Duration
	SlotGranularity    time.Duration
	MaxSuggestions     int
}

// DefaultPolicy returns the standard clinic rules: 08:00-18:00, weekdays,
// bookable up to a year ahead, 15-minute conflict half-window, 30-minute
// slots, at most 5 suggestions.
func DefaultPolicy() Policy {
	return Policy{
		OpenHour:           8,
		CloseHour:          18,
		MaxAdvance:         365 * 24 * time.Hour,
		ConflictHalfWindow: 15 * time.Minute,
		SlotGranularity:    30 * time.Minute,
		MaxSuggestions:     5,
	}
}

// ValidateStart checks a candidate start instant against the calendar
// rules. It is pure: no clock access, no persistence. A nil return means
// the instant is acceptable. Business hours are [open, close): an
// appointment exactly at closing hour is rejected. The maximum advance
// boundary is inclusive.
func (p Policy) ValidateStart(start, now time.Time) *Rejection {
	if start.Before(now) {
		return &Rejection{
			Code:    CodePastDate,
			Message: "appointment cannot be scheduled in the past",
		}
	}

	if start.After(now.Add(p.MaxAdvance)) {
		return &Rejection{
			Code:    CodeTooFarFuture,
			Message: fmt.Sprintf("appointment cannot be scheduled more than %d days ahead", int(p.MaxAdvance.Hours()/24)),
		}
	}

	switch start.Weekday() {
	case time.Saturday, time.Sunday:
		return &Rejection{
			Code:    CodeNonBusinessDay,
			Message: "appointments are only available Monday through Friday",
		}
	}

	if h := start.Hour(); h < p.OpenHour || h >= p.CloseHour {
		return &Rejection{
			Code:    CodeOutsideBusinessHours,
			Message: fmt.Sprintf("appointments are only available between %02d:00 and %02d:00", p.OpenHour, p.CloseHour),
		}
	}

	return nil
}
