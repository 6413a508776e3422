package scheduling

import (
	"time"
)

// Slot is a candidate appointment time within business hours. Slots are
// computed on demand and never persisted.
type Slot struct {
	Start   time.Time `json:"start"`
	Display string    `json:"display"`
}

// FreeSlots enumerates every open slot for a date at the policy
// granularity, in chronological order. A slot is taken only when an
// existing booking starts at exactly that time; windowed conflict
// checking is the detector's job, not the slot walk's. The walk runs in
// the date's location so DST days keep their wall-clock hours.
func (p Policy) FreeSlots(date time.Time, booked []time.Time) []Slot {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b.In(date.Location()).Format("15:04")] = struct{}{}
	}

	var slots []Slot
	year, month, day := date.Date()
	cur := time.Date(year, month, day, p.OpenHour, 0, 0, 0, date.Location())
	end := time.Date(year, month, day, p.CloseHour, 0, 0, 0, date.Location())

	for cur.Before(end) {
		hm := cur.Format("15:04")
		if _, ok := taken[hm]; !ok {
			slots = append(slots, Slot{Start: cur, Display: hm})
		}
		cur = cur.Add(p.SlotGranularity)
	}
	return slots
}

// SuggestSlots returns the first MaxSuggestions free slots for a date.
// Deterministic for identical inputs.
func (p Policy) SuggestSlots(date time.Time, booked []time.Time) []Slot {
	slots := p.FreeSlots(date, booked)
	if p.MaxSuggestions > 0 && len(slots) > p.MaxSuggestions {
		slots = slots[:p.MaxSuggestions]
	}
	return slots
}
