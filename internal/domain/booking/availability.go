package booking

import (
	"time"
)

type AvailabilityInput struct {
	ProfessionalID uint
	ServiceID      uint
	AddonIDs       []uint
	Date           time.Time
	SelectedTime   string
}

type Availability struct {
	Date          string     `json:"date"`
	DurationMin   int        `json:"duration_min"`
	RequiredSlots int        `json:"required_slots"`
	Labels        []string   `json:"available_time_slots"`
	Result        SlotResult `json:"result"`
}

// DayTimeLabels lists the free 30-minute grid starts of a working day.
// Slots overlapping the break or a busy interval, or starting before
// earliest, are left out.
func DayTimeLabels(w DayWindow, busy []Interval, earliest time.Time) []string {
	step := GridIntervalMinutes * time.Minute
	labels := []string{}

	bi := 0
	for cur := w.Start; !cur.Add(step).After(w.End); cur = cur.Add(step) {
		slotEnd := cur.Add(step)

		if w.HasBreak && cur.Before(w.BreakEnd) && slotEnd.After(w.BreakStart) {
			continue
		}
		if cur.Before(earliest) {
			continue
		}

		// busy is sorted by start; skip intervals that already ended
		for bi < len(busy) && !busy[bi].End.After(cur) {
			bi++
		}
		conflict := false
		for j := bi; j < len(busy) && busy[j].Start.Before(slotEnd); j++ {
			if busy[j].Overlaps(cur, slotEnd) {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}

		labels = append(labels, FormatTimeLabel(cur.Hour()*60+cur.Minute()))
	}

	return labels
}

// LabelStart resolves a slot label on day, e.g. "2:30 PM" on 2026-03-10.
func LabelStart(day time.Time, label string) time.Time {
	m := ParseTimeLabel(label)
	return time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, day.Location())
}
