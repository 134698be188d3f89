package booking

import (
	"time"

	"github.com/thesuite/booking-api/internal/models"
)

// Interval is a half-open [Start, End) span of time.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Overlaps(start, end time.Time) bool {
	return start.Before(i.End) && i.Start.Before(end)
}

// DayWindow is a WorkingHours row resolved onto a calendar day.
type DayWindow struct {
	Start      time.Time
	End        time.Time
	BreakStart time.Time
	BreakEnd   time.Time
	HasBreak   bool
}

// ResolveDay places wh on day (in day's location). ok is false when the
// professional does not work that day or the row is malformed.
func ResolveDay(wh *models.WorkingHours, day time.Time) (DayWindow, bool) {
	if wh == nil || !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
		return DayWindow{}, false
	}

	parseHM := func(hm string) (time.Time, bool) {
		t, err := time.Parse("15:04", hm)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(
			day.Year(), day.Month(), day.Day(),
			t.Hour(), t.Minute(), 0, 0,
			day.Location(),
		), true
	}

	var w DayWindow
	var ok bool
	if w.Start, ok = parseHM(wh.StartTime); !ok {
		return DayWindow{}, false
	}
	if w.End, ok = parseHM(wh.EndTime); !ok || !w.End.After(w.Start) {
		return DayWindow{}, false
	}

	if wh.BreakStart != "" && wh.BreakEnd != "" {
		bs, ok1 := parseHM(wh.BreakStart)
		be, ok2 := parseHM(wh.BreakEnd)
		if ok1 && ok2 && be.After(bs) {
			w.BreakStart, w.BreakEnd, w.HasBreak = bs, be, true
		}
	}

	return w, true
}

// IsWithinWorkingHours validates that [start, end) fits the working day and
// does not touch the break.
func IsWithinWorkingHours(wh *models.WorkingHours, start, end time.Time) bool {
	w, ok := ResolveDay(wh, start)
	if !ok {
		return false
	}
	if start.Before(w.Start) || end.After(w.End) {
		return false
	}
	if w.HasBreak && start.Before(w.BreakEnd) && end.After(w.BreakStart) {
		return false
	}
	return true
}
