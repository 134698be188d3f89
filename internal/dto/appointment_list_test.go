package dto

import (
	"testing"
	"time"
)

func TestGroupByDay(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	at := func(day, hour int, id uint) AppointmentListDTO {
		return AppointmentListDTO{ID: id, StartTime: time.Date(2026, 3, day, hour, 0, 0, 0, loc)}
	}

	days := GroupByDay([]AppointmentListDTO{at(10, 9, 1), at(10, 14, 2), at(12, 9, 3)})
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Date != "2026-03-10" || len(days[0].Appointments) != 2 || days[0].Appointments[1].ID != 2 {
		t.Fatalf("unexpected first day %+v", days[0])
	}
	if days[1].Date != "2026-03-12" || days[1].Appointments[0].ID != 3 {
		t.Fatalf("unexpected second day %+v", days[1])
	}

	if got := GroupByDay(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
