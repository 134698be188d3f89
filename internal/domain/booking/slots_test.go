package booking

import (
	"math/rand"
	"testing"
	"time"
)

func day() *time.Time {
	d := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return &d
}

func msg(s ValidationStatus) string {
	if s.Message == nil {
		return ""
	}
	return *s.Message
}

func TestParseTimeLabel(t *testing.T) {
	cases := map[string]int{
		"9:00 AM":  540,
		"9:30 AM":  570,
		"12:00 AM": 0,
		"12:30 PM": 750,
		"1:15 PM":  795,
		"11:30 PM": 1410,
		"garbage":  0,
		"":         0,
	}
	for label, want := range cases {
		if got := ParseTimeLabel(label); got != want {
			t.Fatalf("ParseTimeLabel(%q): expected %d, got %d", label, want, got)
		}
	}
}

func TestFormatTimeLabelRoundTrip(t *testing.T) {
	for m := 0; m < 24*60; m += GridIntervalMinutes {
		if got := ParseTimeLabel(FormatTimeLabel(m)); got != m {
			t.Fatalf("round trip of %d gave %d (%s)", m, got, FormatTimeLabel(m))
		}
	}
}

func TestRequiredSlotsRoundsUp(t *testing.T) {
	cases := map[int]int{30: 1, 45: 2, 60: 2, 61: 3, 90: 3, 0: 1}
	for d, want := range cases {
		if got := RequiredSlots(d); got != want {
			t.Fatalf("RequiredSlots(%d): expected %d, got %d", d, want, got)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{
		30:  "30 minutes",
		60:  "1 hour",
		90:  "1 hour 30 minutes",
		120: "2 hours",
		61:  "1 hour 1 minute",
	}
	for m, want := range cases {
		if got := FormatDuration(m); got != want {
			t.Fatalf("FormatDuration(%d): expected %q, got %q", m, want, got)
		}
	}
}

func TestComputeSlotsNeutralWithoutDateOrSlots(t *testing.T) {
	res := ComputeSlots(SlotInput{AvailableTimeSlots: []string{"9:00 AM"}, RequiredSlots: 1})
	if len(res.TimeSlots) != 0 || !res.ValidationStatus.IsValid || res.ValidationStatus.Message != nil {
		t.Fatalf("expected neutral result without date, got %+v", res)
	}

	res = ComputeSlots(SlotInput{SelectedDate: day(), RequiredSlots: 1})
	if len(res.TimeSlots) != 0 || res.ValidationStatus.Type != ValidationNone {
		t.Fatalf("expected neutral result without slots, got %+v", res)
	}
}

func TestComputeSlotsNotEnoughSlotsShortCircuits(t *testing.T) {
	res := ComputeSlots(SlotInput{
		AvailableTimeSlots: []string{"9:00 AM", "9:30 AM"},
		SelectedDate:       day(),
		SelectedTimeSlot:   "9:00 AM",
		RequiredSlots:      3,
	})
	if len(res.TimeSlots) != 0 {
		t.Fatalf("expected no slots, got %d", len(res.TimeSlots))
	}
	if res.ValidationStatus.IsValid || res.ValidationStatus.Type != ValidationError {
		t.Fatalf("expected error status, got %+v", res.ValidationStatus)
	}
	want := "This service requires 1 hour 30 minutes, but this date doesn't have enough available time slots."
	if msg(res.ValidationStatus) != want {
		t.Fatalf("unexpected message %q", msg(res.ValidationStatus))
	}
}

func TestComputeSlotsDuplicatesDoNotCountTwice(t *testing.T) {
	res := ComputeSlots(SlotInput{
		AvailableTimeSlots: []string{"9:00 AM", "9:00 AM"},
		SelectedDate:       day(),
		SelectedTimeSlot:   "9:00 AM",
		RequiredSlots:      2,
	})
	if len(res.TimeSlots) != 0 {
		t.Fatalf("expected no slots, got %d", len(res.TimeSlots))
	}
	want := "This service requires 1 hour, but this date doesn't have enough available time slots."
	if msg(res.ValidationStatus) != want {
		t.Fatalf("unexpected message %q", msg(res.ValidationStatus))
	}
}

func TestComputeSlotsSortsAndDisables(t *testing.T) {
	res := ComputeSlots(SlotInput{
		AvailableTimeSlots: []string{"10:00 AM", "9:00 AM", "1:00 PM", "9:30 AM", "1:30 PM"},
		SelectedDate:       day(),
		RequiredSlots:      2,
	})

	wantOrder := []string{"9:00 AM", "9:30 AM", "10:00 AM", "1:00 PM", "1:30 PM"}
	wantDisabled := []bool{false, false, true, false, true}
	for i, s := range res.TimeSlots {
		if s.Time != wantOrder[i] {
			t.Fatalf("slot %d: expected %s, got %s", i, wantOrder[i], s.Time)
		}
		if s.IsDisabled != wantDisabled[i] {
			t.Fatalf("slot %s: expected disabled=%v", s.Time, wantDisabled[i])
		}
	}
	if !res.ValidationStatus.IsValid || res.ValidationStatus.Message != nil {
		t.Fatalf("expected neutral status without selection, got %+v", res.ValidationStatus)
	}
}

func TestComputeSlotsGapTruncatesHighlight(t *testing.T) {
	res := ComputeSlots(SlotInput{
		AvailableTimeSlots: []string{"9:00 AM", "9:30 AM", "10:00 AM", "11:00 AM"},
		SelectedDate:       day(),
		SelectedTimeSlot:   "10:00 AM",
		RequiredSlots:      2,
	})

	for _, s := range res.TimeSlots {
		want := s.Time == "10:00 AM"
		if s.IsHighlighted != want {
			t.Fatalf("slot %s: expected highlighted=%v", s.Time, want)
		}
	}
	st := res.ValidationStatus
	if st.IsValid || st.Type != ValidationError {
		t.Fatalf("expected error, got %+v", st)
	}
	want := "This service requires 1 hour and can't be scheduled due to a gap in availability."
	if msg(st) != want {
		t.Fatalf("unexpected message %q", msg(st))
	}
}

func TestComputeSlotsValidSelection(t *testing.T) {
	res := ComputeSlots(SlotInput{
		AvailableTimeSlots: []string{"9:00 AM", "9:30 AM", "10:00 AM"},
		SelectedDate:       day(),
		SelectedTimeSlot:   "9:00 AM",
		RequiredSlots:      2,
	})

	st := res.ValidationStatus
	if !st.IsValid || st.Type != ValidationInfo {
		t.Fatalf("expected valid info status, got %+v", st)
	}
	want := "This appointment takes 1 hour, starting at 9:00 AM and ending at 9:30 AM."
	if msg(st) != want {
		t.Fatalf("unexpected message %q", msg(st))
	}

	highlighted := map[string]bool{}
	for _, s := range res.TimeSlots {
		if s.IsHighlighted {
			highlighted[s.Time] = true
		}
		if s.IsSelected != (s.Time == "9:00 AM") {
			t.Fatalf("slot %s: wrong selection flag", s.Time)
		}
	}
	if len(highlighted) != 2 || !highlighted["9:00 AM"] || !highlighted["9:30 AM"] {
		t.Fatalf("unexpected highlight set %v", highlighted)
	}
}

func TestComputeSlotsEndOfDay(t *testing.T) {
	res := ComputeSlots(SlotInput{
		AvailableTimeSlots: []string{"4:00 PM", "4:30 PM", "5:00 PM"},
		SelectedDate:       day(),
		SelectedTimeSlot:   "4:30 PM",
		RequiredSlots:      3,
		DurationMinutes:    75,
	})
	want := "This service requires 1 hour 15 minutes but there's not enough time available at the end of the day."
	if res.ValidationStatus.IsValid || msg(res.ValidationStatus) != want {
		t.Fatalf("unexpected status %+v (%q)", res.ValidationStatus, msg(res.ValidationStatus))
	}
}

func TestComputeSlotsStaleSelection(t *testing.T) {
	res := ComputeSlots(SlotInput{
		AvailableTimeSlots: []string{"9:00 AM", "9:30 AM"},
		SelectedDate:       day(),
		SelectedTimeSlot:   "2:00 PM",
		RequiredSlots:      1,
	})
	if res.ValidationStatus.IsValid || msg(res.ValidationStatus) != "Selected time slot is no longer available." {
		t.Fatalf("unexpected status %+v", res.ValidationStatus)
	}
}

func TestValidateTimeSlotSelection(t *testing.T) {
	st := ValidateTimeSlotSelection(nil, -1, 3, 0)
	if !st.IsValid || st.Message != nil || st.Type != ValidationNone {
		t.Fatalf("no selection must be neutral, got %+v", st)
	}

	st = ValidateTimeSlotSelection([]TimeSlot{}, 0, 1, 0)
	if st.IsValid || st.Type != ValidationWarning || msg(st) != "No time slots available for this date." {
		t.Fatalf("expected warning for empty list, got %+v", st)
	}
}

func TestDisabledSlotsAlwaysHaveRoom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for iter := 0; iter < 500; iter++ {
		var labels []string
		m := 8 * 60
		for i := 0; i < 4+rng.Intn(16) && m < 22*60; i++ {
			labels = append(labels, FormatTimeLabel(m))
			m += GridIntervalMinutes * (1 + rng.Intn(3)*rng.Intn(2))
		}
		required := 1 + rng.Intn(4)

		slots := BuildTimeSlots(labels, "", required)
		for i, s := range slots {
			if s.IsDisabled {
				continue
			}
			if run := contiguousRun(slots, i, len(slots)); run < required {
				t.Fatalf("slot %s enabled with run %d < %d (labels %v)", s.Time, run, required, labels)
			}
		}
	}
}

func TestHighlightNeverCrossesGap(t *testing.T) {
	labels := []string{"9:00 AM", "9:30 AM", "10:30 AM", "11:00 AM"}
	slots := BuildTimeSlots(labels, "9:00 AM", 4)
	for _, s := range slots {
		if s.Minutes > 570 && s.IsHighlighted {
			t.Fatalf("slot %s highlighted past the gap", s.Time)
		}
	}
}

func TestComputeSlotsRoundTrip(t *testing.T) {
	inputs := []SlotInput{
		{AvailableTimeSlots: []string{"10:00 AM", "9:00 AM", "9:30 AM"}, SelectedTimeSlot: "9:00 AM", RequiredSlots: 2},
		{AvailableTimeSlots: []string{"9:00 AM", "9:30 AM", "10:00 AM", "11:00 AM"}, SelectedTimeSlot: "10:00 AM", RequiredSlots: 2},
		{AvailableTimeSlots: []string{"4:00 PM", "4:30 PM"}, SelectedTimeSlot: "4:30 PM", RequiredSlots: 2},
	}

	for _, in := range inputs {
		in.SelectedDate = day()
		first := ComputeSlots(in)

		var labels []string
		for _, s := range first.TimeSlots {
			labels = append(labels, s.Time)
		}
		in.AvailableTimeSlots = labels
		second := ComputeSlots(in)

		a, b := first.ValidationStatus, second.ValidationStatus
		if a.IsValid != b.IsValid || a.Type != b.Type || msg(a) != msg(b) {
			t.Fatalf("round trip changed status: %+v vs %+v", a, b)
		}
	}
}
