package booking

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ===============================
// Slot grid
// ===============================

// GridIntervalMinutes is the size of one bookable slot. Two consecutive slot
// starts further apart than this have unavailable time between them.
const GridIntervalMinutes = 30

type ValidationType string

const (
	ValidationNone    ValidationType = ""
	ValidationInfo    ValidationType = "info"
	ValidationWarning ValidationType = "warning"
	ValidationError   ValidationType = "error"
	ValidationSuccess ValidationType = "success"
)

// MarshalJSON renders the empty type as null.
func (t ValidationType) MarshalJSON() ([]byte, error) {
	if t == ValidationNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

type TimeSlot struct {
	ID            string `json:"id"`
	Time          string `json:"time"`
	Minutes       int    `json:"minutes"`
	IsSelected    bool   `json:"is_selected"`
	IsDisabled    bool   `json:"is_disabled"`
	IsHighlighted bool   `json:"is_highlighted"`
}

type ValidationStatus struct {
	IsValid bool           `json:"is_valid"`
	Message *string        `json:"message"`
	Type    ValidationType `json:"type"`
}

type SlotInput struct {
	AvailableTimeSlots []string
	SelectedDate       *time.Time
	SelectedTimeSlot   string
	RequiredSlots      int

	// DurationMinutes is only used for messages. Zero means RequiredSlots * 30.
	DurationMinutes int
}

type SlotResult struct {
	TimeSlots        []TimeSlot       `json:"time_slots"`
	ValidationStatus ValidationStatus `json:"validation_status"`
}

// RequiredSlots converts a total service duration into grid slots, rounding up.
func RequiredSlots(totalDurationMinutes int) int {
	if totalDurationMinutes <= 0 {
		return 1
	}
	return (totalDurationMinutes + GridIntervalMinutes - 1) / GridIntervalMinutes
}

// ParseTimeLabel turns "9:30 AM" into minutes since midnight.
//
// Parsing is permissive: any malformed component counts as zero, so a garbage
// label lands at midnight instead of failing the whole day.
func ParseTimeLabel(label string) int {
	parts := strings.Fields(label)
	if len(parts) == 0 {
		return 0
	}

	hm := strings.SplitN(parts[0], ":", 2)
	hours := atoiOrZero(hm[0])
	minutes := 0
	if len(hm) == 2 {
		minutes = atoiOrZero(hm[1])
	}

	if len(parts) > 1 {
		switch strings.ToUpper(parts[1]) {
		case "PM":
			if hours != 12 {
				hours += 12
			}
		case "AM":
			if hours == 12 {
				hours = 0
			}
		}
	}

	return hours*60 + minutes
}

// FormatTimeLabel is the inverse of ParseTimeLabel.
func FormatTimeLabel(minutes int) string {
	h := (minutes / 60) % 24
	m := minutes % 60

	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, period)
}

// FormatDuration renders minutes as "1 hour 30 minutes".
func FormatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return plural(m, "minute")
	case m == 0:
		return plural(h, "hour")
	default:
		return plural(h, "hour") + " " + plural(m, "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// ===============================
// Engine
// ===============================

// ComputeSlots annotates the day's available labels for a booking that needs
// requiredSlots contiguous slots and validates the current selection.
// It never fails: every problem is reported through the ValidationStatus.
func ComputeSlots(in SlotInput) SlotResult {
	if in.SelectedDate == nil || len(in.AvailableTimeSlots) == 0 {
		return SlotResult{
			TimeSlots:        []TimeSlot{},
			ValidationStatus: neutralStatus(),
		}
	}

	required := in.RequiredSlots
	if required < 1 {
		required = 1
	}
	duration := in.DurationMinutes
	if duration <= 0 {
		duration = required * GridIntervalMinutes
	}

	labels := uniqueLabels(in.AvailableTimeSlots)
	if required > len(labels) {
		return SlotResult{
			TimeSlots: []TimeSlot{},
			ValidationStatus: invalidStatus(ValidationError, fmt.Sprintf(
				"This service requires %s, but this date doesn't have enough available time slots.",
				FormatDuration(duration),
			)),
		}
	}

	slots := BuildTimeSlots(labels, in.SelectedTimeSlot, required)
	idx := IndexOfSlot(slots, in.SelectedTimeSlot)

	var status ValidationStatus
	if in.SelectedTimeSlot != "" && idx < 0 {
		status = invalidStatus(ValidationError, "Selected time slot is no longer available.")
	} else {
		status = ValidateTimeSlotSelection(slots, idx, required, duration)
	}

	return SlotResult{TimeSlots: slots, ValidationStatus: status}
}

// BuildTimeSlots parses, sorts and annotates labels. Duplicate labels are
// collapsed so ids stay unique within the day.
func BuildTimeSlots(labels []string, selected string, requiredSlots int) []TimeSlot {
	labels = uniqueLabels(labels)
	slots := make([]TimeSlot, 0, len(labels))

	for _, label := range labels {
		slots = append(slots, TimeSlot{
			ID:         label,
			Time:       label,
			Minutes:    ParseTimeLabel(label),
			IsSelected: selected != "" && label == selected,
		})
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Minutes < slots[j].Minutes
	})

	for i := range slots {
		if contiguousRun(slots, i, requiredSlots) < requiredSlots {
			slots[i].IsDisabled = true
		}
	}

	if idx := IndexOfSlot(slots, selected); idx >= 0 {
		slots[idx].IsHighlighted = true
		for j := idx + 1; j < len(slots) && j <= idx+requiredSlots-1; j++ {
			if slots[j].Minutes-slots[j-1].Minutes > GridIntervalMinutes {
				break
			}
			slots[j].IsHighlighted = true
		}
	}

	return slots
}

// uniqueLabels drops repeated labels, keeping first occurrences in order.
func uniqueLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// ValidateTimeSlotSelection checks that requiredSlots contiguous slots start
// at selectedIndex. A negative index means nothing is selected yet.
func ValidateTimeSlotSelection(slots []TimeSlot, selectedIndex, requiredSlots, durationMinutes int) ValidationStatus {
	if selectedIndex < 0 {
		return neutralStatus()
	}
	if len(slots) == 0 {
		return invalidStatus(ValidationWarning, "No time slots available for this date.")
	}
	if selectedIndex >= len(slots) {
		return invalidStatus(ValidationError, "Selected time slot is no longer available.")
	}
	if requiredSlots < 1 {
		requiredSlots = 1
	}
	if durationMinutes <= 0 {
		durationMinutes = requiredSlots * GridIntervalMinutes
	}

	duration := FormatDuration(durationMinutes)
	collected := 1
	hitGap := false

	for j := selectedIndex + 1; j < len(slots) && collected < requiredSlots; j++ {
		if slots[j].Minutes-slots[j-1].Minutes > GridIntervalMinutes {
			hitGap = true
			break
		}
		collected++
	}

	if collected < requiredSlots {
		if hitGap {
			return invalidStatus(ValidationError, fmt.Sprintf(
				"This service requires %s and can't be scheduled due to a gap in availability.",
				duration,
			))
		}
		return invalidStatus(ValidationError, fmt.Sprintf(
			"This service requires %s but there's not enough time available at the end of the day.",
			duration,
		))
	}

	last := slots[selectedIndex+collected-1]
	msg := fmt.Sprintf(
		"This appointment takes %s, starting at %s and ending at %s.",
		duration,
		slots[selectedIndex].Time,
		last.Time,
	)
	return ValidationStatus{IsValid: true, Message: &msg, Type: ValidationInfo}
}

// IndexOfSlot returns the index of the slot labelled label, or -1.
func IndexOfSlot(slots []TimeSlot, label string) int {
	if label == "" {
		return -1
	}
	for i, s := range slots {
		if s.ID == label {
			return i
		}
	}
	return -1
}

// contiguousRun counts slots reachable from start without crossing a gap,
// stopping once limit is reached.
func contiguousRun(slots []TimeSlot, start, limit int) int {
	run := 1
	for j := start + 1; j < len(slots) && run < limit; j++ {
		if slots[j].Minutes-slots[j-1].Minutes > GridIntervalMinutes {
			break
		}
		run++
	}
	return run
}

func neutralStatus() ValidationStatus {
	return ValidationStatus{IsValid: true}
}

func invalidStatus(t ValidationType, msg string) ValidationStatus {
	return ValidationStatus{IsValid: false, Message: &msg, Type: t}
}
