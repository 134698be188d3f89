package dto

import "time"

// AppointmentListDTO is the agenda row shown to the professional. Times are
// in the professional's timezone.
type AppointmentListDTO struct {
	ID          uint      `json:"id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DurationMin int       `json:"duration_min"`
	Status      string    `json:"status"`

	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	ClientPhone string `json:"client_phone"`

	ServiceName string   `json:"service_name"`
	Addons      []string `json:"addons"`

	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	Paid            bool    `json:"paid"`
	CancellationFee float64 `json:"cancellation_fee,omitempty"`
	CancelledBy     string  `json:"cancelled_by,omitempty"`
}

// AgendaDay groups a month listing by calendar day.
type AgendaDay struct {
	Date         string               `json:"date"`
	Appointments []AppointmentListDTO `json:"appointments"`
}

// GroupByDay buckets rows by the calendar day of their start time, keeping
// the input order inside each day. Rows are expected sorted by start.
func GroupByDay(rows []AppointmentListDTO) []AgendaDay {
	out := []AgendaDay{}
	for _, r := range rows {
		day := r.StartTime.Format("2006-01-02")
		if n := len(out); n > 0 && out[n-1].Date == day {
			out[n-1].Appointments = append(out[n-1].Appointments, r)
			continue
		}
		out = append(out, AgendaDay{Date: day, Appointments: []AppointmentListDTO{r}})
	}
	return out
}
