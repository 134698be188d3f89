package booking

import "github.com/thesuite/booking-api/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusCancelled      Status = "cancelled"
	StatusCompleted      Status = "completed"
)

// Blocking reports whether an appointment in this status occupies its time.
func (s Status) Blocking() bool {
	return s == StatusPendingPayment || s == StatusConfirmed
}

// ===============================
// Validations
// ===============================

func CanConfirm(current Status) error {
	if current != StatusPendingPayment {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanCancel(current Status) error {
	if !current.Blocking() {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanComplete(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func InitialStatus() Status {
	return StatusPendingPayment
}

// BlockingStatuses lists statuses that take a slot off the grid.
func BlockingStatuses() []string {
	return []string{string(StatusPendingPayment), string(StatusConfirmed)}
}
