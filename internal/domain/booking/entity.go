package booking

import (
	"time"

	"github.com/thesuite/booking-api/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Confirm(ap *models.Appointment, now time.Time) error {
	if err := CanConfirm(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusConfirmed)
	ap.ConfirmedAt = &now
	ap.PaidAt = &now
	return nil
}

// Cancel records a cancellation together with the fee charged for it.
func Cancel(ap *models.Appointment, now time.Time, by string, charge ChargeInfo) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	ap.CancelledBy = by
	ap.CancellationFee = charge.Amount
	ap.CancellationFeePercent = charge.Percentage
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}
