package booking

import (
	"strings"
	"time"

	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/models"
	"github.com/thesuite/booking-api/internal/notify"
)

// Notifier queues transactional emails.
type Notifier interface {
	Notify(n notify.Notification)
}

// SlotUnavailableError carries the engine's message for a refused selection.
type SlotUnavailableError struct {
	Message string
}

func (e *SlotUnavailableError) Error() string {
	return "slot_unavailable: " + e.Message
}

func (e *SlotUnavailableError) Unwrap() error {
	return httperr.ErrBusiness("slot_unavailable")
}

func bookingEmail(prof *models.Professional, ap *models.Appointment) notify.BookingEmail {
	return notify.BookingEmail{
		ClientName:       ap.Client.Name,
		ProfessionalName: prof.Name,
		ServiceName:      ap.Service.Name,
		Addons:           ap.Addons,
		Start:            ap.StartTime.In(prof.Location()),
		DurationMin:      ap.DurationMin,
		Amount:           ap.Amount,
		Currency:         ap.Currency,
		CancellationFee:  ap.CancellationFee,
		CancelledBy:      ap.CancelledBy,
	}
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func parseDay(date string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, httperr.ErrBusiness("invalid_date")
	}
	return d, nil
}

func notifyConfirmed(prof *models.Professional, ap *models.Appointment) notify.Notification {
	return notify.Notification{
		Kind: notify.KindBookingConfirmed,
		To:   ap.Client.Email,
		Data: bookingEmail(prof, ap),
	}
}

func notifyCancelled(prof *models.Professional, ap *models.Appointment) notify.Notification {
	return notify.Notification{
		Kind: notify.KindBookingCancelled,
		To:   ap.Client.Email,
		Data: bookingEmail(prof, ap),
	}
}
