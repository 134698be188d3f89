package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/thesuite/booking-api/internal/domain/booking"
	"github.com/thesuite/booking-api/internal/httperr"
	"go.uber.org/zap"
)

func TestGetAvailabilityMarksGapsAndDayEnd(t *testing.T) {
	repo := seededRepo()
	seedAppointment(repo, domain.StatusConfirmed, fixtureDay.Add(10*time.Hour), 80)

	uc := NewGetAvailability(repo)
	uc.now = fixed(fixtureNow())

	got, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		ProfessionalID: profID,
		ServiceID:      serviceID,
		Date:           fixtureDay,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantLabels := []string{"9:00 AM", "9:30 AM", "11:00 AM", "11:30 AM"}
	if len(got.Labels) != len(wantLabels) {
		t.Fatalf("expected labels %v, got %v", wantLabels, got.Labels)
	}
	for i := range wantLabels {
		if got.Labels[i] != wantLabels[i] {
			t.Fatalf("expected labels %v, got %v", wantLabels, got.Labels)
		}
	}

	if got.RequiredSlots != 2 || got.Date != "2026-03-10" {
		t.Fatalf("unexpected header: %+v", got)
	}

	disabled := map[string]bool{}
	for _, s := range got.Result.TimeSlots {
		disabled[s.Time] = s.IsDisabled
	}
	if disabled["9:00 AM"] || !disabled["9:30 AM"] || disabled["11:00 AM"] || !disabled["11:30 AM"] {
		t.Fatalf("unexpected disabled map: %v", disabled)
	}
	if !got.Result.ValidationStatus.IsValid || got.Result.ValidationStatus.Message != nil {
		t.Fatalf("expected neutral status, got %+v", got.Result.ValidationStatus)
	}
}

func TestGetAvailabilityAddonsExtendDuration(t *testing.T) {
	repo := seededRepo()
	uc := NewGetAvailability(repo)
	uc.now = fixed(fixtureNow())

	got, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		ProfessionalID: profID,
		ServiceID:      serviceID,
		AddonIDs:       []uint{addonID},
		Date:           fixtureDay,
		SelectedTime:   "9:00 AM",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.DurationMin != 75 || got.RequiredSlots != 3 {
		t.Fatalf("expected 75 min / 3 slots, got %d / %d", got.DurationMin, got.RequiredSlots)
	}
	st := got.Result.ValidationStatus
	if !st.IsValid || st.Type != domain.ValidationInfo {
		t.Fatalf("expected valid info status, got %+v", st)
	}
	if *st.Message != "This appointment takes 1 hour 15 minutes, starting at 9:00 AM and ending at 10:00 AM." {
		t.Fatalf("unexpected message %q", *st.Message)
	}
}

func TestGetAvailabilityRespectsMinAdvance(t *testing.T) {
	repo := seededRepo()
	repo.professionals[profID].MinAdvanceMinutes = 120

	uc := NewGetAvailability(repo)
	uc.now = fixed(fixtureDay.Add(8 * time.Hour))

	got, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		ProfessionalID: profID,
		ServiceID:      serviceID,
		Date:           fixtureDay,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Labels) == 0 || got.Labels[0] != "10:00 AM" {
		t.Fatalf("expected first label 10:00 AM, got %v", got.Labels)
	}
}

func TestGetAvailabilityClosedDay(t *testing.T) {
	repo := seededRepo()
	uc := NewGetAvailability(repo)
	uc.now = fixed(fixtureNow())

	got, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		ProfessionalID: profID,
		ServiceID:      serviceID,
		Date:           fixtureDay.AddDate(0, 0, 1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Labels) != 0 || len(got.Result.TimeSlots) != 0 || !got.Result.ValidationStatus.IsValid {
		t.Fatalf("expected empty neutral result, got %+v", got)
	}
}

func TestGetAvailabilityUnknownService(t *testing.T) {
	uc := NewGetAvailability(seededRepo())

	_, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		ProfessionalID: profID,
		ServiceID:      999,
		Date:           fixtureDay,
	})
	if !httperr.IsBusiness(err, "service_not_found") {
		t.Fatalf("expected service_not_found, got %v", err)
	}
}

// ======================================================
// CreateBooking
// ======================================================

func newCreate(repo *memRepo, gw *fakeGateway, n *recordingNotifier) *CreateBooking {
	uc := NewCreateBooking(repo, gw, nil, n, zap.NewNop(), "usd")
	uc.now = fixed(fixtureNow())
	return uc
}

func bookingInput(label string) CreateBookingInput {
	return CreateBookingInput{
		ProfessionalID: profID,
		ServiceID:      serviceID,
		Date:           "2026-03-10",
		Time:           label,
		ClientName:     "Ana",
		ClientEmail:    "Ana@Example.com",
	}
}

func TestCreateBookingOpensCheckout(t *testing.T) {
	repo := seededRepo()
	gw := &fakeGateway{}
	uc := newCreate(repo, gw, &recordingNotifier{})

	res, err := uc.Execute(context.Background(), bookingInput("9:30 AM"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ap := res.Appointment
	if ap.Status != string(domain.StatusPendingPayment) {
		t.Fatalf("expected pending_payment, got %s", ap.Status)
	}
	if !ap.StartTime.Equal(fixtureDay.Add(9*time.Hour+30*time.Minute)) || ap.DurationMin != 60 {
		t.Fatalf("unexpected interval %v / %d", ap.StartTime, ap.DurationMin)
	}
	if res.CheckoutURL == "" || repo.appointments[ap.ID].CheckoutSessionID != "cs_test_1" {
		t.Fatalf("expected checkout session stored, got %+v", repo.appointments[ap.ID])
	}
	if len(gw.checkouts) != 1 || gw.checkouts[0].Amount != 80 || gw.checkouts[0].CustomerEmail != "ana@example.com" {
		t.Fatalf("unexpected checkout request %+v", gw.checkouts)
	}
	if !gw.checkouts[0].ExpiresAt.Equal(fixtureNow().Add(CheckoutTTL)) {
		t.Fatalf("unexpected expiry %v", gw.checkouts[0].ExpiresAt)
	}
}

func TestCreateBookingRejectsGapSelection(t *testing.T) {
	repo := seededRepo()
	seedAppointment(repo, domain.StatusPendingPayment, fixtureDay.Add(10*time.Hour), 80)
	gw := &fakeGateway{}
	uc := newCreate(repo, gw, &recordingNotifier{})

	_, err := uc.Execute(context.Background(), bookingInput("9:30 AM"))

	var slotErr *SlotUnavailableError
	if !errors.As(err, &slotErr) {
		t.Fatalf("expected SlotUnavailableError, got %v", err)
	}
	if slotErr.Message != "This service requires 1 hour and can't be scheduled due to a gap in availability." {
		t.Fatalf("unexpected message %q", slotErr.Message)
	}
	if code, _ := httperr.BusinessCode(err); code != "slot_unavailable" {
		t.Fatalf("expected slot_unavailable, got %q", code)
	}
	if len(gw.checkouts) != 0 {
		t.Fatalf("no checkout expected")
	}
}

func TestCreateBookingRejectsUnknownLabel(t *testing.T) {
	uc := newCreate(seededRepo(), &fakeGateway{}, &recordingNotifier{})

	_, err := uc.Execute(context.Background(), bookingInput("1:00 PM"))

	var slotErr *SlotUnavailableError
	if !errors.As(err, &slotErr) || slotErr.Message != "Selected time slot is no longer available." {
		t.Fatalf("expected stale selection error, got %v", err)
	}
}

func TestCreateBookingReleasesSlotWhenCheckoutFails(t *testing.T) {
	repo := seededRepo()
	gw := &fakeGateway{checkoutErr: errors.New("stripe down")}
	uc := newCreate(repo, gw, &recordingNotifier{})

	_, err := uc.Execute(context.Background(), bookingInput("9:00 AM"))
	if !httperr.IsBusiness(err, "payment_unavailable") {
		t.Fatalf("expected payment_unavailable, got %v", err)
	}

	for _, ap := range repo.appointments {
		if ap.Status != string(domain.StatusCancelled) || ap.CancelledBy != "system" {
			t.Fatalf("expected released appointment, got %+v", ap)
		}
	}
}

func TestCreateBookingFreeServiceConfirmsImmediately(t *testing.T) {
	repo := seededRepo()
	repo.services[serviceID].Price = 0
	gw := &fakeGateway{}
	n := &recordingNotifier{}
	uc := newCreate(repo, gw, n)

	res, err := uc.Execute(context.Background(), bookingInput("9:00 AM"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Appointment.Status != string(domain.StatusConfirmed) || res.CheckoutURL != "" {
		t.Fatalf("expected confirmed without checkout, got %+v", res)
	}
	if len(gw.checkouts) != 0 || len(n.sent) != 1 {
		t.Fatalf("expected no checkout and one email, got %d / %d", len(gw.checkouts), len(n.sent))
	}
}

func TestCreateBookingInvalidDate(t *testing.T) {
	uc := newCreate(seededRepo(), &fakeGateway{}, &recordingNotifier{})

	in := bookingInput("9:00 AM")
	in.Date = "10/03/2026"
	if _, err := uc.Execute(context.Background(), in); !httperr.IsBusiness(err, "invalid_date") {
		t.Fatalf("expected invalid_date, got %v", err)
	}
}
