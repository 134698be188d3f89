package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thesuite/booking-api/internal/audit"
	domain "github.com/thesuite/booking-api/internal/domain/booking"
	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/models"
	"github.com/thesuite/booking-api/internal/payments"
)

// CheckoutTTL is how long an unpaid booking holds its slot. Stripe does not
// accept checkout expirations shorter than 30 minutes.
const CheckoutTTL = 30 * time.Minute

// ======================================================
// INPUT / OUTPUT
// ======================================================

type CreateBookingInput struct {
	ProfessionalID uint
	ServiceID      uint
	AddonIDs       []uint

	Date string
	Time string

	ClientName  string
	ClientPhone string
	ClientEmail string
	Notes       string
}

type CreateBookingResult struct {
	Appointment *models.Appointment `json:"appointment"`
	CheckoutURL string              `json:"checkout_url,omitempty"`
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo            domain.Repository
	availability    *GetAvailability
	gateway         payments.Gateway
	audit           *audit.Dispatcher
	notifier        Notifier
	log             *zap.Logger
	defaultCurrency string
	now             func() time.Time
}

func NewCreateBooking(
	repo domain.Repository,
	gateway payments.Gateway,
	audit *audit.Dispatcher,
	notifier Notifier,
	log *zap.Logger,
	defaultCurrency string,
) *CreateBooking {
	return &CreateBooking{
		repo:            repo,
		availability:    NewGetAvailability(repo),
		gateway:         gateway,
		audit:           audit,
		notifier:        notifier,
		log:             log,
		defaultCurrency: defaultCurrency,
		now:             time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*CreateBookingResult, error) {

	if strings.TrimSpace(in.Time) == "" {
		return nil, httperr.ErrBusiness("invalid_time")
	}

	prof, err := uc.repo.GetProfessionalByID(ctx, in.ProfessionalID)
	if err != nil {
		return nil, httperr.ErrBusiness("professional_not_found")
	}

	day, err := parseDay(in.Date, prof.Location())
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 1. Same engine run the client saw
	// --------------------------------------------------
	plan, err := uc.availability.plan(ctx, domain.AvailabilityInput{
		ProfessionalID: prof.ID,
		ServiceID:      in.ServiceID,
		AddonIDs:       in.AddonIDs,
		Date:           day,
		SelectedTime:   in.Time,
	}, uc.now())
	if err != nil {
		return nil, err
	}

	status := plan.result.ValidationStatus
	idx := domain.IndexOfSlot(plan.result.TimeSlots, in.Time)
	if idx < 0 || plan.result.TimeSlots[idx].IsDisabled || !status.IsValid {
		msg := "Selected time slot is no longer available."
		if status.Message != nil && !status.IsValid {
			msg = *status.Message
		}
		return nil, &SlotUnavailableError{Message: msg}
	}

	// --------------------------------------------------
	// 2. Interval
	// --------------------------------------------------
	start := domain.LabelStart(plan.day, in.Time)
	end := start.Add(time.Duration(plan.totals.DurationMin) * time.Minute)

	if !domain.IsWithinWorkingHours(plan.hours, start, end) {
		return nil, httperr.ErrBusiness("outside_working_hours")
	}

	// --------------------------------------------------
	// 3. Client (get or create)
	// --------------------------------------------------
	client, err := uc.repo.GetOrCreateClient(
		ctx,
		prof.ID,
		strings.TrimSpace(in.ClientName),
		strings.TrimSpace(in.ClientPhone),
		in.ClientEmail,
	)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 4. Appointment (conflict checked by the repository)
	// --------------------------------------------------
	currency := prof.Currency
	if currency == "" {
		currency = uc.defaultCurrency
	}

	ap := &models.Appointment{
		ProfessionalID: prof.ID,
		ClientID:       client.ID,
		ServiceID:      plan.service.ID,
		Addons:         plan.totals.AddonSummary(),
		StartTime:      start,
		EndTime:        end,
		DurationMin:    plan.totals.DurationMin,
		Amount:         plan.totals.Amount,
		Currency:       currency,
		Status:         string(domain.InitialStatus()),
		Notes:          strings.TrimSpace(in.Notes),
	}

	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {
		return nil, err
	}
	ap.Client = *client
	ap.Service = *plan.service

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: prof.ID,
		Actor:          audit.ActorClient,
		Action:         "appointment_created",
		Entity:         "appointment",
		EntityID:       &ap.ID,
		Metadata: map[string]any{
			"start":  start,
			"amount": ap.Amount,
		},
	})

	// Free services skip checkout.
	if ap.Amount <= 0 {
		if err := uc.confirmFree(ctx, prof, ap); err != nil {
			return nil, err
		}
		return &CreateBookingResult{Appointment: ap}, nil
	}

	// --------------------------------------------------
	// 5. Checkout
	// --------------------------------------------------
	session, err := uc.gateway.CreateCheckout(ctx, payments.CheckoutRequest{
		AppointmentID:    ap.ID,
		ProfessionalName: prof.Name,
		ServiceName:      plan.service.Name,
		Amount:           ap.Amount,
		Currency:         currency,
		CustomerEmail:    client.Email,
		ExpiresAt:        uc.now().Add(CheckoutTTL),
	})
	if err != nil {
		uc.release(ctx, ap)
		return nil, fmt.Errorf("%w: %v", httperr.ErrBusiness("payment_unavailable"), err)
	}

	ap.CheckoutSessionID = session.ID
	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	return &CreateBookingResult{Appointment: ap, CheckoutURL: session.URL}, nil
}

func (uc *CreateBooking) confirmFree(ctx context.Context, prof *models.Professional, ap *models.Appointment) error {
	if err := domain.Confirm(ap, uc.now()); err != nil {
		return err
	}
	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return err
	}

	uc.notifier.Notify(notifyConfirmed(prof, ap))
	return nil
}

// release frees the slot of a booking whose checkout could not be opened.
func (uc *CreateBooking) release(ctx context.Context, ap *models.Appointment) {
	if err := domain.Cancel(ap, uc.now(), audit.ActorSystem, domain.ChargeInfo{}); err != nil {
		return
	}
	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		uc.log.Error("could not release unpaid appointment",
			zap.Uint("appointment_id", ap.ID),
			zap.Error(err),
		)
	}
}
