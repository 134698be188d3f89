package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/thesuite/booking-api/internal/audit"
	domain "github.com/thesuite/booking-api/internal/domain/booking"
	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/models"
	"github.com/thesuite/booking-api/internal/payments"
)

// ConfirmPayment applies checkout webhooks. It is idempotent: Stripe retries a
// delivery until it gets a 2xx.
type ConfirmPayment struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewConfirmPayment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notifier Notifier,
	log *zap.Logger,
) *ConfirmPayment {
	return &ConfirmPayment{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (uc *ConfirmPayment) Execute(
	ctx context.Context,
	evt *payments.PaymentEvent,
) error {

	if evt == nil || evt.Type == payments.EventIgnored {
		return nil
	}

	ap, err := uc.lookup(ctx, evt)
	if err != nil {
		if !appointmentMissing(err) {
			return fmt.Errorf("load appointment for %s: %w", evt.ID, err)
		}
		uc.log.Warn("webhook for unknown appointment",
			zap.String("event_id", evt.ID),
			zap.String("session_id", evt.SessionID),
		)
		return nil
	}

	prof, err := uc.repo.GetProfessionalByID(ctx, ap.ProfessionalID)
	if err != nil {
		return err
	}

	switch evt.Type {
	case payments.EventCheckoutCompleted:
		return uc.completed(ctx, prof, ap, evt)
	case payments.EventCheckoutExpired:
		return uc.expired(ctx, ap)
	}
	return nil
}

func (uc *ConfirmPayment) lookup(ctx context.Context, evt *payments.PaymentEvent) (*models.Appointment, error) {
	if evt.SessionID != "" {
		ap, err := uc.repo.GetAppointmentByCheckoutSession(ctx, evt.SessionID)
		if err == nil {
			return ap, nil
		}
		if !appointmentMissing(err) {
			return nil, err
		}
	}
	if evt.AppointmentID == 0 {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	return uc.repo.GetAppointment(ctx, evt.AppointmentID)
}

// appointmentMissing separates a lookup miss, which is acknowledged, from
// infrastructure errors, which must fail the delivery so Stripe retries.
func appointmentMissing(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || httperr.IsBusiness(err, "appointment_not_found")
}

func (uc *ConfirmPayment) completed(
	ctx context.Context,
	prof *models.Professional,
	ap *models.Appointment,
	evt *payments.PaymentEvent,
) error {

	if domain.Status(ap.Status) != domain.StatusPendingPayment {
		// duplicate delivery, or paid after the hold expired
		if domain.Status(ap.Status) != domain.StatusConfirmed {
			uc.log.Warn("payment received for inactive appointment",
				zap.Uint("appointment_id", ap.ID),
				zap.String("status", ap.Status),
				zap.String("payment_intent_id", evt.PaymentIntentID),
			)
		}
		return nil
	}

	if err := domain.Confirm(ap, uc.now()); err != nil {
		return err
	}
	ap.PaymentIntentID = evt.PaymentIntentID
	if ap.CheckoutSessionID == "" {
		ap.CheckoutSessionID = evt.SessionID
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return err
	}

	// --------------------------------------------------
	// Saved card for cancellation fees
	// --------------------------------------------------
	if evt.CustomerID != "" || evt.PaymentMethodID != "" {
		client := ap.Client
		if evt.CustomerID != "" {
			client.StripeCustomerID = evt.CustomerID
		}
		if evt.PaymentMethodID != "" {
			client.StripePaymentMethodID = evt.PaymentMethodID
		}
		if err := uc.repo.UpdateClient(ctx, &client); err != nil {
			uc.log.Error("could not store payment method",
				zap.Uint("client_id", client.ID),
				zap.Error(err),
			)
		} else {
			ap.Client = client
		}
	}

	uc.notifier.Notify(notifyConfirmed(prof, ap))

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: ap.ProfessionalID,
		Actor:          audit.ActorSystem,
		Action:         "appointment_confirmed",
		Entity:         "appointment",
		EntityID:       &ap.ID,
		Metadata: map[string]any{
			"payment_intent_id": evt.PaymentIntentID,
		},
	})

	return nil
}

func (uc *ConfirmPayment) expired(ctx context.Context, ap *models.Appointment) error {
	if domain.Status(ap.Status) != domain.StatusPendingPayment {
		return nil
	}

	if err := domain.Cancel(ap, uc.now(), audit.ActorSystem, domain.ChargeInfo{}); err != nil {
		return err
	}
	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: ap.ProfessionalID,
		Actor:          audit.ActorSystem,
		Action:         "appointment_expired",
		Entity:         "appointment",
		EntityID:       &ap.ID,
	})
	return nil
}
