package booking

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thesuite/booking-api/internal/audit"
	domain "github.com/thesuite/booking-api/internal/domain/booking"
	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/payments"
)

var feeKeySpace = uuid.MustParse("6f1c7c1e-3b7a-4c55-9a51-2f0a3d6b8e41")

// CancellationFeeKey is the idempotency key of the fee charge for one
// appointment. It is stable so a retried cancellation never charges twice.
func CancellationFeeKey(appointmentID uint) string {
	return uuid.NewSHA1(feeKeySpace, []byte("cancellation-fee:"+strconv.FormatUint(uint64(appointmentID), 10))).String()
}

type CancelBooking struct {
	repo     domain.Repository
	gateway  payments.Gateway
	audit    *audit.Dispatcher
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewCancelBooking(
	repo domain.Repository,
	gateway payments.Gateway,
	audit *audit.Dispatcher,
	notifier Notifier,
	log *zap.Logger,
) *CancelBooking {
	return &CancelBooking{
		repo:     repo,
		gateway:  gateway,
		audit:    audit,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (uc *CancelBooking) Execute(
	ctx context.Context,
	in LookupInput,
) (*CancellationPreview, error) {

	ap, prof, err := loadForCancellation(ctx, uc.repo, in)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	quote, err := quoteFor(prof, ap, in, now)
	if err != nil {
		return nil, err
	}

	if quote.Outcome == domain.OutcomeNotCancellable {
		return nil, httperr.ErrBusiness("not_cancellable")
	}

	// --------------------------------------------------
	// Fee
	// --------------------------------------------------
	var chargeID string
	if quote.RequiresCharge() {
		res, err := uc.gateway.ChargeOffSession(ctx, payments.OffSessionCharge{
			AppointmentID:   ap.ID,
			CustomerID:      ap.Client.StripeCustomerID,
			PaymentMethodID: ap.Client.StripePaymentMethodID,
			Amount:          quote.Charge.Amount,
			Currency:        ap.Currency,
			Description:     fmt.Sprintf("Cancellation fee (%.0f%%) - %s", quote.Charge.Percentage, prof.Name),
			IdempotencyKey:  CancellationFeeKey(ap.ID),
		})
		if err != nil {
			uc.log.Warn("cancellation fee charge failed",
				zap.Uint("appointment_id", ap.ID),
				zap.Float64("amount", quote.Charge.Amount),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %v", httperr.ErrBusiness("charge_failed"), err)
		}
		chargeID = res.ID
	}

	// --------------------------------------------------
	// State
	// --------------------------------------------------
	actor := audit.ActorClient
	if in.byProfessional() {
		actor = audit.ActorProfessional
	}

	if err := domain.Cancel(ap, now, actor, quote.Charge); err != nil {
		return nil, err
	}
	ap.CancellationChargeID = chargeID

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		if chargeID != "" {
			uc.log.Error("fee charged but cancellation not saved",
				zap.Uint("appointment_id", ap.ID),
				zap.String("charge_id", chargeID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	uc.notifier.Notify(notifyCancelled(prof, ap))

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: ap.ProfessionalID,
		Actor:          actor,
		Action:         "appointment_cancelled",
		Entity:         "appointment",
		EntityID:       &ap.ID,
		Metadata: map[string]any{
			"fee":            quote.Charge.Amount,
			"fee_percentage": quote.Charge.Percentage,
			"hours_notice":   domain.RoundCurrency(quote.Charge.TimeUntilAppointment),
			"policy":         quote.HasPolicy(),
		},
	})

	return &CancellationPreview{Appointment: ap, Quote: quote}, nil
}
