package booking

import (
	"context"
	"time"

	domain "github.com/thesuite/booking-api/internal/domain/booking"
	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/models"
)

// LookupInput identifies an appointment either as its professional
// (ProfessionalID set) or as the client, by the email used to book.
type LookupInput struct {
	AppointmentID  uint
	ProfessionalID uint
	ClientEmail    string
}

func (in LookupInput) byProfessional() bool {
	return in.ProfessionalID != 0
}

type CancellationPreview struct {
	Appointment *models.Appointment      `json:"appointment"`
	Quote       domain.CancellationQuote `json:"quote"`
}

type QuoteCancellation struct {
	repo domain.Repository
	now  func() time.Time
}

func NewQuoteCancellation(repo domain.Repository) *QuoteCancellation {
	return &QuoteCancellation{repo: repo, now: time.Now}
}

// Execute prices a cancellation right now so the client can confirm it.
func (uc *QuoteCancellation) Execute(
	ctx context.Context,
	in LookupInput,
) (*CancellationPreview, error) {

	ap, prof, err := loadForCancellation(ctx, uc.repo, in)
	if err != nil {
		return nil, err
	}

	quote, err := quoteFor(prof, ap, in, uc.now())
	if err != nil {
		return nil, err
	}

	return &CancellationPreview{Appointment: ap, Quote: quote}, nil
}

func loadForCancellation(
	ctx context.Context,
	repo domain.Repository,
	in LookupInput,
) (*models.Appointment, *models.Professional, error) {

	var (
		ap  *models.Appointment
		err error
	)
	if in.byProfessional() {
		ap, err = repo.GetAppointmentForProfessional(ctx, in.AppointmentID, in.ProfessionalID)
	} else {
		ap, err = repo.GetAppointment(ctx, in.AppointmentID)
		if err == nil && !sameEmail(ap.Client.Email, in.ClientEmail) {
			err = httperr.ErrBusiness("appointment_not_found")
		}
	}
	if err != nil {
		return nil, nil, httperr.ErrBusiness("appointment_not_found")
	}

	if err := domain.CanCancel(domain.Status(ap.Status)); err != nil {
		return nil, nil, err
	}

	prof, err := repo.GetProfessionalByID(ctx, ap.ProfessionalID)
	if err != nil {
		return nil, nil, err
	}

	return ap, prof, nil
}

// quoteFor evaluates the professional's policy for this cancellation.
// Professionals cancelling their own appointment are never charged, and an
// unpaid booking has no card to charge.
func quoteFor(
	prof *models.Professional,
	ap *models.Appointment,
	in LookupInput,
	now time.Time,
) (domain.CancellationQuote, error) {

	policy, err := domain.DecodePolicy(prof.CancellationPolicy)
	if err != nil {
		return domain.CancellationQuote{}, err
	}

	quote := domain.EvaluateCancellation(policy, ap.StartTime, now, ap.Amount)

	waived := in.byProfessional() || domain.Status(ap.Status) == domain.StatusPendingPayment
	if waived && quote.Outcome == domain.OutcomeCharge {
		quote.Charge.Percentage = 0
		quote.Charge.Amount = 0
		quote.Reason = "fee_waived"
	}
	if in.byProfessional() && quote.Outcome == domain.OutcomeNotCancellable {
		quote = domain.CancellationQuote{
			Outcome: domain.OutcomeCharge,
			Charge:  domain.ChargeInfo{TimeUntilAppointment: quote.Charge.TimeUntilAppointment},
			Reason:  "fee_waived",
		}
	}

	return quote, nil
}
