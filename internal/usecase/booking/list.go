package booking

import (
	"context"
	"strings"
	"time"

	domain "github.com/thesuite/booking-api/internal/domain/booking"
	"github.com/thesuite/booking-api/internal/dto"
	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/models"
)

type ListByDate struct {
	repo domain.Repository
}

func NewListByDate(repo domain.Repository) *ListByDate {
	return &ListByDate{repo: repo}
}

// Execute lists the appointments starting on date (YYYY-MM-DD) in the
// professional's timezone.
func (uc *ListByDate) Execute(
	ctx context.Context,
	professionalID uint,
	date string,
) ([]dto.AppointmentListDTO, error) {

	prof, err := uc.repo.GetProfessionalByID(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	start, err := parseDay(date, prof.Location())
	if err != nil {
		return nil, err
	}

	return listPeriod(ctx, uc.repo, prof, start, start.AddDate(0, 0, 1))
}

type ListByMonth struct {
	repo domain.Repository
}

func NewListByMonth(repo domain.Repository) *ListByMonth {
	return &ListByMonth{repo: repo}
}

func (uc *ListByMonth) Execute(
	ctx context.Context,
	professionalID uint,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if month < 1 || month > 12 {
		return nil, httperr.ErrBusiness("invalid_month")
	}

	prof, err := uc.repo.GetProfessionalByID(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, prof.Location())
	return listPeriod(ctx, uc.repo, prof, start, start.AddDate(0, 1, 0))
}

func listPeriod(
	ctx context.Context,
	repo domain.Repository,
	prof *models.Professional,
	start time.Time,
	end time.Time,
) ([]dto.AppointmentListDTO, error) {

	appointments, err := repo.ListAppointmentsForPeriod(ctx, prof.ID, start, end)
	if err != nil {
		return nil, err
	}

	loc := prof.Location()
	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, dto.AppointmentListDTO{
			ID:              ap.ID,
			StartTime:       ap.StartTime.In(loc),
			EndTime:         ap.EndTime.In(loc),
			DurationMin:     ap.DurationMin,
			Status:          ap.Status,
			ClientName:      ap.Client.Name,
			ClientEmail:     ap.Client.Email,
			ClientPhone:     ap.Client.Phone,
			ServiceName:     ap.Service.Name,
			Addons:          splitAddons(ap.Addons),
			Amount:          ap.Amount,
			Currency:        ap.Currency,
			Paid:            ap.PaidAt != nil,
			CancellationFee: ap.CancellationFee,
			CancelledBy:     ap.CancelledBy,
		})
	}

	return out, nil
}

func splitAddons(summary string) []string {
	out := []string{}
	for _, name := range strings.Split(summary, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
