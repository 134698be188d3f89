package booking

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/thesuite/booking-api/internal/domain/booking"
	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/models"
)

type GetAvailability struct {
	repo domain.Repository
	now  func() time.Time
}

func NewGetAvailability(repo domain.Repository) *GetAvailability {
	return &GetAvailability{repo: repo, now: time.Now}
}

// dayPlan is everything resolved for one professional, service and day.
type dayPlan struct {
	professional *models.Professional
	service      *models.Service
	totals       domain.Totals
	day          time.Time
	hours        *models.WorkingHours
	labels       []string
	result       domain.SlotResult
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) (*domain.Availability, error) {

	plan, err := uc.plan(ctx, in, uc.now())
	if err != nil {
		return nil, err
	}

	return &domain.Availability{
		Date:          plan.day.Format("2006-01-02"),
		DurationMin:   plan.totals.DurationMin,
		RequiredSlots: plan.totals.RequiredSlots(),
		Labels:        plan.labels,
		Result:        plan.result,
	}, nil
}

func (uc *GetAvailability) plan(
	ctx context.Context,
	in domain.AvailabilityInput,
	now time.Time,
) (*dayPlan, error) {

	// --------------------------------------------------
	// Professional / service
	// --------------------------------------------------
	prof, err := uc.repo.GetProfessionalByID(ctx, in.ProfessionalID)
	if err != nil {
		return nil, httperr.ErrBusiness("professional_not_found")
	}

	svc, err := uc.repo.GetService(ctx, prof.ID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	totals, err := domain.ServiceTotals(svc, in.AddonIDs)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Day in the professional's timezone
	// --------------------------------------------------
	loc := prof.Location()
	day := time.Date(in.Date.Year(), in.Date.Month(), in.Date.Day(), 0, 0, 0, 0, loc)

	plan := &dayPlan{
		professional: prof,
		service:      svc,
		totals:       totals,
		day:          day,
		labels:       []string{},
	}

	wh, err := uc.repo.GetWorkingHours(ctx, prof.ID, int(day.Weekday()))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	plan.hours = wh

	if window, ok := domain.ResolveDay(wh, day); ok {
		busy, err := uc.repo.ListBusyIntervals(ctx, prof.ID, window.Start, window.End)
		if err != nil {
			return nil, err
		}

		earliest := now.In(loc).Add(time.Duration(prof.MinAdvanceMinutes) * time.Minute)
		plan.labels = domain.DayTimeLabels(window, busy, earliest)
	}

	// --------------------------------------------------
	// Engine
	// --------------------------------------------------
	plan.result = domain.ComputeSlots(domain.SlotInput{
		AvailableTimeSlots: plan.labels,
		SelectedDate:       &day,
		SelectedTimeSlot:   in.SelectedTime,
		RequiredSlots:      totals.RequiredSlots(),
		DurationMinutes:    totals.DurationMin,
	})

	return plan, nil
}
