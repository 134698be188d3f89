package booking

import (
	"context"
	"time"

	"github.com/thesuite/booking-api/internal/models"
)

type Repository interface {
	// -------- Professional --------
	GetProfessionalByID(
		ctx context.Context,
		id uint,
	) (*models.Professional, error)

	GetProfessionalBySlug(
		ctx context.Context,
		slug string,
	) (*models.Professional, error)

	// -------- Service --------
	GetService(
		ctx context.Context,
		professionalID uint,
		serviceID uint,
	) (*models.Service, error)

	// -------- Client --------
	GetOrCreateClient(
		ctx context.Context,
		professionalID uint,
		name string,
		phone string,
		email string,
	) (*models.Client, error)

	UpdateClient(
		ctx context.Context,
		client *models.Client,
	) error

	// -------- Appointment (create / conflict) --------

	// CreateAppointment inserts ap unless it overlaps a blocking appointment,
	// in which case it returns the business error time_conflict.
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Appointment (state change) --------
	GetAppointment(
		ctx context.Context,
		appointmentID uint,
	) (*models.Appointment, error)

	GetAppointmentForProfessional(
		ctx context.Context,
		appointmentID uint,
		professionalID uint,
	) (*models.Appointment, error)

	GetAppointmentByCheckoutSession(
		ctx context.Context,
		sessionID string,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Availability --------
	GetWorkingHours(
		ctx context.Context,
		professionalID uint,
		weekday int,
	) (*models.WorkingHours, error)

	ListBusyIntervals(
		ctx context.Context,
		professionalID uint,
		start time.Time,
		end time.Time,
	) ([]Interval, error)

	ListAppointmentsForPeriod(
		ctx context.Context,
		professionalID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)
}
