package booking

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	domain "github.com/thesuite/booking-api/internal/domain/booking"
	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/models"
	"github.com/thesuite/booking-api/internal/notify"
	"github.com/thesuite/booking-api/internal/payments"
)

// ======================================================
// Repository
// ======================================================

type memRepo struct {
	professionals map[uint]*models.Professional
	services      map[uint]*models.Service
	clients       map[uint]*models.Client
	appointments  map[uint]*models.Appointment
	hours         map[uint]map[int]*models.WorkingHours
	nextID        uint
}

func newMemRepo() *memRepo {
	return &memRepo{
		professionals: map[uint]*models.Professional{},
		services:      map[uint]*models.Service{},
		clients:       map[uint]*models.Client{},
		appointments:  map[uint]*models.Appointment{},
		hours:         map[uint]map[int]*models.WorkingHours{},
		nextID:        100,
	}
}

func (r *memRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *memRepo) GetProfessionalByID(_ context.Context, id uint) (*models.Professional, error) {
	p, ok := r.professionals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) GetProfessionalBySlug(_ context.Context, slug string) (*models.Professional, error) {
	for _, p := range r.professionals {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) GetService(_ context.Context, professionalID, serviceID uint) (*models.Service, error) {
	s, ok := r.services[serviceID]
	if !ok || s.ProfessionalID != professionalID || !s.Active {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memRepo) GetOrCreateClient(_ context.Context, professionalID uint, name, phone, email string) (*models.Client, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, c := range r.clients {
		if c.ProfessionalID == professionalID && c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	c := &models.Client{ID: r.id(), ProfessionalID: professionalID, Name: name, Phone: phone, Email: email}
	r.clients[c.ID] = c
	cp := *c
	return &cp, nil
}

func (r *memRepo) UpdateClient(_ context.Context, c *models.Client) error {
	cp := *c
	r.clients[c.ID] = &cp
	return nil
}

func (r *memRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	for _, other := range r.appointments {
		if other.ProfessionalID == ap.ProfessionalID &&
			domain.Status(other.Status).Blocking() &&
			other.StartTime.Before(ap.EndTime) && ap.StartTime.Before(other.EndTime) {
			return httperr.ErrBusiness("time_conflict")
		}
	}
	ap.ID = r.id()
	cp := *ap
	r.appointments[ap.ID] = &cp
	return nil
}

func (r *memRepo) load(ap *models.Appointment) *models.Appointment {
	cp := *ap
	if c, ok := r.clients[cp.ClientID]; ok {
		cp.Client = *c
	}
	if s, ok := r.services[cp.ServiceID]; ok {
		cp.Service = *s
	}
	return &cp
}

func (r *memRepo) GetAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	ap, ok := r.appointments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.load(ap), nil
}

func (r *memRepo) GetAppointmentForProfessional(_ context.Context, id, professionalID uint) (*models.Appointment, error) {
	ap, ok := r.appointments[id]
	if !ok || ap.ProfessionalID != professionalID {
		return nil, gorm.ErrRecordNotFound
	}
	return r.load(ap), nil
}

func (r *memRepo) GetAppointmentByCheckoutSession(_ context.Context, sessionID string) (*models.Appointment, error) {
	for _, ap := range r.appointments {
		if ap.CheckoutSessionID == sessionID {
			return r.load(ap), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	if _, ok := r.appointments[ap.ID]; !ok {
		return errors.New("missing appointment")
	}
	cp := *ap
	cp.Client = models.Client{}
	cp.Service = models.Service{}
	r.appointments[ap.ID] = &cp
	return nil
}

func (r *memRepo) GetWorkingHours(_ context.Context, professionalID uint, weekday int) (*models.WorkingHours, error) {
	wh, ok := r.hours[professionalID][weekday]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return wh, nil
}

func (r *memRepo) ListBusyIntervals(_ context.Context, professionalID uint, start, end time.Time) ([]domain.Interval, error) {
	var out []domain.Interval
	for _, ap := range r.appointments {
		if ap.ProfessionalID == professionalID &&
			domain.Status(ap.Status).Blocking() &&
			ap.StartTime.Before(end) && ap.EndTime.After(start) {
			out = append(out, domain.Interval{Start: ap.StartTime, End: ap.EndTime})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (r *memRepo) ListAppointmentsForPeriod(_ context.Context, professionalID uint, start, end time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.ProfessionalID == professionalID && !ap.StartTime.Before(start) && ap.StartTime.Before(end) {
			out = append(out, *r.load(ap))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

var _ domain.Repository = (*memRepo)(nil)

// downRepo fails appointment lookups the way a lost database connection does.
type downRepo struct {
	*memRepo
	err error
}

func (r *downRepo) GetAppointment(context.Context, uint) (*models.Appointment, error) {
	return nil, r.err
}

func (r *downRepo) GetAppointmentByCheckoutSession(context.Context, string) (*models.Appointment, error) {
	return nil, r.err
}

// ======================================================
// Gateway / notifier
// ======================================================

type fakeGateway struct {
	checkoutErr error
	chargeErr   error
	checkouts   []payments.CheckoutRequest
	charges     []payments.OffSessionCharge
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	g.checkouts = append(g.checkouts, req)
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	return &payments.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}, nil
}

func (g *fakeGateway) ChargeOffSession(_ context.Context, req payments.OffSessionCharge) (*payments.ChargeResult, error) {
	g.charges = append(g.charges, req)
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	return &payments.ChargeResult{ID: "pi_fee_1", Status: "succeeded"}, nil
}

func (g *fakeGateway) ParseWebhook(context.Context, []byte, string) (*payments.PaymentEvent, error) {
	return nil, errors.New("not used")
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (n *recordingNotifier) Notify(msg notify.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

// ======================================================
// Fixture
// ======================================================

const (
	profID    uint = 1
	serviceID uint = 10
	addonID   uint = 11
)

// 2026-03-10 is a Tuesday.
var fixtureDay = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func fixtureNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func seededRepo() *memRepo {
	r := newMemRepo()
	r.professionals[profID] = &models.Professional{
		ID:       profID,
		Name:     "Studio Rose",
		Slug:     "studio-rose",
		Timezone: "UTC",
		Currency: "usd",
	}
	r.services[serviceID] = &models.Service{
		ID:             serviceID,
		ProfessionalID: profID,
		Name:           "Gel manicure",
		DurationMin:    60,
		Price:          80,
		Active:         true,
		Addons: []models.ServiceAddon{
			{ID: addonID, ServiceID: serviceID, Name: "Nail art", DurationMin: 15, Price: 12.5, Active: true},
		},
	}
	r.hours[profID] = map[int]*models.WorkingHours{
		int(time.Tuesday): {
			ProfessionalID: profID,
			Weekday:        int(time.Tuesday),
			StartTime:      "09:00",
			EndTime:        "12:00",
			Active:         true,
		},
	}
	return r
}

func seedAppointment(r *memRepo, status domain.Status, start time.Time, amount float64) *models.Appointment {
	c := &models.Client{
		ID:                    r.id(),
		ProfessionalID:        profID,
		Name:                  "Ana",
		Email:                 "ana@example.com",
		StripeCustomerID:      "cus_1",
		StripePaymentMethodID: "pm_1",
	}
	r.clients[c.ID] = c

	ap := &models.Appointment{
		ID:             r.id(),
		ProfessionalID: profID,
		ClientID:       c.ID,
		ServiceID:      serviceID,
		StartTime:      start,
		EndTime:        start.Add(time.Hour),
		DurationMin:    60,
		Amount:         amount,
		Currency:       "usd",
		Status:         string(status),
	}
	r.appointments[ap.ID] = ap
	return ap
}

func fixed(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
