package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "github.com/thesuite/booking-api/internal/domain/booking"
	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/models"
	"github.com/thesuite/booking-api/internal/tracking"
	usecase "github.com/thesuite/booking-api/internal/usecase/booking"
	"github.com/thesuite/booking-api/internal/validators"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	db           *gorm.DB
	repo         domain.Repository
	availability *usecase.GetAvailability
	create       *usecase.CreateBooking
	quote        *usecase.QuoteCancellation
	cancel       *usecase.CancelBooking
	tracker      *tracking.Tracker
	sessions     tracking.SessionIDProvider
	log          *zap.Logger
	emailOK      func(context.Context, string) bool
}

type PublicDeps struct {
	DB           *gorm.DB
	Repo         domain.Repository
	Availability *usecase.GetAvailability
	Create       *usecase.CreateBooking
	Quote        *usecase.QuoteCancellation
	Cancel       *usecase.CancelBooking
	Tracker      *tracking.Tracker
	Sessions     tracking.SessionIDProvider
	Log          *zap.Logger
}

func NewPublicHandler(d PublicDeps) *PublicHandler {
	return &PublicHandler{
		db:           d.DB,
		repo:         d.Repo,
		availability: d.Availability,
		create:       d.Create,
		quote:        d.Quote,
		cancel:       d.Cancel,
		tracker:      d.Tracker,
		sessions:     d.Sessions,
		log:          d.Log,
		emailOK:      validators.NewEmailDomainChecker().Valid,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicCreateBookingRequest struct {
	ClientName  string `json:"client_name" binding:"required,max=100"`
	ClientPhone string `json:"client_phone" binding:"max=20"`
	ClientEmail string `json:"client_email" binding:"required,email"`
	ServiceID   uint   `json:"service_id" binding:"required"`
	AddonIDs    []uint `json:"addon_ids"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required,timelabel"`
	Notes       string `json:"notes" binding:"max=255"`
}

type PublicCancelRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type publicProfile struct {
	ID                 uint                       `json:"id"`
	Name               string                     `json:"name"`
	Slug               string                     `json:"slug"`
	Bio                string                     `json:"bio"`
	Address            string                     `json:"address"`
	Phone              string                     `json:"phone"`
	AvatarURL          string                     `json:"avatar_url"`
	Timezone           string                     `json:"timezone"`
	Currency           string                     `json:"currency"`
	CancellationPolicy *domain.CancellationPolicy `json:"cancellation_policy"`
}

////////////////////////////////////////////////////////
// PROFILE / SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) professional(c *gin.Context) (*models.Professional, bool) {
	p, err := h.repo.GetProfessionalBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httperr.NotFound(c, "professional_not_found", "Professional not found.")
		return nil, false
	}
	return p, true
}

func (h *PublicHandler) track(c *gin.Context, kind tracking.Kind, professionalID uint) {
	if !h.tracker.Enabled() {
		return
	}
	sid := h.sessions.GetOrCreate(c)
	if err := h.tracker.Track(c.Request.Context(), sid, tracking.Event{
		Kind:           kind,
		ProfessionalID: professionalID,
		At:             time.Now(),
	}); err != nil {
		h.log.Warn("tracking failed", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (h *PublicHandler) Profile(c *gin.Context) {
	p, ok := h.professional(c)
	if !ok {
		return
	}

	policy, err := domain.DecodePolicy(p.CancellationPolicy)
	if err != nil {
		h.log.Warn("stored cancellation policy is unreadable", zap.Uint("professional_id", p.ID), zap.Error(err))
	}

	h.track(c, tracking.KindProfileView, p.ID)

	c.JSON(http.StatusOK, publicProfile{
		ID:                 p.ID,
		Name:               p.Name,
		Slug:               p.Slug,
		Bio:                p.Bio,
		Address:            p.Address,
		Phone:              p.Phone,
		AvatarURL:          p.AvatarURL,
		Timezone:           p.Timezone,
		Currency:           p.Currency,
		CancellationPolicy: policy,
	})
}

func (h *PublicHandler) Services(c *gin.Context) {
	p, ok := h.professional(c)
	if !ok {
		return
	}

	category := strings.TrimSpace(strings.ToLower(c.Query("category")))

	q := h.db.
		Preload("Addons", "active = true").
		Where("professional_id = ? AND active = true", p.ID)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Could not list services.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"professional_id": p.ID,
		"services":        services,
	})
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	dateStr := c.Query("date")
	serviceIDStr := c.Query("service_id")

	if dateStr == "" || serviceIDStr == "" {
		httperr.BadRequest(c, "missing_params", "date and service_id are required.")
		return
	}

	serviceID, err := strconv.ParseUint(serviceIDStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Invalid service.")
		return
	}

	selected := strings.TrimSpace(c.Query("time"))
	if selected != "" && !validators.IsTimeLabel(selected) {
		httperr.BadRequest(c, "invalid_time", "Invalid time.")
		return
	}

	p, ok := h.professional(c)
	if !ok {
		return
	}

	date, err := parseDateFor(p, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date.")
		return
	}

	out, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{
		ProfessionalID: p.ID,
		ServiceID:      uint(serviceID),
		AddonIDs:       parseIDList(c.QueryArray("addon_ids")),
		Date:           date,
		SelectedTime:   selected,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	h.track(c, tracking.KindAvailabilityView, p.ID)

	c.JSON(http.StatusOK, out)
}

////////////////////////////////////////////////////////
// BOOKING
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateBooking(c *gin.Context) {
	var req PublicCreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	if !h.emailOK(c.Request.Context(), req.ClientEmail) {
		httperr.BadRequest(c, "invalid_email", "That email address can't receive mail.")
		return
	}

	p, ok := h.professional(c)
	if !ok {
		return
	}

	res, err := h.create.Execute(c.Request.Context(), usecase.CreateBookingInput{
		ProfessionalID: p.ID,
		ServiceID:      req.ServiceID,
		AddonIDs:       req.AddonIDs,
		Date:           req.Date,
		Time:           req.Time,
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		ClientEmail:    req.ClientEmail,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	h.track(c, tracking.KindBookingStarted, p.ID)

	c.JSON(http.StatusCreated, res)
}

func (h *PublicHandler) CancellationQuote(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_appointment_id", "Invalid appointment.")
		return
	}

	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		httperr.BadRequest(c, "missing_email", "email is required.")
		return
	}

	out, err := h.quote.Execute(c.Request.Context(), usecase.LookupInput{
		AppointmentID: id,
		ClientEmail:   email,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *PublicHandler) Cancel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_appointment_id", "Invalid appointment.")
		return
	}

	var req PublicCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	out, err := h.cancel.Execute(c.Request.Context(), usecase.LookupInput{
		AppointmentID: id,
		ClientEmail:   req.Email,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	h.track(c, tracking.KindBookingCancelled, out.Appointment.ProfessionalID)

	c.JSON(http.StatusOK, out)
}
