package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/thesuite/booking-api/internal/audit"
	domain "github.com/thesuite/booking-api/internal/domain/booking"
	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/media"
	"github.com/thesuite/booking-api/internal/middleware"
	"github.com/thesuite/booking-api/internal/models"
	"github.com/thesuite/booking-api/internal/timezone"
)

type ProfessionalHandler struct {
	db       *gorm.DB
	uploader *media.Uploader
	audit    *audit.Dispatcher
	currency string
	log      *zap.Logger
}

func NewProfessionalHandler(
	db *gorm.DB,
	uploader *media.Uploader,
	audit *audit.Dispatcher,
	currency string,
	log *zap.Logger,
) *ProfessionalHandler {
	return &ProfessionalHandler{
		db:       db,
		uploader: uploader,
		audit:    audit,
		currency: currency,
		log:      log,
	}
}

// --------- Requests ---------

type OnboardRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Slug     string `json:"slug" binding:"required,slug"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone" binding:"max=20"`
	Timezone string `json:"timezone"`
}

type UpdateProfileRequest struct {
	Name              *string `json:"name,omitempty" binding:"omitempty,max=100"`
	Email             *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone             *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Address           *string `json:"address,omitempty" binding:"omitempty,max=255"`
	Bio               *string `json:"bio,omitempty"`
	Timezone          *string `json:"timezone,omitempty"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes,omitempty"`
}

type PolicyRequest struct {
	Rules []domain.CancellationPolicyRule `json:"rules"`
}

// --------- Helpers ---------

func (h *ProfessionalHandler) load(c *gin.Context) (*models.Professional, bool) {
	var p models.Professional
	if err := h.db.First(&p, middleware.ProfessionalID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "professional_not_found", "Profile not found.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_professional", "Could not load profile.")
		return nil, false
	}
	return &p, true
}

// --------- Handlers ---------

// Me returns the caller and their profile, which is null before onboarding.
func (h *ProfessionalHandler) Me(c *gin.Context) {
	out := gin.H{
		"auth_user_id": middleware.AuthUserID(c),
		"professional": nil,
	}

	if id := middleware.ProfessionalID(c); id != 0 {
		var p models.Professional
		if err := h.db.First(&p, id).Error; err == nil {
			out["professional"] = p
		}
	}

	c.JSON(http.StatusOK, out)
}

func (h *ProfessionalHandler) Onboard(c *gin.Context) {
	if middleware.ProfessionalID(c) != 0 {
		httperr.Conflict(c, "already_onboarded", "Profile already exists.")
		return
	}

	var req OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = timezone.DefaultTimezone
	}
	if !timezone.IsValid(tz) {
		httperr.BadRequest(c, "invalid_timezone", "Unknown timezone.")
		return
	}

	p := models.Professional{
		AuthUserID:        middleware.AuthUserID(c),
		Name:              strings.TrimSpace(req.Name),
		Slug:              req.Slug,
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:             req.Phone,
		Timezone:          tz,
		MinAdvanceMinutes: 120,
		Currency:          h.currency,
	}

	if err := h.db.Create(&p).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.Conflict(c, "slug_taken", "That link is already taken.")
			return
		}
		httperr.Internal(c, "failed_to_create_professional", "Could not create profile.")
		return
	}

	h.audit.Dispatch(audit.Event{
		ProfessionalID: p.ID,
		Actor:          audit.ActorProfessional,
		Action:         "professional_onboarded",
		Entity:         "professional",
		EntityID:       &p.ID,
	})

	c.JSON(http.StatusCreated, p)
}

func (h *ProfessionalHandler) GetProfile(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfessionalHandler) UpdateProfile(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		p.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Unknown timezone.")
			return
		}
		p.Timezone = *req.Timezone
	}
	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_advance", "Minimum notice must be zero or more minutes.")
			return
		}
		p.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if err := h.db.Save(p).Error; err != nil {
		httperr.Internal(c, "failed_to_update_professional", "Could not save profile.")
		return
	}

	c.JSON(http.StatusOK, p)
}

// --------- Cancellation policy ---------

func (h *ProfessionalHandler) GetPolicy(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}

	policy, err := domain.DecodePolicy(p.CancellationPolicy)
	if err != nil {
		h.log.Warn("stored cancellation policy is unreadable", zap.Uint("professional_id", p.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"policy": policy})
}

// PutPolicy replaces the policy. An empty rule list removes it.
func (h *ProfessionalHandler) PutPolicy(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}

	var req PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	policy := &domain.CancellationPolicy{Rules: req.Rules}
	if err := policy.Validate(); err != nil {
		httperr.BadRequest(c, "invalid_policy", err.Error())
		return
	}

	raw, err := domain.EncodePolicy(policy)
	if err != nil {
		httperr.Internal(c, "failed_to_encode_policy", "Could not save policy.")
		return
	}

	if err := h.db.Model(p).Update("cancellation_policy", raw).Error; err != nil {
		httperr.Internal(c, "failed_to_save_policy", "Could not save policy.")
		return
	}

	h.audit.Dispatch(audit.Event{
		ProfessionalID: p.ID,
		Actor:          audit.ActorProfessional,
		Action:         "cancellation_policy_updated",
		Entity:         "professional",
		EntityID:       &p.ID,
		Metadata:       req.Rules,
	})

	stored, _ := domain.DecodePolicy(raw)
	c.JSON(http.StatusOK, gin.H{"policy": stored})
}

// --------- Avatar ---------

func (h *ProfessionalHandler) UploadAvatar(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		httperr.BadRequest(c, "missing_file", "Attach the image as \"file\".")
		return
	}
	if fh.Size > media.MaxUploadBytes {
		writeError(c, h.log, httperr.ErrBusiness("image_too_large"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_file", "Could not read upload.")
		return
	}
	defer f.Close()

	url, err := h.uploader.UploadAvatar(c.Request.Context(), p.ID, f)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	if err := h.db.Model(p).Update("avatar_url", url).Error; err != nil {
		httperr.Internal(c, "failed_to_save_avatar", "Could not save avatar.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}
