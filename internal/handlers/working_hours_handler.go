package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/middleware"
	"github.com/thesuite/booking-api/internal/models"
)

type WorkingHoursHandler struct {
	db *gorm.DB
}

func NewWorkingHoursHandler(db *gorm.DB) *WorkingHoursHandler {
	return &WorkingHoursHandler{db: db}
}

type WorkingDayConfig struct {
	Weekday    *int   `json:"weekday" binding:"required,min=0,max=6"`
	Active     bool   `json:"active"`
	StartTime  string `json:"start_time" binding:"required_if=Active true,omitempty,clock"`
	EndTime    string `json:"end_time" binding:"required_if=Active true,omitempty,clock"`
	BreakStart string `json:"break_start" binding:"omitempty,clock"`
	BreakEnd   string `json:"break_end" binding:"omitempty,clock"`
}

type WorkingHoursUpdateRequest struct {
	Days []WorkingDayConfig `json:"days" binding:"required,max=7,dive"`
}

// validDay checks ordering; the format is already checked by binding.
func validDay(d WorkingDayConfig) bool {
	if !d.Active {
		return true
	}
	if d.StartTime >= d.EndTime {
		return false
	}
	if (d.BreakStart == "") != (d.BreakEnd == "") {
		return false
	}
	if d.BreakStart != "" {
		return d.StartTime <= d.BreakStart && d.BreakStart < d.BreakEnd && d.BreakEnd <= d.EndTime
	}
	return true
}

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	var hours []models.WorkingHours
	if err := h.db.
		Where("professional_id = ?", middleware.ProfessionalID(c)).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {

		httperr.Internal(c, "failed_to_get_working_hours", "Could not load working hours.")
		return
	}

	c.JSON(http.StatusOK, hours)
}

// Update replaces the whole week.
func (h *WorkingHoursHandler) Update(c *gin.Context) {
	professionalID := middleware.ProfessionalID(c)

	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	seen := map[int]bool{}
	toCreate := make([]models.WorkingHours, 0, len(req.Days))
	for _, d := range req.Days {
		if seen[*d.Weekday] {
			httperr.BadRequest(c, "duplicate_weekday", "Each weekday can appear once.")
			return
		}
		seen[*d.Weekday] = true

		if !validDay(d) {
			httperr.BadRequest(c, "invalid_working_hours", "Start must be before end and the break inside the day.")
			return
		}

		toCreate = append(toCreate, models.WorkingHours{
			ProfessionalID: professionalID,
			Weekday:        *d.Weekday,
			Active:         d.Active,
			StartTime:      d.StartTime,
			EndTime:        d.EndTime,
			BreakStart:     d.BreakStart,
			BreakEnd:       d.BreakEnd,
		})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("professional_id = ?", professionalID).Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}
		if len(toCreate) == 0 {
			return nil
		}
		return tx.Create(&toCreate).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_save_working_hours", "Could not save working hours.")
		return
	}

	c.JSON(http.StatusOK, toCreate)
}
