package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/middleware"
	"github.com/thesuite/booking-api/internal/models"
)

type ServiceHandler struct {
	db *gorm.DB
}

func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{db: db}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description string  `json:"description" binding:"max=255"`
	DurationMin int     `json:"duration_min" binding:"required,min=5,max=720"`
	Price       float64 `json:"price" binding:"min=0"`
	Category    string  `json:"category" binding:"max=50"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name,omitempty" binding:"omitempty,max=100"`
	Description *string  `json:"description,omitempty" binding:"omitempty,max=255"`
	DurationMin *int     `json:"duration_min,omitempty" binding:"omitempty,min=5,max=720"`
	Price       *float64 `json:"price,omitempty" binding:"omitempty,min=0"`
	Category    *string  `json:"category,omitempty" binding:"omitempty,max=50"`
	Active      *bool    `json:"active,omitempty"`
}

type AddonRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	DurationMin int     `json:"duration_min" binding:"min=0,max=240"`
	Price       float64 `json:"price" binding:"min=0"`
	Active      *bool   `json:"active,omitempty"`
}

// --------- Helpers ---------

func (h *ServiceHandler) find(c *gin.Context) (*models.Service, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_service_id", "Invalid service.")
		return nil, false
	}

	var svc models.Service
	if err := h.db.
		Preload("Addons").
		Where("id = ? AND professional_id = ?", id, middleware.ProfessionalID(c)).
		First(&svc).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "service_not_found", "Service not found.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_service", "Could not load service.")
		return nil, false
	}
	return &svc, true
}

// --------- Services ---------

func (h *ServiceHandler) List(c *gin.Context) {
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	activeStr := strings.TrimSpace(c.Query("active"))
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Preload("Addons").Where("professional_id = ?", middleware.ProfessionalID(c))

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	switch activeStr {
	case "true":
		q = q.Where("active = ?", true)
	case "false":
		q = q.Where("active = ?", false)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Could not list services.")
		return
	}

	c.JSON(http.StatusOK, services)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	svc := models.Service{
		ProfessionalID: middleware.ProfessionalID(c),
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		DurationMin:    req.DurationMin,
		Price:          req.Price,
		Active:         true,
		Category:       strings.ToLower(strings.TrimSpace(req.Category)),
	}

	if err := h.db.Create(&svc).Error; err != nil {
		httperr.Internal(c, "failed_to_create_service", "Could not create service.")
		return
	}

	c.JSON(http.StatusCreated, svc)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	svc, ok := h.find(c)
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	if req.Name != nil {
		svc.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.DurationMin != nil {
		svc.DurationMin = *req.DurationMin
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.Category != nil {
		svc.Category = strings.ToLower(strings.TrimSpace(*req.Category))
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}

	if err := h.db.Omit("Addons").Save(svc).Error; err != nil {
		httperr.Internal(c, "failed_to_update_service", "Could not update service.")
		return
	}

	c.JSON(http.StatusOK, svc)
}

// Delete deactivates the service; past appointments keep referencing it.
func (h *ServiceHandler) Delete(c *gin.Context) {
	svc, ok := h.find(c)
	if !ok {
		return
	}

	if err := h.db.Model(svc).Update("active", false).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_service", "Could not delete service.")
		return
	}

	c.Status(http.StatusNoContent)
}

// --------- Add-ons ---------

func (h *ServiceHandler) CreateAddon(c *gin.Context) {
	svc, ok := h.find(c)
	if !ok {
		return
	}

	var req AddonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	addon := models.ServiceAddon{
		ServiceID:   svc.ID,
		Name:        strings.TrimSpace(req.Name),
		DurationMin: req.DurationMin,
		Price:       req.Price,
		Active:      req.Active == nil || *req.Active,
	}

	if err := h.db.Create(&addon).Error; err != nil {
		httperr.Internal(c, "failed_to_create_addon", "Could not create add-on.")
		return
	}

	c.JSON(http.StatusCreated, addon)
}

func (h *ServiceHandler) findAddon(c *gin.Context, svc *models.Service) (*models.ServiceAddon, bool) {
	addonID, ok := idParam(c, "addonId")
	if !ok {
		httperr.BadRequest(c, "invalid_addon_id", "Invalid add-on.")
		return nil, false
	}
	for i := range svc.Addons {
		if svc.Addons[i].ID == addonID {
			return &svc.Addons[i], true
		}
	}
	httperr.NotFound(c, "addon_not_found", "Add-on not found.")
	return nil, false
}

func (h *ServiceHandler) UpdateAddon(c *gin.Context) {
	svc, ok := h.find(c)
	if !ok {
		return
	}
	addon, ok := h.findAddon(c, svc)
	if !ok {
		return
	}

	var req AddonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	addon.Name = strings.TrimSpace(req.Name)
	addon.DurationMin = req.DurationMin
	addon.Price = req.Price
	if req.Active != nil {
		addon.Active = *req.Active
	}

	if err := h.db.Save(addon).Error; err != nil {
		httperr.Internal(c, "failed_to_update_addon", "Could not update add-on.")
		return
	}

	c.JSON(http.StatusOK, addon)
}

func (h *ServiceHandler) DeleteAddon(c *gin.Context) {
	svc, ok := h.find(c)
	if !ok {
		return
	}
	addon, ok := h.findAddon(c, svc)
	if !ok {
		return
	}

	if err := h.db.Delete(addon).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_addon", "Could not delete add-on.")
		return
	}

	c.Status(http.StatusNoContent)
}
