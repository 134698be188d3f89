package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/thesuite/booking-api/internal/domain/booking"
	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/httpresp"
	"github.com/thesuite/booking-api/internal/middleware"
	"github.com/thesuite/booking-api/internal/models"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

type clientSummary struct {
	models.Client
	Visits        int64   `json:"visits"`
	Cancellations int64   `json:"cancellations"`
	FeesCharged   float64 `json:"fees_charged"`
	HasCard       bool    `json:"has_saved_card"`
}

// List searches by name, phone or email.
func (h *ClientHandler) List(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Where("professional_id = ?", middleware.ProfessionalID(c))
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var clients []models.Client
	if err := q.Order("name ASC").Find(&clients).Error; err != nil {
		httperr.Internal(c, "failed_to_list_clients", "Could not list clients.")
		return
	}

	httpresp.List(c, clients)
}

// Get returns one client with totals and their booking history.
func (h *ClientHandler) Get(c *gin.Context) {
	professionalID := middleware.ProfessionalID(c)

	id, ok := idParam(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_client_id", "Invalid client.")
		return
	}

	var client models.Client
	if err := h.db.
		Where("id = ? AND professional_id = ?", id, professionalID).
		First(&client).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "client_not_found", "Client not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_client", "Could not load client.")
		return
	}

	var history []models.Appointment
	if err := h.db.
		Preload("Service").
		Where("client_id = ? AND professional_id = ?", client.ID, professionalID).
		Order("start_time DESC").
		Limit(100).
		Find(&history).Error; err != nil {

		httperr.Internal(c, "failed_to_get_client", "Could not load client history.")
		return
	}

	summary := clientSummary{
		Client:  client,
		HasCard: client.StripePaymentMethodID != "",
	}
	for _, ap := range history {
		switch ap.Status {
		case string(domain.StatusCompleted):
			summary.Visits++
		case string(domain.StatusCancelled):
			summary.Cancellations++
			summary.FeesCharged += ap.CancellationFee
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"client":  summary,
		"history": history,
	})
}
