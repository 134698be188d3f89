package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/httpresp"
	"github.com/thesuite/booking-api/internal/middleware"
	"github.com/thesuite/booking-api/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

type auditFilter struct {
	action, entity, actor string
	entityID              uint
	from, to              *time.Time
	page, limit           int
}

func parseAuditFilter(c *gin.Context) auditFilter {
	f := auditFilter{
		action: c.Query("action"),
		entity: c.Query("entity"),
		actor:  c.Query("actor"),
	}

	if n, err := strconv.ParseUint(c.Query("entity_id"), 10, 64); err == nil {
		f.entityID = uint(n)
	}
	if from, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		f.from = &from
	}
	if to, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		end := to.AddDate(0, 0, 1)
		f.to = &end
	}

	f.page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if f.page <= 0 {
		f.page = 1
	}
	f.limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if f.limit <= 0 || f.limit > 200 {
		f.limit = 50
	}
	return f
}

func (f auditFilter) apply(q *gorm.DB) *gorm.DB {
	if f.action != "" {
		q = q.Where("action = ?", f.action)
	}
	if f.entity != "" {
		q = q.Where("entity = ?", f.entity)
	}
	if f.entityID != 0 {
		q = q.Where("entity_id = ?", f.entityID)
	}
	if f.actor != "" {
		q = q.Where("actor = ?", f.actor)
	}
	if f.from != nil {
		q = q.Where("created_at >= ?", *f.from)
	}
	if f.to != nil {
		q = q.Where("created_at < ?", *f.to)
	}
	return q
}

// List pages through the caller's audit trail, newest first.
func (h *AuditLogsHandler) List(c *gin.Context) {
	f := parseAuditFilter(c)

	scoped := func() *gorm.DB {
		return f.apply(h.db.
			Model(&models.AuditLog{}).
			Where("professional_id = ?", middleware.ProfessionalID(c)))
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Could not count audit logs.")
		return
	}

	var logs []models.AuditLog
	if err := scoped().
		Order("created_at DESC").
		Limit(f.limit).
		Offset((f.page - 1) * f.limit).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "audit_list_failed", "Could not list audit logs.")
		return
	}

	httpresp.Page(c, logs, f.page, f.limit, total)
}
