package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/middleware"
	"github.com/thesuite/booking-api/internal/tracking"
)

type StatsHandler struct {
	tracker *tracking.Tracker
	log     *zap.Logger
}

func NewStatsHandler(tracker *tracking.Tracker, log *zap.Logger) *StatsHandler {
	return &StatsHandler{tracker: tracker, log: log}
}

// Get returns the funnel counters for ?date (UTC day, default today).
func (h *StatsHandler) Get(c *gin.Context) {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Invalid date (use YYYY-MM-DD).")
			return
		}
		day = d
	}

	stats, err := h.tracker.Stats(c.Request.Context(), middleware.ProfessionalID(c), day)
	if err != nil {
		h.log.Error("stats failed", zap.Error(err))
		httperr.Internal(c, "failed_to_get_stats", "Could not load stats.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"enabled": h.tracker.Enabled(),
		"stats":   stats,
	})
}
