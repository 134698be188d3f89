package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thesuite/booking-api/internal/dto"
	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/httpresp"
	"github.com/thesuite/booking-api/internal/middleware"
	usecase "github.com/thesuite/booking-api/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	listByDate  *usecase.ListByDate
	listByMonth *usecase.ListByMonth
	quote       *usecase.QuoteCancellation
	cancel      *usecase.CancelBooking
	complete    *usecase.CompleteBooking
	log         *zap.Logger
}

func NewAppointmentHandler(
	listByDate *usecase.ListByDate,
	listByMonth *usecase.ListByMonth,
	quote *usecase.QuoteCancellation,
	cancel *usecase.CancelBooking,
	complete *usecase.CompleteBooking,
	log *zap.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		listByDate:  listByDate,
		listByMonth: listByMonth,
		quote:       quote,
		cancel:      cancel,
		complete:    complete,
		log:         log,
	}
}

// ======================================================
// LIST
// ======================================================

// List serves ?date=YYYY-MM-DD or ?year=&month=.
func (h *AppointmentHandler) List(c *gin.Context) {
	professionalID := middleware.ProfessionalID(c)

	if dateStr := c.Query("date"); dateStr != "" {
		out, err := h.listByDate.Execute(c.Request.Context(), professionalID, dateStr)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		httpresp.List(c, out)
		return
	}

	yearStr := c.Query("year")
	monthStr := c.Query("month")
	if yearStr == "" || monthStr == "" {
		httperr.BadRequest(c, "missing_date", "Pass date, or year and month.")
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Invalid year.")
		return
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_month", "Invalid month.")
		return
	}

	out, err := h.listByMonth.Execute(c.Request.Context(), professionalID, year, month)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if c.Query("group") == "day" {
		httpresp.List(c, dto.GroupByDay(out))
		return
	}
	httpresp.List(c, out)
}

// ======================================================
// STATE CHANGES
// ======================================================

func (h *AppointmentHandler) lookup(c *gin.Context) (usecase.LookupInput, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_appointment_id", "Invalid appointment.")
		return usecase.LookupInput{}, false
	}
	return usecase.LookupInput{
		AppointmentID:  id,
		ProfessionalID: middleware.ProfessionalID(c),
	}, true
}

func (h *AppointmentHandler) CancellationQuote(c *gin.Context) {
	in, ok := h.lookup(c)
	if !ok {
		return
	}

	out, err := h.quote.Execute(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	in, ok := h.lookup(c)
	if !ok {
		return
	}

	out, err := h.cancel.Execute(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	in, ok := h.lookup(c)
	if !ok {
		return
	}

	ap, err := h.complete.Execute(c.Request.Context(), in.ProfessionalID, in.AppointmentID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ap)
}
