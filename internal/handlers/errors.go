package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thesuite/booking-api/internal/httperr"
	usecase "github.com/thesuite/booking-api/internal/usecase/booking"
)

type businessMapping struct {
	status  int
	message string
}

var businessErrors = map[string]businessMapping{
	"professional_not_found": {http.StatusNotFound, "Professional not found."},
	"service_not_found":      {http.StatusNotFound, "Service not found."},
	"addon_not_found":        {http.StatusBadRequest, "One of the selected add-ons is not available."},
	"appointment_not_found":  {http.StatusNotFound, "Appointment not found."},
	"invalid_date":           {http.StatusBadRequest, "Invalid date."},
	"invalid_time":           {http.StatusBadRequest, "Invalid time."},
	"invalid_month":          {http.StatusBadRequest, "Invalid month."},
	"outside_working_hours":  {http.StatusBadRequest, "Outside working hours."},
	"slot_unavailable":       {http.StatusConflict, "Selected time slot is no longer available."},
	"time_conflict":          {http.StatusConflict, "That time was just booked."},
	"invalid_state":          {http.StatusConflict, "The appointment can't change to that state."},
	"not_cancellable":        {http.StatusUnprocessableEntity, "This appointment can no longer be cancelled."},
	"charge_failed":          {http.StatusPaymentRequired, "The cancellation fee could not be charged."},
	"payment_unavailable":    {http.StatusServiceUnavailable, "Payments are unavailable right now."},
	"image_too_large":        {http.StatusRequestEntityTooLarge, "Image is too large."},
	"unsupported_image":      {http.StatusUnsupportedMediaType, "Only JPEG and PNG images are supported."},
	"invalid_image":          {http.StatusBadRequest, "Invalid image."},
	"uploads_disabled":       {http.StatusServiceUnavailable, "Uploads are not configured."},
}

// writeError maps use case errors. Unknown errors are logged and hidden.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	var slotErr *usecase.SlotUnavailableError
	if errors.As(err, &slotErr) {
		httperr.Conflict(c, "slot_unavailable", slotErr.Message)
		return
	}

	if code, ok := httperr.BusinessCode(err); ok {
		if m, known := businessErrors[code]; known {
			httperr.Write(c, m.status, code, m.message)
			return
		}
		httperr.BadRequest(c, code, code)
		return
	}

	log.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	httperr.Internal(c, "internal_error", "Something went wrong.")
}
