package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/payments"
	usecase "github.com/thesuite/booking-api/internal/usecase/booking"
)

const maxWebhookBytes = 1 << 18

type WebhookHandler struct {
	gateway payments.Gateway
	confirm *usecase.ConfirmPayment
	log     *zap.Logger
}

func NewWebhookHandler(gateway payments.Gateway, confirm *usecase.ConfirmPayment, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{gateway: gateway, confirm: confirm, log: log}
}

// Stripe verifies the signature and applies checkout events. A non-2xx
// answer makes Stripe redeliver.
func (h *WebhookHandler) Stripe(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes+1))
	if err != nil {
		httperr.BadRequest(c, "invalid_body", "Could not read body.")
		return
	}
	if len(body) > maxWebhookBytes {
		h.log.Warn("stripe webhook too large", zap.Int("limit", maxWebhookBytes))
		httperr.Write(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Webhook payload too large.")
		return
	}

	evt, err := h.gateway.ParseWebhook(c.Request.Context(), body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.log.Warn("rejected stripe webhook", zap.Error(err))
		httperr.BadRequest(c, "invalid_signature", "Invalid webhook.")
		return
	}

	if err := h.confirm.Execute(c.Request.Context(), evt); err != nil {
		h.log.Error("stripe webhook processing failed",
			zap.String("event_id", evt.ID),
			zap.String("type", string(evt.Type)),
			zap.Error(err),
		)
		httperr.Internal(c, "webhook_failed", "Webhook processing failed.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
