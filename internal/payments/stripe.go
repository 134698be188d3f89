package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/thesuite/booking-api/internal/domain/booking"
)

const webhookTolerance = 5 * time.Minute

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type StripeGateway struct {
	api    *client.API
	cfg    StripeConfig
	logger *zap.Logger
}

func NewStripeGateway(cfg StripeConfig, logger *zap.Logger) *StripeGateway {
	g := &StripeGateway{cfg: cfg, logger: logger}
	if strings.TrimSpace(cfg.SecretKey) != "" {
		g.api = client.New(cfg.SecretKey, nil)
	}
	return g
}

// CreateCheckout opens a hosted checkout page for the booking and asks Stripe
// to keep the card for later off-session charges.
func (g *StripeGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}

	ref := strconv.FormatUint(uint64(req.AppointmentID), 10)
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
		ClientReferenceID: stripe.String(ref),
		CustomerEmail:     stripe.String(req.CustomerEmail),
		CustomerCreation:  stripe.String(string(stripe.CheckoutSessionCustomerCreationAlways)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(booking.MinorUnits(req.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.ServiceName),
						Description: stripe.String("with " + req.ProfessionalName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			SetupFutureUsage: stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession)),
		},
	}
	if !req.ExpiresAt.IsZero() {
		params.ExpiresAt = stripe.Int64(req.ExpiresAt.Unix())
	}
	params.Context = ctx
	params.AddMetadata("appointment_id", ref)

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout: %w", err)
	}

	g.logger.Info("checkout session created",
		zap.Uint("appointment_id", req.AppointmentID),
		zap.String("session_id", s.ID),
	)
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// ChargeOffSession creates and confirms a PaymentIntent against the saved
// card. Transient failures are retried under the same idempotency key.
func (g *StripeGateway) ChargeOffSession(ctx context.Context, req OffSessionCharge) (*ChargeResult, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}
	if req.CustomerID == "" || req.PaymentMethodID == "" {
		return nil, errors.New("stripe charge: no saved payment method")
	}

	op := func() (*stripe.PaymentIntent, error) {
		params := &stripe.PaymentIntentParams{
			Amount:        stripe.Int64(booking.MinorUnits(req.Amount)),
			Currency:      stripe.String(req.Currency),
			Customer:      stripe.String(req.CustomerID),
			PaymentMethod: stripe.String(req.PaymentMethodID),
			Description:   stripe.String(req.Description),
			OffSession:    stripe.Bool(true),
			Confirm:       stripe.Bool(true),
		}
		params.Context = ctx
		params.SetIdempotencyKey(req.IdempotencyKey)
		params.AddMetadata("appointment_id", strconv.FormatUint(uint64(req.AppointmentID), 10))

		pi, err := g.api.PaymentIntents.New(params)
		if err != nil && !isTransient(err) {
			return nil, backoff.Permanent(err)
		}
		return pi, err
	}

	pi, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("stripe charge: %w", err)
	}

	g.logger.Info("off-session charge created",
		zap.Uint("appointment_id", req.AppointmentID),
		zap.String("payment_intent_id", pi.ID),
		zap.String("status", string(pi.Status)),
	)
	return &ChargeResult{ID: pi.ID, Status: string(pi.Status)}, nil
}

// ParseWebhook verifies the signature and reduces the event to what the
// booking flow needs.
func (g *StripeGateway) ParseWebhook(ctx context.Context, payload []byte, signature string) (*PaymentEvent, error) {
	if strings.TrimSpace(g.cfg.WebhookSecret) == "" {
		return nil, ErrNotConfigured
	}

	evt, err := webhook.ConstructEventWithTolerance(payload, signature, g.cfg.WebhookSecret, webhookTolerance)
	if err != nil {
		return nil, fmt.Errorf("stripe webhook: %w", err)
	}

	out := &PaymentEvent{
		ID:         evt.ID,
		Type:       EventIgnored,
		OccurredAt: time.Unix(evt.Created, 0).UTC(),
	}

	switch string(evt.Type) {
	case "checkout.session.completed", "checkout.session.expired":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("stripe webhook: invalid checkout session payload: %w", err)
		}

		out.SessionID = session.ID
		out.AppointmentID = appointmentIDFrom(session.Metadata, session.ClientReferenceID)
		if session.Customer != nil {
			out.CustomerID = session.Customer.ID
		}

		if evt.Type == "checkout.session.expired" {
			out.Type = EventCheckoutExpired
			return out, nil
		}

		out.Type = EventCheckoutCompleted
		if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
			out.PaymentIntentID = session.PaymentIntent.ID
			out.PaymentMethodID = g.paymentMethodOf(ctx, session.PaymentIntent.ID)
		}
	}

	return out, nil
}

func (g *StripeGateway) paymentMethodOf(ctx context.Context, paymentIntentID string) string {
	if g.api == nil {
		return ""
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		g.logger.Warn("stripe: could not load payment intent", zap.String("payment_intent_id", paymentIntentID), zap.Error(err))
		return ""
	}
	if pi.PaymentMethod == nil {
		return ""
	}
	return pi.PaymentMethod.ID
}

func appointmentIDFrom(meta map[string]string, ref string) uint {
	raw := strings.TrimSpace(meta["appointment_id"])
	if raw == "" {
		raw = strings.TrimSpace(ref)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// isTransient treats rate limits, 5xx and transport failures as retryable.
func isTransient(err error) bool {
	var se *stripe.Error
	if errors.As(err, &se) {
		return se.HTTPStatusCode == 429 || se.HTTPStatusCode >= 500
	}
	return true
}

var _ Gateway = (*StripeGateway)(nil)
