package payments

import (
	"context"
	"errors"
	"time"
)

var ErrNotConfigured = errors.New("payments: gateway not configured")

type CheckoutRequest struct {
	AppointmentID    uint
	ProfessionalName string
	ServiceName      string
	Amount           float64
	Currency         string
	CustomerEmail    string
	ExpiresAt        time.Time
}

type CheckoutSession struct {
	ID  string
	URL string
}

// OffSessionCharge charges a card saved during checkout without the client
// being present (cancellation fees).
type OffSessionCharge struct {
	AppointmentID   uint
	CustomerID      string
	PaymentMethodID string
	Amount          float64
	Currency        string
	Description     string
	IdempotencyKey  string
}

type ChargeResult struct {
	ID     string
	Status string
}

type EventType string

const (
	EventCheckoutCompleted EventType = "checkout.completed"
	EventCheckoutExpired   EventType = "checkout.expired"
	EventIgnored           EventType = "ignored"
)

type PaymentEvent struct {
	ID              string
	Type            EventType
	SessionID       string
	AppointmentID   uint
	CustomerID      string
	PaymentMethodID string
	PaymentIntentID string
	OccurredAt      time.Time
}

type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ChargeOffSession(ctx context.Context, req OffSessionCharge) (*ChargeResult, error)
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*PaymentEvent, error)
}
