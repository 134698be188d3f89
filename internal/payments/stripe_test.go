package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
)

func TestAppointmentIDFrom(t *testing.T) {
	if got := appointmentIDFrom(map[string]string{"appointment_id": "42"}, "7"); got != 42 {
		t.Fatalf("expected metadata to win, got %d", got)
	}
	if got := appointmentIDFrom(nil, "7"); got != 7 {
		t.Fatalf("expected client reference fallback, got %d", got)
	}
	if got := appointmentIDFrom(nil, "abc"); got != 0 {
		t.Fatalf("expected 0 for garbage, got %d", got)
	}
}

func TestIsTransient(t *testing.T) {
	if !isTransient(&stripe.Error{HTTPStatusCode: 503}) {
		t.Fatalf("5xx must be transient")
	}
	if !isTransient(&stripe.Error{HTTPStatusCode: 429}) {
		t.Fatalf("429 must be transient")
	}
	if isTransient(&stripe.Error{HTTPStatusCode: 402}) {
		t.Fatalf("card declines must not be retried")
	}
	if !isTransient(errors.New("connection reset")) {
		t.Fatalf("transport errors must be transient")
	}
}

func TestUnconfiguredGateway(t *testing.T) {
	g := NewStripeGateway(StripeConfig{}, zap.NewNop())
	ctx := context.Background()

	if _, err := g.CreateCheckout(ctx, CheckoutRequest{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := g.ChargeOffSession(ctx, OffSessionCharge{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := g.ParseWebhook(ctx, []byte("{}"), "sig"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
