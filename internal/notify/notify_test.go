package notify

import (
	"context"
	"errors"
	"net/smtp"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

func sampleBooking() BookingEmail {
	return BookingEmail{
		ClientName:       "Ana",
		ProfessionalName: "Studio Rose",
		ServiceName:      "Gel manicure",
		Addons:           "Nail art",
		Start:            time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
		DurationMin:      75,
		Amount:           65,
		Currency:         "usd",
	}
}

func TestRenderConfirmed(t *testing.T) {
	msg, err := Render(Notification{Kind: KindBookingConfirmed, To: "ana@example.com", Data: sampleBooking()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Subject != "Your booking with Studio Rose is confirmed" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	for _, want := range []string{"Gel manicure + Nail art", "Tuesday, March 10 at 2:30 PM", "65.00 USD", "75 min"} {
		if !strings.Contains(msg.HTML, want) {
			t.Fatalf("expected %q in body:\n%s", want, msg.HTML)
		}
	}
}

func TestRenderCancelledWithFee(t *testing.T) {
	data := sampleBooking()
	data.CancellationFee = 32.5
	data.CancelledBy = "client"

	msg, err := Render(Notification{Kind: KindBookingCancelled, To: "ana@example.com", Data: data})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(msg.HTML, "32.50 USD") {
		t.Fatalf("expected fee in body:\n%s", msg.HTML)
	}
	if strings.Contains(msg.HTML, "by the professional") {
		t.Fatalf("client cancellation must not mention the professional")
	}
}

func TestRenderEscapesInput(t *testing.T) {
	data := sampleBooking()
	data.ClientName = "<script>x</script>"

	msg, err := Render(Notification{Kind: KindBookingConfirmed, To: "a@b.c", Data: data})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Fatalf("client name must be escaped")
	}
}

func TestRenderUnknownKind(t *testing.T) {
	if _, err := Render(Notification{Kind: "nope"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSMTPMailerBuildsMessage(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp-relay.brevo.com", Port: 587, Username: "u", Password: "p", From: "hello@thesuite.app"})

	var gotAddr string
	var gotTo []string
	var gotBody string
	m.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotBody = addr, to, string(msg)
		return nil
	}

	if err := m.Send(context.Background(), Message{To: "ana@example.com", Subject: "Hi", HTML: "<p>x</p>"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAddr != "smtp-relay.brevo.com:587" {
		t.Fatalf("unexpected addr %s", gotAddr)
	}
	if len(gotTo) != 1 || gotTo[0] != "ana@example.com" {
		t.Fatalf("unexpected recipients %v", gotTo)
	}
	if !strings.Contains(gotBody, "Content-Type: text/html") || !strings.HasSuffix(gotBody, "<p>x</p>") {
		t.Fatalf("unexpected body:\n%s", gotBody)
	}
}

type flakySender struct {
	mu    sync.Mutex
	fails int
	err   error
	calls int
	sent  []Message
}

func (s *flakySender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.fails {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func fastDispatcher(s Sender) *Dispatcher {
	d := NewDispatcher(s, zap.NewNop())
	d.newBack = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return d
}

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	s := &flakySender{fails: 2, err: errors.New("connection reset")}
	d := fastDispatcher(s)

	d.Notify(Notification{Kind: KindBookingConfirmed, To: "ana@example.com", Data: sampleBooking()})
	d.Close()

	if s.calls != 3 || len(s.sent) != 1 {
		t.Fatalf("expected 3 calls and 1 delivery, got %d calls %d sent", s.calls, len(s.sent))
	}
}

func TestDispatcherStopsOnPermanentErrors(t *testing.T) {
	s := &flakySender{fails: 10, err: &textproto.Error{Code: 550, Msg: "mailbox unavailable"}}
	d := fastDispatcher(s)

	d.Notify(Notification{Kind: KindBookingConfirmed, To: "bad@example.com", Data: sampleBooking()})
	d.Close()

	if s.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", s.calls)
	}
}
