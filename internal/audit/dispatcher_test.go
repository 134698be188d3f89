package audit

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/thesuite/booking-api/internal/models"
)

type memWriter struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (w *memWriter) Write(_ context.Context, e *models.AuditLog) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, e)
	return nil
}

func TestDispatcherWritesEntries(t *testing.T) {
	w := &memWriter{}
	d := NewDispatcher(w, zap.NewNop())

	id := uint(9)
	d.Dispatch(Event{
		ProfessionalID: 3,
		Actor:          ActorClient,
		Action:         "appointment_cancelled",
		Entity:         "appointment",
		EntityID:       &id,
		Metadata:       map[string]any{"fee": 12.5},
	})
	d.Close()

	if len(w.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(w.entries))
	}
	e := w.entries[0]
	if e.ProfessionalID != 3 || e.Actor != ActorClient || *e.EntityID != 9 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.Metadata != `{"fee":12.5}` {
		t.Fatalf("unexpected metadata %q", e.Metadata)
	}
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(Event{Action: "x"})
}
