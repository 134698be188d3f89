package tracking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestKeys(t *testing.T) {
	total, unique := keys(4, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), KindProfileView)
	if total != "track:4:2026-03-10:profile_view:n" {
		t.Fatalf("unexpected total key %s", total)
	}
	if unique != "track:4:2026-03-10:profile_view:uv" {
		t.Fatalf("unexpected unique key %s", unique)
	}
}

func TestDisabledTracker(t *testing.T) {
	tr := NewTracker(nil)
	if err := tr.Track(context.Background(), "sid", Event{Kind: KindProfileView, ProfessionalID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err := tr.Stats(context.Background(), 1, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Date != "2026-03-10" || len(stats.Counts) != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestCookieSessionsCreatesAndReuses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewCookieSessions(false)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	id := s.GetOrCreate(c)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected uuid, got %q", id)
	}
	cookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, DefaultCookieName+"="+id) || !strings.Contains(cookie, "HttpOnly") {
		t.Fatalf("unexpected cookie %q", cookie)
	}

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c2.Request.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: id})

	if got := s.GetOrCreate(c2); got != id {
		t.Fatalf("expected reused id %s, got %s", id, got)
	}
	if w2.Header().Get("Set-Cookie") != "" {
		t.Fatalf("existing session must not be reissued")
	}
}

func TestCookieSessionsReplacesGarbage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewCookieSessions(true)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "not-a-uuid"})

	id := s.GetOrCreate(c)
	if id == "not-a-uuid" {
		t.Fatalf("garbage cookie must be replaced")
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "Secure") {
		t.Fatalf("expected secure cookie")
	}
}
