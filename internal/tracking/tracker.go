package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Kind string

const (
	KindProfileView      Kind = "profile_view"
	KindAvailabilityView Kind = "availability_view"
	KindBookingStarted   Kind = "booking_started"
	KindBookingCancelled Kind = "booking_cancelled"
)

// Kinds lists every tracked kind, in funnel order.
var Kinds = []Kind{KindProfileView, KindAvailabilityView, KindBookingStarted, KindBookingCancelled}

const retention = 90 * 24 * time.Hour

type Event struct {
	Kind           Kind
	ProfessionalID uint
	At             time.Time
}

type Counter struct {
	Total  int64 `json:"total"`
	Unique int64 `json:"unique"`
}

type DayStats struct {
	Date   string           `json:"date"`
	Counts map[Kind]Counter `json:"counts"`
}

// Tracker counts funnel events per professional and day: a plain counter for
// totals and a HyperLogLog of session ids for unique visitors.
type Tracker struct {
	rdb redis.Cmdable
}

// NewTracker returns a tracker; a nil client disables tracking.
func NewTracker(rdb redis.Cmdable) *Tracker {
	return &Tracker{rdb: rdb}
}

func (t *Tracker) Enabled() bool {
	return t != nil && t.rdb != nil
}

func (t *Tracker) Track(ctx context.Context, sessionID string, ev Event) error {
	if !t.Enabled() {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	total, unique := keys(ev.ProfessionalID, ev.At, ev.Kind)

	_, err := t.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, total)
		p.Expire(ctx, total, retention)
		if sessionID != "" {
			p.PFAdd(ctx, unique, sessionID)
			p.Expire(ctx, unique, retention)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("track %s: %w", ev.Kind, err)
	}
	return nil
}

func (t *Tracker) Stats(ctx context.Context, professionalID uint, day time.Time) (*DayStats, error) {
	out := &DayStats{
		Date:   day.UTC().Format("2006-01-02"),
		Counts: make(map[Kind]Counter, len(Kinds)),
	}
	if !t.Enabled() {
		return out, nil
	}

	totals := make(map[Kind]*redis.StringCmd, len(Kinds))
	uniques := make(map[Kind]*redis.IntCmd, len(Kinds))

	_, err := t.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, k := range Kinds {
			total, unique := keys(professionalID, day, k)
			totals[k] = p.Get(ctx, total)
			uniques[k] = p.PFCount(ctx, unique)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("tracking stats: %w", err)
	}

	for _, k := range Kinds {
		var c Counter
		if n, err := totals[k].Int64(); err == nil {
			c.Total = n
		}
		if n, err := uniques[k].Result(); err == nil {
			c.Unique = n
		}
		out.Counts[k] = c
	}
	return out, nil
}

// keys buckets by UTC day.
func keys(professionalID uint, at time.Time, kind Kind) (total, unique string) {
	base := fmt.Sprintf("track:%d:%s:%s", professionalID, at.UTC().Format("2006-01-02"), kind)
	return base + ":n", base + ":uv"
}
