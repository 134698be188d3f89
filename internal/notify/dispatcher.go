package notify

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

type Dispatcher struct {
	sender   Sender
	log      *zap.Logger
	queue    chan Notification
	maxTries uint
	newBack  func() backoff.BackOff

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(sender Sender, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		sender:   sender,
		log:      log,
		queue:    make(chan Notification, 100),
		maxTries: 4,
		newBack: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 30 * time.Second
			return b
		},
		done: make(chan struct{}),
	}

	go d.worker()
	return d
}

// Notify queues n. Email is best effort: a full queue drops it.
func (d *Dispatcher) Notify(n Notification) {
	if d == nil {
		return
	}
	select {
	case d.queue <- n:
	default:
		d.log.Warn("notify queue full, dropping email", zap.String("kind", string(n.Kind)))
	}
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n Notification) {
	msg, err := Render(n)
	if err != nil {
		d.log.Error("email render failed", zap.String("kind", string(n.Kind)), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		err := d.sender.Send(ctx, msg)
		if err != nil && permanentSMTP(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(d.newBack()),
		backoff.WithMaxTries(d.maxTries),
	)
	if err != nil {
		d.log.Error("email delivery failed",
			zap.String("kind", string(n.Kind)),
			zap.String("to", n.To),
			zap.Error(err),
		)
		return
	}

	d.log.Info("email sent", zap.String("kind", string(n.Kind)), zap.String("to", n.To))
}

// Close drains queued emails.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	<-d.done
}
