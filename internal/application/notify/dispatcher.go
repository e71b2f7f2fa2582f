package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/account-service/internal/metrics"
)

// Dispatcher hands messages to a Mailer on a fixed set of worker goroutines.
//
// Dispatch never blocks the caller and never reports delivery errors: a full
// queue drops the message, a failed send is logged and counted. There is no
// retry. Each send gets its own timeout, independent of the request that
// triggered it.
type Dispatcher struct {
	mailer  Mailer
	lg      zerolog.Logger
	timeout time.Duration

	queue chan Message
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

func NewDispatcher(m Mailer, cfg DispatcherConfig, lg zerolog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = cfg.Workers * 16
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}

	d := &Dispatcher{
		mailer:  m,
		lg:      lg.With().Str("component", "notify_dispatcher").Logger(),
		timeout: cfg.SendTimeout,
		queue:   make(chan Message, cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.send(msg)
	}
}

func (d *Dispatcher) send(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.mailer.Send(ctx, msg); err != nil {
		metrics.NotificationsTotal.WithLabelValues(metrics.NotifyFailed).Inc()
		d.lg.Error().Err(err).
			Str("kind", string(msg.Kind)).
			Str("subject", msg.Subject).
			Msg("notification send failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues(metrics.NotifySent).Inc()
	d.lg.Debug().Str("kind", string(msg.Kind)).Msg("notification sent")
}

// Dispatch enqueues msg and returns immediately.
func (d *Dispatcher) Dispatch(msg Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.NotificationsTotal.WithLabelValues(metrics.NotifyDropped).Inc()
		d.lg.Warn().Str("kind", string(msg.Kind)).Msg("dispatcher closed, notification dropped")
		return
	}

	select {
	case d.queue <- msg:
	default:
		metrics.NotificationsTotal.WithLabelValues(metrics.NotifyDropped).Inc()
		d.lg.Warn().Str("kind", string(msg.Kind)).Msg("notification queue full, dropped")
	}
}

// Close stops accepting messages and waits for queued ones to be sent.
// Safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
