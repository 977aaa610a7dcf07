// Package live keeps one authoritative "latest reading" fresh from two
// independent triggers: a push subscription and a periodic poll fallback.
package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"biodash/internal/models"
)

// State is the outbound live-view contract, re-emitted on every sync.
type State struct {
	Reading *models.SensorReading `json:"reading"`
	Loading bool                  `json:"loading"`
}

// Source serves the latest-reading query. A nil reading with a nil error
// means the store is empty.
type Source interface {
	Latest(ctx context.Context) (*models.SensorReading, error)
}

// PushSource delivers row-insert notifications. Subscribe returns an
// unsubscribe function.
type PushSource interface {
	Subscribe(handler func(models.SensorReading)) (func(), error)
}

// Controller merges push events and poll results into one state slot.
// Both triggers write through submit, the single serialized entry point,
// so the last write wins regardless of interleaving. A push payload is
// trusted as the newest reading without a timestamp check; a stale poll
// can briefly overwrite a newer push, and the next trigger corrects it.
type Controller struct {
	source   Source
	push     PushSource
	interval time.Duration
	log      *slog.Logger

	mu        sync.Mutex
	state     State
	stopped   bool
	listeners []chan State

	unsubscribe func()
	quit        chan struct{}
	stopOnce    sync.Once
}

// DefaultPollInterval is the poll fallback period, coarse relative to the
// expected feed rate.
const DefaultPollInterval = 12 * time.Second

func New(source Source, push PushSource, interval time.Duration, logger *slog.Logger) *Controller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Controller{
		source:   source,
		push:     push,
		interval: interval,
		log:      logger,
		quit:     make(chan struct{}),
	}
}

// Start subscribes to the push channel and begins the poll loop. The
// loading flag is set until the initial fetch completes, success or not.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	c.state.Loading = true
	c.mu.Unlock()

	if c.push != nil {
		unsub, err := c.push.Subscribe(func(r models.SensorReading) {
			c.submit(&r)
		})
		if err != nil {
			c.log.Warn("push subscribe failed, poll fallback only", "err", err)
		} else {
			c.unsubscribe = unsub
		}
	}

	go c.run(ctx)
}

func (c *Controller) run(ctx context.Context) {
	c.pollOnce(ctx, true)
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.quit:
			return
		case <-t.C:
			c.pollOnce(ctx, false)
		}
	}
}

// pollOnce re-issues the latest-reading query and overwrites the slot with
// the result. Fetch failures leave the prior reading in place; stale but
// available beats blank.
func (c *Controller) pollOnce(ctx context.Context, initial bool) {
	r, err := c.source.Latest(ctx)
	if err != nil {
		c.log.Warn("latest reading fetch failed", "err", err, "initial", initial)
		if initial {
			c.clearLoading()
		}
		return
	}
	c.submit(r)
}

// submit is the only writer of the state slot. It replaces the whole
// reading atomically and fans the snapshot out to listeners.
func (c *Controller) submit(r *models.SensorReading) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.state.Reading = r
	c.state.Loading = false
	snap := c.state
	listeners := make([]chan State, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, ch := range listeners {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (c *Controller) clearLoading() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.state.Loading = false
	snap := c.state
	listeners := make([]chan State, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, ch := range listeners {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Stop is idempotent. It releases the push subscription and the poll loop
// unconditionally and blocks any late trigger from mutating the slot.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.stopped = true
		c.mu.Unlock()
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
		close(c.quit)
	})
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Updates registers a listener fed on every sync. Slow listeners drop
// intermediate snapshots rather than blocking the writers.
func (c *Controller) Updates() (<-chan State, func()) {
	ch := make(chan State, 1)
	c.mu.Lock()
	c.listeners = append(c.listeners, ch)
	c.mu.Unlock()
	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, l := range c.listeners {
			if l == ch {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
	return ch, cancel
}
