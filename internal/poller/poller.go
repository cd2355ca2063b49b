// Package poller runs a function on a fixed interval with an explicit
// start and stop.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultInterval is the dashboard refresh period.
const DefaultInterval = 10 * time.Second

// Task calls fn once on Start and then every interval until stopped.
type Task struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context)

	mu      sync.Mutex
	started bool
	stopped bool

	stopCh    chan struct{}
	doneCh    chan struct{}
	triggerCh chan struct{}
}

// New creates a stopped task. A non-positive interval uses DefaultInterval.
func New(name string, interval time.Duration, fn func(ctx context.Context)) *Task {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Task{
		name:      name,
		interval:  interval,
		fn:        fn,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		triggerCh: make(chan struct{}, 1), // Buffered so Trigger doesn't block
	}
}

// Interval returns the polling period.
func (t *Task) Interval() time.Duration {
	return t.interval
}

// Start runs the loop on its own goroutine. Calling Start again, or after
// Stop, does nothing. fn receives ctx, so cancelling it aborts an in-flight
// call and ends the loop.
func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started || t.stopped {
		return
	}
	t.started = true

	go t.loop(ctx)
}

// Trigger asks for an immediate run without waiting for the next tick.
func (t *Task) Trigger() {
	select {
	case t.triggerCh <- struct{}{}:
	default:
	}
}

// Stop prevents future runs and waits for the loop to exit, including any
// call to fn that is already running.
func (t *Task) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	started := t.started
	close(t.stopCh)
	t.mu.Unlock()

	if started {
		<-t.doneCh
	}
}

func (t *Task) loop(ctx context.Context) {
	defer close(t.doneCh)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	log.Debug().Str("task", t.name).Dur("interval", t.interval).Msg("poller started")

	t.run(ctx)

	for {
		select {
		case <-ticker.C:
			t.run(ctx)

		case <-t.triggerCh:
			t.run(ctx)

		case <-t.stopCh:
			log.Debug().Str("task", t.name).Msg("poller stopped")
			return

		case <-ctx.Done():
			log.Debug().Str("task", t.name).Msg("poller context cancelled")
			return
		}
	}
}

func (t *Task) run(ctx context.Context) {
	// A stop that raced with a tick wins.
	select {
	case <-t.stopCh:
		return
	default:
	}
	t.fn(ctx)
}
