// Package clock provides the wall-clock source used for timestamps and the
// display clock that refreshes once a minute.
package clock

import (
	"context"
	"sync"
	"time"
)

// Clock returns the current time. Services take a Clock instead of calling
// time.Now so timestamps can be fixed in tests.
type Clock interface {
	Now() time.Time
}

// System is the real wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// Func adapts a function to the Clock interface.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// Refresher keeps a cached "current time" that is refreshed on a fixed
// interval, the way the form's header clock ticks once a minute. Readers see
// the last refreshed value; nothing else depends on it.
type Refresher struct {
	src      Clock
	interval time.Duration

	mu      sync.RWMutex
	current time.Time
}

// NewRefresher creates a refresher seeded with src.Now(). An interval <= 0
// defaults to one minute.
func NewRefresher(src Clock, interval time.Duration) *Refresher {
	if src == nil {
		src = System{}
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Refresher{src: src, interval: interval, current: src.Now()}
}

// Run refreshes the cached time until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Refresh()
		}
	}
}

// Refresh pulls a new value from the underlying clock.
func (r *Refresher) Refresh() {
	now := r.src.Now()
	r.mu.Lock()
	r.current = now
	r.mu.Unlock()
}

// Now returns the last refreshed time, so a Refresher is itself a Clock.
func (r *Refresher) Now() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}
