package testutils

import (
	"sync"
	"time"

	"github.com/aretw0/waypoint/pkg/playback"
)

// ManualClock is a playback.Clock whose timers fire only when a test calls Fire.
type ManualClock struct {
	mu     sync.Mutex
	timers []*ManualTimer
}

// ManualTimer is a timer created by ManualClock.
type ManualTimer struct {
	mu      sync.Mutex
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

// Duration returns the delay the timer was armed with.
func (t *ManualTimer) Duration() time.Duration {
	return t.d
}

// Stopped reports whether Stop was called.
func (t *ManualTimer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Run invokes the callback directly, bypassing Stop. It simulates a timer
// whose callback was already running when it was stopped.
func (t *ManualTimer) Run() {
	t.f()
}

// Stop implements playback.Timer.
func (t *ManualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func (t *ManualTimer) active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped && !t.fired
}

// AfterFunc implements playback.Clock.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) playback.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &ManualTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Pending returns the timers that are neither stopped nor fired, oldest first.
func (c *ManualClock) Pending() []*ManualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*ManualTimer
	for _, t := range c.timers {
		if t.active() {
			out = append(out, t)
		}
	}
	return out
}

// Fire runs the oldest pending timer and reports whether one existed.
func (c *ManualClock) Fire() bool {
	p := c.Pending()
	if len(p) == 0 {
		return false
	}
	t := p[0]
	t.mu.Lock()
	t.fired = true
	t.mu.Unlock()
	t.f()
	return true
}
