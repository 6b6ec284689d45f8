package overlay

import (
	"sync"
	"time"

	"github.com/1broseidon/glance/internal/bridge"
)

// autoHide owns the single auto-hide timer. Scheduling replaces any armed
// timer; cancellation is idempotent. Each armed timer carries a sequence
// number checked on fire, so the callback of a timer that was cancelled and
// replaced can never hide the surface.
type autoHide struct {
	mu        sync.Mutex
	timer     *time.Timer
	seq       uint64
	durations map[bridge.ResponseKind]time.Duration
	fire      func()
}

func newAutoHide(fire func()) *autoHide {
	return &autoHide{
		durations: make(map[bridge.ResponseKind]time.Duration),
		fire:      fire,
	}
}

// setDurations replaces the per-kind duration table.
func (a *autoHide) setDurations(d map[bridge.ResponseKind]time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.durations = d
}

// duration returns the delay for a response kind, falling back to the plain
// delay for unknown kinds.
func (a *autoHide) duration(kind bridge.ResponseKind) time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()

	if d, ok := a.durations[kind]; ok {
		return d
	}
	if d, ok := a.durations[bridge.KindPlain]; ok {
		return d
	}
	return 5 * time.Second
}

// Schedule arms the timer for the response kind, replacing any armed timer.
func (a *autoHide) Schedule(kind bridge.ResponseKind) {
	a.ScheduleAfter(a.duration(kind))
}

// ScheduleAfter arms the timer with an explicit delay.
func (a *autoHide) ScheduleAfter(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
	}
	a.seq++
	seq := a.seq

	a.timer = time.AfterFunc(d, func() {
		a.mu.Lock()
		stale := seq != a.seq
		if !stale {
			a.timer = nil
		}
		a.mu.Unlock()

		if !stale {
			a.fire()
		}
	})
}

// Cancel disarms any pending timer. Safe to call with none armed.
func (a *autoHide) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.seq++
}

// Pending reports whether a timer is currently armed.
func (a *autoHide) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}
