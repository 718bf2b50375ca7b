// Package cooldown implements the per-strategy timed lock that gates
// automated signal execution.
//
// The gate is pure state plus a clock read: no background timer exists.
// Once now >= end_time the gate is logically inactive even before any
// caller observes it; every read normalizes stale active state (lazy
// expiry). The dashboard's visual countdown is a presentation concern.
package cooldown

import (
	"sync"
	"time"

	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/internal/utils"
)

// Gate is a per-strategy cooldown window. The zero value is not usable;
// construct with New.
type Gate struct {
	mu        sync.Mutex
	active    bool
	startedAt time.Time
	duration  time.Duration
	endTime   time.Time
	now       func() time.Time
}

// New creates an inactive gate.
func New() *Gate {
	return &Gate{now: time.Now}
}

// Start activates the gate for the given duration. Calling Start while the
// gate is already active resets the window to a fresh duration (overwrite
// semantics, not extend).
func (g *Gate) Start(duration time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.active = true
	g.startedAt = g.now()
	g.duration = duration
	g.endTime = g.startedAt.Add(duration)
}

// Restore re-arms the gate from a persisted end time. An end time at or
// before now leaves the gate inactive.
func (g *Gate) Restore(end time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	started := g.now()
	if !started.Before(end) {
		return
	}

	g.active = true
	g.startedAt = started
	g.duration = end.Sub(started)
	g.endTime = end
}

// Stop forces the gate inactive regardless of current state.
func (g *Gate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.deactivate()
}

// IsActive evaluates the stored end time against the clock. This is the
// single source of truth for the gate.
func (g *Gate) IsActive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.checkActive()
}

// Remaining returns how long until the window expires, or 0 when the gate
// is inactive or already expired.
func (g *Gate) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.checkActive() {
		return 0
	}

	return g.endTime.Sub(g.now())
}

// EndTime returns the end of the active window; ok is false when inactive.
func (g *Gate) EndTime() (endTime time.Time, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.checkActive() {
		return time.Time{}, false
	}

	return g.endTime, true
}

// Info returns the gate state for the snapshot boundary.
func (g *Gate) Info() types.CooldownInfo {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.checkActive() {
		return types.CooldownInfo{
			Active:             false,
			EndTime:            nil,
			RemainingSeconds:   0,
			RemainingFormatted: utils.FormatRemaining(0),
		}
	}

	remaining := g.endTime.Sub(g.now())
	end := g.endTime

	return types.CooldownInfo{
		Active:             true,
		EndTime:            &end,
		RemainingSeconds:   remaining.Seconds(),
		RemainingFormatted: utils.FormatRemaining(remaining),
	}
}

// checkActive normalizes stale active state and reports the result.
// Callers must hold g.mu.
func (g *Gate) checkActive() bool {
	if g.active && !g.now().Before(g.endTime) {
		g.deactivate()
	}

	return g.active
}

// deactivate clears the window. Callers must hold g.mu.
func (g *Gate) deactivate() {
	g.active = false
	g.startedAt = time.Time{}
	g.duration = 0
	g.endTime = time.Time{}
}
