package service

import (
	"sync"
	"time"

	"babylog/internal/modules/tracking/domain"
	"babylog/internal/platform/clock"
)

// Display is the in-memory clock rendered while a session runs. Ticks advance
// a local copy of the session; nothing here is ever persisted.
type Display struct {
	mu      sync.Mutex
	session domain.ActiveSession
}

// NewDisplay mirrors session, which should already be rehydrated to now.
func NewDisplay(session domain.ActiveSession) *Display {
	return &Display{session: session}
}

// Tick advances the active bucket by one second while the timer runs.
func (d *Display) Tick() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.session.Timer.Running() {
		return
	}
	d.session = d.session.Flush(d.session.LastCheckpointAt.Add(time.Second))
}

// Snapshot returns the mirrored session and its displayed total in seconds.
func (d *Display) Snapshot() (domain.ActiveSession, int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session, d.session.TotalSeconds(d.session.LastCheckpointAt)
}

// Run ticks on the scheduler and reports every tick until stop is called.
func (d *Display) Run(s clock.Scheduler, interval time.Duration, onTick func(domain.ActiveSession, int64)) (stop func()) {
	return s.Every(interval, func() {
		d.Tick()
		if onTick != nil {
			onTick(d.Snapshot())
		}
	})
}
