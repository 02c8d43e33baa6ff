package relay

import (
	"sync"
	"time"
)

// Reaper schedules deferred teardown of finished projects so late readers
// and reconnecting subscribers get a grace window before memory is
// reclaimed.
type Reaper struct {
	delay time.Duration
	reap  func(projectID string)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewReaper builds a reaper that waits delay after scheduling, then calls
// reap with the project id.
func NewReaper(delay time.Duration, reap func(projectID string)) *Reaper {
	return &Reaper{
		delay:  delay,
		reap:   reap,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms teardown for a project. Idempotent: a second call for the
// same project neither extends nor resets the pending deadline.
func (r *Reaper) Schedule(projectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.timers[projectID]; ok {
		return
	}
	r.timers[projectID] = time.AfterFunc(r.delay, func() { r.fire(projectID) })
}

func (r *Reaper) fire(projectID string) {
	r.mu.Lock()
	if _, ok := r.timers[projectID]; !ok {
		// Cancelled between the timer firing and this running.
		r.mu.Unlock()
		return
	}
	delete(r.timers, projectID)
	r.mu.Unlock()
	r.reap(projectID)
}

// Cancel disarms a pending teardown, if any.
func (r *Reaper) Cancel(projectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[projectID]; ok {
		t.Stop()
		delete(r.timers, projectID)
	}
}

// Stop disarms every pending teardown. Used at shutdown.
func (r *Reaper) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
}

// Pending reports how many teardowns are armed.
func (r *Reaper) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}
