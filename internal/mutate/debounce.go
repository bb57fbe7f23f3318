package mutate

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single trailing-edge call
// per key. Every Trigger for a key resets that key's timer, so the function
// runs once, delay after the last trigger of the burst. Keys do not block
// each other.
type Debouncer struct {
	delay   time.Duration
	timers  map[string]*time.Timer
	stopped bool
	mu      sync.Mutex
}

// NewDebouncer creates a new debouncer with the given trailing-edge delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		timers: map[string]*time.Timer{},
	}
}

// Trigger schedules fn to run after the delay, replacing any call already
// scheduled for the key.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()

		fn()
	})
}

// Stop cancels every pending call. The debouncer accepts no further
// triggers afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}
