package sched

import (
	"sync"
	"time"
)

// Manual is a Scheduler driven by a virtual clock. Nothing fires until
// Advance moves the clock past a timer's deadline. Used by tests and for
// replaying a reveal cycle deterministically.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	queue []*manualTimer
}

type manualTimer struct {
	m       *Manual
	at      time.Duration
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

// NewManual returns a Manual scheduler with its clock at zero.
func NewManual() *Manual { return &Manual{} }

// AfterFunc queues fn to run once the clock reaches now+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{m: m, at: m.now + d, seq: m.seq, fn: fn}
	m.seq++
	m.queue = append(m.queue, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Now reports the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d, firing due timers in deadline
// order (ties in scheduling order). Timers scheduled by callbacks fire in
// the same call if their deadline is within the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()
	for {
		m.mu.Lock()
		t := m.popDue(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = t.at
		t.fired = true
		m.mu.Unlock()
		t.fn()
	}
}

// Pending reports timers that are neither stopped nor fired.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.queue {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// popDue removes and returns the earliest live timer due at or before
// target, dropping stopped timers along the way. Caller holds m.mu.
func (m *Manual) popDue(target time.Duration) *manualTimer {
	best := -1
	live := m.queue[:0]
	for _, t := range m.queue {
		if t.stopped || t.fired {
			continue
		}
		live = append(live, t)
	}
	m.queue = live
	for i, t := range m.queue {
		if t.at > target {
			continue
		}
		if best < 0 || t.at < m.queue[best].at || (t.at == m.queue[best].at && t.seq < m.queue[best].seq) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	t := m.queue[best]
	m.queue = append(m.queue[:best], m.queue[best+1:]...)
	return t
}
