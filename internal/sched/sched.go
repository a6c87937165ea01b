// internal/sched/sched.go
//
// Cancellable deferred execution for the visualization state machines.
// Responsibilities:
//   - Scheduler: the one seam through which every delayed transition is scheduled.
//   - Real(): wall-clock scheduler backed by time.AfterFunc.
//   - Group: records each handle an owner scheduled so they can be cancelled together.
//
// Notes:
//   - A Group shares its owner's lock. Callbacks run with that lock held and
//     CancelAll must be called with it held, so a cancelled timer never runs
//     its callback, even one that was already racing to fire.

package sched

import (
	"sync"
	"time"
)

// Timer is a handle to a scheduled callback.
// Stop reports whether the call prevented the callback from running.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realScheduler struct{}

// Real returns the wall-clock scheduler.
func Real() Scheduler { return realScheduler{} }

func (realScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Group tracks the pending timers of one owner.
type Group struct {
	s      Scheduler
	mu     sync.Locker      // owner's lock; guards every field below
	gen    uint64           // bumped by CancelAll; stale callbacks compare against it
	next   uint64           // id source for timers
	timers map[uint64]Timer // pending timers keyed by id
}

// NewGroup binds a Group to a scheduler and the owner's lock.
func NewGroup(s Scheduler, mu sync.Locker) *Group {
	return &Group{s: s, mu: mu, timers: make(map[uint64]Timer)}
}

// After schedules fn after d. Must be called with the owner's lock held.
// fn runs with the owner's lock held and only if no CancelAll happened
// since it was scheduled.
func (g *Group) After(d time.Duration, fn func()) {
	gen := g.gen
	id := g.next
	g.next++
	g.timers[id] = g.s.AfterFunc(d, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.gen != gen {
			return
		}
		delete(g.timers, id)
		fn()
	})
}

// CancelAll stops every pending timer and invalidates callbacks that are
// already in flight. Returns how many timers were stopped before firing.
// Must be called with the owner's lock held.
func (g *Group) CancelAll() int {
	n := 0
	for id, t := range g.timers {
		if t.Stop() {
			n++
		}
		delete(g.timers, id)
	}
	g.gen++
	return n
}

// Pending reports how many scheduled callbacks have not yet run.
// Must be called with the owner's lock held.
func (g *Group) Pending() int { return len(g.timers) }
