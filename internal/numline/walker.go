package numline

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numviz/internal/sched"
)

// State of the walker.
type State string

const (
	StateIdle       State = "idle"
	StatePositioned State = "positioned"
	StateStepping   State = "stepping"
	StateSettled    State = "settled"
)

// Timing of the walk: StartDelay before the first step, then one step per Tick.
type Timing struct {
	StartDelay time.Duration
	Tick       time.Duration
}

// DefaultTiming starts after 1s and steps every 500ms.
func DefaultTiming() Timing {
	return Timing{StartDelay: time.Second, Tick: 500 * time.Millisecond}
}

// Walker animates a marker from Line.Start to Line.Target one unit per tick.
//
//	Idle → Positioned → Stepping → Settled
type Walker struct {
	mu      sync.Mutex
	timers  *sched.Group
	timing  Timing
	line    Line
	state   State
	current int
	steps   int
}

// NewWalker returns an idle walker.
func NewWalker(s sched.Scheduler, t Timing) *Walker {
	w := &Walker{timing: t, state: StateIdle}
	w.timers = sched.NewGroup(s, &w.mu)
	return w
}

// Load positions the walker on l and schedules the walk, superseding any
// walk in progress. A line without a target settles immediately.
func (w *Walker) Load(l Line) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timers.CancelAll()
	w.line = l
	w.current = l.Start
	w.steps = 0
	if !l.HasTarget {
		w.state = StateSettled
		return
	}
	w.state = StatePositioned
	w.timers.After(w.timing.StartDelay, w.begin)
}

// Clear cancels the walk and returns to Idle.
func (w *Walker) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timers.CancelAll()
	w.line = Line{}
	w.current, w.steps = 0, 0
	w.state = StateIdle
}

// Stop cancels pending steps, leaving the marker where it is.
func (w *Walker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timers.CancelAll()
}

// begin and step run with w.mu held (sched.Group contract).
func (w *Walker) begin() {
	if w.current == w.line.Target {
		w.settle()
		return
	}
	w.state = StateStepping
	w.timers.After(w.timing.Tick, w.step)
}

func (w *Walker) step() {
	if w.current < w.line.Target {
		w.current++
	} else if w.current > w.line.Target {
		w.current--
	}
	w.steps++
	if w.current == w.line.Target {
		w.settle()
		return
	}
	w.timers.After(w.timing.Tick, w.step)
}

func (w *Walker) settle() {
	w.state = StateSettled
	log.Debug().Int("start", w.line.Start).Int("target", w.line.Target).Int("steps", w.steps).Msg("number line settled")
}

// Snapshot is the observable walker state.
type Snapshot struct {
	State   State  `json:"state"`
	Start   int    `json:"start"`
	Current int    `json:"current"`
	Target  *int   `json:"target,omitempty"`
	Op      string `json:"op,omitempty"`
	Steps   int    `json:"steps"`
	Range   Range  `json:"range"`
}

// Snapshot reports where the marker is.
func (w *Walker) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Snapshot{
		State:   w.state,
		Start:   w.line.Start,
		Current: w.current,
		Op:      w.line.Op,
		Steps:   w.steps,
		Range:   w.line.Range,
	}
	if w.line.HasTarget {
		target := w.line.Target
		s.Target = &target
	}
	return s
}

// State returns the current state.
func (w *Walker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}
