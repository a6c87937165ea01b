// internal/session/session.go
//
// A Session is one render instance of the explanation view.
// Responsibilities:
//   - Hold the current question, its Plan, and the timed machines driving it
//     (reveal sequencer always, number-line walker for numLine plans).
//   - Supply: re-plan and restart on every new (mode, question), including a
//     repeat of the same pair, which replays the same cycle from the start.
//   - Close: cancel every pending timer on tear-down.
//
// Notes:
//   - All machines of a session share one scheduler; each machine owns the
//     cancellation handles of the timers it scheduled.

package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numviz/internal/interpret"
	"github.com/robalobadob/numviz/internal/numline"
	"github.com/robalobadob/numviz/internal/reveal"
	"github.com/robalobadob/numviz/internal/sched"
)

// Timing bundles the pacing of every machine in a session.
type Timing struct {
	Reveal reveal.Timing
	Line   numline.Timing
}

// DefaultTiming uses the default pacing of each machine.
func DefaultTiming() Timing {
	return Timing{Reveal: reveal.DefaultTiming(), Line: numline.DefaultTiming()}
}

// Session state for one render instance.
type Session struct {
	ID      string
	OwnerID string // user or anonymous id that created it

	ctl     sync.Mutex // serializes Supply and Close
	mu      sync.Mutex // guards fields below
	plan    interpret.Plan
	mode    string
	text    string
	cycles  int
	closed  bool
	touched time.Time

	seq  *reveal.Sequencer
	walk *numline.Walker
}

// New creates a session on s and supplies its first question.
func New(s sched.Scheduler, t Timing, ownerID, mode, text string) *Session {
	now := time.Now()
	sess := &Session{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		touched: now,
		seq:     reveal.New(s, t.Reveal),
		walk:    numline.NewWalker(s, t.Line),
	}
	sess.Supply(mode, text)
	return sess
}

// Supply interprets (mode, text) and restarts the cycle, superseding any
// timers from the previous question.
func (s *Session) Supply(mode, text string) interpret.Plan {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	plan := interpret.Interpret(mode, text)

	s.mu.Lock()
	s.plan, s.mode, s.text = plan, mode, text
	s.cycles++
	s.closed = false
	s.touched = time.Now()
	cycle := s.cycles
	s.mu.Unlock()

	s.seq.Start()
	if plan.NumberLine != nil {
		s.walk.Load(*plan.NumberLine)
	} else {
		s.walk.Clear()
	}
	log.Debug().Str("session", s.ID).Int("cycle", cycle).Str("mode", plan.Mode).Str("kind", string(plan.Kind)).Msg("session supplied")
	return plan
}

// Replay restarts the current question from its first group.
func (s *Session) Replay() interpret.Plan {
	s.mu.Lock()
	mode, text := s.mode, s.text
	s.mu.Unlock()
	return s.Supply(mode, text)
}

// Close cancels every pending timer. The session keeps its last state.
func (s *Session) Close() {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	s.seq.Stop()
	s.walk.Stop()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Snapshot is the render state of a session at one instant.
type Snapshot struct {
	SessionID  string            `json:"sessionId"`
	Cycle      int               `json:"cycle"`
	Closed     bool              `json:"closed,omitempty"`
	Plan       interpret.Plan    `json:"plan"`
	Reveal     reveal.Snapshot   `json:"reveal"`
	NumberLine *numline.Snapshot `json:"numberLine,omitempty"`
}

// Snapshot reports the plan with the current reveal and walker state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{SessionID: s.ID, Cycle: s.cycles, Closed: s.closed, Plan: s.plan}
	s.touched = time.Now()
	hasLine := s.plan.NumberLine != nil
	s.mu.Unlock()

	snap.Reveal = s.seq.Snapshot()
	if hasLine {
		ws := s.walk.Snapshot()
		snap.NumberLine = &ws
	}
	return snap
}

// LastTouched reports when the session was last supplied or read.
func (s *Session) LastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}
