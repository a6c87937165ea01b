// internal/reveal/reveal.go
//
// Timed reveal of the visual groups of one explanation.
// Responsibilities:
//   - Track which groups are visible: group A at mount, group B after
//     SecondDelay, the result after ResultDelay (both measured from mount).
//   - Keep stage transitions monotonic: First → Second → Result, no rollback.
//   - Cancel pending reveals on Reset/Stop so a superseded cycle never
//     fires against new state.

package reveal

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numviz/internal/sched"
)

// Stage is how far the reveal has progressed.
type Stage int

const (
	StageFirst Stage = iota
	StageSecond
	StageResult
)

func (s Stage) String() string {
	switch s {
	case StageSecond:
		return "second"
	case StageResult:
		return "result"
	default:
		return "first"
	}
}

// Timing holds the display-policy delays. They only change pacing.
type Timing struct {
	SecondDelay time.Duration
	ResultDelay time.Duration
}

// DefaultTiming reveals group B at 1.5s and the result at 3s.
func DefaultTiming() Timing {
	return Timing{SecondDelay: 1500 * time.Millisecond, ResultDelay: 3000 * time.Millisecond}
}

// Sequencer drives one reveal cycle.
type Sequencer struct {
	mu      sync.Mutex
	timers  *sched.Group
	timing  Timing
	stage   Stage
	cycle   int
	stopped bool
}

// New returns a Sequencer that has not started; group A is already visible.
func New(s sched.Scheduler, t Timing) *Sequencer {
	q := &Sequencer{timing: t}
	q.timers = sched.NewGroup(s, &q.mu)
	return q
}

// Start begins a fresh cycle, cancelling whatever the previous cycle had pending.
func (q *Sequencer) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.timers.CancelAll()
	q.stage = StageFirst
	q.stopped = false
	q.cycle++
	cycle := q.cycle
	q.timers.After(q.timing.SecondDelay, func() { q.advance(cycle, StageSecond) })
	q.timers.After(q.timing.ResultDelay, func() { q.advance(cycle, StageResult) })
}

// Reset replays the cycle from the first group.
func (q *Sequencer) Reset() { q.Start() }

// Stop cancels pending reveals and freezes the current stage.
func (q *Sequencer) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.timers.CancelAll()
	q.stopped = true
}

// advance runs with q.mu held (sched.Group contract).
func (q *Sequencer) advance(cycle int, to Stage) {
	if to <= q.stage {
		return
	}
	q.stage = to
	log.Debug().Int("cycle", cycle).Stringer("stage", to).Msg("reveal")
}

// Snapshot is the visible state of the groups.
type Snapshot struct {
	Stage   string `json:"stage"`
	GroupA  bool   `json:"groupA"`
	GroupB  bool   `json:"groupB"`
	Result  bool   `json:"result"`
	Cycle   int    `json:"cycle"`
	Stopped bool   `json:"stopped,omitempty"`
}

// Snapshot reports the current visibility flags.
func (q *Sequencer) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Snapshot{
		Stage:   q.stage.String(),
		GroupA:  true,
		GroupB:  q.stage >= StageSecond,
		Result:  q.stage >= StageResult,
		Cycle:   q.cycle,
		Stopped: q.stopped,
	}
}

// Stage returns the current stage.
func (q *Sequencer) Stage() Stage {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stage
}

// Pending reports how many reveals are still scheduled.
func (q *Sequencer) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.timers.Pending()
}
