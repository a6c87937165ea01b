package numline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/numviz/internal/sched"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   Line
		wantOK bool
	}{
		{
			name:   "subtract symbol",
			text:   "7 - 3",
			want:   Line{Start: 7, Target: 4, HasTarget: true, Op: "-", Distance: 3, Range: Range{Min: 2, Max: 10}},
			wantOK: true,
		},
		{
			name:   "add word",
			text:   "Start at 12 PLUS 5 on the number line",
			want:   Line{Start: 12, Target: 17, HasTarget: true, Op: "+", Distance: 5, Range: Range{Min: 9, Max: 19}},
			wantOK: true,
		},
		{
			name:   "filler before the operator",
			text:   "Start at 4 and add 5",
			want:   Line{Start: 4, Target: 9, HasTarget: true, Op: "+", Distance: 5, Range: Range{Min: 1, Max: 11}},
			wantOK: true,
		},
		{
			name:   "operator inside a longer word",
			text:   "3 addresses 2",
			want:   Line{Start: 3, Target: 3, Range: Range{Min: 1, Max: 10}},
			wantOK: true,
		},
		{
			name:   "take away below zero",
			text:   "2 take away 5",
			want:   Line{Start: 2, Target: -3, HasTarget: true, Op: "-", Distance: 5, Range: Range{Min: -5, Max: 10}},
			wantOK: true,
		},
		{
			name:   "lone number",
			text:   "Show 6 on the number line",
			want:   Line{Start: 6, Target: 6, Range: Range{Min: 4, Max: 10}},
			wantOK: true,
		},
		{
			name:   "no numbers",
			text:   "show a number line",
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Setup(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRangeFor(t *testing.T) {
	tests := []struct {
		start, target int
		want          Range
	}{
		{7, 4, Range{Min: 2, Max: 10}},
		{0, 3, Range{Min: 0, Max: 10}},
		{40, 55, Range{Min: 38, Max: 57}},
		{5, -2, Range{Min: -4, Max: 10}},
		{500, 503, Range{Min: 495, Max: 505}},
		{9, 10, Range{Min: 2, Max: 12}},
	}
	for _, tt := range tests {
		r := RangeFor(tt.start, tt.target)
		assert.Equal(t, tt.want, r, "RangeFor(%d, %d)", tt.start, tt.target)
		assert.True(t, r.Contains(tt.start))
		assert.True(t, r.Contains(tt.target))
		assert.GreaterOrEqual(t, tt.start-r.Min, 0)
		if r.Max > rangeFloor {
			assert.GreaterOrEqual(t, r.Max-r.Min, rangeFloor, "lines past the floor span at least 10")
		}
	}
}

func TestWalkerStepsDownToTarget(t *testing.T) {
	m := sched.NewManual()
	w := NewWalker(m, DefaultTiming())
	assert.Equal(t, StateIdle, w.State())

	line, ok := Setup("7 - 3")
	require.True(t, ok)
	w.Load(line)

	snap := w.Snapshot()
	assert.Equal(t, StatePositioned, snap.State)
	assert.Equal(t, 7, snap.Current)
	require.NotNil(t, snap.Target)
	assert.Equal(t, 4, *snap.Target)

	m.Advance(time.Second)
	assert.Equal(t, StateStepping, w.State())
	assert.Equal(t, 7, w.Snapshot().Current)

	for want := 6; want >= 4; want-- {
		m.Advance(500 * time.Millisecond)
		assert.Equal(t, want, w.Snapshot().Current)
	}
	snap = w.Snapshot()
	assert.Equal(t, StateSettled, snap.State)
	assert.Equal(t, 3, snap.Steps)

	m.Advance(time.Minute)
	assert.Equal(t, 4, w.Snapshot().Current, "never overshoots")
	assert.Zero(t, m.Pending())
}

func TestWalkerLoneNumberSettlesImmediately(t *testing.T) {
	m := sched.NewManual()
	w := NewWalker(m, DefaultTiming())
	line, _ := Setup("9")
	w.Load(line)

	snap := w.Snapshot()
	assert.Equal(t, StateSettled, snap.State)
	assert.Nil(t, snap.Target)
	assert.Equal(t, 9, snap.Current)
	assert.Zero(t, m.Pending())
}

func TestWalkerZeroDistanceSettlesOnStart(t *testing.T) {
	m := sched.NewManual()
	w := NewWalker(m, DefaultTiming())
	line, _ := Setup("5 + 0")
	w.Load(line)

	m.Advance(time.Second)
	assert.Equal(t, StateSettled, w.State())
	assert.Zero(t, w.Snapshot().Steps)
}

func TestWalkerReloadCancelsPreviousWalk(t *testing.T) {
	m := sched.NewManual()
	w := NewWalker(m, DefaultTiming())
	first, _ := Setup("0 + 8")
	w.Load(first)
	m.Advance(2 * time.Second) // two steps in
	assert.Equal(t, 2, w.Snapshot().Current)

	second, _ := Setup("3 + 1")
	w.Load(second)
	assert.Equal(t, 3, w.Snapshot().Current)

	m.Advance(time.Second)
	assert.Equal(t, 3, w.Snapshot().Current, "old ticks must not move the new marker")
	m.Advance(500 * time.Millisecond)
	assert.Equal(t, 4, w.Snapshot().Current)
	assert.Equal(t, StateSettled, w.State())
}

func TestWalkerStopAndClear(t *testing.T) {
	m := sched.NewManual()
	w := NewWalker(m, DefaultTiming())
	line, _ := Setup("10 - 6")
	w.Load(line)
	m.Advance(1500 * time.Millisecond)
	w.Stop()
	m.Advance(time.Minute)
	assert.Equal(t, 9, w.Snapshot().Current)
	assert.Equal(t, StateStepping, w.State())

	w.Clear()
	assert.Equal(t, StateIdle, w.State())
	assert.Zero(t, m.Pending())
}
