package sched

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	m := NewManual()
	var got []string
	m.AfterFunc(300*time.Millisecond, func() { got = append(got, "c") })
	m.AfterFunc(100*time.Millisecond, func() { got = append(got, "a") })
	m.AfterFunc(100*time.Millisecond, func() { got = append(got, "b") })

	m.Advance(99 * time.Millisecond)
	assert.Empty(t, got)

	m.Advance(time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, got)

	m.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 1100*time.Millisecond, m.Now())
	assert.Zero(t, m.Pending())
}

func TestManualChainsTimersWithinWindow(t *testing.T) {
	m := NewManual()
	var at []time.Duration
	var tick func()
	tick = func() {
		at = append(at, m.Now())
		if len(at) < 3 {
			m.AfterFunc(500*time.Millisecond, tick)
		}
	}
	m.AfterFunc(500*time.Millisecond, tick)

	m.Advance(2 * time.Second)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second, 1500 * time.Millisecond}, at)
}

func TestManualStop(t *testing.T) {
	m := NewManual()
	fired := false
	tm := m.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop(), "second stop is a no-op")
	m.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestGroupCancelAll(t *testing.T) {
	m := NewManual()
	var mu sync.Mutex
	g := NewGroup(m, &mu)
	fired := 0

	mu.Lock()
	g.After(time.Second, func() { fired++ })
	g.After(2*time.Second, func() { fired++ })
	require.Equal(t, 2, g.Pending())
	mu.Unlock()

	m.Advance(time.Second)
	assert.Equal(t, 1, fired)

	mu.Lock()
	assert.Equal(t, 1, g.CancelAll())
	assert.Zero(t, g.Pending())
	mu.Unlock()

	m.Advance(time.Minute)
	assert.Equal(t, 1, fired)
}

// staleTimer ignores Stop, standing in for a real timer whose callback is
// already running when CancelAll is called.
type staleTimer struct{}

func (staleTimer) Stop() bool { return false }

type stubbornScheduler struct{ fns []func() }

func (s *stubbornScheduler) AfterFunc(_ time.Duration, fn func()) Timer {
	s.fns = append(s.fns, fn)
	return staleTimer{}
}

func TestGroupDropsInFlightCallbackAfterCancel(t *testing.T) {
	s := &stubbornScheduler{}
	var mu sync.Mutex
	g := NewGroup(s, &mu)
	fired := false

	mu.Lock()
	g.After(time.Second, func() { fired = true })
	g.CancelAll()
	mu.Unlock()

	require.Len(t, s.fns, 1)
	s.fns[0]()
	assert.False(t, fired, "callback from a cancelled generation must not run")
}

func TestRealSchedulerFires(t *testing.T) {
	done := make(chan struct{})
	Real().AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}
