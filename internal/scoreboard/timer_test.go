package scoreboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoreclock/pkg/protocol"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func runningTimer(t *testing.T, seconds int, startedAt time.Time) protocol.TimerState {
	t.Helper()
	tm := newTimer(seconds)
	require.True(t, startTimer(&tm, startedAt))
	return tm
}

func TestStartPauseAccumulatesWallClock(t *testing.T) {
	tm := runningTimer(t, 900, t0)

	require.True(t, pauseTimer(&tm, t0.Add(120*time.Second)))
	secs, running := Remaining(tm, t0.Add(120*time.Second))
	assert.Equal(t, 780, secs)
	assert.False(t, running)

	// Paused time must not count: resume 80s later, pause again after 60s
	// more of running.
	require.True(t, startTimer(&tm, t0.Add(200*time.Second)))
	require.True(t, pauseTimer(&tm, t0.Add(260*time.Second)))
	secs, _ = Remaining(tm, t0.Add(260*time.Second))
	assert.Equal(t, 720, secs)
}

func TestStartWhileRunningIsNoOp(t *testing.T) {
	tm := runningTimer(t, 900, t0)
	anchor := *tm.StartTime

	assert.False(t, startTimer(&tm, t0.Add(10*time.Second)))
	assert.Equal(t, anchor, *tm.StartTime)
}

func TestPauseWhileStoppedIsNoOp(t *testing.T) {
	tm := newTimer(900)
	assert.False(t, pauseTimer(&tm, t0))
	assert.False(t, tm.IsPaused)
}

func TestResumeShiftsAnchorByPausedInterval(t *testing.T) {
	tm := runningTimer(t, 900, t0)
	require.True(t, pauseTimer(&tm, t0.Add(100*time.Second)))

	// 50s spent paused; the anchor must move forward by exactly that much.
	require.True(t, startTimer(&tm, t0.Add(150*time.Second)))
	assert.Equal(t, t0.Add(50*time.Second).UnixMilli(), *tm.StartTime)

	secs, running := Remaining(tm, t0.Add(150*time.Second))
	assert.Equal(t, 800, secs)
	assert.True(t, running)
}

func TestResetFromAnyState(t *testing.T) {
	tm := runningTimer(t, 900, t0)
	require.True(t, resetTimer(&tm))
	assert.Nil(t, tm.StartTime)
	assert.False(t, tm.IsRunning)
	assert.False(t, tm.IsPaused)
	assert.Equal(t, float64(900), tm.RemainingSeconds)
}

func TestSetForcesStopped(t *testing.T) {
	tm := runningTimer(t, 900, t0)
	require.True(t, setTimer(&tm, 600))
	assert.False(t, tm.IsRunning)
	assert.Nil(t, tm.StartTime)
	assert.Equal(t, 600, tm.TotalDuration)
	assert.Equal(t, float64(600), tm.RemainingSeconds)

	assert.False(t, setTimer(&tm, 0))
	assert.False(t, setTimer(&tm, -5))
	assert.Equal(t, 600, tm.TotalDuration)
}

func TestAdjustStopped(t *testing.T) {
	tm := newTimer(900)
	require.True(t, adjustTimer(&tm, 30))
	require.True(t, adjustTimer(&tm, -60))
	assert.Equal(t, float64(870), tm.RemainingSeconds)

	// Floors at zero.
	require.True(t, adjustTimer(&tm, -10000))
	assert.Equal(t, float64(0), tm.RemainingSeconds)
}

func TestAdjustRunningShiftsAnchor(t *testing.T) {
	tm := runningTimer(t, 900, t0)

	require.True(t, adjustTimer(&tm, 30))
	assert.Equal(t, t0.UnixMilli()-30_000, *tm.StartTime)
	assert.True(t, tm.IsRunning)

	secs, running := Remaining(tm, t0)
	assert.Equal(t, 870, secs)
	assert.True(t, running)
}

func TestRemainingRunning(t *testing.T) {
	tm := runningTimer(t, 900, t0)

	secs, running := Remaining(tm, t0.Add(100*time.Second))
	assert.Equal(t, 800, secs)
	assert.True(t, running)

	// Partial seconds round up so the display holds "1" until zero.
	secs, _ = Remaining(tm, t0.Add(100*time.Second+300*time.Millisecond))
	assert.Equal(t, 800, secs)

	// Past the end: clamped, and no longer reported as running.
	secs, running = Remaining(tm, t0.Add(2000*time.Second))
	assert.Equal(t, 0, secs)
	assert.False(t, running)
}

func TestRemainingRunningWithoutAnchor(t *testing.T) {
	tm := newTimer(900)
	tm.IsRunning = true // inconsistent persisted state
	tm.RemainingSeconds = 42

	secs, running := Remaining(tm, t0)
	assert.Equal(t, 42, secs)
	assert.True(t, running)
}
