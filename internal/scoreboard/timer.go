package scoreboard

import (
	"math"
	"time"

	"scoreclock/pkg/protocol"
)

// startTimer moves a stopped or paused timer into RUNNING. Resuming from a
// pause shifts the anchor forward by the paused interval so elapsed-since-
// anchor stays continuous across the gap.
func startTimer(t *protocol.TimerState, now time.Time) bool {
	if t.IsRunning {
		return false
	}
	n := millis(now)
	if t.IsPaused && t.PausedAt != nil {
		anchor := n
		if t.StartTime != nil {
			anchor = *t.StartTime
		}
		shifted := anchor + (n - *t.PausedAt)
		t.StartTime = &shifted
	} else {
		t.StartTime = &n
	}
	t.IsRunning = true
	t.IsPaused = false
	t.PausedAt = nil
	return true
}

// pauseTimer freezes a running timer, making RemainingSeconds authoritative
// again.
func pauseTimer(t *protocol.TimerState, now time.Time) bool {
	if !t.IsRunning {
		return false
	}
	n := millis(now)
	if t.StartTime != nil {
		elapsed := float64(n-*t.StartTime) / 1000
		t.RemainingSeconds = math.Max(0, float64(t.TotalDuration)-elapsed)
	}
	t.IsRunning = false
	t.IsPaused = true
	t.PausedAt = &n
	return true
}

func resetTimer(t *protocol.TimerState) bool {
	t.StartTime = nil
	t.IsRunning = false
	t.IsPaused = false
	t.PausedAt = nil
	t.RemainingSeconds = float64(t.TotalDuration)
	return true
}

// setTimer installs a new total duration and forces the timer to STOPPED.
func setTimer(t *protocol.TimerState, seconds int) bool {
	if seconds <= 0 {
		return false
	}
	t.TotalDuration = seconds
	t.RemainingSeconds = float64(seconds)
	t.StartTime = nil
	t.IsRunning = false
	t.IsPaused = false
	t.PausedAt = nil
	return true
}

// adjustTimer applies a delta without changing the timer's state: while
// running it shifts the anchor by -delta seconds, otherwise it moves the
// stored remaining time, floored at zero.
func adjustTimer(t *protocol.TimerState, delta int) bool {
	if t.IsRunning && t.StartTime != nil {
		shifted := *t.StartTime - int64(delta)*1000
		t.StartTime = &shifted
		return true
	}
	t.RemainingSeconds = math.Max(0, t.RemainingSeconds+float64(delta))
	return true
}

// Remaining is the wall-clock-absolute countdown used where state is
// authoritative. Stopped and paused values are trusted verbatim; a running
// timer derives from its anchor, and the reported running flag flips to false
// once the countdown is exhausted (a display inference, never a mutation). A
// running timer without an anchor falls back to the trusted remaining value.
func Remaining(t protocol.TimerState, now time.Time) (int, bool) {
	if t.IsRunning && t.StartTime != nil {
		elapsed := float64(millis(now)-*t.StartTime) / 1000
		secs := int(math.Ceil(float64(t.TotalDuration) - elapsed))
		if secs < 0 {
			secs = 0
		}
		return secs, secs > 0
	}
	secs := int(math.Ceil(t.RemainingSeconds))
	if secs < 0 {
		secs = 0
	}
	return secs, t.IsRunning && secs > 0
}
