package scoreboard

import (
	"strings"
	"time"
	"unicode/utf8"

	"scoreclock/pkg/protocol"
)

// Repair makes a loaded state safe to serve, field by field, so a corrupted
// or legacy record never takes a session down. Missing or out-of-range values
// fall back to defaults; flag combinations that violate the timer state
// machine are demoted to the nearest consistent state.
func Repair(s *protocol.GameState, d Defaults, now time.Time) {
	d = d.withFallbacks()
	repairTeam(&s.TeamA, d.TeamAName)
	repairTeam(&s.TeamB, d.TeamBName)
	repairTimer(&s.Timer, d.TimerSeconds)
	repairTimer(&s.SubTimer, d.SubTimerSeconds)

	if s.LeftSideTeam != protocol.TeamA && s.LeftSideTeam != protocol.TeamB {
		s.LeftSideTeam = protocol.TeamA
	}
	n := millis(now)
	if s.LastUpdated <= 0 {
		s.LastUpdated = n
	}
	s.ServerTime = n
}

func repairTeam(t *protocol.TeamState, defaultName string) {
	name := strings.TrimSpace(t.Name)
	if name == "" || utf8.RuneCountInString(name) > maxTeamNameLen {
		name = defaultName
	}
	t.Name = name

	if t.Score < 0 {
		t.Score = 0
	}
	if t.DoOrDieCount < 0 {
		t.DoOrDieCount = 0
	}
	if t.DoOrDieCount > 3 {
		t.DoOrDieCount = 3
	}
}

func repairTimer(t *protocol.TimerState, defaultSeconds int) {
	if t.TotalDuration <= 0 {
		*t = newTimer(defaultSeconds)
		return
	}

	switch {
	case t.StartTime == nil:
		// No anchor means STOPPED regardless of what the flags claim.
		t.IsRunning = false
		t.IsPaused = false
		t.PausedAt = nil
	case t.IsRunning && t.IsPaused:
		// Contradictory flags: a paused record still has a trustworthy
		// RemainingSeconds, so prefer PAUSED.
		t.IsRunning = false
	case !t.IsRunning && !t.IsPaused:
		// Anchored but neither running nor paused: drop the stale anchor.
		t.StartTime = nil
		t.PausedAt = nil
	}

	if t.IsPaused && t.PausedAt == nil {
		// Paused with no pause timestamp cannot resume correctly; demote to
		// STOPPED and keep the stored remaining time.
		t.IsPaused = false
		t.StartTime = nil
	}
	if t.IsRunning {
		t.PausedAt = nil
	}

	if t.RemainingSeconds < 0 {
		t.RemainingSeconds = 0
	}
	if t.RemainingSeconds > float64(t.TotalDuration) {
		t.RemainingSeconds = float64(t.TotalDuration)
	}
}
