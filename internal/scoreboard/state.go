package scoreboard

import (
	"strings"
	"time"
	"unicode/utf8"

	"scoreclock/pkg/protocol"
)

// Fallbacks used wherever a Defaults field is left zero.
const (
	DefaultTimerSeconds    = 900
	DefaultSubTimerSeconds = 30
	DefaultTeamAName       = "Team A"
	DefaultTeamBName       = "Team B"
)

const maxTeamNameLen = 20

// Defaults are the caller-chosen values a fresh or repaired GameState falls
// back to.
type Defaults struct {
	TimerSeconds    int
	SubTimerSeconds int
	TeamAName       string
	TeamBName       string
}

func (d Defaults) withFallbacks() Defaults {
	if d.TimerSeconds <= 0 {
		d.TimerSeconds = DefaultTimerSeconds
	}
	if d.SubTimerSeconds <= 0 {
		d.SubTimerSeconds = DefaultSubTimerSeconds
	}
	if d.TeamAName == "" {
		d.TeamAName = DefaultTeamAName
	}
	if d.TeamBName == "" {
		d.TeamBName = DefaultTeamBName
	}
	return d
}

// NewGameState builds the default state a session starts from.
func NewGameState(d Defaults, now time.Time) protocol.GameState {
	d = d.withFallbacks()
	n := millis(now)
	return protocol.GameState{
		TeamA:        protocol.TeamState{Name: d.TeamAName},
		TeamB:        protocol.TeamState{Name: d.TeamBName},
		Timer:        newTimer(d.TimerSeconds),
		SubTimer:     newTimer(d.SubTimerSeconds),
		ServerTime:   n,
		LastUpdated:  n,
		LeftSideTeam: protocol.TeamA,
	}
}

func newTimer(seconds int) protocol.TimerState {
	return protocol.TimerState{
		TotalDuration:    seconds,
		RemainingSeconds: float64(seconds),
	}
}

// ValidTeamName reports whether a name is acceptable as-is: already trimmed
// and between 1 and 20 runes.
func ValidTeamName(name string) bool {
	if name == "" || utf8.RuneCountInString(name) > maxTeamNameLen {
		return false
	}
	return name == strings.TrimSpace(name)
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}
