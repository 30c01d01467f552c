package scoreboard

import (
	"time"

	"scoreclock/pkg/protocol"
)

// Apply mutates state per the action's semantics and reports whether anything
// changed. Precondition misses (starting a running timer, pausing a stopped
// one) are silent no-ops, as are the read-only actions. A mutation stamps
// LastUpdated; the caller owns ServerTime, persistence and broadcast.
func Apply(s *protocol.GameState, a Action, d Defaults, now time.Time) bool {
	mutated := false

	switch a := a.(type) {
	case ScoreUpdate:
		team := s.Team(a.Team)
		if team == nil {
			return false
		}
		team.Score += a.Points
		if team.Score < 0 {
			team.Score = 0
		}
		mutated = true

	case ResetScores:
		s.TeamA.Score = 0
		s.TeamB.Score = 0
		mutated = true

	case SetTeamName:
		team := s.Team(a.Team)
		if team == nil || !ValidTeamName(a.Name) {
			return false
		}
		team.Name = a.Name
		mutated = true

	case TimerStart:
		mutated = startTimer(s.TimerFor(a.Sub), now)

	case TimerPause:
		mutated = pauseTimer(s.TimerFor(a.Sub), now)

	case TimerReset:
		mutated = resetTimer(s.TimerFor(a.Sub))

	case TimerSet:
		mutated = setTimer(s.TimerFor(a.Sub), a.Duration)

	case TimerAdjust:
		mutated = adjustTimer(s.TimerFor(a.Sub), a.Delta)

	case DoOrDieUpdate:
		team := s.Team(a.Team)
		if team == nil {
			return false
		}
		// The lower bound is an invariant; the [0,3] ceiling is left to the
		// display layer and to Repair on load.
		team.DoOrDieCount += a.Delta
		if team.DoOrDieCount < 0 {
			team.DoOrDieCount = 0
		}
		mutated = true

	case DoOrDieReset:
		s.TeamA.DoOrDieCount = 0
		s.TeamB.DoOrDieCount = 0
		mutated = true

	case CourtChange:
		if s.LeftSideTeam == protocol.TeamB {
			s.LeftSideTeam = protocol.TeamA
		} else {
			s.LeftSideTeam = protocol.TeamB
		}
		mutated = true

	case ResetAll:
		// Team names survive a full reset; everything else returns to
		// defaults.
		nameA, nameB := s.TeamA.Name, s.TeamB.Name
		*s = NewGameState(d, now)
		s.TeamA.Name = nameA
		s.TeamB.Name = nameB
		mutated = true

	case GetGameState, TimeSyncRequest:
		return false
	}

	if mutated {
		s.LastUpdated = millis(now)
	}
	return mutated
}
