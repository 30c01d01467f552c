package scoreboard

import (
	"errors"
	"fmt"

	"scoreclock/pkg/protocol"
)

var (
	ErrUnknownTeam     = errors.New("unknown team")
	ErrInvalidTeamName = errors.New("invalid team name")
	ErrInvalidDuration = errors.New("invalid duration")
)

// Action is the closed set of operations a session accepts. Inbound payloads
// are validated into one of these at the boundary and dispatched with an
// exhaustive type switch.
type Action interface{ isAction() }

type ScoreUpdate struct {
	Team   protocol.TeamID
	Points int
}

type ResetScores struct{}

type SetTeamName struct {
	Team protocol.TeamID
	Name string
}

// Timer actions carry Sub to select the sub timer; main and sub timers follow
// identical rules on independent anchors.
type TimerStart struct{ Sub bool }

type TimerPause struct{ Sub bool }

type TimerReset struct{ Sub bool }

type TimerSet struct {
	Sub      bool
	Duration int
}

type TimerAdjust struct {
	Sub   bool
	Delta int
}

type DoOrDieUpdate struct {
	Team  protocol.TeamID
	Delta int
}

type DoOrDieReset struct{}

type CourtChange struct{}

type ResetAll struct{}

// GetGameState requests a fresh snapshot for the sender; it never mutates.
type GetGameState struct{}

// TimeSyncRequest asks for the server clock; ClientTime is echoed back so the
// sender can compute round-trip time.
type TimeSyncRequest struct{ ClientTime int64 }

func (ScoreUpdate) isAction()     {}
func (ResetScores) isAction()     {}
func (SetTeamName) isAction()     {}
func (TimerStart) isAction()      {}
func (TimerPause) isAction()      {}
func (TimerReset) isAction()      {}
func (TimerSet) isAction()        {}
func (TimerAdjust) isAction()     {}
func (DoOrDieUpdate) isAction()   {}
func (DoOrDieReset) isAction()    {}
func (CourtChange) isAction()     {}
func (ResetAll) isAction()        {}
func (GetGameState) isAction()    {}
func (TimeSyncRequest) isAction() {}

// ParseAction validates an inbound payload into a typed Action. An
// unrecognized type tag returns (nil, nil): unknown actions are tolerated as
// no-ops rather than rejected. A non-nil error means the payload was shaped
// wrong and the sender should be told so.
func ParseAction(p protocol.ActionPayload) (Action, error) {
	switch p.Type {
	case protocol.ActionScoreUpdate:
		team, err := parseTeam(p.Team)
		if err != nil {
			return nil, err
		}
		return ScoreUpdate{Team: team, Points: p.Points}, nil

	case protocol.ActionResetScores:
		return ResetScores{}, nil

	case protocol.ActionSetTeamName:
		team, err := parseTeam(p.Team)
		if err != nil {
			return nil, err
		}
		if !ValidTeamName(p.Name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTeamName, p.Name)
		}
		return SetTeamName{Team: team, Name: p.Name}, nil

	case protocol.ActionTimerStart:
		return TimerStart{}, nil
	case protocol.ActionTimerPause:
		return TimerPause{}, nil
	case protocol.ActionTimerReset:
		return TimerReset{}, nil
	case protocol.ActionTimerSet:
		if p.Duration <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidDuration, p.Duration)
		}
		return TimerSet{Duration: p.Duration}, nil
	case protocol.ActionTimerAdjust:
		return TimerAdjust{Delta: p.Delta}, nil

	case protocol.ActionSubTimerStart:
		return TimerStart{Sub: true}, nil
	case protocol.ActionSubTimerPause:
		return TimerPause{Sub: true}, nil
	case protocol.ActionSubTimerReset:
		return TimerReset{Sub: true}, nil
	case protocol.ActionSubTimerSet:
		if p.Duration <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidDuration, p.Duration)
		}
		return TimerSet{Sub: true, Duration: p.Duration}, nil
	case protocol.ActionSubTimerAdjust:
		return TimerAdjust{Sub: true, Delta: p.Delta}, nil

	case protocol.ActionDoOrDieUpdate:
		team, err := parseTeam(p.Team)
		if err != nil {
			return nil, err
		}
		return DoOrDieUpdate{Team: team, Delta: p.Delta}, nil
	case protocol.ActionDoOrDieReset:
		return DoOrDieReset{}, nil

	case protocol.ActionCourtChange:
		return CourtChange{}, nil
	case protocol.ActionResetAll:
		return ResetAll{}, nil
	case protocol.ActionGetGameState:
		return GetGameState{}, nil
	case protocol.ActionTimeSyncRequest:
		return TimeSyncRequest{ClientTime: p.ClientTime}, nil

	default:
		return nil, nil
	}
}

func parseTeam(id protocol.TeamID) (protocol.TeamID, error) {
	switch id {
	case protocol.TeamA, protocol.TeamB:
		return id, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTeam, id)
	}
}
