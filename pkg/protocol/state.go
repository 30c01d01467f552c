package protocol

// TeamID identifies one of the two sides of a match.
type TeamID string

const (
	TeamA TeamID = "teamA"
	TeamB TeamID = "teamB"
)

// TeamState is the per-team slice of the scoreboard.
type TeamState struct {
	Name         string `json:"name"`
	Score        int    `json:"score"`
	DoOrDieCount int    `json:"doOrDieCount"`
}

// TimerState holds a countdown timer's anchor fields. Timestamps are
// millisecond epoch values; StartTime and PausedAt are nil while the timer is
// stopped. RemainingSeconds is authoritative only while the timer is not
// running; while running the remaining time derives from StartTime and
// TotalDuration.
type TimerState struct {
	TotalDuration    int     `json:"totalDuration"`
	StartTime        *int64  `json:"startTime"`
	IsRunning        bool    `json:"isRunning"`
	IsPaused         bool    `json:"isPaused"`
	PausedAt         *int64  `json:"pausedAt"`
	RemainingSeconds float64 `json:"remainingSeconds"`
}

// GameState is the authoritative state of one match session. One record per
// session is persisted; ServerTime is refreshed on every persist/broadcast and
// is the server clock clients reconcile against.
type GameState struct {
	TeamA        TeamState  `json:"teamA"`
	TeamB        TeamState  `json:"teamB"`
	Timer        TimerState `json:"timer"`
	SubTimer     TimerState `json:"subTimer"`
	ServerTime   int64      `json:"serverTime"`
	LastUpdated  int64      `json:"lastUpdated"`
	LeftSideTeam TeamID     `json:"leftSideTeam,omitempty"`
}

// TimerFor selects the sub timer when sub is true, the main timer otherwise.
func (s *GameState) TimerFor(sub bool) *TimerState {
	if sub {
		return &s.SubTimer
	}
	return &s.Timer
}

// Team returns the addressed team's state, or nil for an unknown id.
func (s *GameState) Team(id TeamID) *TeamState {
	switch id {
	case TeamA:
		return &s.TeamA
	case TeamB:
		return &s.TeamB
	default:
		return nil
	}
}
