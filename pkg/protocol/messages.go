package protocol

import "encoding/json"

// Action type tags accepted from clients.
const (
	ActionScoreUpdate     = "SCORE_UPDATE"
	ActionResetScores     = "RESET_SCORES"
	ActionSetTeamName     = "SET_TEAM_NAME"
	ActionTimerStart      = "TIMER_START"
	ActionTimerPause      = "TIMER_PAUSE"
	ActionTimerReset      = "TIMER_RESET"
	ActionTimerSet        = "TIMER_SET"
	ActionTimerAdjust     = "TIMER_ADJUST"
	ActionSubTimerStart   = "SUB_TIMER_START"
	ActionSubTimerPause   = "SUB_TIMER_PAUSE"
	ActionSubTimerReset   = "SUB_TIMER_RESET"
	ActionSubTimerSet     = "SUB_TIMER_SET"
	ActionSubTimerAdjust  = "SUB_TIMER_ADJUST"
	ActionDoOrDieUpdate   = "DO_OR_DIE_UPDATE"
	ActionDoOrDieReset    = "DO_OR_DIE_RESET"
	ActionCourtChange     = "COURT_CHANGE"
	ActionResetAll        = "RESET_ALL"
	ActionGetGameState    = "GET_GAME_STATE"
	ActionTimeSyncRequest = "TIME_SYNC_REQUEST"
)

// Server message types.
const (
	TypeGameState = "game_state"
	TypeError     = "error"
	TypeTimeSync  = "time_sync"
)

// ActionEnvelope is the client -> server wire frame. A frame without an
// action field is malformed.
type ActionEnvelope struct {
	Action *ActionPayload `json:"action"`
}

// ActionPayload carries one tagged action; unused fields stay zero.
type ActionPayload struct {
	Type       string `json:"type"`
	Team       TeamID `json:"team,omitempty"`
	Points     int    `json:"points,omitempty"`
	Name       string `json:"name,omitempty"`
	Duration   int    `json:"duration,omitempty"`
	Delta      int    `json:"delta,omitempty"`
	ClientTime int64  `json:"clientRequestTime,omitempty"`
}

// ServerMessage is the server -> client wire frame. Data holds a GameState for
// game_state, a string for error, and a TimeSyncData for time_sync. Timestamp
// is the server clock in milliseconds at send time.
type ServerMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// TimeSyncData answers a TIME_SYNC_REQUEST: the client's request timestamp
// echoed back plus the server clock, both millisecond epoch.
type TimeSyncData struct {
	ClientRequestTime int64 `json:"clientRequestTime"`
	ServerTime        int64 `json:"serverTime"`
}

// NewStateMessage wraps a game state snapshot for the wire.
func NewStateMessage(state *GameState, timestamp int64) (ServerMessage, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return ServerMessage{}, err
	}
	return ServerMessage{Type: TypeGameState, Data: data, Timestamp: timestamp}, nil
}

// NewErrorMessage wraps a protocol error destined for a single connection.
func NewErrorMessage(reason string, timestamp int64) ServerMessage {
	data, _ := json.Marshal(reason)
	return ServerMessage{Type: TypeError, Data: data, Timestamp: timestamp}
}

// NewTimeSyncMessage wraps a time sync reply.
func NewTimeSyncMessage(clientTime, serverTime int64) ServerMessage {
	data, _ := json.Marshal(TimeSyncData{ClientRequestTime: clientTime, ServerTime: serverTime})
	return ServerMessage{Type: TypeTimeSync, Data: data, Timestamp: serverTime}
}
