package scoreboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoreclock/pkg/protocol"
)

func TestParseActionScoreUpdate(t *testing.T) {
	a, err := ParseAction(protocol.ActionPayload{
		Type: protocol.ActionScoreUpdate, Team: protocol.TeamA, Points: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, ScoreUpdate{Team: protocol.TeamA, Points: 2}, a)

	_, err = ParseAction(protocol.ActionPayload{
		Type: protocol.ActionScoreUpdate, Team: "teamC", Points: 2,
	})
	assert.ErrorIs(t, err, ErrUnknownTeam)
}

func TestParseActionTeamName(t *testing.T) {
	a, err := ParseAction(protocol.ActionPayload{
		Type: protocol.ActionSetTeamName, Team: protocol.TeamB, Name: "Tigers",
	})
	require.NoError(t, err)
	assert.Equal(t, SetTeamName{Team: protocol.TeamB, Name: "Tigers"}, a)

	// The 20-char limit counts runes, not bytes: 9 runes, 25 bytes.
	a, err = ParseAction(protocol.ActionPayload{
		Type: protocol.ActionSetTeamName, Team: protocol.TeamA, Name: "जयपुर टीम",
	})
	require.NoError(t, err)
	assert.Equal(t, SetTeamName{Team: protocol.TeamA, Name: "जयपुर टीम"}, a)

	for _, bad := range []string{"", " leading", "trailing ", "name longer than twenty!", strings.Repeat("ツ", 21)} {
		_, err := ParseAction(protocol.ActionPayload{
			Type: protocol.ActionSetTeamName, Team: protocol.TeamB, Name: bad,
		})
		assert.ErrorIs(t, err, ErrInvalidTeamName, "name %q", bad)
	}
}

func TestParseActionTimerVariants(t *testing.T) {
	a, err := ParseAction(protocol.ActionPayload{Type: protocol.ActionTimerStart})
	require.NoError(t, err)
	assert.Equal(t, TimerStart{}, a)

	a, err = ParseAction(protocol.ActionPayload{Type: protocol.ActionSubTimerStart})
	require.NoError(t, err)
	assert.Equal(t, TimerStart{Sub: true}, a)

	a, err = ParseAction(protocol.ActionPayload{Type: protocol.ActionSubTimerAdjust, Delta: -15})
	require.NoError(t, err)
	assert.Equal(t, TimerAdjust{Sub: true, Delta: -15}, a)
}

func TestParseActionSetDurationValidation(t *testing.T) {
	for _, typ := range []string{protocol.ActionTimerSet, protocol.ActionSubTimerSet} {
		_, err := ParseAction(protocol.ActionPayload{Type: typ, Duration: 0})
		assert.ErrorIs(t, err, ErrInvalidDuration, typ)

		_, err = ParseAction(protocol.ActionPayload{Type: typ, Duration: -30})
		assert.ErrorIs(t, err, ErrInvalidDuration, typ)
	}

	a, err := ParseAction(protocol.ActionPayload{Type: protocol.ActionTimerSet, Duration: 300})
	require.NoError(t, err)
	assert.Equal(t, TimerSet{Duration: 300}, a)
}

func TestParseActionUnknownTypeIsTolerated(t *testing.T) {
	a, err := ParseAction(protocol.ActionPayload{Type: "FUTURE_ACTION"})
	assert.NoError(t, err)
	assert.Nil(t, a)
}

func TestParseActionTimeSync(t *testing.T) {
	a, err := ParseAction(protocol.ActionPayload{
		Type: protocol.ActionTimeSyncRequest, ClientTime: 1234,
	})
	require.NoError(t, err)
	assert.Equal(t, TimeSyncRequest{ClientTime: 1234}, a)
}
