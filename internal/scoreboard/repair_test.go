package scoreboard

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoreclock/pkg/protocol"
)

func TestRepairZeroValueRecord(t *testing.T) {
	// A record written by an older build: nulls and missing fields decode to
	// zero values.
	var s protocol.GameState
	require.NoError(t, json.Unmarshal([]byte(`{"teamA":{"name":null},"timer":{}}`), &s))

	Repair(&s, Defaults{}, t0)

	assert.Equal(t, "Team A", s.TeamA.Name)
	assert.Equal(t, "Team B", s.TeamB.Name)
	assert.Equal(t, 900, s.Timer.TotalDuration)
	assert.Equal(t, float64(900), s.Timer.RemainingSeconds)
	assert.Equal(t, 30, s.SubTimer.TotalDuration)
	assert.Equal(t, protocol.TeamA, s.LeftSideTeam)
	assert.Equal(t, t0.UnixMilli(), s.ServerTime)
	assert.Equal(t, t0.UnixMilli(), s.LastUpdated)
}

func TestRepairTeamFields(t *testing.T) {
	s := NewGameState(Defaults{}, t0)
	s.TeamA.Name = "  "
	s.TeamA.Score = -3
	s.TeamB.Name = "this name is far too long to keep"
	s.TeamB.DoOrDieCount = 9

	Repair(&s, Defaults{}, t0)

	assert.Equal(t, "Team A", s.TeamA.Name)
	assert.Equal(t, 0, s.TeamA.Score)
	assert.Equal(t, "Team B", s.TeamB.Name)
	assert.Equal(t, 3, s.TeamB.DoOrDieCount)
}

func TestRepairKeepsMultibyteName(t *testing.T) {
	s := NewGameState(Defaults{}, t0)
	// 9 runes but 25 bytes; the rune limit must keep it across reloads.
	s.TeamA.Name = "जयपुर टीम"

	Repair(&s, Defaults{}, t0)

	assert.Equal(t, "जयपुर टीम", s.TeamA.Name)
}

func TestRepairRunningWithoutAnchor(t *testing.T) {
	s := NewGameState(Defaults{}, t0)
	s.Timer.IsRunning = true
	s.Timer.StartTime = nil
	s.Timer.RemainingSeconds = 500

	Repair(&s, Defaults{}, t0)

	assert.False(t, s.Timer.IsRunning)
	assert.False(t, s.Timer.IsPaused)
	assert.Equal(t, float64(500), s.Timer.RemainingSeconds)
}

func TestRepairRunningAndPausedPrefersPaused(t *testing.T) {
	s := NewGameState(Defaults{}, t0)
	anchor := t0.UnixMilli()
	pausedAt := t0.Add(time.Minute).UnixMilli()
	s.Timer.StartTime = &anchor
	s.Timer.IsRunning = true
	s.Timer.IsPaused = true
	s.Timer.PausedAt = &pausedAt
	s.Timer.RemainingSeconds = 840

	Repair(&s, Defaults{}, t0.Add(2*time.Minute))

	assert.False(t, s.Timer.IsRunning)
	assert.True(t, s.Timer.IsPaused)
	assert.Equal(t, float64(840), s.Timer.RemainingSeconds)
}

func TestRepairPausedWithoutPausedAt(t *testing.T) {
	s := NewGameState(Defaults{}, t0)
	anchor := t0.UnixMilli()
	s.Timer.StartTime = &anchor
	s.Timer.IsPaused = true
	s.Timer.PausedAt = nil
	s.Timer.RemainingSeconds = 700

	Repair(&s, Defaults{}, t0)

	assert.False(t, s.Timer.IsPaused)
	assert.False(t, s.Timer.IsRunning)
	assert.Nil(t, s.Timer.StartTime)
	assert.Equal(t, float64(700), s.Timer.RemainingSeconds)
}

func TestRepairStaleAnchorOnStoppedTimer(t *testing.T) {
	s := NewGameState(Defaults{}, t0)
	anchor := t0.UnixMilli()
	s.Timer.StartTime = &anchor

	Repair(&s, Defaults{}, t0)

	assert.Nil(t, s.Timer.StartTime)
}

func TestRepairClampsRemaining(t *testing.T) {
	s := NewGameState(Defaults{}, t0)
	s.Timer.RemainingSeconds = 5000
	s.SubTimer.RemainingSeconds = -10

	Repair(&s, Defaults{}, t0)

	assert.Equal(t, float64(900), s.Timer.RemainingSeconds)
	assert.Equal(t, float64(0), s.SubTimer.RemainingSeconds)
}

func TestRepairKeepsHealthyRunningTimer(t *testing.T) {
	s := NewGameState(Defaults{}, t0)
	require.True(t, Apply(&s, TimerStart{}, Defaults{}, t0))

	Repair(&s, Defaults{}, t0.Add(10*time.Second))

	assert.True(t, s.Timer.IsRunning)
	require.NotNil(t, s.Timer.StartTime)
	assert.Equal(t, t0.UnixMilli(), *s.Timer.StartTime)
}
