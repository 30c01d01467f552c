package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"scoreclock/pkg/protocol"
)

func sampleState() protocol.GameState {
	anchor := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	return protocol.GameState{
		TeamA: protocol.TeamState{Name: "Lions", Score: 5, DoOrDieCount: 1},
		TeamB: protocol.TeamState{Name: "Tigers", Score: 3},
		Timer: protocol.TimerState{
			TotalDuration: 900,
			StartTime:     &anchor,
			IsRunning:     true,
		},
		SubTimer:     protocol.TimerState{TotalDuration: 30, RemainingSeconds: 30},
		ServerTime:   anchor,
		LastUpdated:  anchor,
		LeftSideTeam: protocol.TeamB,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	want := sampleState()
	require.NoError(t, s.Save(ctx, "match-1", want))

	got, err := s.Load(ctx, "match-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Overwrite wins.
	want.TeamA.Score = 6
	require.NoError(t, s.Save(ctx, "match-1", want))
	got, err = s.Load(ctx, "match-1")
	require.NoError(t, err)
	assert.Equal(t, 6, got.TeamA.Score)
}

func TestMemoryStoreIsolatesSessions(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	a := sampleState()
	b := sampleState()
	b.TeamA.Name = "Bears"
	require.NoError(t, s.Save(ctx, "match-a", a))
	require.NoError(t, s.Save(ctx, "match-b", b))

	got, err := s.Load(ctx, "match-a")
	require.NoError(t, err)
	assert.Equal(t, "Lions", got.TeamA.Name)
}

func TestGormStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	s, err := OpenGorm(dsn, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Load(ctx, "gorm-test-missing")
	assert.ErrorIs(t, err, ErrNotFound)

	want := sampleState()
	require.NoError(t, s.Save(ctx, "gorm-test-1", want))

	got, err := s.Load(ctx, "gorm-test-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Upsert path.
	want.Timer.IsRunning = false
	require.NoError(t, s.Save(ctx, "gorm-test-1", want))
	got, err = s.Load(ctx, "gorm-test-1")
	require.NoError(t, err)
	assert.False(t, got.Timer.IsRunning)
}
