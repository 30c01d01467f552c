package client

import (
	"math"
	"sync"
	"time"

	"scoreclock/pkg/protocol"
)

// anchored is a countdown pinned to the local clock. Remaining time at any
// instant is remaining - elapsed-since-receivedAt, so a display can tick
// smoothly between snapshots without trusting the server clock.
type anchored struct {
	remaining  float64
	receivedAt time.Time
	running    bool
}

func (a anchored) at(now time.Time) float64 {
	if !a.running {
		return math.Max(0, a.remaining)
	}
	elapsed := now.Sub(a.receivedAt).Seconds()
	return math.Max(0, a.remaining-elapsed)
}

// Reconciler turns authoritative state snapshots into locally tickable
// countdowns. Each snapshot re-anchors the timers at the moment it arrived,
// which absorbs both network latency jitter and server/client clock skew.
type Reconciler struct {
	mu    sync.Mutex
	state protocol.GameState
	main  anchored
	sub   anchored
	seen  bool
}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Ingest replaces the held state with a fresh snapshot, anchoring both
// timers at receivedAt. Remaining time for a running timer is computed
// against the snapshot's own serverTime so only the server's two clock
// readings are ever compared with each other.
func (r *Reconciler) Ingest(state protocol.GameState, receivedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = state
	r.main = reanchor(state.Timer, state.ServerTime, receivedAt)
	r.sub = reanchor(state.SubTimer, state.ServerTime, receivedAt)
	r.seen = true
}

func reanchor(t protocol.TimerState, serverTime int64, receivedAt time.Time) anchored {
	if t.IsRunning && t.StartTime != nil {
		elapsed := float64(serverTime-*t.StartTime) / 1000.0
		return anchored{
			remaining:  math.Max(0, float64(t.TotalDuration)-elapsed),
			receivedAt: receivedAt,
			running:    true,
		}
	}
	return anchored{remaining: math.Max(0, t.RemainingSeconds)}
}

// Remaining reports the main timer's whole seconds left at now, rounded up
// so a display shows "1" until the countdown actually reaches zero.
func (r *Reconciler) Remaining(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(math.Ceil(r.main.at(now)))
}

// SubRemaining is Remaining for the sub-timer.
func (r *Reconciler) SubRemaining(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(math.Ceil(r.sub.at(now)))
}

// AnyRunning reports whether either countdown is still visibly ticking.
func (r *Reconciler) AnyRunning(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (r.main.running && r.main.at(now) > 0) ||
		(r.sub.running && r.sub.at(now) > 0)
}

// State returns the last ingested snapshot and whether one has arrived yet.
func (r *Reconciler) State() (protocol.GameState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.seen
}
