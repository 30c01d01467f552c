package client

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// IdleKeepAlive fires a callback shortly after a running countdown goes
// quiet, so a display that stopped receiving broadcasts can poke the server
// for a fresh snapshot. The delay is jittered so a room full of displays
// does not stampede the session at once.
type IdleKeepAlive struct {
	clock   clockwork.Clock
	fire    func()
	delayFn func() time.Duration

	mu      sync.Mutex
	running bool
	timer   clockwork.Timer
	stopped bool
}

// NewIdleKeepAlive builds a keep-alive that calls fire after each quiet
// window while SetRunning(true) is in effect. A nil clock uses the wall
// clock.
func NewIdleKeepAlive(clock clockwork.Clock, fire func()) *IdleKeepAlive {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &IdleKeepAlive{
		clock: clock,
		fire:  fire,
		delayFn: func() time.Duration {
			return 5*time.Second + time.Duration(rand.Int63n(int64(5*time.Second)))
		},
	}
}

// SetRunning tracks whether any countdown is live. Transitioning to running
// arms the timer; transitioning to stopped disarms it.
func (k *IdleKeepAlive) SetRunning(running bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.stopped || running == k.running {
		return
	}
	k.running = running
	if running {
		k.arm()
	} else {
		k.disarm()
	}
}

// Bump resets the quiet window, typically on every received broadcast or
// locally sent action.
func (k *IdleKeepAlive) Bump() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.stopped || !k.running {
		return
	}
	k.disarm()
	k.arm()
}

// Stop permanently disables the keep-alive.
func (k *IdleKeepAlive) Stop() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.stopped = true
	k.disarm()
}

func (k *IdleKeepAlive) arm() {
	k.timer = k.clock.AfterFunc(k.delayFn(), k.onFire)
}

func (k *IdleKeepAlive) disarm() {
	if k.timer != nil {
		k.timer.Stop()
		k.timer = nil
	}
}

func (k *IdleKeepAlive) onFire() {
	k.mu.Lock()
	if k.stopped || !k.running {
		k.mu.Unlock()
		return
	}
	k.arm()
	k.mu.Unlock()
	k.fire()
}
