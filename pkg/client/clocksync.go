package client

import (
	"sync"
	"time"
)

const syncSamples = 8

// Sample is one request/response clock measurement.
type Sample struct {
	Offset time.Duration // server clock minus local clock
	RTT    time.Duration
}

// SyncEstimator estimates the offset between the server clock and the local
// clock from time-sync round trips, NTP style: the server reading is assumed
// to land at the midpoint of the round trip. Recent samples are kept in a
// small ring and the lowest-RTT one wins, since less queueing means the
// midpoint assumption held best.
type SyncEstimator struct {
	mu   sync.Mutex
	ring [syncSamples]Sample
	n    int
	next int
}

func NewSyncEstimator() *SyncEstimator {
	return &SyncEstimator{}
}

// Observe records one round trip: sendTime and receiveTime are local clock
// readings bracketing the exchange, serverTimeMillis is the server's clock
// from the response.
func (e *SyncEstimator) Observe(sendTime, receiveTime time.Time, serverTimeMillis int64) {
	rtt := receiveTime.Sub(sendTime)
	if rtt < 0 {
		return
	}
	serverAt := time.UnixMilli(serverTimeMillis)
	midpoint := receiveTime.Add(-rtt / 2)
	s := Sample{Offset: serverAt.Sub(midpoint), RTT: rtt}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.ring[e.next] = s
	e.next = (e.next + 1) % syncSamples
	if e.n < syncSamples {
		e.n++
	}
}

// Offset returns the current best estimate of server-minus-local clock
// offset. ok is false until at least one sample has been observed.
func (e *SyncEstimator) Offset() (offset time.Duration, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.n == 0 {
		return 0, false
	}
	best := e.ring[0]
	for _, s := range e.ring[1:e.n] {
		if s.RTT < best.RTT {
			best = s
		}
	}
	return best.Offset, true
}

// Quality reports the RTT of the sample backing the current estimate.
func (e *SyncEstimator) Quality() (rtt time.Duration, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.n == 0 {
		return 0, false
	}
	best := e.ring[0]
	for _, s := range e.ring[1:e.n] {
		if s.RTT < best.RTT {
			best = s
		}
	}
	return best.RTT, true
}
