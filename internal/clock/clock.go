// Package clock supplies a monotonic millisecond time source that can be
// swapped out in tests. The decision core never calls time.Now() directly —
// the Core and the candle aggregator are constructed with a Clock, and the
// Core passes its readings down as millisecond timestamps, so hysteresis
// counters, cooldown windows and excursion timestamps are deterministic
// under test.
package clock

import "time"

// Clock returns the current time in Unix milliseconds.
type Clock interface {
	NowMs() int64
}

// System is the production Clock, backed by time.Now().
type System struct{}

// systemStart anchors System readings: the wall-clock time taken once, plus
// the monotonic time elapsed since then, so readings never go backwards
// when the wall clock is adjusted.
var systemStart = time.Now()

// NowMs implements Clock.
func (System) NowMs() int64 {
	return systemStart.UnixMilli() + time.Since(systemStart).Milliseconds()
}

// Manual is a Clock a test can advance explicitly.
type Manual struct {
	ms int64
}

// NewManual creates a Manual clock starting at the given Unix millisecond time.
func NewManual(startMs int64) *Manual {
	return &Manual{ms: startMs}
}

// NowMs implements Clock.
func (m *Manual) NowMs() int64 {
	return m.ms
}

// Set pins the clock to an absolute Unix millisecond time.
func (m *Manual) Set(ms int64) {
	m.ms = ms
}

// Advance moves the clock forward by the given number of milliseconds.
func (m *Manual) Advance(ms int64) {
	m.ms += ms
}
