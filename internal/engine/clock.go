package engine

import (
	"math"
	"time"

	"github.com/shelfsim/shelfsim/internal/config"
)

// Clock is the Engine's notion of current time under either discipline.
//
// Timestamps are float64 seconds (Unix epoch in wall-clock mode, simulated
// seconds from the run's start otherwise). In wall-clock mode Now is always
// the real clock; in logical-priority mode it is wherever the last dequeued
// event's key moved it.
//
// Not safe for concurrent use; only the Engine loop touches it.
type Clock struct {
	mode config.Mode
	now  float64
}

// NewClock creates a clock positioned at start.
func NewClock(mode config.Mode, start float64) *Clock {
	return &Clock{mode: mode, now: start}
}

// Now returns the current time under the active discipline.
func (c *Clock) Now() float64 {
	if c.mode == config.ModeWall {
		return unixSeconds(time.Now())
	}
	return c.now
}

// Advance moves the clock to a just-dequeued event's key. In wall-clock mode
// the key is ignored and the clock moves to real now. The +Inf shutdown
// sentinel never advances the clock.
func (c *Clock) Advance(key float64) {
	if math.IsInf(key, 1) {
		return
	}
	if c.mode == config.ModeWall {
		c.now = unixSeconds(time.Now())
		return
	}
	c.now = key
}

// Current returns the clock's position without consulting the real clock.
// This is the value run spans are measured against.
func (c *Clock) Current() float64 {
	return c.now
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
