// Package testutil provides deterministic stand-ins for the simulation's
// two sources of nondeterminism: courier delay draws and dispatch tokens.
package testutil

import "sync"

// FixedDelay returns the same delay for every draw, ignoring the range.
//
// This pins the single source of timing randomness so tests can assert on
// exact arrival ordering.
type FixedDelay struct {
	D float64
}

func (f FixedDelay) Delay(min, max float64) float64 {
	return f.D
}

// SequencedDelay returns predetermined delays in order.
//
// Panics when exhausted: a test drawing more delays than it provided is a
// test bug worth failing fast on.
type SequencedDelay struct {
	mu     sync.Mutex
	delays []float64
	idx    int
}

// NewSequencedDelay creates a source returning the given delays in order.
func NewSequencedDelay(delays ...float64) *SequencedDelay {
	return &SequencedDelay{delays: delays}
}

func (s *SequencedDelay) Delay(min, max float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx >= len(s.delays) {
		panic("testutil: SequencedDelay exhausted")
	}
	d := s.delays[s.idx]
	s.idx++
	return d
}
