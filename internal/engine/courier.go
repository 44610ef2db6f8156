package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shelfsim/shelfsim/internal/config"
)

// DelaySource draws courier travel delays. Implemented by UniformDelay
// (production) and the deterministic sources in internal/testutil.
type DelaySource interface {
	// Delay returns a delay in seconds drawn from [min, max].
	Delay(min, max float64) float64
}

// UniformDelay draws uniformly from [min, max] with a per-run random source.
// Draws are independent per run; reproducing a run requires pinning the
// DelaySource, not re-seeding.
type UniformDelay struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewUniformDelay creates a source seeded from the current time.
func NewUniformDelay() *UniformDelay {
	return &UniformDelay{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (u *UniformDelay) Delay(min, max float64) float64 {
	if max <= min {
		return min
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return min + u.rng.Float64()*(max-min)
}

// TokenGenerator mints dispatch tokens. Implemented by UUIDv7Generator
// (production) and testutil.TokenSequence (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator mints time-sortable UUIDv7 dispatch tokens.
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Dispatch describes one scheduled courier.
type Dispatch struct {
	Token   string
	Delay   float64
	Arrival float64
}

// Dispatcher schedules exactly one courier-arrived event per received order,
// at a randomized delay, using whichever ordering discipline is active.
//
// In wall-clock mode scheduling is a real timer whose callback enqueues the
// arrival event after the delay has actually elapsed. In logical-priority
// mode the event is enqueued immediately with key = now + delay.
type Dispatcher struct {
	mode     config.Mode
	min, max float64
	delays   DelaySource
	tokens   TokenGenerator
	queue    *eventQueue
}

func newDispatcher(cfg config.Config, q *eventQueue, delays DelaySource, tokens TokenGenerator) *Dispatcher {
	return &Dispatcher{
		mode:   cfg.Concurrency,
		min:    cfg.CourierArrivalMin,
		max:    cfg.CourierArrivalMax,
		delays: delays,
		tokens: tokens,
		queue:  q,
	}
}

// Dispatch schedules a courier for the originating order-received event and
// returns its fresh token and computed arrival. The caller (the Engine)
// tracks the token until the matching arrival event is processed.
func (d *Dispatcher) Dispatch(now float64, orig Event) Dispatch {
	delay := d.delays.Delay(d.min, d.max)
	token := d.tokens.Generate()
	arrival := now + delay

	ev := Event{Type: EventCourierArrived, Token: token, Orig: &orig}
	if d.mode == config.ModeWall {
		ev.Key = ignoredKey
		time.AfterFunc(secondsToDuration(delay), func() {
			d.queue.Enqueue(ev)
		})
	} else {
		ev.Key = arrival
		d.queue.Enqueue(ev)
	}

	return Dispatch{Token: token, Delay: delay, Arrival: arrival}
}
