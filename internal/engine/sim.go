package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfsim/shelfsim/internal/config"
	"github.com/shelfsim/shelfsim/internal/order"
)

// Simulation orchestrates one run: the Producer and the Engine joined by
// the shared queue, plus shutdown signalling and fault collection.
type Simulation struct {
	cfg      config.Config
	queue    *eventQueue
	engine   *Engine
	producer *Producer
}

// Option configures a Simulation.
type Option func(*simOptions)

type simOptions struct {
	delays DelaySource
	tokens TokenGenerator
}

// WithDelaySource overrides the courier delay source. Tests pin delays this
// way instead of plumbing random seeds.
func WithDelaySource(d DelaySource) Option {
	return func(o *simOptions) { o.delays = d }
}

// WithTokenGenerator overrides the dispatch token generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(o *simOptions) { o.tokens = g }
}

// New builds a Simulation for the given configuration and order batch.
func New(cfg config.Config, batch []order.Order, opts ...Option) *Simulation {
	so := simOptions{}
	for _, opt := range opts {
		opt(&so)
	}
	if so.delays == nil {
		so.delays = NewUniformDelay()
	}
	if so.tokens == nil {
		so.tokens = UUIDv7Generator{}
	}

	q := newEventQueue(cfg.Concurrency == config.ModeLogical)
	return &Simulation{
		cfg:      cfg,
		queue:    q,
		engine:   newEngine(cfg, q, so.delays, so.tokens),
		producer: newProducer(cfg, q, batch),
	}
}

// Result is the outcome of one run. Actor faults are recorded here rather
// than propagated; a run with a non-nil actor error is a failed run, never
// retried.
type Result struct {
	ProducerErr error
	EngineErr   error

	// SimulatedSpan is how far the engine clock travelled: simulated
	// seconds in logical-priority mode, real seconds in wall-clock mode.
	SimulatedSpan float64

	// RealSpan is wall time actually elapsed running the simulation.
	RealSpan float64

	Snapshot Snapshot
}

// Failed reports whether either actor terminated abnormally.
func (r *Result) Failed() bool {
	return r.ProducerErr != nil || r.EngineErr != nil
}

// Err returns the first actor fault, if any.
func (r *Result) Err() error {
	if r.ProducerErr != nil {
		return r.ProducerErr
	}
	return r.EngineErr
}

// Run executes the simulation to completion and returns its result.
//
// In wall-clock mode the Engine starts consuming before the Producer begins,
// then shutdown is enqueued once the Producer finishes. In logical-priority
// mode the Producer runs to completion first — start order cannot matter,
// since ordering is key-based — then shutdown is enqueued with the sentinel
// key and the Engine drains everything.
func (s *Simulation) Run() *Result {
	startedReal := time.Now()
	start := unixSeconds(startedReal)
	res := &Result{}

	producerDone := make(chan error, 1)
	engineDone := make(chan error, 1)

	if s.cfg.Concurrency == config.ModeWall {
		go func() {
			engineDone <- runActor("engine", func() error { return s.engine.Run(start) })
		}()
		go func() {
			producerDone <- runActor("producer", func() error { return s.producer.Run(start) })
		}()
		res.ProducerErr = <-producerDone
		s.queue.Enqueue(Event{Type: EventShutdown, Key: ignoredKey})
		res.EngineErr = <-engineDone
	} else {
		go func() {
			producerDone <- runActor("producer", func() error { return s.producer.Run(start) })
		}()
		res.ProducerErr = <-producerDone
		s.queue.Enqueue(Event{Type: EventShutdown, Key: ShutdownKey})
		res.EngineErr = runActor("engine", func() error { return s.engine.Run(start) })
	}

	res.Snapshot = s.engine.Snapshot()
	res.SimulatedSpan = res.Snapshot.EndedAt - start
	res.RealSpan = time.Since(startedReal).Seconds()

	slog.Info("simulation finished",
		"simulated_span", res.SimulatedSpan,
		"real_span", res.RealSpan,
		"failed", res.Failed(),
	)
	return res
}

// Engine exposes the simulation's engine for post-run inspection.
func (s *Simulation) Engine() *Engine {
	return s.engine
}

// runActor invokes one actor body, converting a panic into a recorded
// error so a dying actor surfaces as a failed run instead of a crash.
func runActor(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s actor panicked: %v", name, r)
		}
	}()
	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
