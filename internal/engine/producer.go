package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfsim/shelfsim/internal/config"
	"github.com/shelfsim/shelfsim/internal/order"
)

// Producer replays the input batch at the configured submission rate,
// emitting one order-received event per order, in input order. It only ever
// enqueues; shelf and record state is the Engine's alone.
//
// Pacing is 1/rate seconds between successive emissions, with no pause
// after the last. In wall-clock mode the Producer literally sleeps; in
// logical-priority mode it advances its own logical clock instead.
type Producer struct {
	mode   config.Mode
	rate   config.Limit
	queue  *eventQueue
	orders []order.Order

	started float64
	now     float64
}

func newProducer(cfg config.Config, q *eventQueue, orders []order.Order) *Producer {
	return &Producer{
		mode:   cfg.Concurrency,
		rate:   cfg.OrderRate,
		queue:  q,
		orders: orders,
	}
}

// Run emits the batch. A rate of 0 emits nothing; an unbounded rate emits
// with no delay between orders. Any fault while emitting is returned for
// the orchestrator to record; the Producer never crashes the Engine.
func (p *Producer) Run(start float64) error {
	p.started = start
	p.now = start
	slog.Info("producer started", "orders", len(p.orders), "rate", p.rate.String())

	if p.rate <= 0 {
		slog.Info("order rate is zero, no orders will be submitted")
		return nil
	}

	pause := 0.0
	if !p.rate.IsUnbounded() {
		pause = 1.0 / float64(p.rate)
	}

	for i, o := range p.orders {
		pos := i + 1

		ev := Event{Type: EventOrderReceived, Pos: pos, Order: o}
		if p.mode == config.ModeWall {
			ev.Key = ignoredKey
		} else {
			ev.Key = p.now
		}
		if !p.queue.Enqueue(ev) {
			return fmt.Errorf("event queue closed while submitting order %d (%s)", pos, o.ID)
		}
		slog.Info("order submitted",
			"pos", pos,
			"order", o.ID,
			"name", o.Name,
			"at", ev.Key,
			"queue", p.queue.Len(),
		)

		if pos < len(p.orders) {
			if p.mode == config.ModeWall {
				time.Sleep(secondsToDuration(pause))
			} else {
				p.now += pause
			}
		}
	}

	slog.Info("producer exits", "submitted", len(p.orders))
	return nil
}
