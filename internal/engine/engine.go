package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/shelfsim/shelfsim/internal/config"
	"github.com/shelfsim/shelfsim/internal/order"
)

// Locations an order record can hold besides a shelf name. Delivered,
// wasted, and capacity-dropped are terminal and sticky: no event moves an
// order out of them.
const (
	LocCapacityDropped = "capacity-dropped"
	LocWasted          = "wasted"
	LocDelivered       = "delivered"
)

// OrderRecord is the Engine's mutable bookkeeping for one order. Records
// are retained for the remainder of the run; unbounded growth is an
// accepted simplification of this simulation, not a production property.
type OrderRecord struct {
	Order order.Order
	Pos   int

	// ReadyAt is when the order became available for pickup — always its
	// creation time, since preparation is instantaneous.
	ReadyAt float64

	// Location is a shelf name, or one of the terminal locations above.
	// Empty means the order never found a shelf (data-integrity case).
	Location string

	// PickupAt is when a courier actually reached the order.
	PickupAt float64
	PickedUp bool
}

// Engine is the single consumer of the shared queue and the sole owner of
// all shelf, record, and counter state, which therefore needs no locks.
//
// Run must be called from exactly one goroutine. External actors only ever
// enqueue.
type Engine struct {
	mode            config.Mode
	dispatchEnabled bool

	queue      *eventQueue
	clock      *Clock
	shelves    *ShelfSet
	dispatcher *Dispatcher

	running bool
	started float64

	records     map[string]*OrderRecord
	outstanding map[string]struct{}
	counters    Counters
}

func newEngine(cfg config.Config, q *eventQueue, delays DelaySource, tokens TokenGenerator) *Engine {
	return &Engine{
		mode:            cfg.Concurrency,
		dispatchEnabled: cfg.CourierDispatchEnabled,
		queue:           q,
		shelves:         NewShelfSet(cfg.ShelfCapacity),
		dispatcher:      newDispatcher(cfg, q, delays, tokens),
		records:         make(map[string]*OrderRecord),
		outstanding:     make(map[string]struct{}),
	}
}

// Run drives the event loop until shutdown has been seen AND the queue has
// drained AND no courier dispatch is outstanding. The last two clauses
// matter: the shutdown sentinel only sorts after events already comparable
// with it, not after timer callbacks that have yet to fire.
//
// An unrecoverable fault (malformed event data) terminates the loop
// abnormally and is returned for the orchestrator to surface.
func (e *Engine) Run(start float64) error {
	e.started = start
	e.clock = NewClock(e.mode, start)
	e.running = true
	slog.Info("engine started", "mode", e.mode)

	for e.running || e.queue.Len() > 0 || len(e.outstanding) > 0 {
		ev, ok := e.queue.TryDequeue()
		if !ok {
			if e.queue.Closed() {
				return fmt.Errorf("event queue closed with the engine still draining")
			}
			<-e.queue.Wait()
			continue
		}
		if err := e.handleEvent(ev); err != nil {
			slog.Error("engine fault", "event", ev.Type.String(), "error", err)
			return err
		}
	}

	slog.Info("engine exits",
		"events", e.counters.Events,
		"delivered", e.counters.Delivered,
		"wasted", e.counters.WastedTotal(),
		"capacity_dropped", e.counters.CapacityDropped,
	)
	return nil
}

func (e *Engine) handleEvent(ev Event) error {
	e.counters.Events++
	e.clock.Advance(ev.Key)

	slog.Debug("handling event", "type", ev.Type.String(), "key", ev.Key, "now", e.clock.Now())

	switch ev.Type {
	case EventShutdown:
		e.counters.Shutdowns++
		e.running = false
		slog.Debug("engine will stop once queue and outstanding dispatches drain")
		return nil
	case EventOrderReceived:
		e.counters.OrdersReceived++
		return e.handleOrderReceived(ev)
	case EventCourierArrived:
		e.counters.CourierArrivals++
		return e.handleCourierArrived(ev)
	default:
		e.counters.Unhandled++
		slog.Error("unhandled event type", "type", int(ev.Type))
		return nil
	}
}

func (e *Engine) handleOrderReceived(ev Event) error {
	o := ev.Order

	// Courier dispatch is fire-and-forget relative to placement: even an
	// order about to be dropped gets its courier.
	if e.dispatchEnabled {
		d := e.dispatcher.Dispatch(e.clock.Now(), ev)
		e.outstanding[d.Token] = struct{}{}
		e.counters.CouriersDispatched++
		slog.Info("courier dispatched",
			"pos", ev.Pos,
			"order", o.ID,
			"token", d.Token,
			"delay", d.Delay,
			"arrival", d.Arrival,
			"outstanding", len(e.outstanding),
		)
	}

	now := e.clock.Now()
	rec := &OrderRecord{Order: o, Pos: ev.Pos, ReadyAt: now}
	e.records[o.ID] = rec
	slog.Info("order prepared instantly, ready for pickup", "pos", ev.Pos, "order", o.ID, "at", now)

	// Free shelf space from orders that decayed to zero before placing.
	e.sweepWaste(now)

	if !e.shelves.Has(string(o.Temp)) {
		e.counters.NoShelf++
		slog.Error("order has no shelf for its temperature class",
			"pos", ev.Pos, "order", o.ID, "temp", o.Temp)
		return nil
	}

	p := e.shelves.Place(o)

	for _, m := range p.Migrated {
		if mrec := e.records[m.Order.ID]; mrec != nil {
			mrec.Location = m.To
		}
		slog.Info("order migrated from overflow to ideal shelf", "order", m.Order.ID, "to", m.To)
	}

	if p.Evicted != nil {
		if vrec := e.records[p.Evicted.ID]; vrec != nil {
			vrec.Location = LocCapacityDropped
		}
		e.counters.CapacityDropped++
		slog.Info("overflow order evicted to make room",
			"pos", ev.Pos, "order", o.ID, "evicted", p.Evicted.ID)
	}

	if p.Dropped {
		rec.Location = LocCapacityDropped
		e.counters.CapacityDropped++
		slog.Info("order dropped, zero overflow capacity", "pos", ev.Pos, "order", o.ID, "temp", o.Temp)
		return nil
	}

	rec.Location = p.Shelf
	slog.Info("order shelved", "pos", ev.Pos, "order", o.ID, "shelf", p.Shelf)
	return nil
}

func (e *Engine) handleCourierArrived(ev Event) error {
	if _, ok := e.outstanding[ev.Token]; !ok {
		return fmt.Errorf("courier arrival carries unknown dispatch token %q", ev.Token)
	}
	delete(e.outstanding, ev.Token)

	if ev.Orig == nil {
		return fmt.Errorf("courier arrival for token %q has no originating order event", ev.Token)
	}
	o := ev.Orig.Order
	rec := e.records[o.ID]
	if rec == nil {
		return fmt.Errorf("courier arrival for order %s with no record", o.ID)
	}

	now := e.clock.Now()
	rec.PickupAt = now
	rec.PickedUp = true
	age := now - rec.ReadyAt

	switch loc := rec.Location; {
	case loc == LocCapacityDropped:
		e.counters.PickupFailCapacityDropped++
		slog.Info("courier cannot pick up, order was capacity-dropped", "pos", rec.Pos, "order", o.ID)

	case loc == LocWasted:
		e.counters.PickupFailWastedPrior++
		slog.Info("courier cannot pick up, order wasted before arrival", "pos", rec.Pos, "order", o.ID, "age", age)

	case e.shelves.Has(loc):
		e.shelves.Remove(o.ID, loc)
		value := order.Value(age, o.ShelfLife, o.DecayRate, decayModifierFor(loc))
		if value <= 0 {
			rec.Location = LocWasted
			e.counters.PickupFailWastedNow++
			slog.Info("courier found order too old, wasted at pickup",
				"pos", rec.Pos, "order", o.ID, "age", age, "value", value)
		} else {
			rec.Location = LocDelivered
			e.counters.Delivered++
			slog.Info("courier picks up, delivers instantly",
				"pos", rec.Pos, "order", o.ID, "age", age, "value", value)
		}

	default:
		// Invariant violation: no known location. Counted, never fatal.
		e.counters.PickupFailBadLocation++
		slog.Error("courier cannot pick up, order has no known location", "order", o.ID, "location", loc)
	}

	return nil
}

// sweepWaste removes every shelved order whose value has reached zero,
// marking it wasted. Invoked before every placement decision.
func (e *Engine) sweepWaste(now float64) {
	for _, name := range e.shelves.Names() {
		for _, o := range e.shelves.Contents(name) {
			rec := e.records[o.ID]
			if rec == nil {
				continue
			}
			age := now - rec.ReadyAt
			value := order.Value(age, o.ShelfLife, o.DecayRate, decayModifierFor(name))
			if value <= 0 {
				e.shelves.Remove(o.ID, name)
				rec.Location = LocWasted
				e.counters.SweepWasted++
				slog.Info("shelved order decayed to waste",
					"order", o.ID, "shelf", name, "age", age, "value", value)
			}
		}
	}
}

// decayModifierFor is 1.0 on a single-temperature shelf, 2.0 anywhere else
// (decay accelerates when not climate-matched).
func decayModifierFor(loc string) float64 {
	for _, t := range order.SingleTemps() {
		if loc == string(t) {
			return 1.0
		}
	}
	return 2.0
}

// Counters returns the run's metrics. Read after Run completes.
func (e *Engine) Counters() Counters {
	return e.counters
}

// QueueLen returns the number of pending events.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// OutstandingDispatches returns the number of couriers dispatched but not
// yet arrived.
func (e *Engine) OutstandingDispatches() int {
	return len(e.outstanding)
}

// Record returns the order record for id, or nil.
func (e *Engine) Record(id string) *OrderRecord {
	return e.records[id]
}

// Snapshot captures the observable outputs of a finished run for reporting
// and archiving. The core never formats these.
type Snapshot struct {
	Mode      config.Mode
	Counters  Counters
	Shelves   []ShelfSnapshot
	Records   []OrderRecord
	QueueLen  int
	InFlight  int
	StartedAt float64
	EndedAt   float64
}

// ShelfSnapshot is one shelf's final and peak occupancy against capacity.
type ShelfSnapshot struct {
	Name     string
	Final    int
	Peak     int
	Capacity config.Limit
}

// Snapshot builds the run snapshot. Call only after Run has returned.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Mode:      e.mode,
		Counters:  e.counters,
		QueueLen:  e.queue.Len(),
		InFlight:  len(e.outstanding),
		StartedAt: e.started,
	}
	if e.clock != nil {
		snap.EndedAt = e.clock.Current()
	}
	for _, name := range e.shelves.Names() {
		snap.Shelves = append(snap.Shelves, ShelfSnapshot{
			Name:     name,
			Final:    e.shelves.Occupancy(name),
			Peak:     e.shelves.Peak(name),
			Capacity: e.shelves.Capacity(name),
		})
	}
	for _, rec := range e.records {
		snap.Records = append(snap.Records, *rec)
	}
	sort.Slice(snap.Records, func(i, j int) bool {
		return snap.Records[i].Pos < snap.Records[j].Pos
	})
	return snap
}
