// Package report renders a finished run's snapshot for humans and machines.
// The engine never formats anything; everything here is derived read-only
// from the run result.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shelfsim/shelfsim/internal/engine"
)

// Summary is the reportable view of one run.
type Summary struct {
	Mode          string  `json:"mode"`
	Failed        bool    `json:"failed"`
	Error         string  `json:"error,omitempty"`
	SimulatedSpan float64 `json:"simulated_span_seconds"`
	RealSpan      float64 `json:"real_span_seconds"`

	Counts  Counts      `json:"counts"`
	Shelves []ShelfLine `json:"shelves"`
	Orders  []OrderLine `json:"orders"`
}

// Counts flattens the engine counters into the report's vocabulary.
type Counts struct {
	Events             int64 `json:"events"`
	OrdersReceived     int64 `json:"orders_received"`
	CouriersDispatched int64 `json:"couriers_dispatched"`
	CourierArrivals    int64 `json:"courier_arrivals"`
	Delivered          int64 `json:"delivered"`
	Wasted             int64 `json:"wasted"`
	SweepWasted        int64 `json:"sweep_wasted"`
	WastedAtPickup     int64 `json:"wasted_at_pickup"`
	CapacityDropped    int64 `json:"capacity_dropped"`
	NoShelf            int64 `json:"no_shelf"`
	PickupFailures     int64 `json:"pickup_failures"`
}

// ShelfLine is one shelf's final state.
type ShelfLine struct {
	Name     string `json:"name"`
	Final    int    `json:"final"`
	Peak     int    `json:"peak"`
	Capacity string `json:"capacity"`
}

// OrderLine is one order's final outcome, in batch order.
type OrderLine struct {
	Pos      int     `json:"pos"`
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Temp     string  `json:"temp"`
	Outcome  string  `json:"outcome"`
	PickedUp bool    `json:"picked_up"`
	HeldFor  float64 `json:"held_for_seconds,omitempty"`
}

// Build derives the summary from a completed run.
func Build(res *engine.Result) Summary {
	snap := res.Snapshot
	c := snap.Counters

	s := Summary{
		Mode:          string(snap.Mode),
		Failed:        res.Failed(),
		SimulatedSpan: res.SimulatedSpan,
		RealSpan:      res.RealSpan,
		Counts: Counts{
			Events:             c.Events,
			OrdersReceived:     c.OrdersReceived,
			CouriersDispatched: c.CouriersDispatched,
			CourierArrivals:    c.CourierArrivals,
			Delivered:          c.Delivered,
			Wasted:             c.WastedTotal(),
			SweepWasted:        c.SweepWasted,
			WastedAtPickup:     c.PickupFailWastedNow,
			CapacityDropped:    c.CapacityDropped,
			NoShelf:            c.NoShelf,
			PickupFailures: c.PickupFailCapacityDropped +
				c.PickupFailWastedPrior +
				c.PickupFailWastedNow +
				c.PickupFailBadLocation,
		},
	}
	if err := res.Err(); err != nil {
		s.Error = err.Error()
	}

	for _, sh := range snap.Shelves {
		s.Shelves = append(s.Shelves, ShelfLine{
			Name:     sh.Name,
			Final:    sh.Final,
			Peak:     sh.Peak,
			Capacity: sh.Capacity.String(),
		})
	}

	for _, rec := range snap.Records {
		line := OrderLine{
			Pos:      rec.Pos,
			ID:       rec.Order.ID,
			Name:     rec.Order.Name,
			Temp:     string(rec.Order.Temp),
			Outcome:  outcome(rec),
			PickedUp: rec.PickedUp,
		}
		if rec.PickedUp {
			line.HeldFor = rec.PickupAt - rec.ReadyAt
		}
		s.Orders = append(s.Orders, line)
	}

	return s
}

// outcome names where an order ended up in report vocabulary. A shelf name
// means the order was still sitting there when the run ended.
func outcome(rec engine.OrderRecord) string {
	switch rec.Location {
	case engine.LocDelivered, engine.LocWasted, engine.LocCapacityDropped:
		return rec.Location
	case "":
		return "unplaced"
	default:
		return "shelved:" + rec.Location
	}
}

// JSON renders the summary as indented JSON.
func (s Summary) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Text renders the summary as a human-readable report.
func (s Summary) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run (%s mode)\n", s.Mode)
	if s.Failed {
		fmt.Fprintf(&b, "  FAILED: %s\n", s.Error)
	}
	fmt.Fprintf(&b, "  simulated span: %.3fs\n", s.SimulatedSpan)
	fmt.Fprintf(&b, "  real span:      %.3fs\n", s.RealSpan)

	b.WriteString("\nOutcomes\n")
	fmt.Fprintf(&b, "  received:         %d\n", s.Counts.OrdersReceived)
	fmt.Fprintf(&b, "  delivered:        %d\n", s.Counts.Delivered)
	fmt.Fprintf(&b, "  wasted:           %d (%d swept, %d at pickup)\n",
		s.Counts.Wasted, s.Counts.SweepWasted, s.Counts.WastedAtPickup)
	fmt.Fprintf(&b, "  capacity dropped: %d\n", s.Counts.CapacityDropped)
	if s.Counts.NoShelf > 0 {
		fmt.Fprintf(&b, "  no shelf:         %d\n", s.Counts.NoShelf)
	}

	b.WriteString("\nShelves (final/peak/capacity)\n")
	for _, sh := range s.Shelves {
		fmt.Fprintf(&b, "  %-10s %d / %d / %s\n", sh.Name, sh.Final, sh.Peak, sh.Capacity)
	}

	b.WriteString("\nOrders\n")
	for _, o := range s.Orders {
		if o.PickedUp {
			fmt.Fprintf(&b, "  %3d  %-12s %-24s %-20s held %.3fs\n",
				o.Pos, o.ID, o.Name, o.Outcome, o.HeldFor)
		} else {
			fmt.Fprintf(&b, "  %3d  %-12s %-24s %s\n", o.Pos, o.ID, o.Name, o.Outcome)
		}
	}

	return b.String()
}
