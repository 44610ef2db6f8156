package engine

// Counters are the run's named metrics, each incremented exactly once per
// corresponding occurrence. Owned and mutated solely by the Engine loop;
// read-only everywhere else.
type Counters struct {
	// Events is every event dequeued, of any type.
	Events int64

	// Per-event-type counts.
	OrdersReceived  int64
	CourierArrivals int64
	Shutdowns       int64

	// Unhandled counts events of no recognized type.
	Unhandled int64

	// NoShelf counts orders whose temperature class matches no shelf.
	NoShelf int64

	CouriersDispatched int64

	// CapacityDropped counts orders discarded purely for shelf space,
	// whether dropped outright or evicted from overflow.
	CapacityDropped int64

	// SweepWasted counts waste discovered by the staleness sweep, before
	// any courier reached the order.
	SweepWasted int64

	// Pickup outcomes.
	Delivered                 int64
	PickupFailCapacityDropped int64
	PickupFailWastedPrior     int64
	PickupFailWastedNow       int64
	PickupFailBadLocation     int64
}

// WastedTotal is every order that decayed past usability, whether the sweep
// found it or the courier did.
func (c Counters) WastedTotal() int64 {
	return c.SweepWasted + c.PickupFailWastedNow
}
