package engine

import (
	"github.com/shelfsim/shelfsim/internal/config"
	"github.com/shelfsim/shelfsim/internal/order"
)

// ShelfSet owns shelf occupancy and capacity: one shelf per single
// temperature class plus the shared overflow shelf. Each shelf keeps its
// orders in insertion order; the head of overflow is its longest resident.
//
// ShelfSet resolves placement but knows nothing about order records,
// timestamps, or counters — it reports what it did through Placement and the
// Engine updates its own state accordingly.
//
// Not safe for concurrent use; owned exclusively by the Engine loop.
type ShelfSet struct {
	names    []string
	capacity map[string]config.Limit
	shelves  map[string][]order.Order
	peaks    map[string]int
}

// NewShelfSet builds the shelf set from the configured per-shelf capacities.
func NewShelfSet(capacity map[string]config.Limit) *ShelfSet {
	s := &ShelfSet{
		capacity: make(map[string]config.Limit, len(capacity)),
		shelves:  make(map[string][]order.Order, len(capacity)),
		peaks:    make(map[string]int, len(capacity)),
	}
	for _, t := range order.SingleTemps() {
		s.names = append(s.names, string(t))
	}
	s.names = append(s.names, config.OverflowShelf)
	for _, name := range s.names {
		s.capacity[name] = capacity[name]
		s.shelves[name] = nil
	}
	return s
}

// Names returns the shelf names in canonical order (overflow last).
func (s *ShelfSet) Names() []string {
	return s.names
}

// Has reports whether name is a configured shelf.
func (s *ShelfSet) Has(name string) bool {
	_, ok := s.shelves[name]
	return ok
}

// Available reports whether the shelf has free capacity.
func (s *ShelfSet) Available(name string) bool {
	return s.capacity[name].Allows(len(s.shelves[name]))
}

// Occupancy returns the current number of orders on the shelf.
func (s *ShelfSet) Occupancy(name string) int {
	return len(s.shelves[name])
}

// Peak returns the highest occupancy the shelf has seen. Observability
// only; never consulted by placement.
func (s *ShelfSet) Peak(name string) int {
	return s.peaks[name]
}

// Capacity returns the configured limit for the shelf.
func (s *ShelfSet) Capacity(name string) config.Limit {
	return s.capacity[name]
}

// Contents returns a copy of the shelf's orders in insertion order.
func (s *ShelfSet) Contents(name string) []order.Order {
	shelf := s.shelves[name]
	out := make([]order.Order, len(shelf))
	copy(out, shelf)
	return out
}

// Remove takes the order with the given id off the shelf.
func (s *ShelfSet) Remove(id, name string) (order.Order, bool) {
	shelf := s.shelves[name]
	for i, o := range shelf {
		if o.ID == id {
			s.shelves[name] = append(shelf[:i:i], shelf[i+1:]...)
			return o, true
		}
	}
	return order.Order{}, false
}

func (s *ShelfSet) add(o order.Order, name string) {
	s.shelves[name] = append(s.shelves[name], o)
	if n := len(s.shelves[name]); n > s.peaks[name] {
		s.peaks[name] = n
	}
}

// Migration records one overflow occupant moved back to its ideal shelf
// during placement.
type Migration struct {
	Order order.Order
	To    string
}

// Placement describes how a new order was resolved.
type Placement struct {
	// Shelf is where the new order landed; empty when Dropped.
	Shelf string

	// Dropped is set when the order was capacity-dropped outright
	// (overflow configured with zero capacity).
	Dropped bool

	// Migrated lists overflow occupants moved to their ideal shelves to
	// free space, in the order they were moved.
	Migrated []Migration

	// Evicted is the overflow occupant forced out to make room, if any:
	// always the longest resident, by insertion order.
	Evicted *order.Order
}

// Place resolves placement of a newly-prepared order:
//
//  1. The order's ideal temperature shelf, if it has space.
//  2. Capacity-drop, if overflow is configured with zero capacity.
//  3. The overflow shelf, if it has space.
//  4. One pass over overflow's current contents, migrating occupants whose
//     ideal shelf now has space; place on overflow if that freed a slot.
//  5. Forced eviction of overflow's longest resident, then overflow.
//
// Ideal placement is preferred because it halves decay; migration before
// eviction salvages orders that would otherwise be discarded. Eviction
// picks the oldest occupant, an accepted simplification over picking the
// lowest-value one.
//
// The caller must have verified the order's temperature class has a shelf.
func (s *ShelfSet) Place(o order.Order) Placement {
	ideal := string(o.Temp)
	if s.Available(ideal) {
		s.add(o, ideal)
		return Placement{Shelf: ideal}
	}

	if !s.capacity[config.OverflowShelf].Allows(0) {
		return Placement{Dropped: true}
	}

	if s.Available(config.OverflowShelf) {
		s.add(o, config.OverflowShelf)
		return Placement{Shelf: config.OverflowShelf}
	}

	// One pass over a snapshot of overflow's contents, not a fixed-point
	// search: space freed by one migration is not rescanned.
	var migrated []Migration
	for _, occ := range s.Contents(config.OverflowShelf) {
		t := string(occ.Temp)
		if s.Has(t) && s.Available(t) {
			s.Remove(occ.ID, config.OverflowShelf)
			s.add(occ, t)
			migrated = append(migrated, Migration{Order: occ, To: t})
		}
	}

	if s.Available(config.OverflowShelf) {
		s.add(o, config.OverflowShelf)
		return Placement{Shelf: config.OverflowShelf, Migrated: migrated}
	}

	victim := s.shelves[config.OverflowShelf][0]
	s.Remove(victim.ID, config.OverflowShelf)
	s.add(o, config.OverflowShelf)
	return Placement{Shelf: config.OverflowShelf, Migrated: migrated, Evicted: &victim}
}
