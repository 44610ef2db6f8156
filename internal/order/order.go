// Package order defines the immutable order data model, the temperature
// classes orders prefer, and the decay-based valuation function.
//
// Orders are never mutated after creation. All run-time bookkeeping about an
// order (where it sits, when it became ready) lives in the engine's records,
// not here.
package order

import "fmt"

// Temp is an order's preferred storage temperature class.
type Temp string

// The single-temperature classes. Each has a dedicated shelf; a shared
// overflow shelf absorbs spill from all of them.
const (
	TempHot    Temp = "hot"
	TempCold   Temp = "cold"
	TempFrozen Temp = "frozen"
)

// SingleTemps returns the single-temperature classes in canonical order.
// The returned slice is freshly allocated; callers may modify it.
func SingleTemps() []Temp {
	return []Temp{TempHot, TempCold, TempFrozen}
}

// Order is one item of the input batch. Immutable once created.
type Order struct {
	// ID is a unique token, typically a UUID.
	ID string `json:"id"`

	// Name is free-text display name (e.g. "Cheese Pizza").
	Name string `json:"name"`

	// Temp is the preferred shelf temperature class.
	Temp Temp `json:"temp"`

	// ShelfLife is the age in seconds at which value reaches zero
	// under decay modifier 1.0. Must be positive.
	ShelfLife float64 `json:"shelfLife"`

	// DecayRate is a non-negative modifier on aging.
	DecayRate float64 `json:"decayRate"`
}

func (o Order) String() string {
	return fmt.Sprintf("%s (%s, %s, life %g, decay %g)", o.ID, o.Name, o.Temp, o.ShelfLife, o.DecayRate)
}

// Value computes an order's remaining value from its age and decay
// parameters:
//
//	(shelfLife − age·decayRate·modifier) / shelfLife
//
// The decay modifier is 1.0 on the order's ideal temperature shelf and 2.0
// on the shared overflow shelf. The result may be negative for orders aged
// past usability; callers treat value ≤ 0 as no longer deliverable.
func Value(age, shelfLife, decayRate, decayModifier float64) float64 {
	decay := age * decayRate * decayModifier
	return (shelfLife - decay) / shelfLife
}
