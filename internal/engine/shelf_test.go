package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsim/shelfsim/internal/config"
	"github.com/shelfsim/shelfsim/internal/order"
)

func capacities(hot, cold, frozen, overflow config.Limit) map[string]config.Limit {
	return map[string]config.Limit{
		"hot":      hot,
		"cold":     cold,
		"frozen":   frozen,
		"overflow": overflow,
	}
}

func ord(id string, temp order.Temp) order.Order {
	return order.Order{ID: id, Name: id, Temp: temp, ShelfLife: 300, DecayRate: 0}
}

func TestShelfSet_IdealPlacement(t *testing.T) {
	s := NewShelfSet(capacities(2, 2, 2, 2))

	p := s.Place(ord("h1", order.TempHot))
	assert.Equal(t, "hot", p.Shelf)
	assert.False(t, p.Dropped)
	assert.Equal(t, 1, s.Occupancy("hot"))
	assert.Equal(t, 0, s.Occupancy("overflow"))
}

func TestShelfSet_OverflowWhenIdealFull(t *testing.T) {
	s := NewShelfSet(capacities(1, 1, 1, 2))

	s.Place(ord("h1", order.TempHot))
	p := s.Place(ord("h2", order.TempHot))
	assert.Equal(t, "overflow", p.Shelf)
}

func TestShelfSet_ZeroOverflowDrops(t *testing.T) {
	s := NewShelfSet(capacities(1, 1, 0, 0))

	s.Place(ord("h1", order.TempHot))
	p := s.Place(ord("h2", order.TempHot))
	assert.True(t, p.Dropped)
	assert.Empty(t, p.Shelf)

	// A zero-capacity ideal shelf sends the order straight to the same path.
	p = s.Place(ord("f1", order.TempFrozen))
	assert.True(t, p.Dropped)
}

func TestShelfSet_MigrationFreesOverflow(t *testing.T) {
	s := NewShelfSet(capacities(1, 0, 0, 1))

	s.Place(ord("h1", order.TempHot)) // hot
	s.Place(ord("h2", order.TempHot)) // overflow

	// Hot opens up; the next overflow-destined order should trigger the
	// one-pass migration of h2 back to hot instead of an eviction.
	_, removed := s.Remove("h1", "hot")
	require.True(t, removed)

	p := s.Place(ord("c1", order.TempCold))
	assert.Equal(t, "overflow", p.Shelf)
	require.Len(t, p.Migrated, 1)
	assert.Equal(t, "h2", p.Migrated[0].Order.ID)
	assert.Equal(t, "hot", p.Migrated[0].To)
	assert.Nil(t, p.Evicted)

	assert.Equal(t, 1, s.Occupancy("hot"))
	assert.Equal(t, 1, s.Occupancy("overflow"))
}

func TestShelfSet_EvictsLongestResident(t *testing.T) {
	s := NewShelfSet(capacities(1, 1, 1, 2))

	s.Place(ord("h1", order.TempHot))
	s.Place(ord("h2", order.TempHot)) // overflow, first in
	s.Place(ord("h3", order.TempHot)) // overflow, second in

	p := s.Place(ord("h4", order.TempHot))
	assert.Equal(t, "overflow", p.Shelf)
	require.NotNil(t, p.Evicted)
	// Longest resident by insertion order, not lowest value.
	assert.Equal(t, "h2", p.Evicted.ID)

	left := s.Contents("overflow")
	require.Len(t, left, 2)
	assert.Equal(t, "h3", left[0].ID)
	assert.Equal(t, "h4", left[1].ID)
}

func TestShelfSet_UnboundedCapacity(t *testing.T) {
	s := NewShelfSet(capacities(config.Unbounded, 1, 1, 0))

	for i := 0; i < 1000; i++ {
		p := s.Place(ord(fmt.Sprintf("h%d", i), order.TempHot))
		assert.Equal(t, "hot", p.Shelf)
	}
	assert.Equal(t, 1000, s.Occupancy("hot"))
	assert.Equal(t, 1000, s.Peak("hot"))
}

func TestShelfSet_PeaksTrackHighWater(t *testing.T) {
	s := NewShelfSet(capacities(2, 2, 2, 2))

	s.Place(ord("h1", order.TempHot))
	s.Place(ord("h2", order.TempHot))
	s.Remove("h1", "hot")
	s.Remove("h2", "hot")

	assert.Equal(t, 0, s.Occupancy("hot"))
	assert.Equal(t, 2, s.Peak("hot"))
}

func TestShelfSet_RemoveMissing(t *testing.T) {
	s := NewShelfSet(capacities(1, 1, 1, 1))
	_, ok := s.Remove("ghost", "hot")
	assert.False(t, ok)
}

func TestShelfSet_NamesAndHas(t *testing.T) {
	s := NewShelfSet(capacities(1, 1, 1, 1))
	assert.Equal(t, []string{"hot", "cold", "frozen", "overflow"}, s.Names())
	assert.True(t, s.Has("overflow"))
	assert.False(t, s.Has("lukewarm"))
}
