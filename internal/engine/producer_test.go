package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsim/shelfsim/internal/config"
	"github.com/shelfsim/shelfsim/internal/order"
)

func producerConfig(mode config.Mode, rate config.Limit) config.Config {
	cfg := config.Default()
	cfg.Concurrency = mode
	cfg.OrderRate = rate
	return cfg
}

func batchOf(ids ...string) []order.Order {
	orders := make([]order.Order, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, ord(id, order.TempHot))
	}
	return orders
}

func TestProducer_LogicalPacesKeys(t *testing.T) {
	q := newEventQueue(true)
	p := newProducer(producerConfig(config.ModeLogical, 2), q, batchOf("a", "b", "c"))

	require.NoError(t, p.Run(100))

	// Rate 2/s means keys 0.5s apart, starting at the start instant.
	wantKeys := []float64{100, 100.5, 101}
	for i, want := range wantKeys {
		ev, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, EventOrderReceived, ev.Type)
		assert.Equal(t, want, ev.Key)
		assert.Equal(t, i+1, ev.Pos)
	}
	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestProducer_WallKeepsSubmissionOrder(t *testing.T) {
	q := newEventQueue(false)
	// Unbounded rate: no sleeping between orders.
	p := newProducer(producerConfig(config.ModeWall, config.Unbounded), q, batchOf("a", "b", "c"))

	require.NoError(t, p.Run(0))

	for i, id := range []string{"a", "b", "c"} {
		ev, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, id, ev.Order.ID)
		assert.Equal(t, i+1, ev.Pos)
		assert.Equal(t, float64(ignoredKey), ev.Key)
	}
}

func TestProducer_ZeroRateEmitsNothing(t *testing.T) {
	q := newEventQueue(true)
	p := newProducer(producerConfig(config.ModeLogical, 0), q, batchOf("a", "b"))

	require.NoError(t, p.Run(0))
	assert.Equal(t, 0, q.Len())
}

func TestProducer_ClosedQueueFails(t *testing.T) {
	q := newEventQueue(true)
	q.Close()
	p := newProducer(producerConfig(config.ModeLogical, 1), q, batchOf("a"))

	err := p.Run(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue closed")
}
