package report

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsim/shelfsim/internal/config"
	"github.com/shelfsim/shelfsim/internal/engine"
	"github.com/shelfsim/shelfsim/internal/order"
	"github.com/shelfsim/shelfsim/internal/testutil"
)

// deterministicRun produces a fully pinned logical-priority run: three
// orders a second apart, every courier taking exactly four seconds. The
// middle order decays too fast and is found wasted at pickup.
func deterministicRun(t *testing.T) *engine.Result {
	t.Helper()

	cfg := config.Default()
	cfg.OrderRate = 1
	batch := []order.Order{
		{ID: "p1", Name: "Cheese Pizza", Temp: order.TempHot, ShelfLife: 300, DecayRate: 0},
		{ID: "b1", Name: "Banana Split", Temp: order.TempFrozen, ShelfLife: 20, DecayRate: 10},
		{ID: "k1", Name: "Kale Salad", Temp: order.TempCold, ShelfLife: 300, DecayRate: 0},
	}

	sim := engine.New(cfg, batch,
		engine.WithDelaySource(testutil.FixedDelay{D: 4}),
		engine.WithTokenGenerator(testutil.NewTokenSequence("")),
	)
	res := sim.Run()
	require.NoError(t, res.Err())
	return res
}

func TestSummary_Text(t *testing.T) {
	s := Build(deterministicRun(t))
	// Wall time varies run to run; pin it for the fixture.
	s.RealSpan = 0

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "run-summary", []byte(s.Text()))
}

func TestSummary_JSON(t *testing.T) {
	s := Build(deterministicRun(t))

	data, err := s.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "logical", decoded["mode"])
	assert.Equal(t, false, decoded["failed"])

	counts := decoded["counts"].(map[string]any)
	assert.Equal(t, 7.0, counts["events"])
	assert.Equal(t, 3.0, counts["orders_received"])
	assert.Equal(t, 2.0, counts["delivered"])
	assert.Equal(t, 1.0, counts["wasted_at_pickup"])
}

func TestBuild_Outcomes(t *testing.T) {
	s := Build(deterministicRun(t))

	require.Len(t, s.Orders, 3)
	assert.Equal(t, "delivered", s.Orders[0].Outcome)
	assert.Equal(t, "wasted", s.Orders[1].Outcome)
	assert.Equal(t, "delivered", s.Orders[2].Outcome)
	for _, o := range s.Orders {
		assert.True(t, o.PickedUp, o.ID)
		assert.InDelta(t, 4.0, o.HeldFor, 1e-6)
	}

	assert.InDelta(t, 6.0, s.SimulatedSpan, 1e-6)
	assert.Equal(t, int64(0), s.Counts.CapacityDropped)
}

func TestBuild_FailedRun(t *testing.T) {
	res := &engine.Result{
		EngineErr: assert.AnError,
		Snapshot:  engine.Snapshot{Mode: config.ModeLogical},
	}

	s := Build(res)
	assert.True(t, s.Failed)
	assert.NotEmpty(t, s.Error)
	assert.Contains(t, s.Text(), "FAILED")
}

func TestOutcome_Vocabulary(t *testing.T) {
	cases := []struct {
		location string
		want     string
	}{
		{engine.LocDelivered, "delivered"},
		{engine.LocWasted, "wasted"},
		{engine.LocCapacityDropped, "capacity-dropped"},
		{"hot", "shelved:hot"},
		{"overflow", "shelved:overflow"},
		{"", "unplaced"},
	}
	for _, tc := range cases {
		rec := engine.OrderRecord{Location: tc.location}
		assert.Equal(t, tc.want, outcome(rec), tc.location)
	}
}
