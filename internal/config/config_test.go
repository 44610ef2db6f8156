package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shelfsim/shelfsim/internal/order"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ModeLogical, cfg.Concurrency)
	assert.Equal(t, Limit(2), cfg.OrderRate)
	assert.True(t, cfg.CourierDispatchEnabled)
	assert.Equal(t, Limit(15), cfg.ShelfCapacity[OverflowShelf])
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "wall-tight.yaml"))
	require.NoError(t, err)

	// Overridden by the file.
	assert.Equal(t, ModeWall, cfg.Concurrency)
	assert.Equal(t, Limit(1), cfg.ShelfCapacity["hot"])
	assert.Equal(t, Limit(0), cfg.ShelfCapacity["frozen"])
	assert.Equal(t, Limit(0), cfg.ShelfCapacity[OverflowShelf])

	// Untouched keys keep defaults: cold comes from the default capacity
	// map, the arrival window from the default config.
	assert.Equal(t, Limit(10), cfg.ShelfCapacity["cold"])
	assert.Equal(t, 2.0, cfg.CourierArrivalMin)
	assert.Equal(t, 6.0, cfg.CourierArrivalMax)
}

func TestLoad_Unbounded(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "unbounded.yaml"))
	require.NoError(t, err)

	assert.True(t, cfg.OrderRate.IsUnbounded())
	assert.True(t, cfg.ShelfCapacity["hot"].IsUnbounded())
	assert.False(t, cfg.ShelfCapacity[OverflowShelf].IsUnbounded())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default",
			mutate: func(c *Config) {},
		},
		{
			name:   "zero capacities are valid",
			mutate: func(c *Config) { c.ShelfCapacity["overflow"] = 0 },
		},
		{
			name:   "zero rate is valid",
			mutate: func(c *Config) { c.OrderRate = 0 },
		},
		{
			name:   "unbounded rate is valid",
			mutate: func(c *Config) { c.OrderRate = Unbounded },
		},
		{
			name:   "min equal max is valid",
			mutate: func(c *Config) { c.CourierArrivalMin, c.CourierArrivalMax = 0, 0 },
		},
		{
			name:    "bad mode",
			mutate:  func(c *Config) { c.Concurrency = "temporal" },
			wantErr: "concurrency must be",
		},
		{
			name:    "negative rate",
			mutate:  func(c *Config) { c.OrderRate = -1 },
			wantErr: "order_rate must be non-negative",
		},
		{
			name:    "min above max",
			mutate:  func(c *Config) { c.CourierArrivalMin = 7 },
			wantErr: "exceeds courier_arrival_max",
		},
		{
			name:    "negative arrival bound",
			mutate:  func(c *Config) { c.CourierArrivalMin = -1 },
			wantErr: "must be non-negative",
		},
		{
			name:    "missing shelf entry",
			mutate:  func(c *Config) { delete(c.ShelfCapacity, "frozen") },
			wantErr: `missing entry for "frozen"`,
		},
		{
			name:    "unknown shelf entry",
			mutate:  func(c *Config) { c.ShelfCapacity["lukewarm"] = 3 },
			wantErr: `unknown shelf "lukewarm"`,
		},
		{
			name:    "negative capacity",
			mutate:  func(c *Config) { c.ShelfCapacity["hot"] = -2 },
			wantErr: "must be non-negative",
		},
		{
			name: "no orders source",
			mutate: func(c *Config) {
				c.OrdersFile = ""
				c.OrdersLiteral = nil
			},
			wantErr: "orders_file or orders_literal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLimit_YAMLRoundTrip(t *testing.T) {
	type doc struct {
		A Limit `yaml:"a"`
		B Limit `yaml:"b"`
	}

	var d doc
	require.NoError(t, yaml.Unmarshal([]byte("a: unbounded\nb: 1.5\n"), &d))
	assert.True(t, d.A.IsUnbounded())
	assert.Equal(t, Limit(1.5), d.B)

	out, err := yaml.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, "a: unbounded\nb: 1.5\n", string(out))

	var bad doc
	err = yaml.Unmarshal([]byte("a: sideways\n"), &bad)
	require.Error(t, err)
}

func TestLimit_Allows(t *testing.T) {
	assert.True(t, Limit(2).Allows(1))
	assert.False(t, Limit(2).Allows(2))
	assert.False(t, Limit(0).Allows(0))
	assert.True(t, Unbounded.Allows(1<<40))
}

func TestOrders_LiteralTakesPrecedence(t *testing.T) {
	cfg := Default()
	cfg.OrdersFile = "does-not-exist.json"
	cfg.OrdersLiteral = []order.Order{
		{ID: "x", Name: "Nigiri", Temp: order.TempCold, ShelfLife: 100, DecayRate: 0.5},
	}

	batch, err := cfg.Orders()
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "x", batch[0].ID)
}
