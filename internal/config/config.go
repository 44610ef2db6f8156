// Package config holds the immutable run configuration.
//
// Configuration is layered the same way every run is set up: compiled-in
// defaults, then an optional YAML overlay file, then explicit overrides from
// CLI flags. The result is validated once at construction and passed by
// value into each component; nothing mutates it afterwards.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/shelfsim/shelfsim/internal/order"
)

// Mode selects the clock/ordering discipline for a run.
type Mode string

const (
	// ModeWall drives the run with the real clock: actors literally sleep,
	// the shared queue is strict FIFO, and ordering emerges from elapsed
	// real time.
	ModeWall Mode = "wall"

	// ModeLogical drives the run with a purely simulated clock: the shared
	// queue is a min-priority-queue on logical timestamps and nothing ever
	// waits.
	ModeLogical Mode = "logical"
)

// Valid reports whether m is a recognized discipline.
func (m Mode) Valid() bool {
	return m == ModeWall || m == ModeLogical
}

// Limit is a non-negative quantity that may be unbounded: a shelf capacity
// or a submission rate. In YAML it is either a number or the string
// "unbounded".
type Limit float64

// Unbounded is the Limit that admits everything.
var Unbounded = Limit(math.Inf(1))

// IsUnbounded reports whether the limit admits everything.
func (l Limit) IsUnbounded() bool {
	return math.IsInf(float64(l), 1)
}

// Allows reports whether an occupancy of n is still below the limit.
func (l Limit) Allows(n int) bool {
	return float64(n) < float64(l)
}

func (l Limit) String() string {
	if l.IsUnbounded() {
		return "unbounded"
	}
	return strconv.FormatFloat(float64(l), 'g', -1, 64)
}

// UnmarshalYAML accepts a number or the string "unbounded".
func (l *Limit) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Value == "unbounded" {
		*l = Unbounded
		return nil
	}
	var f float64
	if err := value.Decode(&f); err != nil {
		return fmt.Errorf("limit must be a number or %q: %w", "unbounded", err)
	}
	*l = Limit(f)
	return nil
}

// MarshalYAML renders unbounded limits back as the string form.
func (l Limit) MarshalYAML() (interface{}, error) {
	if l.IsUnbounded() {
		return "unbounded", nil
	}
	return float64(l), nil
}

// OverflowShelf is the name of the shared spill shelf in the capacity map.
const OverflowShelf = "overflow"

// Config is one run's complete configuration. Immutable after Validate.
type Config struct {
	// Concurrency selects the clock/ordering discipline.
	Concurrency Mode `yaml:"concurrency"`

	// OrderRate is submissions per second. 0 means never submit;
	// unbounded means submit with no delay between orders.
	OrderRate Limit `yaml:"order_rate"`

	// CourierArrivalMin and CourierArrivalMax bound the uniform random
	// courier delay in seconds. Min may equal Max; both may be zero.
	CourierArrivalMin float64 `yaml:"courier_arrival_min"`
	CourierArrivalMax float64 `yaml:"courier_arrival_max"`

	// ShelfCapacity maps shelf name (one per single-temperature class,
	// plus "overflow") to its maximum occupancy. A capacity may be zero
	// or unbounded; both are valid inputs, not errors.
	ShelfCapacity map[string]Limit `yaml:"shelf_capacity"`

	// OrdersFile is the JSON batch to replay.
	OrdersFile string `yaml:"orders_file"`

	// OrdersLiteral, when non-nil, supersedes OrdersFile. Primarily a
	// test affordance, mirrored from the original tooling.
	OrdersLiteral []order.Order `yaml:"orders_literal,omitempty"`

	// CourierDispatchEnabled can be switched off so that runs exercise
	// only shelf placement. Test-only affordance.
	CourierDispatchEnabled bool `yaml:"courier_dispatch_enabled"`
}

// Default returns the compiled-in base configuration.
func Default() Config {
	return Config{
		Concurrency:       ModeLogical,
		OrderRate:         2,
		CourierArrivalMin: 2,
		CourierArrivalMax: 6,
		ShelfCapacity: map[string]Limit{
			string(order.TempHot):    10,
			string(order.TempCold):   10,
			string(order.TempFrozen): 10,
			OverflowShelf:            15,
		},
		OrdersFile:             "orders.json",
		CourierDispatchEnabled: true,
	}
}

// Load builds a configuration from the defaults overlaid with the YAML file
// at path. Keys absent from the file keep their default values; the
// shelf_capacity map is merged key-wise. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and required fields. Zero capacities and zero or
// unbounded rates are valid configuration edge cases and pass validation.
func (c Config) Validate() error {
	if !c.Concurrency.Valid() {
		return fmt.Errorf("concurrency must be %q or %q, got %q", ModeWall, ModeLogical, c.Concurrency)
	}
	if c.OrderRate < 0 {
		return fmt.Errorf("order_rate must be non-negative, got %s", c.OrderRate)
	}
	if c.CourierArrivalMin < 0 || c.CourierArrivalMax < 0 {
		return fmt.Errorf("courier arrival bounds must be non-negative, got [%g, %g]", c.CourierArrivalMin, c.CourierArrivalMax)
	}
	if c.CourierArrivalMin > c.CourierArrivalMax {
		return fmt.Errorf("courier_arrival_min %g exceeds courier_arrival_max %g", c.CourierArrivalMin, c.CourierArrivalMax)
	}

	for _, name := range shelfNames() {
		limit, ok := c.ShelfCapacity[name]
		if !ok {
			return fmt.Errorf("shelf_capacity missing entry for %q", name)
		}
		if limit < 0 {
			return fmt.Errorf("shelf_capacity[%s] must be non-negative, got %s", name, limit)
		}
	}
	for name := range c.ShelfCapacity {
		if !isKnownShelf(name) {
			return fmt.Errorf("shelf_capacity has unknown shelf %q", name)
		}
	}

	if c.OrdersFile == "" && c.OrdersLiteral == nil {
		return fmt.Errorf("either orders_file or orders_literal is required")
	}
	return nil
}

// Orders resolves the input batch: the literal batch when present,
// otherwise the batch file.
func (c Config) Orders() ([]order.Order, error) {
	if c.OrdersLiteral != nil {
		return c.OrdersLiteral, nil
	}
	return order.ReadBatch(c.OrdersFile)
}

func shelfNames() []string {
	names := make([]string, 0, len(order.SingleTemps())+1)
	for _, t := range order.SingleTemps() {
		names = append(names, string(t))
	}
	return append(names, OverflowShelf)
}

func isKnownShelf(name string) bool {
	for _, n := range shelfNames() {
		if n == name {
			return true
		}
	}
	return false
}
