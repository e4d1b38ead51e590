// Package config holds simulation parameters, their defaults, and validation.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/talgya/hailsim/internal/city"
)

// ErrInvalidConfiguration is wrapped by every validation failure.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Strategy names the driver behaviour used when a car has nothing to do.
type Strategy string

const (
	StrategyStationary     Strategy = "stationary"
	StrategyRandomWander   Strategy = "random-wander"
	StrategyHotspotSeeking Strategy = "hotspot-seeking"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{StrategyStationary, StrategyRandomWander, StrategyHotspotSeeking}

// Valid returns true if s names a supported strategy.
func (s Strategy) Valid() bool {
	return lo.Contains(Strategies, s)
}

// Config holds everything needed to start a run.
type Config struct {
	NumAddresses   int      `json:"num_addresses"`   // Grid extent along one axis
	NumStreets     int      `json:"num_streets"`     // Through-streets per axis, must divide NumAddresses
	NumCars        int      `json:"num_cars"`
	NumRiders      int      `json:"num_riders"`
	HailDistance   float64  `json:"hail_distance"`   // Euclidean detection radius
	MaxRides       int      `json:"max_rides"`       // Run ends once this many rides complete
	DriverStrategy Strategy `json:"driver_strategy"`

	Seed        int64        `json:"seed"`         // 0 = draw a fresh seed
	NumHotspots int          `json:"num_hotspots"` // Generated when Hotspots is empty
	Hotspots    []city.Point `json:"hotspots,omitempty"`
	HotspotBias float64      `json:"hotspot_bias"` // Probability a new rider appears at a hotspot
	MaxTicks    int          `json:"max_ticks"`    // 0 = unlimited
	ReportEvery int          `json:"report_every"` // Progress log interval in ticks, 0 = off
}

// Default returns the stock configuration: ten cars and ten riders with a
// hail distance of 5, run until 100 rides complete. Riders wait where they
// spawn, so with these numbers the stationary and hotspot-seeking strategies
// usually stall once no waiting rider is near a parked car. MaxTicks ends
// those runs.
func Default() Config {
	return Config{
		NumAddresses:   100,
		NumStreets:     10,
		NumCars:        10,
		NumRiders:      10,
		HailDistance:   5,
		MaxRides:       100,
		DriverStrategy: StrategyRandomWander,
		NumHotspots:    5,
		MaxTicks:       100_000,
		ReportEvery:    1000,
	}
}

// Load reads a JSON config file. Fields missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Config{}, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes JSON over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration before any tick runs.
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"num_addresses", c.NumAddresses},
		{"num_streets", c.NumStreets},
		{"num_cars", c.NumCars},
		{"num_riders", c.NumRiders},
		{"max_rides", c.MaxRides},
	}
	for _, f := range positive {
		if f.value <= 0 {
			return invalid("%s must be positive, got %d", f.name, f.value)
		}
	}

	if c.NumAddresses%c.NumStreets != 0 {
		return invalid("num_streets (%d) must divide num_addresses (%d)", c.NumStreets, c.NumAddresses)
	}
	if c.HailDistance <= 0 {
		return invalid("hail_distance must be positive, got %g", c.HailDistance)
	}
	if !c.DriverStrategy.Valid() {
		return invalid("unknown driver_strategy %q", c.DriverStrategy)
	}
	if c.NumHotspots < 0 {
		return invalid("num_hotspots must not be negative, got %d", c.NumHotspots)
	}
	if c.HotspotBias < 0 || c.HotspotBias > 1 {
		return invalid("hotspot_bias must be within [0, 1], got %g", c.HotspotBias)
	}
	if c.MaxTicks < 0 {
		return invalid("max_ticks must not be negative, got %d", c.MaxTicks)
	}
	if c.ReportEvery < 0 {
		return invalid("report_every must not be negative, got %d", c.ReportEvery)
	}

	g := city.NewGrid(c.NumAddresses, c.NumStreets)
	for _, p := range c.Hotspots {
		if err := g.Check(p); err != nil {
			return invalid("hotspot: %v", err)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
