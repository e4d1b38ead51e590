package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hailsim/internal/city"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.NumCars)
	assert.Equal(t, 10, cfg.NumRiders)
	assert.Equal(t, 5.0, cfg.HailDistance)
	assert.Equal(t, 100, cfg.MaxRides)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero addresses", func(c *Config) { c.NumAddresses = 0 }, true},
		{"negative streets", func(c *Config) { c.NumStreets = -1 }, true},
		{"zero cars", func(c *Config) { c.NumCars = 0 }, true},
		{"zero riders", func(c *Config) { c.NumRiders = 0 }, true},
		{"zero max rides", func(c *Config) { c.MaxRides = 0 }, true},
		{"streets do not divide", func(c *Config) { c.NumStreets = 7 }, true},
		{"zero hail distance", func(c *Config) { c.HailDistance = 0 }, true},
		{"unknown strategy", func(c *Config) { c.DriverStrategy = "teleport" }, true},
		{"hotspot bias above one", func(c *Config) { c.HotspotBias = 1.5 }, true},
		{"negative max ticks", func(c *Config) { c.MaxTicks = -1 }, true},
		{"hotspot off grid", func(c *Config) { c.Hotspots = []city.Point{{X: 101, Y: 1}} }, true},
		{"hotspot on grid", func(c *Config) { c.Hotspots = []city.Point{{X: 11, Y: 11}} }, false},
		{"stationary", func(c *Config) { c.DriverStrategy = StrategyStationary }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration), "error %v should wrap ErrInvalidConfiguration", err)
		})
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "run.json")

	testJSON := `{
  "num_addresses": 12,
  "num_streets": 3,
  "driver_strategy": "hotspot-seeking",
  "hotspots": [{"x": 5, "y": 5}],
  "seed": 7
}`
	require.NoError(t, os.WriteFile(configPath, []byte(testJSON), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.NumAddresses)
	assert.Equal(t, 3, cfg.NumStreets)
	assert.Equal(t, StrategyHotspotSeeking, cfg.DriverStrategy)
	assert.Equal(t, []city.Point{{X: 5, Y: 5}}, cfg.Hotspots)
	assert.Equal(t, int64(7), cfg.Seed)
	// Unset fields keep defaults.
	assert.Equal(t, 10, cfg.NumCars)
	assert.Equal(t, 100, cfg.MaxRides)
}

func TestLoadErrors(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(filepath.Join(tmpDir, "missing.json"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(tmpDir, "run.yaml"))
	assert.Error(t, err)

	badPath := filepath.Join(tmpDir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{"num_cars": "many"`), 0644))
	_, err = Load(badPath)
	assert.Error(t, err)

	invalidPath := filepath.Join(tmpDir, "invalid.json")
	require.NoError(t, os.WriteFile(invalidPath, []byte(`{"num_streets": 3}`), 0644))
	_, err = Load(invalidPath)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
