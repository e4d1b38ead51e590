package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hailsim/internal/config"
)

func smallConfig(strategy config.Strategy) config.Config {
	cfg := config.Default()
	cfg.NumAddresses = 20
	cfg.NumStreets = 4
	cfg.NumCars = 5
	cfg.NumRiders = 8
	cfg.HailDistance = 8
	cfg.MaxRides = 25
	cfg.DriverStrategy = strategy
	cfg.Seed = 99
	cfg.ReportEvery = 0
	return cfg
}

func TestRunTerminatesExactly(t *testing.T) {
	for _, strategy := range []config.Strategy{config.StrategyRandomWander, config.StrategyHotspotSeeking} {
		t.Run(string(strategy), func(t *testing.T) {
			cfg := smallConfig(strategy)
			cfg.HotspotBias = 0.5
			cfg.HailDistance = 30 // every free car is in range

			res, err := Run(cfg)
			require.NoError(t, err)

			assert.True(t, res.Finished)
			assert.Equal(t, cfg.MaxRides, res.TotalRides)
			require.Len(t, res.PerCar, cfg.NumCars)
			sum := 0
			for _, n := range res.PerCar {
				assert.GreaterOrEqual(t, n, 0)
				sum += n
			}
			assert.Equal(t, cfg.MaxRides, sum)
			assert.Equal(t, strategy, res.Strategy)
			assert.Equal(t, int64(99), res.Seed)
			assert.NotEmpty(t, res.RunID)
			assert.Positive(t, res.Ticks)
		})
	}
}

func TestRunIsReproducible(t *testing.T) {
	cfg := smallConfig(config.StrategyRandomWander)

	a, err := Run(cfg)
	require.NoError(t, err)
	b, err := Run(cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Ticks, b.Ticks)
	assert.Equal(t, a.PerCar, b.PerCar)
	assert.Equal(t, a.Stats, b.Stats)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRunDrawsSeed(t *testing.T) {
	cfg := smallConfig(config.StrategyRandomWander)
	cfg.Seed = 0

	res, err := Run(cfg)
	require.NoError(t, err)
	assert.NotZero(t, res.Seed)
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := smallConfig(config.StrategyRandomWander)
	cfg.NumStreets = 3

	_, err := Run(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfiguration)
}

func TestRunTickLimit(t *testing.T) {
	cfg := config.Default()
	cfg.DriverStrategy = config.StrategyStationary
	cfg.NumCars = 1
	cfg.NumRiders = 1
	cfg.HailDistance = 0.5
	cfg.MaxTicks = 50
	cfg.Seed = 3

	res, err := Run(cfg)
	require.ErrorIs(t, err, ErrTickLimit)
	assert.False(t, res.Finished)
	assert.Equal(t, uint64(50), res.Ticks)
	assert.Equal(t, int64(3), res.Seed)
	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.PerCar, 1)
	assert.Less(t, res.TotalRides, cfg.MaxRides)
}
