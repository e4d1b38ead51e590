package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/hailsim/internal/config"
	"github.com/talgya/hailsim/internal/entropy"
)

// Result is everything a finished run reports.
type Result struct {
	RunID      string          `json:"run_id"`
	Strategy   config.Strategy `json:"strategy"`
	Seed       int64           `json:"seed"`
	Ticks      uint64          `json:"ticks"`
	TotalRides int             `json:"total_rides"`
	Finished   bool            `json:"finished"` // False when the tick cap stopped the run first
	PerCar     []int           `json:"per_car"` // Rides completed by each car, ordered by car ID
	Stats      SimStats        `json:"stats"`
	Elapsed    time.Duration   `json:"elapsed_ns"`
}

// Run executes one simulation from cfg until MaxRides rides complete.
// A zero cfg.Seed is replaced with a fresh seed, reported in the result.
// When the tick cap is hit the partial result is returned along with an
// error wrapping ErrTickLimit.
func Run(cfg config.Config) (Result, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.Seed()
	}

	sim, err := NewSimulation(cfg, seed)
	if err != nil {
		return Result{}, err
	}

	runID := uuid.NewString()
	slog.Info("run starting",
		"run_id", runID,
		"strategy", cfg.DriverStrategy,
		"seed", seed,
		"grid", sim.Grid().String(),
		"cars", len(sim.Cars),
		"riders", len(sim.Riders),
		"hotspots", len(sim.Hotspots),
		"max_rides", cfg.MaxRides,
	)

	eng := NewEngine()
	eng.MaxTicks = uint64(cfg.MaxTicks)
	eng.ReportEvery = uint64(cfg.ReportEvery)
	eng.OnTick = sim.Tick
	eng.Done = sim.Done
	eng.OnReport = func(tick uint64) {
		slog.Info("progress",
			"run_id", runID,
			"tick", tick,
			"rides", sim.TotalRides,
			"hailing", sim.Stats.Hailing,
			"cars_busy", sim.Stats.CarsBusy,
		)
	}

	start := time.Now()
	runErr := eng.Run()
	if runErr != nil && !errors.Is(runErr, ErrTickLimit) {
		return Result{}, fmt.Errorf("run %s: %w", runID, runErr)
	}

	res := Result{
		RunID:      runID,
		Strategy:   cfg.DriverStrategy,
		Seed:       seed,
		Ticks:      eng.Tick,
		TotalRides: sim.TotalRides,
		Finished:   runErr == nil,
		PerCar:     sim.Tallies(),
		Stats:      sim.Stats,
		Elapsed:    time.Since(start),
	}
	if runErr != nil {
		slog.Warn("run stopped at tick limit",
			"run_id", runID,
			"ticks", res.Ticks,
			"rides", res.TotalRides,
			"max_rides", cfg.MaxRides,
		)
		return res, fmt.Errorf("run %s: %w", runID, runErr)
	}
	slog.Info("run finished",
		"run_id", runID,
		"ticks", res.Ticks,
		"rides", res.TotalRides,
		"elapsed", res.Elapsed,
	)
	return res, nil
}
