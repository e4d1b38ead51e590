// Package engine provides the tick-based simulation loop.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrTickLimit is returned when a run hits its tick cap before finishing.
var ErrTickLimit = errors.New("tick limit reached")

// Engine drives the simulation forward one tick at a time.
type Engine struct {
	Tick        uint64 // Current tick counter (monotonic, never resets)
	MaxTicks    uint64 // 0 = unlimited
	ReportEvery uint64 // 0 = no progress reports

	// Callbacks populated during setup.
	OnTick   func(tick uint64) error // Every tick
	OnReport func(tick uint64)       // Every ReportEvery ticks
	Done     func() bool             // Checked once at each tick boundary
}

// NewEngine creates an engine with no tick cap.
func NewEngine() *Engine {
	return &Engine{}
}

// Run steps until Done reports true, a tick fails, or MaxTicks is reached.
func (e *Engine) Run() error {
	slog.Debug("simulation engine started", "tick", e.Tick, "max_ticks", e.MaxTicks)

	for !e.done() {
		if e.MaxTicks > 0 && e.Tick >= e.MaxTicks {
			return fmt.Errorf("%w: %d", ErrTickLimit, e.MaxTicks)
		}
		if err := e.step(); err != nil {
			return fmt.Errorf("tick %d: %w", e.Tick, err)
		}
	}

	slog.Debug("simulation engine stopped", "tick", e.Tick)
	return nil
}

func (e *Engine) done() bool {
	return e.Done != nil && e.Done()
}

// step advances the simulation by one tick.
func (e *Engine) step() error {
	e.Tick++

	if e.OnTick != nil {
		if err := e.OnTick(e.Tick); err != nil {
			return err
		}
	}

	if e.ReportEvery > 0 && e.Tick%e.ReportEvery == 0 && e.OnReport != nil {
		e.OnReport(e.Tick)
	}
	return nil
}
