// Simulation ties together the grid, the fleet, and the rider population.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/hailsim/internal/agents"
	"github.com/talgya/hailsim/internal/city"
	"github.com/talgya/hailsim/internal/config"
)

// Simulation holds the complete market state.
type Simulation struct {
	grid     *city.Grid
	Hotspots []city.Hotspot
	Cars     []*agents.Car   // Fixed for the run, ordered by ID
	Riders   []*agents.Rider // Arena indexed by rider slot; size never changes

	TotalRides int
	MaxRides   int
	LastTick   uint64

	Stats SimStats

	rng      *rand.Rand
	spawner  *agents.Spawner
	strategy agents.DriverStrategy
}

// SimStats tracks cumulative counters for progress reports.
type SimStats struct {
	Matches  int `json:"matches"`
	Pickups  int `json:"pickups"`
	Dropoffs int `json:"dropoffs"`
	Holds    int `json:"holds"`
	Departs  int `json:"departs"`
	Hailing  int `json:"hailing"`   // Riders still waiting, as of the last tick
	CarsIdle int `json:"cars_idle"` // Cars without an assigned rider, as of the last tick
	CarsBusy int `json:"cars_busy"`
}

// NewSimulation builds the grid, hotspots, fleet, and riders for cfg. All
// randomness flows from seed.
func NewSimulation(cfg config.Config, seed int64) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := city.NewGrid(cfg.NumAddresses, cfg.NumStreets)
	rng := rand.New(rand.NewSource(seed))

	hotspots := make([]city.Hotspot, 0, len(cfg.Hotspots))
	for _, p := range cfg.Hotspots {
		hotspots = append(hotspots, city.Hotspot{Point: p, Demand: 1})
	}
	if len(hotspots) == 0 {
		hotspots = city.PlaceHotspots(g, seed, cfg.NumHotspots)
	}

	strategy, err := agents.NewStrategy(cfg.DriverStrategy, hotspots)
	if err != nil {
		return nil, err
	}

	spawner := agents.NewSpawner(g, rng, agents.SpawnConfig{
		HailDistance: cfg.HailDistance,
		Hotspots:     hotspots,
		HotspotBias:  cfg.HotspotBias,
	})
	cars, err := spawner.SpawnFleet(cfg.NumCars)
	if err != nil {
		return nil, err
	}
	riders, err := spawner.SpawnPopulation(cfg.NumRiders, 0)
	if err != nil {
		return nil, err
	}

	return &Simulation{
		grid:     g,
		Hotspots: hotspots,
		Cars:     cars,
		Riders:   riders,
		MaxRides: cfg.MaxRides,
		rng:      rng,
		spawner:  spawner,
		strategy: strategy,
	}, nil
}

// Grid returns the street grid.
func (s *Simulation) Grid() *city.Grid {
	return s.grid
}

// Done returns true once the ride target is met.
func (s *Simulation) Done() bool {
	return s.TotalRides >= s.MaxRides
}

// Tick runs one full step: match hailing riders, then move every car.
func (s *Simulation) Tick(tick uint64) error {
	s.LastTick = tick
	s.match()

	for _, c := range s.Cars {
		tr, err := agents.Step(c, s)
		if err != nil {
			return err
		}
		switch tr {
		case agents.TransitionPickup:
			s.Stats.Pickups++
		case agents.TransitionDropoff:
			s.Stats.Dropoffs++
		case agents.TransitionHold:
			s.Stats.Holds++
		case agents.TransitionDepart:
			s.Stats.Departs++
		}
	}

	s.updateStats()
	return nil
}

// ChooseDestination asks the driver strategy for an idle car's next goal.
func (s *Simulation) ChooseDestination(c *agents.Car) (city.Point, error) {
	p, err := s.strategy.Destination(c, s.grid, s.rng)
	if err != nil {
		return city.Point{}, err
	}
	if err := s.grid.Check(p); err != nil {
		return city.Point{}, fmt.Errorf("%s strategy: %w", s.strategy.Name(), err)
	}
	return p, nil
}

// CompleteRide counts a delivered rider and puts a fresh rider in its slot.
// Rides past the target are refused so the run ends exactly on MaxRides.
func (s *Simulation) CompleteRide(c *agents.Car, r *agents.Rider) (bool, error) {
	if s.TotalRides >= s.MaxRides {
		return false, nil
	}
	if r.Slot < 0 || r.Slot >= len(s.Riders) || s.Riders[r.Slot] != r {
		return false, fmt.Errorf("rider %d is not in slot %d", r.ID, r.Slot)
	}

	replacement, err := s.spawner.SpawnRider(r.Slot, s.LastTick)
	if err != nil {
		return false, err
	}
	s.Riders[r.Slot] = replacement
	s.TotalRides++

	slog.Debug("ride completed",
		"tick", s.LastTick,
		"car", c.ID,
		"rider", r.ID,
		"total", s.TotalRides,
		"wait_ticks", s.LastTick-r.SpawnTick,
	)
	return true, nil
}

// Tallies returns each car's completed rides, ordered by car ID.
func (s *Simulation) Tallies() []int {
	tallies := make([]int, len(s.Cars))
	for i, c := range s.Cars {
		tallies[i] = c.RidesCompleted
	}
	return tallies
}

func (s *Simulation) updateStats() {
	hailing := 0
	for _, r := range s.Riders {
		if r.NeedsRide {
			hailing++
		}
	}
	idle := 0
	for _, c := range s.Cars {
		if c.Available() {
			idle++
		}
	}
	s.Stats.Hailing = hailing
	s.Stats.CarsIdle = idle
	s.Stats.CarsBusy = len(s.Cars) - idle
}
