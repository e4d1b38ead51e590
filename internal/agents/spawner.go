// Agent spawning: places the fleet and generates riders, including the
// replacement rider created whenever a ride completes.
package agents

import (
	"fmt"
	"math/rand"

	"github.com/samber/lo"

	"github.com/talgya/hailsim/internal/city"
)

// maxPlacementTries bounds redraws when a random point lands on a blocked cell.
const maxPlacementTries = 64

// SpawnConfig controls rider and car generation.
type SpawnConfig struct {
	HailDistance float64
	Hotspots     []city.Hotspot
	HotspotBias  float64 // Probability a rider appears at a hotspot instead of a uniform point
}

// Spawner creates cars and riders for the simulation.
type Spawner struct {
	grid *city.Grid
	rng  *rand.Rand
	cfg  SpawnConfig

	nextCarID   CarID
	nextRiderID RiderID
}

// NewSpawner creates a spawner that draws from rng.
func NewSpawner(g *city.Grid, rng *rand.Rand, cfg SpawnConfig) *Spawner {
	cfg.HotspotBias = lo.Clamp(cfg.HotspotBias, 0, 1)
	return &Spawner{
		grid:        g,
		rng:         rng,
		cfg:         cfg,
		nextCarID:   1,
		nextRiderID: 1,
	}
}

// SpawnFleet creates count idle cars at random addresses.
func (s *Spawner) SpawnFleet(count int) ([]*Car, error) {
	cars := make([]*Car, 0, count)
	for i := 0; i < count; i++ {
		p, err := s.RandomPoint()
		if err != nil {
			return nil, fmt.Errorf("place car: %w", err)
		}
		cars = append(cars, NewCar(s.nextCarID, p))
		s.nextCarID++
	}
	return cars, nil
}

// SpawnPopulation creates count hailing riders filling slots 0..count-1.
func (s *Spawner) SpawnPopulation(count int, tick uint64) ([]*Rider, error) {
	riders := make([]*Rider, 0, count)
	for slot := 0; slot < count; slot++ {
		r, err := s.SpawnRider(slot, tick)
		if err != nil {
			return nil, err
		}
		riders = append(riders, r)
	}
	return riders, nil
}

// SpawnRider creates a fresh hailing rider for the given arena slot.
func (s *Spawner) SpawnRider(slot int, tick uint64) (*Rider, error) {
	pos, err := s.riderOrigin()
	if err != nil {
		return nil, fmt.Errorf("place rider: %w", err)
	}
	dest, err := s.RandomPoint()
	if err != nil {
		return nil, fmt.Errorf("rider destination: %w", err)
	}

	id := s.nextRiderID
	s.nextRiderID++
	return &Rider{
		ID:           id,
		Slot:         slot,
		Position:     pos,
		Destination:  dest,
		NeedsRide:    true,
		HailDistance: s.cfg.HailDistance,
		SpawnTick:    tick,
	}, nil
}

func (s *Spawner) riderOrigin() (city.Point, error) {
	if len(s.cfg.Hotspots) > 0 && s.cfg.HotspotBias > 0 && s.rng.Float64() < s.cfg.HotspotBias {
		h := s.cfg.Hotspots[s.rng.Intn(len(s.cfg.Hotspots))]
		return h.Point, s.grid.Check(h.Point)
	}
	return s.RandomPoint()
}

// RandomPoint draws a uniform traversable address.
func (s *Spawner) RandomPoint() (city.Point, error) {
	return RandomPoint(s.grid, s.rng)
}

// RandomPoint draws a uniform address in [1, NumAddresses] on both axes,
// skipping blocked cells.
func RandomPoint(g *city.Grid, rng *rand.Rand) (city.Point, error) {
	n := g.NumAddresses()
	for i := 0; i < maxPlacementTries; i++ {
		p := city.Point{X: 1 + rng.Intn(n), Y: 1 + rng.Intn(n)}
		if err := g.Check(p); err != nil {
			return city.Point{}, err
		}
		if g.Kind(p) != city.CellBlocked {
			return p, nil
		}
	}
	return city.Point{}, fmt.Errorf("no open address after %d tries", maxPlacementTries)
}
