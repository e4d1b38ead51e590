// Dispatch: pairs hailing riders with the nearest free car in range.
package engine

import (
	"log/slog"

	"github.com/talgya/hailsim/internal/agents"
	"github.com/talgya/hailsim/internal/city"
)

// match runs one matching pass in rider slot order. Earlier riders get
// first pick of the free cars; a car matched in this pass is no longer free.
func (s *Simulation) match() {
	for _, r := range s.Riders {
		if !r.NeedsRide {
			continue
		}
		c := nearestFreeCar(s.Cars, r)
		if c == nil {
			continue
		}
		c.Hail(s.grid, r)
		s.Stats.Matches++

		slog.Debug("rider matched",
			"tick", s.LastTick,
			"rider", r.ID,
			"car", c.ID,
			"pickup", r.Position.String(),
			"route_len", c.Route().Len(),
		)
	}
}

// nearestFreeCar returns the free car closest to r within its hail
// distance, or nil. Ties keep the first car encountered.
func nearestFreeCar(cars []*agents.Car, r *agents.Rider) *agents.Car {
	var best *agents.Car
	bestDist := r.HailDistance
	for _, c := range cars {
		if !c.Available() {
			continue
		}
		if d := city.Distance(c.Position, r.Position); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
