// Driver strategies: what an idle car does with its time. This is the
// experiment's independent variable.
package agents

import (
	"fmt"
	"math/rand"

	"github.com/talgya/hailsim/internal/city"
	"github.com/talgya/hailsim/internal/config"
)

// DriverStrategy picks the next goal for an idle car.
type DriverStrategy interface {
	Name() config.Strategy
	Destination(c *Car, g *city.Grid, rng *rand.Rand) (city.Point, error)
}

// Stationary cars stay where they are.
type Stationary struct{}

func (Stationary) Name() config.Strategy { return config.StrategyStationary }

func (Stationary) Destination(c *Car, _ *city.Grid, _ *rand.Rand) (city.Point, error) {
	return c.Position, nil
}

// RandomWander cars drive to a uniformly random address.
type RandomWander struct{}

func (RandomWander) Name() config.Strategy { return config.StrategyRandomWander }

func (RandomWander) Destination(_ *Car, g *city.Grid, rng *rand.Rand) (city.Point, error) {
	return RandomPoint(g, rng)
}

// HotspotSeeking cars drive to the nearest hotspot and wait there. With no
// hotspots they behave like Stationary.
type HotspotSeeking struct {
	Hotspots []city.Hotspot
}

func (HotspotSeeking) Name() config.Strategy { return config.StrategyHotspotSeeking }

func (h HotspotSeeking) Destination(c *Car, _ *city.Grid, _ *rand.Rand) (city.Point, error) {
	if p, ok := city.NearestHotspot(c.Position, h.Hotspots); ok {
		return p, nil
	}
	return c.Position, nil
}

// NewStrategy returns the strategy named by s.
func NewStrategy(s config.Strategy, hotspots []city.Hotspot) (DriverStrategy, error) {
	switch s {
	case config.StrategyStationary:
		return Stationary{}, nil
	case config.StrategyRandomWander:
		return RandomWander{}, nil
	case config.StrategyHotspotSeeking:
		return HotspotSeeking{Hotspots: hotspots}, nil
	}
	return nil, fmt.Errorf("%w: unknown driver strategy %q", config.ErrInvalidConfiguration, s)
}
