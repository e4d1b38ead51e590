// Car behavior: the per-tick state machine. Every tick each car takes
// exactly one transition; delivering or collecting a rider always outranks
// discretionary driving.
package agents

import (
	"errors"
	"fmt"

	"github.com/talgya/hailsim/internal/city"
	"github.com/talgya/hailsim/internal/routing"
)

// ErrRouteExhausted means a car ran out of waypoints before reaching its
// destination. It indicates a routing defect.
var ErrRouteExhausted = errors.New("route exhausted before destination")

// Transition records which rule fired for a car this tick.
type Transition uint8

const (
	TransitionMove    Transition = iota // Advanced one waypoint
	TransitionDropoff                   // Delivered the rider
	TransitionHold                      // At the dropoff but the ride could not be completed yet
	TransitionPickup                    // Collected the rider
	TransitionArrive                    // Wandering car reached its goal
	TransitionDepart                    // Idle car picked a new goal
)

var transitionNames = [...]string{"move", "dropoff", "hold", "pickup", "arrive", "depart"}

func (t Transition) String() string {
	if int(t) < len(transitionNames) {
		return transitionNames[t]
	}
	return "unknown"
}

// World is what a car needs from the simulation to take a step.
type World interface {
	Grid() *city.Grid
	// ChooseDestination picks an idle car's next goal.
	ChooseDestination(c *Car) (city.Point, error)
	// CompleteRide records a delivered rider. It returns false when the ride
	// cannot be counted this tick, in which case the car holds in place.
	CompleteRide(c *Car, r *Rider) (bool, error)
}

// Step advances one car by one tick.
func Step(c *Car, w World) (Transition, error) {
	switch m := c.Mode.(type) {
	case *EnRouteDropoff:
		if c.Position == m.Rider.Destination {
			ok, err := w.CompleteRide(c, m.Rider)
			if err != nil {
				return TransitionHold, fmt.Errorf("car %d dropoff: %w", c.ID, err)
			}
			if !ok {
				return TransitionHold, nil
			}
			c.RidesCompleted++
			c.Mode = Idle{}
			return TransitionDropoff, nil
		}
		return TransitionMove, advance(c, &m.Route)

	case *EnRoutePickup:
		if c.Position == m.Rider.Position {
			c.Mode = &EnRouteDropoff{
				Rider: m.Rider,
				Route: routing.FindRoute(w.Grid(), c.Position, m.Rider.Destination),
			}
			return TransitionPickup, nil
		}
		return TransitionMove, advance(c, &m.Route)

	case *Wandering:
		if c.Position != m.Destination {
			if err := advance(c, &m.Route); err != nil {
				return TransitionMove, err
			}
		}
		if c.Position == m.Destination {
			c.Mode = Idle{}
			return TransitionArrive, nil
		}
		return TransitionMove, nil

	default:
		dest, err := w.ChooseDestination(c)
		if err != nil {
			return TransitionDepart, fmt.Errorf("car %d destination: %w", c.ID, err)
		}
		c.Mode = &Wandering{
			Destination: dest,
			Route:       routing.FindRoute(w.Grid(), c.Position, dest),
		}
		return TransitionDepart, nil
	}
}

func advance(c *Car, route *routing.Route) error {
	next, ok := route.PopFront()
	if !ok {
		return fmt.Errorf("car %d at %s: %w", c.ID, c.Position, ErrRouteExhausted)
	}
	c.Position = next
	return nil
}
