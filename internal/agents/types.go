// Package agents provides the car and rider data model, the driver
// strategies, and the per-tick car state machine.
package agents

import (
	"github.com/talgya/hailsim/internal/city"
	"github.com/talgya/hailsim/internal/routing"
)

// CarID identifies a car for the whole run.
type CarID uint64

// RiderID identifies a rider. Replacement riders get fresh IDs.
type RiderID uint64

// Rider is a person who wants to travel from Position to Destination.
type Rider struct {
	ID           RiderID    `json:"id"`
	Slot         int        `json:"slot"` // Index in the population arena
	Position     city.Point `json:"position"`
	Destination  city.Point `json:"destination"`
	NeedsRide    bool       `json:"needs_ride"`    // Still hailing; false once matched
	HailDistance float64    `json:"hail_distance"` // Euclidean detection radius
	SpawnTick    uint64     `json:"spawn_tick"`
}

// ModeKind enumerates car modes.
type ModeKind uint8

const (
	ModeIdle ModeKind = iota
	ModeWandering
	ModeEnRoutePickup
	ModeEnRouteDropoff
)

var modeNames = [...]string{"idle", "wandering", "en_route_pickup", "en_route_dropoff"}

func (k ModeKind) String() string {
	if int(k) < len(modeNames) {
		return modeNames[k]
	}
	return "unknown"
}

// Mode is what a car is currently doing. Each variant carries only the
// fields that make sense for it, so a car is always in exactly one mode.
type Mode interface {
	Kind() ModeKind
}

// Idle cars have no goal.
type Idle struct{}

// Wandering cars drive to a goal chosen by the driver strategy.
type Wandering struct {
	Destination city.Point
	Route       routing.Route
}

// EnRoutePickup cars drive to a rider who hailed them.
type EnRoutePickup struct {
	Rider *Rider
	Route routing.Route
}

// EnRouteDropoff cars carry a rider to the rider's destination.
type EnRouteDropoff struct {
	Rider *Rider
	Route routing.Route
}

func (Idle) Kind() ModeKind            { return ModeIdle }
func (*Wandering) Kind() ModeKind      { return ModeWandering }
func (*EnRoutePickup) Kind() ModeKind  { return ModeEnRoutePickup }
func (*EnRouteDropoff) Kind() ModeKind { return ModeEnRouteDropoff }

// Car is a vehicle in the fleet. Cars persist for the whole run.
type Car struct {
	ID             CarID      `json:"id"`
	Position       city.Point `json:"position"`
	Mode           Mode       `json:"-"`
	RidesCompleted int        `json:"rides_completed"`
}

// NewCar creates an idle car at position.
func NewCar(id CarID, position city.Point) *Car {
	return &Car{ID: id, Position: position, Mode: Idle{}}
}

// HasRider returns true while the car carries a rider.
func (c *Car) HasRider() bool {
	_, ok := c.Mode.(*EnRouteDropoff)
	return ok
}

// IsHailed returns true while the car drives to a pickup.
func (c *Car) IsHailed() bool {
	_, ok := c.Mode.(*EnRoutePickup)
	return ok
}

// HasDestination returns true while the car wanders toward its own goal.
func (c *Car) HasDestination() bool {
	_, ok := c.Mode.(*Wandering)
	return ok
}

// AssignedRider returns the rider the car is serving, or nil.
func (c *Car) AssignedRider() *Rider {
	switch m := c.Mode.(type) {
	case *EnRoutePickup:
		return m.Rider
	case *EnRouteDropoff:
		return m.Rider
	}
	return nil
}

// Available returns true if the car can take a new hail.
func (c *Car) Available() bool {
	return c.AssignedRider() == nil
}

// Destination returns the point the car is heading to. Idle cars are
// already where they want to be.
func (c *Car) Destination() city.Point {
	switch m := c.Mode.(type) {
	case *Wandering:
		return m.Destination
	case *EnRoutePickup:
		return m.Rider.Position
	case *EnRouteDropoff:
		return m.Rider.Destination
	}
	return c.Position
}

// Route returns the waypoints left to the destination.
func (c *Car) Route() routing.Route {
	switch m := c.Mode.(type) {
	case *Wandering:
		return m.Route
	case *EnRoutePickup:
		return m.Route
	case *EnRouteDropoff:
		return m.Route
	}
	return nil
}

// Hail assigns r to the car and routes the car to the rider. Any wandering
// goal is dropped.
func (c *Car) Hail(g *city.Grid, r *Rider) {
	r.NeedsRide = false
	c.Mode = &EnRoutePickup{
		Rider: r,
		Route: routing.FindRoute(g, c.Position, r.Position),
	}
}
