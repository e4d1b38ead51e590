// Package city provides the street grid, address space, and spatial queries.
// Coordinates are 1-based on both axes.
package city

import (
	"errors"
	"fmt"
	"math"
)

// Point is a grid address.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns the point as "(x,y)".
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// CellKind classifies a grid cell for movement.
type CellKind uint8

const (
	CellBlocked      CellKind = iota // Not traversable
	CellDrivable                     // Mid-block address, straight travel only
	CellTurnEligible                 // Lies on a through-street, a path may change axis here
)

// ErrCoordinateOutOfRange marks a point outside [1, NumAddresses] on either axis.
var ErrCoordinateOutOfRange = errors.New("coordinate out of range")

// CoordinateError reports which point left the grid.
type CoordinateError struct {
	Point Point
	Max   int
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("point %s outside grid [1,%d]", e.Point, e.Max)
}

func (e *CoordinateError) Unwrap() error { return ErrCoordinateOutOfRange }

// Grid holds the address space and street layout. It is immutable after NewGrid.
type Grid struct {
	numAddresses int
	numStreets   int
	blockSize    int
	blocked      map[Point]struct{}
}

// GridOption customizes a grid at construction time.
type GridOption func(*Grid)

// WithBlocked marks cells as untraversable.
func WithBlocked(points ...Point) GridOption {
	return func(g *Grid) {
		for _, p := range points {
			g.blocked[p] = struct{}{}
		}
	}
}

// NewGrid creates a numAddresses × numAddresses grid crossed by numStreets
// through-streets per axis. numStreets must divide numAddresses; callers
// validate this before construction.
func NewGrid(numAddresses, numStreets int, opts ...GridOption) *Grid {
	g := &Grid{
		numAddresses: numAddresses,
		numStreets:   numStreets,
		blockSize:    numAddresses / numStreets,
		blocked:      make(map[Point]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NumAddresses returns the grid extent along one axis.
func (g *Grid) NumAddresses() int { return g.numAddresses }

// NumStreets returns the number of through-streets per axis.
func (g *Grid) NumStreets() int { return g.numStreets }

// BlockSize returns the spacing between adjacent through-streets.
func (g *Grid) BlockSize() int { return g.blockSize }

// Offset returns how far v lies past the through-street at the start of its block.
func (g *Grid) Offset(v int) int {
	return (v - 1) % g.blockSize
}

// OnStreet reports whether the coordinate value v lies on a through-street.
func (g *Grid) OnStreet(v int) bool {
	return g.Offset(v) == 0
}

// Streets returns the through-street coordinates along one axis, ascending.
func (g *Grid) Streets() []int {
	streets := make([]int, 0, g.numStreets)
	for v := 1; v <= g.numAddresses; v += g.blockSize {
		streets = append(streets, v)
	}
	return streets
}

// Contains returns true if p lies within [1, NumAddresses] on both axes.
func (g *Grid) Contains(p Point) bool {
	return p.X >= 1 && p.X <= g.numAddresses && p.Y >= 1 && p.Y <= g.numAddresses
}

// Check returns a *CoordinateError if p lies outside the grid.
func (g *Grid) Check(p Point) error {
	if !g.Contains(p) {
		return &CoordinateError{Point: p, Max: g.numAddresses}
	}
	return nil
}

// Kind classifies the cell at p. Points outside the grid are blocked.
func (g *Grid) Kind(p Point) CellKind {
	if !g.Contains(p) {
		return CellBlocked
	}
	if _, ok := g.blocked[p]; ok {
		return CellBlocked
	}
	if g.OnStreet(p.X) || g.OnStreet(p.Y) {
		return CellTurnEligible
	}
	return CellDrivable
}

// Intersection returns true if both coordinates of p lie on through-streets.
func (g *Grid) Intersection(p Point) bool {
	return g.Contains(p) && g.OnStreet(p.X) && g.OnStreet(p.Y)
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(addresses=%d, streets=%d, block=%d)", g.numAddresses, g.numStreets, g.blockSize)
}

// Manhattan returns the taxicab distance between two points.
func Manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
