// Package routing computes street-respecting paths between grid addresses.
//
// A path leaves the start along the x-axis to a through-street, runs along
// that street on the y-axis, then turns onto the destination row. Every step
// moves exactly one unit on one axis, and axis changes only happen on a
// through-street.
package routing

import (
	"iter"
	"slices"

	"github.com/talgya/hailsim/internal/city"
)

// Route is the ordered list of waypoints still to be visited, excluding the
// current position and including the destination.
type Route []city.Point

// FindRoute returns the full path from start to finish.
func FindRoute(g *city.Grid, start, finish city.Point) Route {
	return Route(slices.Collect(Steps(g, start, finish)))
}

// Steps lazily yields the path from start to finish. The start point is not
// yielded; finish is the last point yielded. start == finish yields nothing.
func Steps(g *city.Grid, start, finish city.Point) iter.Seq[city.Point] {
	return func(yield func(city.Point) bool) {
		if start == finish {
			return
		}
		street := ChooseStreet(g, start.X, finish.X)

		turn1 := city.Point{X: street, Y: start.Y}
		turn2 := city.Point{X: street, Y: finish.Y}

		for _, seg := range [3][2]city.Point{{start, turn1}, {turn1, turn2}, {turn2, finish}} {
			for p := range segment(seg[0], seg[1]) {
				if !yield(p) {
					return
				}
			}
		}
	}
}

// ChooseStreet picks the through-street the path uses for its y-axis leg.
// The candidates are the streets bounding startX's block; the one with the
// shorter total x-axis detour wins, ties going to the nearer street.
func ChooseStreet(g *city.Grid, startX, finishX int) int {
	offset := g.Offset(startX)
	if offset == 0 {
		return startX
	}
	lower := startX - offset
	upper := lower + g.BlockSize()
	if upper > g.NumAddresses() {
		return lower
	}

	nearest, farthest := lower, upper
	if 2*offset >= g.BlockSize() {
		nearest, farthest = upper, lower
	}
	if detour(startX, finishX, farthest) < detour(startX, finishX, nearest) {
		return farthest
	}
	return nearest
}

func detour(startX, finishX, street int) int {
	return abs(startX-street) + abs(finishX-street)
}

// segment yields unit steps along a single axis from a (exclusive) to b
// (inclusive). a and b must share one coordinate.
func segment(a, b city.Point) iter.Seq[city.Point] {
	return func(yield func(city.Point) bool) {
		dx, dy := sign(b.X-a.X), sign(b.Y-a.Y)
		for p := a; p != b; {
			p = city.Point{X: p.X + dx, Y: p.Y + dy}
			if !yield(p) {
				return
			}
		}
	}
}

// Len returns the number of waypoints left.
func (r Route) Len() int { return len(r) }

// PopFront removes and returns the next waypoint. ok is false when the
// route is empty.
func (r *Route) PopFront() (p city.Point, ok bool) {
	if len(*r) == 0 {
		return city.Point{}, false
	}
	p = (*r)[0]
	*r = (*r)[1:]
	return p, true
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
