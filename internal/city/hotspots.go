// Hotspot placement: scores intersections with a simplex demand field and
// picks the busiest ones, keeping them at least a block apart.
package city

import (
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Hotspot is an intersection with elevated rider demand.
type Hotspot struct {
	Point  Point   `json:"point"`
	Demand float64 `json:"demand"` // 0.0 (quiet) to 1.0 (busiest)
}

// DemandField samples rider demand at any grid point.
type DemandField struct {
	noise opensimplex.Noise
}

// NewDemandField creates a demand field from a seed.
func NewDemandField(seed int64) *DemandField {
	return &DemandField{noise: opensimplex.NewNormalized(seed + 500)}
}

// At returns the demand at p in [0, 1].
func (f *DemandField) At(p Point) float64 {
	return octaveNoise(f.noise, float64(p.X), float64(p.Y), 3, 0.07, 0.5)
}

// PlaceHotspots returns up to n intersections sorted by demand, descending.
// Chosen hotspots are spaced at least one block apart (taxicab).
func PlaceHotspots(g *Grid, seed int64, n int) []Hotspot {
	if n <= 0 {
		return nil
	}
	field := NewDemandField(seed)

	var candidates []Hotspot
	for _, x := range g.Streets() {
		for _, y := range g.Streets() {
			p := Point{X: x, Y: y}
			if !g.Intersection(p) || g.Kind(p) == CellBlocked {
				continue
			}
			candidates = append(candidates, Hotspot{Point: p, Demand: field.At(p)})
		}
	}

	// Stable on ties so placement is reproducible for a seed.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Demand > candidates[j].Demand
	})

	var placed []Hotspot
	for _, c := range candidates {
		if len(placed) >= n {
			break
		}
		if tooClose(c.Point, placed, g.BlockSize()) {
			continue
		}
		placed = append(placed, c)
	}
	return placed
}

// NearestHotspot returns the hotspot closest to p by taxicab distance.
// Ties go to the earlier hotspot in the list. ok is false for an empty list.
func NearestHotspot(p Point, hotspots []Hotspot) (Point, bool) {
	if len(hotspots) == 0 {
		return Point{}, false
	}
	best := hotspots[0].Point
	bestDist := Manhattan(p, best)
	for _, h := range hotspots[1:] {
		if d := Manhattan(p, h.Point); d < bestDist {
			best, bestDist = h.Point, d
		}
	}
	return best, true
}

func tooClose(p Point, placed []Hotspot, minDist int) bool {
	for _, h := range placed {
		if Manhattan(p, h.Point) < minDist {
			return true
		}
	}
	return false
}

// octaveNoise layers several frequencies of simplex noise, normalized to [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxAmp := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxAmp += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxAmp
}
