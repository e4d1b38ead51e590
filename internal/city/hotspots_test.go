package city

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceHotspots(t *testing.T) {
	g := NewGrid(100, 10)

	spots := PlaceHotspots(g, 42, 5)
	require.Len(t, spots, 5)

	for i, h := range spots {
		assert.True(t, g.Intersection(h.Point), "hotspot %s not at an intersection", h.Point)
		assert.GreaterOrEqual(t, h.Demand, 0.0)
		assert.LessOrEqual(t, h.Demand, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, h.Demand, spots[i-1].Demand, "hotspots not sorted by demand")
		}
		for _, other := range spots[:i] {
			assert.GreaterOrEqual(t, Manhattan(h.Point, other.Point), g.BlockSize())
		}
	}

	again := PlaceHotspots(g, 42, 5)
	assert.Equal(t, spots, again, "placement should be deterministic for a seed")
}

func TestPlaceHotspotsNone(t *testing.T) {
	assert.Nil(t, PlaceHotspots(NewGrid(12, 3), 1, 0))
}

func TestNearestHotspot(t *testing.T) {
	spots := []Hotspot{
		{Point: Point{X: 9, Y: 9}},
		{Point: Point{X: 1, Y: 5}},
		{Point: Point{X: 5, Y: 1}},
	}

	p, ok := NearestHotspot(Point{X: 2, Y: 4}, spots)
	require.True(t, ok)
	assert.Equal(t, Point{X: 1, Y: 5}, p)

	// (3,3) is 4 away from both (1,5) and (5,1); the earlier one wins.
	p, _ = NearestHotspot(Point{X: 3, Y: 3}, spots)
	assert.Equal(t, Point{X: 1, Y: 5}, p)

	_, ok = NearestHotspot(Point{X: 1, Y: 1}, nil)
	assert.False(t, ok)
}
