package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minX, minY, size float64) Polygon {
	return Polygon{Vertices: []Point{
		{minX, minY}, {minX + size, minY}, {minX + size, minY + size}, {minX, minY + size},
	}}
}

func TestDoSegmentsIntersect(t *testing.T) {
	cases := []struct {
		name string
		a, b LineSegment
		want bool
	}{
		{"crossing", LineSegment{Point{0, 0}, Point{2, 2}}, LineSegment{Point{0, 2}, Point{2, 0}}, true},
		{"parallel", LineSegment{Point{0, 0}, Point{2, 0}}, LineSegment{Point{0, 1}, Point{2, 1}}, false},
		{"shared endpoint", LineSegment{Point{0, 0}, Point{1, 1}}, LineSegment{Point{1, 1}, Point{2, 0}}, false},
		{"t junction", LineSegment{Point{0, 0}, Point{2, 0}}, LineSegment{Point{1, 0}, Point{1, 1}}, true},
		{"collinear overlap", LineSegment{Point{0, 0}, Point{2, 0}}, LineSegment{Point{1, 0}, Point{3, 0}}, true},
		{"collinear apart", LineSegment{Point{0, 0}, Point{1, 0}}, LineSegment{Point{2, 0}, Point{3, 0}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DoSegmentsIntersect(tc.a, tc.b))
		})
	}
}

func TestIsPointInPolygonExcludesBoundary(t *testing.T) {
	sq := square(0, 0, 2)
	assert.True(t, IsPointInPolygon(Point{1, 1}, sq))
	assert.False(t, IsPointInPolygon(Point{3, 1}, sq))
	assert.False(t, IsPointInPolygon(Point{0, 1}, sq), "edge")
	assert.False(t, IsPointInPolygon(Point{2, 2}, sq), "vertex")
	assert.False(t, IsPointInPolygon(Point{1, 1}, Polygon{Vertices: []Point{{0, 0}, {1, 1}}}))
}

func TestIsPathClear(t *testing.T) {
	obstacles := []Polygon{square(1, 1, 2)}

	assert.False(t, IsPathClear(Point{0, 2}, Point{4, 2}, obstacles), "through")
	assert.True(t, IsPathClear(Point{0, 0}, Point{4, 0}, obstacles), "below")
	assert.True(t, IsPathClear(Point{1, 1}, Point{3, 1}, obstacles), "along an edge")
	assert.False(t, IsPathClear(Point{1, 1}, Point{3, 3}, obstacles), "diagonal through interior")
	assert.False(t, IsPathClear(Point{1.5, 1.5}, Point{2.5, 2.5}, obstacles), "fully inside")
}

func TestPolygonRingRoundTrip(t *testing.T) {
	sq := square(0, 0, 1)
	ring := sq.Ring()
	require.Len(t, ring, 5)
	assert.True(t, ring.Closed())

	back := polygonFromRing(ring)
	assert.Equal(t, sq, back)
}

func TestDistances(t *testing.T) {
	assert.InDelta(t, 5.0, Point{0, 0}.Distance(Point{3, 4}), 1e-12)

	// one degree of latitude is roughly 111 km
	m := Point{5, 52}.DistanceMeters(Point{5, 53})
	assert.InDelta(t, 111_195, m, 500)
}
