package main

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObstacleIndexQuery(t *testing.T) {
	index := NewObstacleIndex([]Polygon{square(0, 0, 1), square(10, 10, 1), {}})
	require.Equal(t, 2, index.Len(), "empty polygons are not indexed")

	got := index.Query(orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{2, 2}})
	require.Len(t, got, 1)
	assert.Equal(t, square(0, 0, 1), got[0])

	assert.Empty(t, index.Query(orb.Bound{Min: orb.Point{4, 4}, Max: orb.Point{5, 5}}))
}

func TestObstacleIndexClearanceMatchesBruteForce(t *testing.T) {
	obstacles := []Polygon{square(1, 1, 2), square(5, 0, 1), square(2, 6, 3)}
	index := NewObstacleIndex(obstacles)

	points := []Point{{0, 0}, {4, 4}, {0, 2}, {6, 3}, {3.5, 9.5}, {2, 2}, {8, 8}, {5.5, 0.5}}
	for _, a := range points {
		for _, b := range points {
			assert.Equal(t, IsPathClear(a, b, obstacles), index.IsPathClear(a, b), "%v -> %v", a, b)
		}
		assert.Equal(t, IsPointInPolygon(a, obstacles[0]) || IsPointInPolygon(a, obstacles[1]) || IsPointInPolygon(a, obstacles[2]),
			index.Blocked(a), "%v", a)
	}
}

func TestNodeIndex(t *testing.T) {
	index := NewNodeIndex([]Point{{0, 0}, {1, 0}, {5, 5}, {0.5, 0.5}})

	id, dist := index.Nearest(Point{4.8, 5.1})
	assert.Equal(t, 2, id)
	assert.InDelta(t, 0.2236, dist, 1e-3)

	assert.Equal(t, []int{0, 1, 3}, index.Within(Point{0.5, 0}, 0.75))
	assert.Empty(t, index.Within(Point{20, 20}, 1))
}

func TestRouteBound(t *testing.T) {
	b := RouteBound(Point{2, 1}, Point{0, 3}, 0.5)
	assert.Equal(t, orb.Point{-0.5, 0.5}, b.Min)
	assert.Equal(t, orb.Point{2.5, 3.5}, b.Max)
}
