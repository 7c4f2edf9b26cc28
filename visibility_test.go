package main

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-planner/pathfind"
)

func TestVisibilityGraphDetoursAroundSquare(t *testing.T) {
	start, end := Point{0, 2}, Point{4, 2}
	obstacles := []Polygon{square(1, 1, 2)}

	vg, err := BuildVisibilityGraph(start, end, obstacles, nil, 0, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, vg.Points, 6)
	assert.NotContains(t, vg.Neighbors(VisibilityStart), VisibilityEnd, "square blocks the straight line")

	scorer := DistanceScorer{Points: vg, Metric: MetricPlanar}
	finder, err := pathfind.New(pathfind.Config[int]{Graph: vg, Step: scorer, Heuristic: scorer})
	require.NoError(t, err)
	res, err := finder.Search(context.Background(), VisibilityStart, VisibilityEnd)
	require.NoError(t, err)

	// start -> corner -> corner -> end along one side of the square
	want := 2*math.Sqrt2 + 2
	assert.InDelta(t, want, res.Cost, 1e-9)
	require.Len(t, res.Path, 4)
	assert.Equal(t, VisibilityStart, res.Path[0])
	assert.Equal(t, VisibilityEnd, res.Path[3])
	for i := 1; i < len(res.Path); i++ {
		assert.True(t, IsPathClear(vg.Point(res.Path[i-1]), vg.Point(res.Path[i]), obstacles))
	}
}

func TestVisibilityGraphDirectLine(t *testing.T) {
	vg, err := BuildVisibilityGraph(Point{0, 0}, Point{4, 0}, []Polygon{square(1, 1, 2)}, nil, 0, zerolog.Nop())
	require.NoError(t, err)
	assert.Contains(t, vg.Neighbors(VisibilityStart), VisibilityEnd)
}

func TestVisibilityGraphSharedVerticesDeduplicated(t *testing.T) {
	vg, err := BuildVisibilityGraph(Point{-1, 0}, Point{3, 0}, []Polygon{square(0, 1, 1), square(1, 1, 1)}, nil, 0, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, vg.Points, 2+6)
}

func TestVisibilityGraphNodeLimit(t *testing.T) {
	_, err := BuildVisibilityGraph(Point{0, 0}, Point{4, 0}, []Polygon{square(1, 1, 2)}, nil, 5, zerolog.Nop())
	assert.ErrorIs(t, err, ErrGraphTooLarge)
}

func TestVisibilityGraphClearanceCoversFarVertices(t *testing.T) {
	// the long wall's far end lies well outside the neighbourhood of the
	// endpoints, and the block sits between it and the start
	long := Polygon{Vertices: []Point{{-100, 0.9}, {10, 0.9}, {10, 1.1}, {-100, 1.1}}}
	block := Polygon{Vertices: []Point{{4, 0.2}, {6, 0.2}, {6, 0.7}, {4, 0.7}}}
	all := NewObstacleIndex([]Polygon{long, block})

	vg, err := BuildVisibilityGraph(Point{0, 0}, Point{0, 2}, []Polygon{long}, all, 0, zerolog.Nop())
	require.NoError(t, err)

	for i, edges := range vg.Edges {
		for _, j := range edges {
			assert.True(t, IsPathClear(vg.Point(i), vg.Point(j), []Polygon{long, block}),
				"edge %v -> %v crosses an obstacle", vg.Point(i), vg.Point(j))
		}
	}
	assert.NotContains(t, vg.Neighbors(VisibilityStart), 3, "block hides the wall's far corner")
}
