package main

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wall is a thin vertical obstacle splitting [0,10]x[0,10] except for a gap
// at the top
func wall() []Polygon {
	return []Polygon{{Vertices: []Point{{4.5, -1}, {5.5, -1}, {5.5, 8}, {4.5, 8}}}}
}

func testRoadmap(t *testing.T, obstacles []Polygon, samples int) (*Roadmap, *ObstacleIndex) {
	t.Helper()
	index := NewObstacleIndex(obstacles)
	rm := BuildRoadmap(RoadmapOptions{
		Samples:          samples,
		ConnectionRadius: 2,
		Bounds:           BoundingBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
	}, index, rand.New(rand.NewSource(7)), zerolog.Nop())
	return rm, index
}

func TestBuildRoadmap(t *testing.T) {
	rm, index := testRoadmap(t, wall(), 300)
	require.Len(t, rm.Nodes, 300)

	for id, node := range rm.Nodes {
		assert.Equal(t, id, node.ID)
		assert.False(t, index.Blocked(node.Point), "node %d sampled inside obstacle", id)
		for _, e := range node.Edges {
			other := rm.Nodes[e]
			assert.Contains(t, other.Edges, id, "edge %d-%d is one way", id, e)
			assert.LessOrEqual(t, node.Point.Distance(other.Point), 2.0)
			assert.True(t, index.IsPathClear(node.Point, other.Point))
		}
	}
	assert.Equal(t, len(rm.Lines()), rm.EdgeCount())
}

func TestBuildRoadmapIsDeterministicPerSeed(t *testing.T) {
	a, _ := testRoadmap(t, wall(), 100)
	b, _ := testRoadmap(t, wall(), 100)
	assert.Equal(t, a.Nodes, b.Nodes)
}

func TestRoadmapGraphInterface(t *testing.T) {
	rm, _ := testRoadmap(t, nil, 50)
	assert.True(t, rm.HasNode(0))
	assert.False(t, rm.HasNode(-1))
	assert.False(t, rm.HasNode(50))
	assert.Nil(t, rm.Neighbors(50))
	assert.Equal(t, rm.Nodes[3].Edges, rm.Neighbors(3))

	id, dist := rm.Nearest(rm.Nodes[3].Point)
	assert.Equal(t, 3, id)
	assert.Zero(t, dist)
}

func TestWithEndpointsLeavesSourceUntouched(t *testing.T) {
	rm, index := testRoadmap(t, wall(), 300)
	before := make([][]int, len(rm.Nodes))
	for i, n := range rm.Nodes {
		before[i] = append([]int(nil), n.Edges...)
	}

	graph, startID, endID, err := rm.WithEndpoints(Point{1, 1}, Point{9, 1}, index)
	require.NoError(t, err)
	assert.Equal(t, len(rm.Nodes), startID)
	assert.Equal(t, len(rm.Nodes)+1, endID)
	assert.NotEmpty(t, graph.Neighbors(startID))
	assert.NotEmpty(t, graph.Neighbors(endID))
	for _, n := range graph.Neighbors(startID) {
		assert.Contains(t, graph.Neighbors(n), startID)
	}

	require.Len(t, rm.Nodes, len(before))
	for i, n := range rm.Nodes {
		assert.Equal(t, before[i], n.Edges, "node %d edges changed", i)
	}
}

func TestWithEndpointsErrors(t *testing.T) {
	rm, index := testRoadmap(t, wall(), 300)

	_, _, _, err := rm.WithEndpoints(Point{5, 2}, Point{9, 1}, index)
	assert.ErrorIs(t, err, ErrEndpointBlocked)

	_, _, _, err = rm.WithEndpoints(Point{1, 1}, Point{50, 50}, index)
	assert.ErrorIs(t, err, ErrEndpointUnreachable)
}

func TestWithEndpointsLinksCloseEndpoints(t *testing.T) {
	rm := &Roadmap{ConnectionRadius: 1}
	graph, startID, endID, err := rm.WithEndpoints(Point{0, 0}, Point{0.5, 0}, NewObstacleIndex(nil))
	require.NoError(t, err)
	assert.Equal(t, []int{endID}, graph.Neighbors(startID))
}

func TestSaveLoadRoadmap(t *testing.T) {
	rm, _ := testRoadmap(t, wall(), 40)
	file := filepath.Join(t.TempDir(), "roadmap.json")
	require.NoError(t, SaveRoadmap(rm, file))

	loaded, err := LoadRoadmap(file)
	require.NoError(t, err)
	assert.Equal(t, rm.Nodes, loaded.Nodes)
	assert.Equal(t, rm.BoundingBox, loaded.BoundingBox)
	assert.Equal(t, rm.ConnectionRadius, loaded.ConnectionRadius)

	_, err = LoadRoadmap(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
