package main

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-planner/pathfind"
)

func parseMaze(t *testing.T, text string) *Maze {
	t.Helper()
	m, err := ParseMaze(strings.NewReader(text))
	require.NoError(t, err)
	return m
}

func TestParseMaze(t *testing.T) {
	m := parseMaze(t, "S.#\n.3\n..G\n\n")
	assert.Equal(t, 3, m.Width)
	assert.Equal(t, 3, m.Height)
	assert.Equal(t, Cell{0, 0}, m.Start)
	assert.Equal(t, Cell{2, 2}, m.Goal)
	assert.False(t, m.Open(Cell{2, 0}))
	assert.False(t, m.Open(Cell{2, 1}), "short rows padded with walls")
	assert.False(t, m.Open(Cell{-1, 0}))
	assert.Equal(t, 3.0, m.HeightAt(Cell{1, 1}))
}

func TestParseMazeErrors(t *testing.T) {
	for name, text := range map[string]string{
		"empty":         "\n\n",
		"two starts":    "S.S\n..G",
		"two goals":     "SGG",
		"unknown glyph": "S?G",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMaze(strings.NewReader(text))
			assert.ErrorIs(t, err, ErrMazeSyntax)
		})
	}
}

func TestMazeNeighbors(t *testing.T) {
	m := parseMaze(t, "...\n.#.\n...")
	assert.ElementsMatch(t, []Cell{{1, 0}, {0, 1}}, m.Neighbors(Cell{0, 0}))

	m.Diagonal = true
	assert.ElementsMatch(t, []Cell{{1, 0}, {0, 1}}, m.Neighbors(Cell{0, 0}), "no corner cutting past the wall")
	assert.ElementsMatch(t, []Cell{{0, 0}, {2, 0}}, m.Neighbors(Cell{1, 0}))

	open := parseMaze(t, "...\n...\n...")
	open.Diagonal = true
	assert.Len(t, open.Neighbors(Cell{1, 1}), 8)
}

func TestTerrainScorer(t *testing.T) {
	m := parseMaze(t, ".2.")
	s := TerrainScorer{Maze: m, ClimbPenalty: 1.5}

	assert.Equal(t, 4.0, s.Cost(Cell{0, 0}, Cell{1, 0}), "climb of 2")
	assert.Equal(t, 1.0, s.Cost(Cell{1, 0}, Cell{2, 0}), "descent is free")
	assert.InDelta(t, math.Sqrt2, s.Cost(Cell{0, 0}, Cell{1, 1}), 1e-12)
}

func TestMazeHeuristicsAreAdmissible(t *testing.T) {
	a, b := Cell{0, 0}, Cell{3, 5}
	assert.Equal(t, 8.0, ManhattanScorer{}.Cost(a, b))
	assert.InDelta(t, 5+3*(math.Sqrt2-1), OctileScorer{}.Cost(a, b), 1e-12)
}

func TestMazeRouteAvoidsHill(t *testing.T) {
	m := parseMaze(t, strings.Join([]string{
		"S9G",
		"...",
	}, "\n"))
	finder, err := pathfind.New(pathfind.Config[Cell]{
		Graph:     m,
		Step:      TerrainScorer{Maze: m, ClimbPenalty: 1},
		Heuristic: ManhattanScorer{},
	})
	require.NoError(t, err)

	res, err := finder.Search(context.Background(), m.Start, m.Goal)
	require.NoError(t, err)
	assert.Equal(t, []Cell{{0, 0}, {0, 1}, {1, 1}, {2, 1}, {2, 0}}, res.Path)
	assert.Equal(t, 4.0, res.Cost)

	assert.Equal(t, "S9G\n***\n", m.Render(res.Path))
}

func TestMazeRouteWalledOff(t *testing.T) {
	m := parseMaze(t, "S#G")
	finder, err := pathfind.New(pathfind.Config[Cell]{Graph: m, Step: TerrainScorer{Maze: m}, Heuristic: ManhattanScorer{}})
	require.NoError(t, err)

	_, err = finder.FindRoute(context.Background(), m.Start, m.Goal)
	assert.ErrorIs(t, err, pathfind.ErrNoRoute)

	_, err = finder.FindRoute(context.Background(), m.Start, Cell{1, 0})
	assert.ErrorIs(t, err, pathfind.ErrInvalidNode, "walls are not nodes")
}
