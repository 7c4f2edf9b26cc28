package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrGraphTooLarge is returned when a visibility graph would exceed its node limit
var ErrGraphTooLarge = errors.New("visibility graph too large")

// Visibility graph node ids of the two route endpoints
const (
	VisibilityStart = 0
	VisibilityEnd   = 1
)

// VisibilityGraph connects the route endpoints and obstacle vertices that can
// see each other. It implements pathfind.Graph[int].
type VisibilityGraph struct {
	Points []Point
	Edges  [][]int
}

// BuildVisibilityGraph builds the graph for one start/end pair. The vertices of
// obstacles become nodes; line of sight is tested against every obstacle in
// clearance, which must cover the whole area the vertices span. A nil
// clearance indexes obstacles alone. maxNodes <= 0 disables the size check.
func BuildVisibilityGraph(start, end Point, obstacles []Polygon, clearance *ObstacleIndex, maxNodes int, logger zerolog.Logger) (*VisibilityGraph, error) {
	vg := &VisibilityGraph{Points: []Point{start, end}}

	seen := map[Point]bool{start: true, end: true}
	for _, zone := range obstacles {
		for _, vertex := range zone.Vertices {
			if !seen[vertex] {
				seen[vertex] = true
				vg.Points = append(vg.Points, vertex)
			}
		}
	}

	n := len(vg.Points)
	if maxNodes > 0 && n > maxNodes {
		return nil, fmt.Errorf("%w: %d nodes, limit %d", ErrGraphTooLarge, n, maxNodes)
	}
	logger.Debug().Int("nodes", n).Int("candidate_edges", n*(n-1)/2).Msg("building visibility graph")

	if clearance == nil {
		clearance = NewObstacleIndex(obstacles)
	}
	vg.Edges = make([][]int, n)
	added := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if clearance.IsPathClear(vg.Points[i], vg.Points[j]) {
				vg.Edges[i] = append(vg.Edges[i], j)
				vg.Edges[j] = append(vg.Edges[j], i)
				added++
			}
		}
	}

	logger.Debug().Int("edges", added).Msg("visibility graph built")
	return vg, nil
}

// Neighbors implements pathfind.Graph
func (vg *VisibilityGraph) Neighbors(id int) []int {
	if !vg.HasNode(id) {
		return nil
	}
	return vg.Edges[id]
}

// HasNode implements pathfind.NodeChecker
func (vg *VisibilityGraph) HasNode(id int) bool {
	return id >= 0 && id < len(vg.Points)
}

// Point returns the location of node id
func (vg *VisibilityGraph) Point(id int) Point {
	return vg.Points[id]
}
