package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrEndpointBlocked is returned when a route endpoint lies inside an obstacle
	ErrEndpointBlocked = errors.New("endpoint inside obstacle")

	// ErrEndpointUnreachable is returned when no roadmap node is visible from an endpoint
	ErrEndpointUnreachable = errors.New("endpoint cannot be connected to roadmap")
)

// BoundingBox is the sampling area of a roadmap
type BoundingBox struct {
	MinX float64 `json:"minX" yaml:"min_x"`
	MinY float64 `json:"minY" yaml:"min_y"`
	MaxX float64 `json:"maxX" yaml:"max_x"`
	MaxY float64 `json:"maxY" yaml:"max_y"`
}

// RoadmapNode is a sampled free-space point and the ids it connects to
type RoadmapNode struct {
	ID    int   `json:"id"`
	Point Point `json:"point"`
	Edges []int `json:"edges"`
}

// Roadmap is a pre-computed probabilistic roadmap. Node ids equal their
// position in Nodes. It is read-only once built and implements
// pathfind.Graph[int].
type Roadmap struct {
	Nodes            []RoadmapNode `json:"nodes"`
	BoundingBox      BoundingBox   `json:"boundingBox"`
	NumSamples       int           `json:"numSamples"`
	ConnectionRadius float64       `json:"connectionRadius"`

	indexOnce sync.Once
	index     *NodeIndex
}

// RoadmapOptions controls roadmap sampling
type RoadmapOptions struct {
	Samples          int
	ConnectionRadius float64
	Bounds           BoundingBox
	// MaxAttemptsFactor caps sampling at Samples*MaxAttemptsFactor draws
	MaxAttemptsFactor int
}

// BuildRoadmap samples free points inside the bounds and connects pairs within
// the connection radius whose segment does not cross an obstacle
func BuildRoadmap(opts RoadmapOptions, obstacles *ObstacleIndex, rng *rand.Rand, logger zerolog.Logger) *Roadmap {
	startTime := time.Now()
	logger.Info().
		Int("samples", opts.Samples).
		Float64("radius", opts.ConnectionRadius).
		Int("obstacles", obstacles.Len()).
		Msg("building roadmap")

	factor := opts.MaxAttemptsFactor
	if factor <= 0 {
		factor = 10
	}

	rm := &Roadmap{
		Nodes:            make([]RoadmapNode, 0, opts.Samples),
		BoundingBox:      opts.Bounds,
		NumSamples:       opts.Samples,
		ConnectionRadius: opts.ConnectionRadius,
	}

	b := opts.Bounds
	for attempts := 0; len(rm.Nodes) < opts.Samples && attempts < opts.Samples*factor; attempts++ {
		p := Point{
			X: b.MinX + rng.Float64()*(b.MaxX-b.MinX),
			Y: b.MinY + rng.Float64()*(b.MaxY-b.MinY),
		}
		if obstacles.Blocked(p) {
			continue
		}
		rm.Nodes = append(rm.Nodes, RoadmapNode{ID: len(rm.Nodes), Point: p, Edges: []int{}})
	}
	if len(rm.Nodes) < opts.Samples {
		logger.Warn().Int("generated", len(rm.Nodes)).Int("requested", opts.Samples).Msg("sampling fell short")
	}

	index := rm.nodeIndex()
	edges, rejected := 0, 0
	for i := range rm.Nodes {
		for _, j := range index.Within(rm.Nodes[i].Point, opts.ConnectionRadius) {
			if j <= i {
				continue
			}
			if !obstacles.IsPathClear(rm.Nodes[i].Point, rm.Nodes[j].Point) {
				rejected++
				continue
			}
			rm.Nodes[i].Edges = append(rm.Nodes[i].Edges, j)
			rm.Nodes[j].Edges = append(rm.Nodes[j].Edges, i)
			edges++
		}
	}

	logger.Info().
		Int("nodes", len(rm.Nodes)).
		Int("edges", edges).
		Int("rejected_edges", rejected).
		Dur("elapsed", time.Since(startTime)).
		Msg("roadmap built")
	return rm
}

// Neighbors implements pathfind.Graph
func (r *Roadmap) Neighbors(id int) []int {
	if !r.HasNode(id) {
		return nil
	}
	return r.Nodes[id].Edges
}

// HasNode implements pathfind.NodeChecker
func (r *Roadmap) HasNode(id int) bool {
	return id >= 0 && id < len(r.Nodes)
}

// Point returns the location of node id
func (r *Roadmap) Point(id int) Point {
	return r.Nodes[id].Point
}

// EdgeCount is the number of undirected edges
func (r *Roadmap) EdgeCount() int {
	total := 0
	for _, n := range r.Nodes {
		total += len(n.Edges)
	}
	return total / 2
}

func (r *Roadmap) nodeIndex() *NodeIndex {
	r.indexOnce.Do(func() {
		points := make([]Point, len(r.Nodes))
		for i, n := range r.Nodes {
			points[i] = n.Point
		}
		r.index = NewNodeIndex(points)
	})
	return r.index
}

// Nearest returns the closest node to p and its distance, -1 on an empty roadmap
func (r *Roadmap) Nearest(p Point) (int, float64) {
	return r.nodeIndex().Nearest(p)
}

// WithEndpoints returns a copy of the roadmap with start and end attached as
// two extra nodes. The receiver is not modified.
func (r *Roadmap) WithEndpoints(start, end Point, obstacles *ObstacleIndex) (*Roadmap, int, int, error) {
	if obstacles.Blocked(start) {
		return nil, -1, -1, fmt.Errorf("start %v: %w", start, ErrEndpointBlocked)
	}
	if obstacles.Blocked(end) {
		return nil, -1, -1, fmt.Errorf("end %v: %w", end, ErrEndpointBlocked)
	}

	startID, endID := len(r.Nodes), len(r.Nodes)+1
	tmp := &Roadmap{
		Nodes:            make([]RoadmapNode, len(r.Nodes), len(r.Nodes)+2),
		BoundingBox:      r.BoundingBox,
		NumSamples:       r.NumSamples,
		ConnectionRadius: r.ConnectionRadius,
	}
	copy(tmp.Nodes, r.Nodes)
	tmp.Nodes = append(tmp.Nodes,
		RoadmapNode{ID: startID, Point: start, Edges: []int{}},
		RoadmapNode{ID: endID, Point: end, Edges: []int{}},
	)

	index := r.nodeIndex()
	for _, id := range []int{startID, endID} {
		p := tmp.Nodes[id].Point
		for _, j := range index.Within(p, r.ConnectionRadius) {
			if obstacles.IsPathClear(p, r.Nodes[j].Point) {
				tmp.link(id, j)
			}
		}
	}
	if start.Distance(end) <= r.ConnectionRadius && obstacles.IsPathClear(start, end) {
		tmp.link(startID, endID)
	}

	if len(tmp.Nodes[startID].Edges) == 0 {
		return nil, -1, -1, r.unreachable("start", start)
	}
	if len(tmp.Nodes[endID].Edges) == 0 {
		return nil, -1, -1, r.unreachable("end", end)
	}
	return tmp, startID, endID, nil
}

func (r *Roadmap) unreachable(which string, p Point) error {
	if id, dist := r.Nearest(p); id >= 0 {
		return fmt.Errorf("%s %v, nearest node %d is %.4g away: %w", which, p, id, dist, ErrEndpointUnreachable)
	}
	return fmt.Errorf("%s %v: %w", which, p, ErrEndpointUnreachable)
}

// link adds an undirected edge. Edge slices of copied nodes are cloned before
// appending so the source roadmap never sees the new edges.
func (r *Roadmap) link(a, b int) {
	for _, pair := range [][2]int{{a, b}, {b, a}} {
		n := &r.Nodes[pair[0]]
		edges := make([]int, len(n.Edges), len(n.Edges)+1)
		copy(edges, n.Edges)
		n.Edges = append(edges, pair[1])
	}
}

// Lines returns each undirected edge once as a two-point line for display
func (r *Roadmap) Lines() [][]Point {
	lines := make([][]Point, 0, r.EdgeCount())
	for _, node := range r.Nodes {
		for _, neighborID := range node.Edges {
			if node.ID < neighborID {
				lines = append(lines, []Point{node.Point, r.Nodes[neighborID].Point})
			}
		}
	}
	return lines
}

// SaveRoadmap writes the roadmap as indented JSON
func SaveRoadmap(rm *Roadmap, filename string) error {
	data, err := json.MarshalIndent(rm, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal roadmap: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("write roadmap: %w", err)
	}
	return nil
}

// LoadRoadmap reads a roadmap written by SaveRoadmap
func LoadRoadmap(filename string) (*Roadmap, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read roadmap: %w", err)
	}

	var rm Roadmap
	if err := json.Unmarshal(data, &rm); err != nil {
		return nil, fmt.Errorf("unmarshal roadmap: %w", err)
	}
	for i, n := range rm.Nodes {
		if n.ID != i {
			return nil, fmt.Errorf("roadmap node %d has id %d", i, n.ID)
		}
		for _, e := range n.Edges {
			if e < 0 || e >= len(rm.Nodes) {
				return nil, fmt.Errorf("roadmap node %d links to unknown node %d", i, e)
			}
		}
	}
	return &rm, nil
}
