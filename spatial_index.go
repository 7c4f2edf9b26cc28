package main

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// minExtent keeps degenerate (zero-width) boxes valid for rtreego
const minExtent = 1e-9

// polygonEntry wraps an obstacle for R-tree storage
type polygonEntry struct {
	polygon Polygon
	bbox    rtreego.Rect
}

// Bounds implements rtreego.Spatial
func (p *polygonEntry) Bounds() rtreego.Rect {
	return p.bbox
}

// ObstacleIndex answers which obstacles can touch a region
type ObstacleIndex struct {
	tree  *rtreego.Rtree
	count int
}

// NewObstacleIndex indexes obstacles by bounding box
func NewObstacleIndex(obstacles []Polygon) *ObstacleIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node
	count := 0
	for _, polygon := range obstacles {
		if len(polygon.Vertices) == 0 {
			continue
		}
		bbox, err := boundToRect(polygon.Bound())
		if err != nil {
			continue
		}
		tree.Insert(&polygonEntry{polygon: polygon, bbox: bbox})
		count++
	}
	return &ObstacleIndex{tree: tree, count: count}
}

// Len is the number of indexed obstacles
func (si *ObstacleIndex) Len() int { return si.count }

// Query returns obstacles whose bounding box intersects b
func (si *ObstacleIndex) Query(b orb.Bound) []Polygon {
	rect, err := boundToRect(b)
	if err != nil {
		return nil
	}
	results := si.tree.SearchIntersect(rect)
	polygons := make([]Polygon, 0, len(results))
	for _, item := range results {
		polygons = append(polygons, item.(*polygonEntry).polygon)
	}
	return polygons
}

// IsPathClear tests the segment only against obstacles near it
func (si *ObstacleIndex) IsPathClear(p1, p2 Point) bool {
	return IsPathClear(p1, p2, si.Query(LineSegment{P1: p1, P2: p2}.Bound()))
}

// Blocked reports whether the point lies inside any obstacle
func (si *ObstacleIndex) Blocked(p Point) bool {
	for _, polygon := range si.Query(orb.Bound{Min: p.Orb(), Max: p.Orb()}) {
		if IsPointInPolygon(p, polygon) {
			return true
		}
	}
	return false
}

// nodeEntry is a roadmap node stored in the R-tree
type nodeEntry struct {
	id    int
	point Point
}

// Bounds implements rtreego.Spatial
func (n *nodeEntry) Bounds() rtreego.Rect {
	return rtreego.Point{n.point.X, n.point.Y}.ToRect(minExtent)
}

// NodeIndex finds roadmap nodes near a location
type NodeIndex struct {
	tree *rtreego.Rtree
}

// NewNodeIndex indexes points by id (slice position)
func NewNodeIndex(points []Point) *NodeIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for id, p := range points {
		tree.Insert(&nodeEntry{id: id, point: p})
	}
	return &NodeIndex{tree: tree}
}

// Nearest returns the id of the closest node and its distance, or -1 when empty
func (ni *NodeIndex) Nearest(p Point) (int, float64) {
	item := ni.tree.NearestNeighbor(rtreego.Point{p.X, p.Y})
	if item == nil {
		return -1, math.MaxFloat64
	}
	entry := item.(*nodeEntry)
	return entry.id, p.Distance(entry.point)
}

// Within returns ids of nodes no further than radius from p
func (ni *NodeIndex) Within(p Point, radius float64) []int {
	rect, err := boundToRect(orb.Bound{
		Min: orb.Point{p.X - radius, p.Y - radius},
		Max: orb.Point{p.X + radius, p.Y + radius},
	})
	if err != nil {
		return nil
	}
	var ids []int
	for _, item := range ni.tree.SearchIntersect(rect) {
		entry := item.(*nodeEntry)
		if p.Distance(entry.point) <= radius {
			ids = append(ids, entry.id)
		}
	}
	sort.Ints(ids)
	return ids
}

func boundToRect(b orb.Bound) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min.X(), b.Min.Y()},
		[]float64{
			math.Max(b.Max.X()-b.Min.X(), minExtent),
			math.Max(b.Max.Y()-b.Min.Y(), minExtent),
		},
	)
}

// RouteBound is the bounding box around start and end padded by margin
func RouteBound(start, end Point, margin float64) orb.Bound {
	return LineSegment{P1: start, P2: end}.Bound().Pad(margin)
}
