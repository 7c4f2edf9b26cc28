package main

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Point is a planar or lon/lat coordinate (X = lon, Y = lat)
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon is an obstacle outline as a list of vertices
type Polygon struct {
	Vertices []Point `json:"vertices"`
}

// Orb converts the point to an orb.Point
func (p Point) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

func pointFromOrb(p orb.Point) Point {
	return Point{X: p.X(), Y: p.Y()}
}

// Distance is the Euclidean distance in coordinate units
func (p Point) Distance(other Point) float64 {
	return planar.Distance(p.Orb(), other.Orb())
}

// DistanceMeters is the great-circle distance for lon/lat coordinates
func (p Point) DistanceMeters(other Point) float64 {
	return geo.DistanceHaversine(p.Orb(), other.Orb())
}

// Ring converts the polygon outline to a closed orb.Ring
func (poly Polygon) Ring() orb.Ring {
	ring := make(orb.Ring, 0, len(poly.Vertices)+1)
	for _, v := range poly.Vertices {
		ring = append(ring, v.Orb())
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// Bound returns the polygon's axis-aligned bounding box
func (poly Polygon) Bound() orb.Bound {
	return poly.Ring().Bound()
}

// polygonFromRing drops the closing vertex, Polygon outlines are implicitly closed
func polygonFromRing(ring orb.Ring) Polygon {
	if len(ring) > 1 && ring.Closed() {
		ring = ring[:len(ring)-1]
	}
	poly := Polygon{Vertices: make([]Point, 0, len(ring))}
	for _, p := range ring {
		poly.Vertices = append(poly.Vertices, pointFromOrb(p))
	}
	return poly
}

// LineSegment is a straight segment between two points
type LineSegment struct {
	P1, P2 Point
}

// Bound returns the segment's bounding box
func (s LineSegment) Bound() orb.Bound {
	return orb.MultiPoint{s.P1.Orb(), s.P2.Orb()}.Bound()
}

// DoSegmentsIntersect reports whether two segments cross. Segments that only
// share an endpoint do not count as crossing.
func DoSegmentsIntersect(seg1, seg2 LineSegment) bool {
	p1, p2 := seg1.P1, seg1.P2
	p3, p4 := seg2.P1, seg2.P2

	if p1 == p3 || p1 == p4 || p2 == p3 || p2 == p4 {
		return false
	}

	d1 := orientation(p3, p4, p1)
	d2 := orientation(p3, p4, p2)
	d3 := orientation(p1, p2, p3)
	d4 := orientation(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// collinear touches
	switch {
	case d1 == 0 && onSegment(p3, p4, p1):
		return true
	case d2 == 0 && onSegment(p3, p4, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, p3):
		return true
	case d4 == 0 && onSegment(p1, p2, p4):
		return true
	}
	return false
}

// orientation is the cross product of (p2-p1) and (p3-p1), sign gives the turn
func orientation(p1, p2, p3 Point) float64 {
	return (p3.X-p1.X)*(p2.Y-p1.Y) - (p2.X-p1.X)*(p3.Y-p1.Y)
}

// onSegment assumes q is collinear with pr
func onSegment(p, r, q Point) bool {
	return q.X <= math.Max(p.X, r.X) && q.X >= math.Min(p.X, r.X) &&
		q.Y <= math.Max(p.Y, r.Y) && q.Y >= math.Min(p.Y, r.Y)
}

// IsPointInPolygon reports whether point lies strictly inside the polygon.
// Points on the outline are outside so routes may hug obstacle edges.
func IsPointInPolygon(point Point, polygon Polygon) bool {
	if len(polygon.Vertices) < 3 {
		return false
	}
	if isOnBoundary(point, polygon) {
		return false
	}
	return planar.RingContains(polygon.Ring(), point.Orb())
}

func isOnBoundary(point Point, polygon Polygon) bool {
	n := len(polygon.Vertices)
	for i := 0; i < n; i++ {
		a, b := polygon.Vertices[i], polygon.Vertices[(i+1)%n]
		if orientation(a, b, point) == 0 && onSegment(a, b, point) {
			return true
		}
	}
	return false
}

// DoesSegmentIntersectPolygon checks the segment against every polygon edge
func DoesSegmentIntersectPolygon(seg LineSegment, polygon Polygon) bool {
	n := len(polygon.Vertices)
	for i := 0; i < n; i++ {
		edge := LineSegment{
			P1: polygon.Vertices[i],
			P2: polygon.Vertices[(i+1)%n],
		}
		if DoSegmentsIntersect(seg, edge) {
			return true
		}
	}
	return false
}

// IsPathClear reports whether the straight segment p1-p2 avoids every obstacle
func IsPathClear(p1, p2 Point, obstacles []Polygon) bool {
	segment := LineSegment{P1: p1, P2: p2}
	midpoint := Point{X: (p1.X + p2.X) / 2, Y: (p1.Y + p2.Y) / 2}

	for _, zone := range obstacles {
		if DoesSegmentIntersectPolygon(segment, zone) {
			return false
		}
		// endpoints or midpoint inside catches segments fully within the zone
		if IsPointInPolygon(p1, zone) || IsPointInPolygon(p2, zone) || IsPointInPolygon(midpoint, zone) {
			return false
		}
	}
	return true
}
