package main

import "fmt"

// Metric selects how straight-line distance is measured
type Metric string

const (
	MetricPlanar    Metric = "planar"    // Euclidean, coordinate units
	MetricHaversine Metric = "haversine" // great-circle meters over lon/lat
)

// ParseMetric validates a metric name from config or requests
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricPlanar, MetricHaversine:
		return m, nil
	case "":
		return MetricPlanar, nil
	}
	return "", fmt.Errorf("unknown distance metric %q", s)
}

// Measure returns the distance between a and b
func (m Metric) Measure(a, b Point) float64 {
	if m == MetricHaversine {
		return a.DistanceMeters(b)
	}
	return a.Distance(b)
}

// PointLookup resolves a graph node id to its location
type PointLookup interface {
	Point(id int) Point
}

// DistanceScorer scores node pairs by straight-line distance. On graphs whose
// edges are straight segments it is both the exact step cost and an
// admissible heuristic.
type DistanceScorer struct {
	Points PointLookup
	Metric Metric
}

// Cost implements pathfind.Scorer
func (s DistanceScorer) Cost(from, to int) float64 {
	return s.Metric.Measure(s.Points.Point(from), s.Points.Point(to))
}

// PathLength measures a polyline with the metric
func (m Metric) PathLength(path []Point) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += m.Measure(path[i-1], path[i])
	}
	return total
}
