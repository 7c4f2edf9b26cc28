package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
	"github.com/rs/zerolog"
)

// LoadObstacles reads every *.geojson file in dir and returns the outer rings
// of their Polygon and MultiPolygon features. Unreadable files are skipped.
func LoadObstacles(dir string, logger zerolog.Logger) ([]Polygon, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return nil, fmt.Errorf("glob obstacle dir: %w", err)
	}

	logger.Info().Str("dir", dir).Int("files", len(files)).Msg("loading obstacles")

	var all []Polygon
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Warn().Err(err).Str("file", file).Msg("skipping unreadable obstacle file")
			continue
		}
		polygons, err := ParseObstacles(data)
		if err != nil {
			logger.Warn().Err(err).Str("file", file).Msg("skipping malformed obstacle file")
			continue
		}
		all = append(all, polygons...)
		logger.Debug().Str("file", filepath.Base(file)).Int("polygons", len(polygons)).Msg("obstacle file loaded")
	}

	logger.Info().Int("polygons", len(all)).Msg("obstacles loaded")
	return all, nil
}

// ParseObstacles decodes a GeoJSON FeatureCollection into obstacle polygons
func ParseObstacles(data []byte) ([]Polygon, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	var polygons []Polygon
	for _, feature := range fc.Features {
		switch g := feature.Geometry.(type) {
		case orb.Polygon:
			if len(g) > 0 {
				polygons = append(polygons, polygonFromRing(g[0]))
			}
		case orb.MultiPolygon:
			for _, p := range g {
				if len(p) > 0 {
					polygons = append(polygons, polygonFromRing(p[0]))
				}
			}
		}
	}
	return polygons, nil
}

// SimplifyPolygon reduces vertex count with Douglas-Peucker. The input is
// kept when simplification would collapse it below a triangle.
func SimplifyPolygon(polygon Polygon, epsilon float64) Polygon {
	if len(polygon.Vertices) <= 3 || epsilon <= 0 {
		return polygon
	}
	ring, ok := simplify.DouglasPeucker(epsilon).Simplify(polygon.Ring().Clone()).(orb.Ring)
	if !ok || len(ring) < 4 {
		return polygon
	}
	return polygonFromRing(ring)
}

// SimplifyPolygons simplifies each polygon independently
func SimplifyPolygons(polygons []Polygon, epsilon float64) []Polygon {
	simplified := make([]Polygon, len(polygons))
	for i, poly := range polygons {
		simplified[i] = SimplifyPolygon(poly, epsilon)
	}
	return simplified
}

// epsilon steps by total vertex count, for lon/lat and projected coordinates
var epsilonSteps = []struct {
	vertices  int
	geoFactor float64
	planar    float64
}{
	{50000, 10, 20},
	{30000, 7, 15},
	{20000, 5, 10},
	{10000, 4, 7},
	{5000, 3, 5},
	{2000, 2, 3},
	{1000, 1.5, 2},
}

// EstimateSimplificationEpsilon suggests a conservative epsilon from the
// coordinate system and vertex count
func EstimateSimplificationEpsilon(polygons []Polygon, vertexCount int) float64 {
	if len(polygons) == 0 || len(polygons[0].Vertices) == 0 {
		return 0.0001
	}

	sample := polygons[0].Vertices[0]
	lonLat := sample.X >= -180 && sample.X <= 180 && sample.Y >= -90 && sample.Y <= 90

	const baseDegrees = 0.00002 // ~2.2 m
	for _, step := range epsilonSteps {
		if vertexCount > step.vertices {
			if lonLat {
				return baseDegrees * step.geoFactor
			}
			return step.planar
		}
	}
	if lonLat {
		return baseDegrees
	}
	return 1.0
}

// CountVertices sums the vertices of all polygons
func CountVertices(polygons []Polygon) int {
	total := 0
	for _, p := range polygons {
		total += len(p.Vertices)
	}
	return total
}

// RemoveContainedPolygons drops polygons that lie entirely inside another
func RemoveContainedPolygons(polygons []Polygon) []Polygon {
	if len(polygons) <= 1 {
		return polygons
	}

	contained := make([]bool, len(polygons))
	for i := range polygons {
		if contained[i] {
			continue
		}
		for j := range polygons {
			if i == j || contained[j] {
				continue
			}
			if isPolygonContainedIn(polygons[i], polygons[j]) {
				contained[i] = true
				break
			}
			if isPolygonContainedIn(polygons[j], polygons[i]) {
				contained[j] = true
			}
		}
	}

	result := make([]Polygon, 0, len(polygons))
	for i, p := range polygons {
		if !contained[i] {
			result = append(result, p)
		}
	}
	return result
}

// isPolygonContainedIn checks whether every vertex of a is inside or on b
func isPolygonContainedIn(a, b Polygon) bool {
	if len(a.Vertices) == 0 || len(b.Vertices) < 3 {
		return false
	}

	ba, bb := a.Bound(), b.Bound()
	if !bb.Contains(ba.Min) || !bb.Contains(ba.Max) {
		return false
	}

	ring := b.Ring()
	for _, v := range a.Vertices {
		if !planar.RingContains(ring, v.Orb()) {
			return false
		}
	}
	return true
}

// PrepareObstacles runs the load-time clean-up pipeline: contained polygon
// removal then optional simplification
func PrepareObstacles(polygons []Polygon, simplifyEnabled bool, logger zerolog.Logger) []Polygon {
	before := len(polygons)
	polygons = RemoveContainedPolygons(polygons)
	logger.Info().Int("removed", before-len(polygons)).Int("remaining", len(polygons)).Msg("removed contained obstacles")

	if !simplifyEnabled {
		return polygons
	}
	vertices := CountVertices(polygons)
	epsilon := EstimateSimplificationEpsilon(polygons, vertices)
	polygons = SimplifyPolygons(polygons, epsilon)
	logger.Info().
		Float64("epsilon", epsilon).
		Int("vertices_before", vertices).
		Int("vertices_after", CountVertices(polygons)).
		Msg("simplified obstacles")
	return polygons
}
