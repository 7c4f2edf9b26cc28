package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"route-planner/pathfind"
)

// ErrNoRoadmap is returned when a roadmap route is requested before one exists
var ErrNoRoadmap = errors.New("roadmap not built")

// RouteRequest asks for a route between two points
type RouteRequest struct {
	Start  Point  `json:"start"`
	End    Point  `json:"end"`
	Metric string `json:"metric,omitempty"` // overrides search.metric
}

// RouteResponse is the outcome of one route request
type RouteResponse struct {
	Path           []Point `json:"path"`
	Success        bool    `json:"success"`
	Message        string  `json:"message,omitempty"`
	Distance       float64 `json:"distance,omitempty"` // in the request metric's units
	DistanceMeters float64 `json:"distanceMeters,omitempty"`
	Expanded       int     `json:"expanded"`
}

// MazeRoute is the outcome of a maze search
type MazeRoute struct {
	Path     []Cell  `json:"path"`
	Cost     float64 `json:"cost"`
	Expanded int     `json:"expanded"`
}

// Planner owns the obstacle set and the active roadmap and runs searches
// against them. Safe for concurrent use.
type Planner struct {
	cfg     Config
	logger  zerolog.Logger
	metrics *Metrics

	mu        sync.RWMutex
	roadmap   *Roadmap
	obstacles []Polygon
	index     *ObstacleIndex
}

// NewPlanner creates a planner with no obstacles and no roadmap
func NewPlanner(cfg Config, logger zerolog.Logger, metrics *Metrics) *Planner {
	return &Planner{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		index:   NewObstacleIndex(nil),
	}
}

// SetObstacles replaces the obstacle set
func (p *Planner) SetObstacles(polygons []Polygon) {
	index := NewObstacleIndex(polygons)
	p.mu.Lock()
	p.obstacles = polygons
	p.index = index
	p.mu.Unlock()
}

// LoadObstacles loads and prepares obstacles from the configured directory.
// A missing directory leaves the planner without obstacles.
func (p *Planner) LoadObstacles() error {
	if _, err := os.Stat(p.cfg.Obstacles.Dir); errors.Is(err, os.ErrNotExist) {
		p.logger.Info().Str("dir", p.cfg.Obstacles.Dir).Msg("obstacle dir not found, continuing without obstacles")
		return nil
	}
	polygons, err := LoadObstacles(p.cfg.Obstacles.Dir, p.logger)
	if err != nil {
		return err
	}
	p.SetObstacles(PrepareObstacles(polygons, p.cfg.Obstacles.Simplify, p.logger))
	return nil
}

// ObstacleCount is the number of active obstacles
func (p *Planner) ObstacleCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.obstacles)
}

func (p *Planner) obstacleIndex() *ObstacleIndex {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.index
}

// Roadmap returns the active roadmap, nil when none is loaded
func (p *Planner) Roadmap() *Roadmap {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.roadmap
}

// SetRoadmap makes rm the active roadmap
func (p *Planner) SetRoadmap(rm *Roadmap) {
	p.mu.Lock()
	p.roadmap = rm
	p.mu.Unlock()
	p.metrics.ObserveRoadmap(rm)
}

// LoadRoadmap activates the roadmap stored in filename
func (p *Planner) LoadRoadmap(filename string) error {
	rm, err := LoadRoadmap(filename)
	if err != nil {
		return err
	}
	p.SetRoadmap(rm)
	p.logger.Info().Str("file", filename).Int("nodes", len(rm.Nodes)).Int("edges", rm.EdgeCount()).Msg("roadmap loaded")
	return nil
}

// BuildRoadmap samples a new roadmap around the current obstacles and makes
// it active. seed 0 seeds from the clock.
func (p *Planner) BuildRoadmap(opts RoadmapOptions, seed int64, save bool) (*Roadmap, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rm := BuildRoadmap(opts, p.obstacleIndex(), rand.New(rand.NewSource(seed)), p.logger)
	p.SetRoadmap(rm)

	if save {
		if err := SaveRoadmap(rm, p.cfg.Roadmap.File); err != nil {
			return rm, err
		}
		p.logger.Info().Str("file", p.cfg.Roadmap.File).Msg("roadmap saved")
	}
	return rm, nil
}

// RoadmapOptions returns the configured sampling options
func (p *Planner) RoadmapOptions() RoadmapOptions {
	return RoadmapOptions{
		Samples:          p.cfg.Roadmap.Samples,
		ConnectionRadius: p.cfg.Roadmap.ConnectionRadius,
		Bounds:           p.cfg.Roadmap.Bounds,
	}
}

func (p *Planner) metric(requested string) (Metric, error) {
	if requested == "" {
		requested = p.cfg.Search.Metric
	}
	return ParseMetric(requested)
}

// Route finds a route over the active roadmap with req.Start and req.End
// attached as temporary nodes
func (p *Planner) Route(ctx context.Context, req RouteRequest) (RouteResponse, error) {
	rm := p.Roadmap()
	if rm == nil {
		return RouteResponse{}, ErrNoRoadmap
	}
	metric, err := p.metric(req.Metric)
	if err != nil {
		return RouteResponse{}, err
	}

	graph, startID, endID, err := rm.WithEndpoints(req.Start, req.End, p.obstacleIndex())
	if err != nil {
		return RouteResponse{}, err
	}

	scorer := DistanceScorer{Points: graph, Metric: metric}
	res, err := search(ctx, p, "roadmap", pathfind.Config[int]{Graph: graph, Step: scorer, Heuristic: scorer}, startID, endID)
	if err != nil {
		return RouteResponse{Expanded: res.Expanded}, err
	}
	return pointResponse(res, graph, metric), nil
}

// VisibilityRoute finds a route over a visibility graph built from the
// obstacles near the start and end points
func (p *Planner) VisibilityRoute(ctx context.Context, req RouteRequest) (RouteResponse, error) {
	metric, err := p.metric(req.Metric)
	if err != nil {
		return RouteResponse{}, err
	}
	index := p.obstacleIndex()
	if index.Blocked(req.Start) {
		return RouteResponse{}, fmt.Errorf("start %v: %w", req.Start, ErrEndpointBlocked)
	}
	if index.Blocked(req.End) {
		return RouteResponse{}, fmt.Errorf("end %v: %w", req.End, ErrEndpointBlocked)
	}

	margin := math.Max(req.Start.Distance(req.End)*0.25, p.cfg.Roadmap.ConnectionRadius)
	nearby := index.Query(RouteBound(req.Start, req.End, margin))
	graph, err := BuildVisibilityGraph(req.Start, req.End, nearby, index, p.cfg.Search.VisibilityMaxNodes, p.logger)
	if err != nil {
		return RouteResponse{}, err
	}

	scorer := DistanceScorer{Points: graph, Metric: metric}
	res, err := search(ctx, p, "visibility", pathfind.Config[int]{Graph: graph, Step: scorer, Heuristic: scorer}, VisibilityStart, VisibilityEnd)
	if err != nil {
		return RouteResponse{Expanded: res.Expanded}, err
	}
	return pointResponse(res, graph, metric), nil
}

func pointResponse(res pathfind.Result[int], points PointLookup, metric Metric) RouteResponse {
	path := make([]Point, len(res.Path))
	for i, id := range res.Path {
		path[i] = points.Point(id)
	}
	resp := RouteResponse{
		Path:     path,
		Success:  true,
		Distance: res.Cost,
		Expanded: res.Expanded,
	}
	if metric == MetricHaversine {
		resp.DistanceMeters = res.Cost
	}
	return resp
}

// RouteBatch runs roadmap routes concurrently. Per-request failures are
// reported in the matching response; only cancellation fails the batch.
func (p *Planner) RouteBatch(ctx context.Context, reqs []RouteRequest) ([]RouteResponse, error) {
	out := make([]RouteResponse, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Search.BatchConcurrency)

	for i, req := range reqs {
		g.Go(func() error {
			resp, err := p.Route(gctx, req)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				resp.Success = false
				resp.Message = err.Error()
			}
			out[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// MazeRoute finds the cheapest walk through maze using terrain step costs.
// Diagonal moves are switched on for maze when maze.diagonal is configured.
func (p *Planner) MazeRoute(ctx context.Context, maze *Maze, start, goal Cell) (MazeRoute, error) {
	maze.Diagonal = maze.Diagonal || p.cfg.Maze.Diagonal

	var heuristic pathfind.Scorer[Cell] = ManhattanScorer{}
	if maze.Diagonal {
		heuristic = OctileScorer{}
	}
	cfg := pathfind.Config[Cell]{
		Graph:     maze,
		Step:      TerrainScorer{Maze: maze, ClimbPenalty: p.cfg.Maze.ClimbPenalty},
		Heuristic: heuristic,
	}
	res, err := search(ctx, p, "maze", cfg, start, goal)
	if err != nil {
		return MazeRoute{Expanded: res.Expanded}, err
	}
	return MazeRoute{Path: res.Path, Cost: res.Cost, Expanded: res.Expanded}, nil
}

// search applies the configured budget and timeout, runs one search and
// records it
func search[N comparable](ctx context.Context, p *Planner, graph string, cfg pathfind.Config[N], start, goal N) (pathfind.Result[N], error) {
	cfg.MaxExpansions = p.cfg.Search.MaxExpansions
	cfg.MaxCost = p.cfg.Search.MaxCost
	finder, err := pathfind.New(cfg)
	if err != nil {
		return pathfind.Result[N]{}, err
	}

	if p.cfg.Search.TimeoutMillis > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.Search.TimeoutMillis)*time.Millisecond)
		defer cancel()
	}

	began := time.Now()
	res, err := finder.Search(ctx, start, goal)
	elapsed := time.Since(began)
	p.metrics.ObserveSearch(graph, res.Expanded, elapsed, err)

	p.logger.Debug().
		Str("graph", graph).
		Int("expanded", res.Expanded).
		Int("path_len", len(res.Path)).
		Dur("elapsed", elapsed).
		Err(err).
		Msg("search finished")
	return res, err
}
