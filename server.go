package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"route-planner/pathfind"
)

// Server exposes the planner over HTTP
type Server struct {
	cfg     Config
	planner *Planner
	metrics *Metrics
	logger  zerolog.Logger
}

// NewServer wires the HTTP API to a planner
func NewServer(cfg Config, planner *Planner, metrics *Metrics, logger zerolog.Logger) *Server {
	return &Server{cfg: cfg, planner: planner, metrics: metrics, logger: logger}
}

// Handler returns the routed API with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /route", s.handleRoute)
	mux.HandleFunc("POST /routes", s.handleRouteBatch)
	mux.HandleFunc("POST /visibilityRoute", s.handleVisibilityRoute)
	mux.HandleFunc("POST /buildRoadmap", s.handleBuildRoadmap)
	mux.HandleFunc("GET /roadmapLines", s.handleRoadmapLines)
	mux.HandleFunc("POST /maze", s.handleMaze)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	var h http.Handler = mux
	h = s.limitBody(h)
	h = s.rateLimit(h)
	h = s.cors(h)
	h = s.logRequests(h)
	return requestID(h)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info().Msg("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := s.planner.Route(r.Context(), req)
	s.writeRoute(w, r, resp, err)
}

func (s *Server) handleVisibilityRoute(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := s.planner.VisibilityRoute(r.Context(), req)
	s.writeRoute(w, r, resp, err)
}

// writeRoute maps planner errors onto statuses. Routes that do not exist are
// a normal answer, not a client error.
func (s *Server) writeRoute(w http.ResponseWriter, r *http.Request, resp RouteResponse, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	status := statusFor(err)
	resp.Success = false
	resp.Message = err.Error()
	resp.Path = nil
	s.logger.Info().Str("rid", getRequestID(r.Context())).Int("status", status).Err(err).Msg("route failed")
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pathfind.ErrNoRoute),
		errors.Is(err, ErrEndpointBlocked),
		errors.Is(err, ErrEndpointUnreachable):
		return http.StatusOK
	case errors.Is(err, ErrNoRoadmap):
		return http.StatusConflict
	case errors.Is(err, pathfind.ErrBudgetExceeded),
		errors.Is(err, ErrGraphTooLarge):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, pathfind.ErrNegativeCost):
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

type batchRequest struct {
	Requests []RouteRequest `json:"requests"`
}

type batchResponse struct {
	Results []RouteResponse `json:"results"`
}

func (s *Server) handleRouteBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decode(w, r, &req) {
		return
	}
	if s.planner.Roadmap() == nil {
		writeError(w, http.StatusConflict, ErrNoRoadmap.Error())
		return
	}
	results, err := s.planner.RouteBatch(r.Context(), req.Requests)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}

type buildRoadmapRequest struct {
	NumSamples       int       `json:"numSamples"`
	ConnectionRadius float64   `json:"connectionRadius"`
	SaveToFile       bool      `json:"saveToFile"`
	Force            bool      `json:"force,omitempty"`
	Seed             int64     `json:"seed,omitempty"`
	NoFlyZones       []Polygon `json:"noFlyZones,omitempty"` // replaces the loaded obstacles when set
}

func (s *Server) handleBuildRoadmap(w http.ResponseWriter, r *http.Request) {
	var req buildRoadmapRequest
	if !decode(w, r, &req) {
		return
	}

	if s.planner.Roadmap() != nil && !req.Force {
		writeJSON(w, http.StatusConflict, map[string]any{
			"success": false,
			"error":   "roadmap already exists",
			"message": "Set 'force: true' to rebuild.",
		})
		return
	}

	if req.NumSamples > s.cfg.Roadmap.MaxSamples {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("numSamples %d exceeds limit %d", req.NumSamples, s.cfg.Roadmap.MaxSamples))
		return
	}

	opts := s.planner.RoadmapOptions()
	if req.NumSamples > 0 {
		opts.Samples = req.NumSamples
	}
	if req.ConnectionRadius > 0 {
		opts.ConnectionRadius = req.ConnectionRadius
	}
	if req.NoFlyZones != nil {
		s.planner.SetObstacles(RemoveContainedPolygons(req.NoFlyZones))
	}

	seed := req.Seed
	if seed == 0 {
		seed = s.cfg.Roadmap.Seed
	}
	save := req.SaveToFile || s.cfg.Roadmap.SaveOnBuild
	rm, err := s.planner.BuildRoadmap(opts, seed, save)

	body := map[string]any{
		"success":     err == nil,
		"saved":       save && err == nil,
		"numNodes":    len(rm.Nodes),
		"numEdges":    rm.EdgeCount(),
		"numSamples":  opts.Samples,
		"boundingBox": rm.BoundingBox,
	}
	if err != nil {
		// the roadmap is active, only persisting it failed
		s.logger.Error().Err(err).Str("file", s.cfg.Roadmap.File).Msg("roadmap built but not saved")
		body["message"] = err.Error()
		writeJSON(w, http.StatusInternalServerError, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleRoadmapLines(w http.ResponseWriter, r *http.Request) {
	rm := s.planner.Roadmap()
	if rm == nil {
		writeError(w, http.StatusConflict, ErrNoRoadmap.Error())
		return
	}
	lines := rm.Lines()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"lines":    lines,
		"numNodes": len(rm.Nodes),
		"numEdges": len(lines),
	})
}

type mazeRequest struct {
	Maze     string `json:"maze"`
	Start    *Cell  `json:"start,omitempty"` // defaults to the maze's S
	Goal     *Cell  `json:"goal,omitempty"`  // defaults to the maze's G
	Diagonal bool   `json:"diagonal,omitempty"`
}

type mazeResponse struct {
	MazeRoute
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Rendered string `json:"rendered,omitempty"`
}

func (s *Server) handleMaze(w http.ResponseWriter, r *http.Request) {
	var req mazeRequest
	if !decode(w, r, &req) {
		return
	}
	maze, err := ParseMaze(strings.NewReader(req.Maze))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	maze.Diagonal = req.Diagonal

	start, goal, err := mazeEndpoints(maze, req.Start, req.Goal)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	route, err := s.planner.MazeRoute(r.Context(), maze, start, goal)
	if err != nil {
		writeJSON(w, statusFor(err), mazeResponse{MazeRoute: route, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, mazeResponse{MazeRoute: route, Success: true, Rendered: maze.Render(route.Path)})
}

// mazeEndpoints resolves explicit endpoints or falls back to the maze markers
func mazeEndpoints(maze *Maze, start, goal *Cell) (Cell, Cell, error) {
	if start == nil {
		if !maze.HasStart {
			return Cell{}, Cell{}, errors.New("maze has no start")
		}
		start = &maze.Start
	}
	if goal == nil {
		if !maze.HasGoal {
			return Cell{}, Cell{}, errors.New("maze has no goal")
		}
		goal = &maze.Goal
	}
	return *start, *goal, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rm := s.planner.Roadmap()
	status, nodes := "waiting for roadmap", 0
	if rm != nil {
		status, nodes = "ready", len(rm.Nodes)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"hasRoadmap": rm != nil,
		"numNodes":   nodes,
		"obstacles":  s.planner.ObstacleCount(),
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// limitBody caps request bodies at the configured size
func (s *Server) limitBody(next http.Handler) http.Handler {
	limit := s.cfg.Server.MaxBodyBytes
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limit > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

// --- middleware ---

type ctxKey struct{}

// requestID propagates X-Request-Id or generates one
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-Id")
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", rid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, rid)))
	})
}

func getRequestID(ctx context.Context) string {
	rid, _ := ctx.Value(ctxKey{}).(string)
	return rid
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// logRequests logs each request with latency and counts it by path and status
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.metrics.HTTPRequests.WithLabelValues(r.URL.Path, strconv.Itoa(rw.status)).Inc()
		s.logger.Info().
			Str("rid", getRequestID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.status).
			Dur("latency", time.Since(start)).
			Msg("http_request")
	})
}

// cors allows browser front ends to call the API
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Server.CORSOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.cfg.Server.CORSOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimit sheds load above the configured request rate
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.cfg.Server.RateLimitPerSecond <= 0 {
		return next
	}
	burst := max(s.cfg.Server.RateLimitBurst, 1)
	limiter := rate.NewLimiter(rate.Limit(s.cfg.Server.RateLimitPerSecond), burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
