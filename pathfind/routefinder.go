package pathfind

import (
	"context"
	"fmt"
	"math"
)

// Config wires a RouteFinder to its collaborators.
type Config[N comparable] struct {
	Graph     Graph[N]
	Step      Scorer[N] // cost between adjacent nodes
	Heuristic Scorer[N] // estimate from a node to the goal; must not overestimate

	// MaxExpansions bounds the number of nodes expanded per search. Zero
	// means unlimited.
	MaxExpansions int

	// MaxCost discards partial routes whose cost so far exceeds it. Zero
	// means unlimited.
	MaxCost float64
}

// Result contains the outcome of a search.
type Result[N comparable] struct {
	Path     []N
	Cost     float64
	Expanded int
	Found    bool
}

// RouteFinder runs A* searches over a Graph. It holds no per-search state.
type RouteFinder[N comparable] struct {
	cfg Config[N]
}

// New validates cfg and returns a RouteFinder bound to it.
func New[N comparable](cfg Config[N]) (*RouteFinder[N], error) {
	switch {
	case cfg.Graph == nil:
		return nil, fmt.Errorf("%w: graph is nil", ErrInvalidConfig)
	case cfg.Step == nil:
		return nil, fmt.Errorf("%w: step scorer is nil", ErrInvalidConfig)
	case cfg.Heuristic == nil:
		return nil, fmt.Errorf("%w: heuristic scorer is nil", ErrInvalidConfig)
	case cfg.MaxExpansions < 0:
		return nil, fmt.Errorf("%w: max expansions %d", ErrInvalidConfig, cfg.MaxExpansions)
	case cfg.MaxCost < 0 || math.IsNaN(cfg.MaxCost):
		return nil, fmt.Errorf("%w: max cost %v", ErrInvalidConfig, cfg.MaxCost)
	}
	return &RouteFinder[N]{cfg: cfg}, nil
}

// FindRoute returns the cheapest route from start to goal, both included.
// FindRoute(ctx, a, a) returns [a].
func (rf *RouteFinder[N]) FindRoute(ctx context.Context, start, goal N) ([]N, error) {
	res, err := rf.Search(ctx, start, goal)
	if err != nil {
		return nil, err
	}
	return res.Path, nil
}

// Search runs A* from start to goal and reports the route along with search
// statistics. On failure the Result still carries the expansion count.
func (rf *RouteFinder[N]) Search(ctx context.Context, start, goal N) (Result[N], error) {
	if checker, ok := rf.cfg.Graph.(NodeChecker[N]); ok {
		if !checker.HasNode(start) {
			return Result[N]{}, fmt.Errorf("start %v: %w", start, ErrInvalidNode)
		}
		if !checker.HasNode(goal) {
			return Result[N]{}, fmt.Errorf("goal %v: %w", goal, ErrInvalidNode)
		}
	}

	h, err := rf.heuristic(start, goal)
	if err != nil {
		return Result[N]{}, err
	}

	startRec := &Record[N]{Node: start, G: 0, F: h}
	known := records[N]{start: startRec}
	open := &frontier[N]{}
	open.push(startRec)

	expanded := 0
	for open.len() > 0 {
		if err := ctx.Err(); err != nil {
			return Result[N]{Expanded: expanded}, err
		}

		current, ok := open.pop()
		if !ok {
			break
		}

		if current.Node == goal {
			return Result[N]{
				Path:     known.path(current),
				Cost:     current.G,
				Expanded: expanded,
				Found:    true,
			}, nil
		}

		if rf.cfg.MaxExpansions > 0 && expanded >= rf.cfg.MaxExpansions {
			return Result[N]{Expanded: expanded}, fmt.Errorf("%w: %d expansions", ErrBudgetExceeded, expanded)
		}
		expanded++

		for _, next := range rf.cfg.Graph.Neighbors(current.Node) {
			step := rf.cfg.Step.Cost(current.Node, next)
			if step < 0 || math.IsNaN(step) {
				return Result[N]{Expanded: expanded},
					fmt.Errorf("step %v -> %v = %v: %w", current.Node, next, step, ErrNegativeCost)
			}

			// +Inf marks an impassable edge.
			g := current.G + step
			if math.IsInf(g, 1) || (rf.cfg.MaxCost > 0 && g > rf.cfg.MaxCost) {
				continue
			}

			rec, seen := known[next]
			if seen && g >= rec.G {
				continue
			}
			if !seen {
				rec = &Record[N]{Node: next}
				known[next] = rec
			}

			h, err := rf.heuristic(next, goal)
			if err != nil {
				return Result[N]{Expanded: expanded}, err
			}
			rec.Prev = current.Node
			rec.HasPrev = true
			rec.G = g
			rec.F = g + h
			open.push(rec)
		}
	}

	return Result[N]{Expanded: expanded}, fmt.Errorf("%v -> %v: %w", start, goal, ErrNoRoute)
}

func (rf *RouteFinder[N]) heuristic(from, goal N) (float64, error) {
	h := rf.cfg.Heuristic.Cost(from, goal)
	if h < 0 || math.IsNaN(h) {
		return 0, fmt.Errorf("heuristic %v -> %v = %v: %w", from, goal, h, ErrNegativeCost)
	}
	return h, nil
}

// PathCost sums the step costs along path. Paths with fewer than two nodes
// cost zero.
func PathCost[N comparable](path []N, step Scorer[N]) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += step.Cost(path[i-1], path[i])
	}
	return total
}
