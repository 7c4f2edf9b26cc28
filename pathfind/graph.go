package pathfind

// Graph answers which nodes are directly reachable from a node.
// N must be comparable so it can key the per-search record mapping.
type Graph[N comparable] interface {
	Neighbors(node N) []N
}

// GraphFunc adapts a plain function to the Graph interface.
type GraphFunc[N comparable] func(node N) []N

// Neighbors calls f(node).
func (f GraphFunc[N]) Neighbors(node N) []N { return f(node) }

// NodeChecker can be implemented by a Graph to let the route finder reject
// start and goal nodes it does not know about.
type NodeChecker[N comparable] interface {
	HasNode(node N) bool
}

// Scorer computes a non-negative cost between two nodes. The same interface
// serves the step cost between adjacent nodes and the heuristic estimate
// towards the goal.
type Scorer[N comparable] interface {
	Cost(from, to N) float64
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc[N comparable] func(from, to N) float64

// Cost calls f(from, to).
func (f ScorerFunc[N]) Cost(from, to N) float64 { return f(from, to) }

// Zero returns a scorer that always reports zero. Used as the heuristic it
// turns the search into Dijkstra's algorithm.
func Zero[N comparable]() Scorer[N] {
	return ScorerFunc[N](func(N, N) float64 { return 0 })
}
