package pathfind

import "errors"

// Sentinel errors returned by the route finder. They are usually wrapped with
// the offending nodes; test with errors.Is.
var (
	// ErrNoRoute is returned when the frontier is exhausted before the goal
	// is reached.
	ErrNoRoute = errors.New("no route found")

	// ErrInvalidNode is returned when the graph implements NodeChecker and
	// does not recognise the start or goal node.
	ErrInvalidNode = errors.New("node not in graph")

	// ErrNegativeCost is returned when a scorer yields a negative or NaN cost.
	ErrNegativeCost = errors.New("scorer returned negative cost")

	// ErrBudgetExceeded is returned when the configured expansion budget runs
	// out before the search finishes.
	ErrBudgetExceeded = errors.New("search budget exceeded")

	// ErrInvalidConfig is returned by New for an incomplete configuration.
	ErrInvalidConfig = errors.New("invalid route finder config")
)
