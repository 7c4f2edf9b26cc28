// Package pathfind provides a generic, graph-agnostic A* route finder.
//
// The engine only needs three capabilities from the caller:
//
//   - Graph: which nodes are directly reachable from a node.
//   - Step scorer: the true cost of moving between two adjacent nodes.
//   - Heuristic scorer: an estimate of the remaining cost to the goal. It must
//     never overestimate for the returned route to be the cheapest one.
//
// Every call to FindRoute or Search allocates its own frontier and record
// mapping, so a single RouteFinder can serve concurrent searches as long as the
// Graph and scorers are safe for concurrent read-only use.
package pathfind
