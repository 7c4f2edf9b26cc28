package pathfind

// Record is the per-node bookkeeping of a single search call.
type Record[N comparable] struct {
	Node    N
	Prev    N       // predecessor on the cheapest known path; meaningless when HasPrev is false
	HasPrev bool    // false only for the start node
	G       float64 // cost so far from the start
	F       float64 // G plus the heuristic estimate to the goal
}

// records maps each discovered node to its record for one search call.
type records[N comparable] map[N]*Record[N]

// path walks predecessor links from the goal record back to the start and
// returns the nodes in start-to-goal order.
func (rs records[N]) path(goal *Record[N]) []N {
	var reversed []N
	for rec := goal; rec != nil; {
		reversed = append(reversed, rec.Node)
		if !rec.HasPrev {
			break
		}
		rec = rs[rec.Prev]
	}

	path := make([]N, len(reversed))
	for i, n := range reversed {
		path[len(reversed)-1-i] = n
	}
	return path
}
