package router

import "github.com/azybler/shapematch/pkg/trgraph"

// RouteGreedy is a cheaper, lossy alternative to RouteEdges (spec.md
// §4.C "dispatch to router (global/greedy/greedy2)"): for each stop, it
// commits to the single candidate edge cheapest to reach from the
// previously committed edge, without considering how that choice affects
// later stops. Much faster than the full layered solve, at the cost of
// sometimes picking a locally-good candidate that forces an expensive
// detour later.
func (r *Router) RouteGreedy(route EdgeCandidateRoute, attrs RoutingAttributes, cf *CostFunc, cache *Cache, heur Heuristic) (RouteResult, bool) {
	if len(route) == 0 {
		return RouteResult{}, false
	}

	chosen := make([]trgraph.EdgeID, len(route))
	var fullPath []trgraph.EdgeID
	total := 0.0

	cur, ok := bestSingle(route[0])
	if !ok {
		return RouteResult{}, false
	}
	chosen[0] = cur.Edge
	total += cur.Penalty

	for li := 1; li < len(route); li++ {
		bestIdx := -1
		bestCost := 0.0
		var bestPath []trgraph.EdgeID
		for i, cand := range route[li] {
			hopCost, hopPath := r.hops(chosen[li-1], cand.Edge, attrs, cf, cache, heur)
			if hopCost.IsInf() {
				continue
			}
			c := hopCost.Value() + cand.Penalty
			if bestIdx == -1 || c < bestCost {
				bestIdx = i
				bestCost = c
				bestPath = hopPath
			}
		}
		if bestIdx == -1 {
			return RouteResult{}, false
		}
		chosen[li] = route[li][bestIdx].Edge
		fullPath = append(fullPath, bestPath...)
		total += bestCost
	}

	return RouteResult{ChosenEdges: chosen, Path: fullPath, Cost: NewCost(total)}, true
}

// RouteGreedy2 extends RouteGreedy with one-step lookahead: each
// candidate at stop i is scored by its hop cost from the previous
// commitment plus the cheapest onward hop to any candidate at stop i+1,
// which catches the common failure mode of RouteGreedy committing to a
// candidate that looks cheap locally but strands the next stop.
func (r *Router) RouteGreedy2(route EdgeCandidateRoute, attrs RoutingAttributes, cf *CostFunc, cache *Cache, heur Heuristic) (RouteResult, bool) {
	if len(route) == 0 {
		return RouteResult{}, false
	}
	if len(route) == 1 {
		return r.RouteGreedy(route, attrs, cf, cache, heur)
	}

	chosen := make([]trgraph.EdgeID, len(route))
	var fullPath []trgraph.EdgeID
	total := 0.0

	firstIdx, ok := bestLookahead(r, route[0], route[1], attrs, cf, cache, heur)
	if !ok {
		return RouteResult{}, false
	}
	chosen[0] = route[0][firstIdx].Edge
	total += route[0][firstIdx].Penalty

	for li := 1; li < len(route); li++ {
		var next CandidateGroup
		if li+1 < len(route) {
			next = route[li+1]
		}
		bestIdx := -1
		bestCost := 0.0
		var bestPath []trgraph.EdgeID
		for i, cand := range route[li] {
			hopCost, hopPath := r.hops(chosen[li-1], cand.Edge, attrs, cf, cache, heur)
			if hopCost.IsInf() {
				continue
			}
			score := hopCost.Value() + cand.Penalty
			if next != nil {
				score += cheapestOnward(r, cand.Edge, next, attrs, cf, cache, heur)
			}
			if bestIdx == -1 || score < bestCost {
				bestIdx = i
				bestCost = hopCost.Value() + cand.Penalty
				bestPath = hopPath
			}
		}
		if bestIdx == -1 {
			return RouteResult{}, false
		}
		chosen[li] = route[li][bestIdx].Edge
		fullPath = append(fullPath, bestPath...)
		total += bestCost
	}

	return RouteResult{ChosenEdges: chosen, Path: fullPath, Cost: NewCost(total)}, true
}

func bestSingle(g CandidateGroup) (EdgeCandidate, bool) {
	if len(g) == 0 {
		return EdgeCandidate{}, false
	}
	best := g[0]
	for _, c := range g[1:] {
		if c.Penalty < best.Penalty {
			best = c
		}
	}
	return best, true
}

func bestLookahead(r *Router, cur, next CandidateGroup, attrs RoutingAttributes, cf *CostFunc, cache *Cache, heur Heuristic) (int, bool) {
	bestIdx := -1
	bestScore := 0.0
	for i, cand := range cur {
		score := cand.Penalty + cheapestOnward(r, cand.Edge, next, attrs, cf, cache, heur)
		if bestIdx == -1 || score < bestScore {
			bestIdx = i
			bestScore = score
		}
	}
	return bestIdx, bestIdx != -1
}

func cheapestOnward(r *Router, from trgraph.EdgeID, next CandidateGroup, attrs RoutingAttributes, cf *CostFunc, cache *Cache, heur Heuristic) float64 {
	best := -1.0
	for _, cand := range next {
		hopCost, _ := r.hops(from, cand.Edge, attrs, cf, cache, heur)
		if hopCost.IsInf() {
			continue
		}
		v := hopCost.Value() + cand.Penalty
		if best < 0 || v < best {
			best = v
		}
	}
	if best < 0 {
		return r.opts.FullTurnPunishFac * 10 // unreachable onward: heavy but finite penalty
	}
	return best
}
