package router

import (
	"github.com/azybler/shapematch/pkg/trgraph"
)

// Heuristic estimates a lower bound on the remaining cost to reach any
// target from edge e (spec.md §4.D "A* heuristic (admissible lower bound
// scaled by levelPunish[component.minEdgeLvl])"). Must never overestimate
// or the search is no longer guaranteed optimal.
type Heuristic func(e trgraph.EdgeID) float64

// ZeroHeuristic always returns 0, degrading the search to plain Dijkstra.
func ZeroHeuristic(trgraph.EdgeID) float64 { return 0 }

// Result is the outcome of a multi-source, multi-target edge-Dijkstra run.
type Result struct {
	Cost map[trgraph.EdgeID]Cost
	Pred map[trgraph.EdgeID]trgraph.EdgeID
}

// Path reconstructs the edge sequence ending at target, walking Pred back
// to a source (a predecessor-less entry). Returns nil if target was never
// reached.
func (r *Result) Path(target trgraph.EdgeID) []trgraph.EdgeID {
	if _, ok := r.Cost[target]; !ok {
		return nil
	}
	var path []trgraph.EdgeID
	cur := target
	seen := make(map[trgraph.EdgeID]bool)
	for {
		path = append([]trgraph.EdgeID{cur}, path...)
		if seen[cur] {
			break // defensive: a predecessor cycle should never happen
		}
		seen[cur] = true
		prev, ok := r.Pred[cur]
		if !ok {
			break
		}
		cur = prev
	}
	return path
}

// ShortestPath runs an edge-weighted Dijkstra (A* when heur is non-zero)
// from a set of source edges (each with its own starting cost, e.g. a
// NodeCandidate penalty already folded in) to a set of target edges.
// Traversal is edge-to-edge: from a popped edge e, the search continues
// over e's To node's out-edges, charging cf.Hop(e, e.To, next) for each.
// Stops early once every target has been finalized.
func ShortestPath(g *trgraph.Graph, cf *CostFunc, sources map[trgraph.EdgeID]Cost, targets map[trgraph.EdgeID]bool, heur Heuristic) *Result {
	res := &Result{Cost: make(map[trgraph.EdgeID]Cost), Pred: make(map[trgraph.EdgeID]trgraph.EdgeID)}
	if heur == nil {
		heur = ZeroHeuristic
	}

	finalized := make(map[trgraph.EdgeID]bool)
	remaining := len(targets)

	h := &minHeap{}
	gScore := make(map[trgraph.EdgeID]float64, len(sources))

	for e, c := range sources {
		if c.IsInf() {
			continue
		}
		gScore[e] = c.Value()
		h.Push(uint32(e), c.Value()+heur(e))
	}

	for h.Len() > 0 && remaining > 0 {
		item := h.Pop()
		e := trgraph.EdgeID(item.Edge)
		if finalized[e] {
			continue
		}
		g2, ok := gScore[e]
		if !ok {
			continue
		}
		finalized[e] = true
		res.Cost[e] = NewCost(g2)
		if targets[e] {
			remaining--
		}

		via := g.Edge(e).To
		for _, next := range g.OutEdges(via) {
			if finalized[next] {
				continue
			}
			hop := cf.Hop(e, via, next)
			if hop.IsInf() {
				continue
			}
			cand := g2 + hop.Value()
			if cur, ok := gScore[next]; !ok || cand < cur {
				gScore[next] = cand
				res.Pred[next] = e
				h.Push(uint32(next), cand+heur(next))
			}
		}
	}

	return res
}

// BestCost returns the minimal cost among targets reached by res, or an
// infinite Cost if none were reached.
func (r *Result) BestCost(targets map[trgraph.EdgeID]bool) (trgraph.EdgeID, Cost) {
	best := InfCost()
	var bestEdge trgraph.EdgeID
	found := false
	for t := range targets {
		if c, ok := r.Cost[t]; ok && c.Value() < best.Value() {
			best = c
			bestEdge = t
			found = true
		}
	}
	if !found {
		return 0, InfCost()
	}
	return bestEdge, best
}
