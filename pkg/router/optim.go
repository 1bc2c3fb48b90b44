package router

import (
	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/trgraph"
)

// EdgeCandidate is one edge a trip could board/alight on at a stop, with
// the routing penalty for doing so (spec.md §3 "EdgeCandidate").
type EdgeCandidate struct {
	Edge    trgraph.EdgeID
	Penalty float64
}

// CandidateGroup is the set of edge candidates for a single stop in a trip.
type CandidateGroup []EdgeCandidate

// EdgeCandidateRoute is the full, ordered list of candidate groups for a
// trip's stop sequence.
type EdgeCandidateRoute []CandidateGroup

// RouteResult is the outcome of routing a full stop sequence: the
// chosen edge per stop and the full edge path connecting them.
type RouteResult struct {
	ChosenEdges []trgraph.EdgeID
	Path        []trgraph.EdgeID
	Cost        Cost
}

// hops computes the cost and edge path of getting from edge `from` to
// edge `to` (spec.md §4.D "router.hops"), using the nested cache first
// and falling back to an edge-Dijkstra run bounded by heur. Mirrors the
// original's short-circuits: no-self-hops, component mismatch, and a
// backward one-way edge as `to` are all infinite cost without running a
// search.
func (r *Router) hops(from, to trgraph.EdgeID, attrs RoutingAttributes, cf *CostFunc, cache *Cache, heur Heuristic) (Cost, []trgraph.EdgeID) {
	if cache != nil {
		if hit, ok := cache.Get(attrs, from, to); ok {
			return hit.Cost, hit.Edges
		}
	}

	if r.opts.NoSelfHops && from == to {
		return InfCost(), nil
	}
	fromV := r.g.Edge(from)
	toV := r.g.Edge(to)
	if r.g.Component(fromV.To) != r.g.Component(toV.From) {
		return InfCost(), nil
	}
	if toV.OneWay == trgraph.OneWayBackward {
		return InfCost(), nil
	}

	res := ShortestPath(r.g, cf, map[trgraph.EdgeID]Cost{from: ZeroCost()}, map[trgraph.EdgeID]bool{to: true}, heur)
	cost, ok := res.Cost[to]
	if !ok {
		cost = InfCost()
	}
	path := res.Path(to)

	if cache != nil && !cost.IsInf() {
		cache.Put(attrs, from, to, cost, path)
		cache.NestedCache(attrs, cf, path, map[trgraph.EdgeID]bool{from: true})
	}
	return cost, path
}

// RouteEdges solves the layered candidate-group routing problem for a
// full trip stop sequence (spec.md §4.D "optim graph: virtual source/sink,
// one layer per stop with one node per candidate edge, edge-Dijkstra over
// this small layered graph to pick one candidate per stop"). Since the
// layered graph is a DAG with edges only between consecutive layers, the
// shortest path reduces to a forward dynamic-programming pass: there is
// no need to materialize virtual source/sink nodes explicitly, they fall
// out as the boundary conditions of the first and last layer.
func (r *Router) RouteEdges(route EdgeCandidateRoute, attrs RoutingAttributes, cf *CostFunc, cache *Cache, heur Heuristic) (RouteResult, bool) {
	if len(route) == 0 {
		return RouteResult{}, false
	}

	type cell struct {
		cost     float64
		prevIdx  int
		hopPath  []trgraph.EdgeID
		reachable bool
	}

	layer := make([]cell, len(route[0]))
	for i, c := range route[0] {
		layer[i] = cell{cost: c.Penalty, prevIdx: -1, reachable: true}
	}

	prevLayers := make([][]cell, len(route))
	prevLayers[0] = layer

	for li := 1; li < len(route); li++ {
		cur := make([]cell, len(route[li]))
		for ci, cand := range route[li] {
			best := cell{cost: 0, prevIdx: -1, reachable: false}
			for pi, pcell := range prevLayers[li-1] {
				if !pcell.reachable {
					continue
				}
				hopCost, hopPath := r.hops(route[li-1][pi].Edge, cand.Edge, attrs, cf, cache, heur)
				if hopCost.IsInf() {
					continue
				}
				total := pcell.cost + hopCost.Value() + cand.Penalty
				if !best.reachable || total < best.cost {
					best = cell{cost: total, prevIdx: pi, hopPath: hopPath, reachable: true}
				}
			}
			cur[ci] = best
		}
		prevLayers[li] = cur
	}

	last := prevLayers[len(route)-1]
	bestIdx := -1
	bestCost := 0.0
	for i, c := range last {
		if !c.reachable {
			continue
		}
		if bestIdx == -1 || c.cost < bestCost {
			bestIdx = i
			bestCost = c.cost
		}
	}
	if bestIdx == -1 {
		return RouteResult{}, false
	}

	chosen := make([]trgraph.EdgeID, len(route))
	var fullPath []trgraph.EdgeID
	idx := bestIdx
	for li := len(route) - 1; li >= 0; li-- {
		chosen[li] = route[li][idx].Edge
		c := prevLayers[li][idx]
		if li > 0 {
			fullPath = append(append([]trgraph.EdgeID{}, c.hopPath...), fullPath...)
			idx = c.prevIdx
		}
	}

	return RouteResult{ChosenEdges: chosen, Path: fullPath, Cost: NewCost(bestCost)}, true
}

// Router ties a built graph and its restrictor to one set of routing
// options, and dispatches RouteEdges/RouteGreedy/RouteGreedy2 against it
// (spec.md §4.D).
type Router struct {
	g    *trgraph.Graph
	opts *config.RoutingOptions
}

// NewRouter creates a Router over graph g using opts.
func NewRouter(g *trgraph.Graph, opts *config.RoutingOptions) *Router {
	return &Router{g: g, opts: opts}
}
