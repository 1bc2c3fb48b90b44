package router

import (
	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/geoutil"
	"github.com/azybler/shapematch/pkg/trgraph"
	"github.com/paulmach/orb"
)

// DistHeur builds an admissible A* heuristic: the straight-line distance
// from an edge's head node to the nearest target point, scaled by the
// cheapest per-meter cost reachable anywhere in that node's component
// (levelPunish[component.minEdgeLvl]) so the estimate never exceeds the
// true remaining cost (spec.md §4.D).
func DistHeur(g *trgraph.Graph, comps []trgraph.Component, opts *config.RoutingOptions, targetPoints []orb.Point) Heuristic {
	compLvl := make(map[trgraph.ComponentID]uint8, len(comps))
	for _, c := range comps {
		compLvl[c.ID] = c.MinEdgeLvl
	}

	return func(e trgraph.EdgeID) float64 {
		to := g.Edge(e).To
		pt := g.Node(to).Geom
		minDist := nearestDist(pt, targetPoints)

		lvl := compLvl[g.Component(to)]
		if int(lvl) >= 8 {
			lvl = 7
		}
		return minDist * opts.LevelPunish[lvl]
	}
}

func nearestDist(pt orb.Point, targets []orb.Point) float64 {
	if len(targets) == 0 {
		return 0
	}
	best := geoutil.MercatorDist(pt, targets[0])
	for _, t := range targets[1:] {
		if d := geoutil.MercatorDist(pt, t); d < best {
			best = d
		}
	}
	return best
}

// NDistHeur is the node-candidate variant used by the greedy routers: it
// estimates from a node directly rather than from an edge's head node.
func NDistHeur(g *trgraph.Graph, comps []trgraph.Component, opts *config.RoutingOptions, targetPoints []orb.Point) func(trgraph.NodeID) float64 {
	compLvl := make(map[trgraph.ComponentID]uint8, len(comps))
	for _, c := range comps {
		compLvl[c.ID] = c.MinEdgeLvl
	}
	return func(n trgraph.NodeID) float64 {
		pt := g.Node(n).Geom
		minDist := nearestDist(pt, targetPoints)
		lvl := compLvl[g.Component(n)]
		if int(lvl) >= 8 {
			lvl = 7
		}
		return minDist * opts.LevelPunish[lvl]
	}
}
