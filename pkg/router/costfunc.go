package router

import (
	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/geoutil"
	"github.com/azybler/shapematch/pkg/trgraph"
	"github.com/paulmach/orb"
)

// CostFunc computes the cost of a single hop (from edge, through a node,
// onto a to edge) for one trip's routing attributes (spec.md §4.D
// "EdgeCost: linear combination..."). A fresh CostFunc is created per
// trip/routing-attributes combination since it closes over attrs and the
// similarity cache.
type CostFunc struct {
	g       *trgraph.Graph
	attrs   RoutingAttributes
	opts    *config.RoutingOptions
	simiCache *SimilarityCache
}

// NewCostFunc builds a CostFunc for one trip's routing attributes.
func NewCostFunc(g *trgraph.Graph, attrs RoutingAttributes, opts *config.RoutingOptions, simi *SimilarityCache) *CostFunc {
	if simi == nil {
		simi = NewSimilarityCache()
	}
	return &CostFunc{g: g, attrs: attrs, opts: opts, simiCache: simi}
}

// StartCost is the cost of starting a path at edge e with no predecessor,
// mirroring cost(nil, nil, e) == edge_cost() (zero, the hop hasn't
// happened yet; the edge's own length is charged when it's left via a
// further hop). The nested cache and the router's searches follow the
// same "first edge of a path costs nothing yet" rule by starting from
// ZeroCost directly; none of them calls StartCost.
func (cf *CostFunc) StartCost() Cost {
	return ZeroCost()
}

// Hop computes the cost of traveling the length of `from`, then turning
// at `via` onto `to`. via must be from's To endpoint and to's From
// endpoint (the router only ever calls Hop along a directed walk).
func (cf *CostFunc) Hop(from trgraph.EdgeID, via trgraph.NodeID, to trgraph.EdgeID) Cost {
	if cf.opts.NoSelfHops && from == to {
		return InfCost()
	}

	fromE := cf.g.Edge(from)
	toE := cf.g.Edge(to)

	if !cf.g.Restrictor.May(from, via, to) {
		return InfCost()
	}

	total := 0.0

	lvl := fromE.Level
	if int(lvl) >= 8 {
		lvl = 7
	}
	total += fromE.Length * cf.opts.LevelPunish[lvl]

	if fromE.OneWay == trgraph.OneWayBackward {
		total += fromE.Length * cf.opts.OneWayPunishFac
		total += cf.opts.OneWayEdgePunish
	}

	total += cf.lineCost(fromE)

	if cf.g.Node(via).Kind == trgraph.NodeKindStation {
		total += cf.opts.PassThruStationsPunish
	}

	if cf.isFullTurn(fromE, via, toE) {
		total += cf.opts.FullTurnPunishFac
	}

	return NewCost(total)
}

// lineCost charges lineUnmatchedPunishFact (if the edge carries lines,
// none of which are similar enough to attrs) or noLinesPunishFact (if the
// edge carries no lines at all) times the edge's length.
func (cf *CostFunc) lineCost(e trgraph.EdgeView) float64 {
	if len(e.Lines) == 0 {
		return e.Length * cf.opts.NoLinesPunishFact
	}
	for _, l := range e.Lines {
		if cf.simiCache.Simi(cf.attrs, l.ShortName, l.To, l.From) > 0.5 {
			return 0
		}
	}
	return e.Length * cf.opts.LineUnmatchedPunishFact
}

// isFullTurn reports whether continuing from `from` onto `to` through
// via constitutes a "full turn" (spec.md §4.D).
//
// Two cases: a trivial full turn when `to` leads right back to where
// `from` came from (from.From == to.To and from.To == to.From — an
// immediate reversal regardless of geometry), or a geometric full turn
// when the angle between the incoming and outgoing hop at via is sharper
// than FullTurnAngle. The geometric check only applies at a real
// junction (via's degree > 2); at a degree-2 pass-through node — a plain
// curving street segment, not a junction — the original never charges a
// full-turn penalty regardless of how sharp the bend looks, so this
// mirrors that gate before comparing angles.
func (cf *CostFunc) isFullTurn(from trgraph.EdgeView, via trgraph.NodeID, to trgraph.EdgeView) bool {
	if from.From == to.To && from.To == to.From {
		return true
	}
	if cf.g.Degree(via) <= 2 {
		return false
	}

	backPt := pointBefore(from, via)
	frontPt := pointAfter(to, via)
	viaPt := cf.g.Node(via).Geom

	angle := geoutil.AngleBetween(backPt, viaPt, frontPt)
	return angle < cf.opts.FullTurnAngle
}

func pointBefore(e trgraph.EdgeView, via trgraph.NodeID) orb.Point {
	if len(e.Geom) < 2 {
		return e.Geom[0]
	}
	if e.To == via {
		return e.Geom[len(e.Geom)-2]
	}
	return e.Geom[1]
}

func pointAfter(e trgraph.EdgeView, via trgraph.NodeID) orb.Point {
	if len(e.Geom) < 2 {
		return e.Geom[0]
	}
	if e.From == via {
		return e.Geom[1]
	}
	return e.Geom[len(e.Geom)-2]
}
