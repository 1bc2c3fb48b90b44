package shapebuild

import (
	"github.com/paulmach/orb"

	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/geoutil"
	"github.com/azybler/shapematch/pkg/gtfsmodel"
	"github.com/azybler/shapematch/pkg/router"
	"github.com/azybler/shapematch/pkg/trgraph"
)

// penaltyParams translates a MOT's routing options into the weights
// StationGroup.WritePenalties needs (spec.md §4.C "penalty = distance ×
// distPenFactor + platform-mismatch penalty + non-OSM penalty").
func penaltyParams(opts *config.RoutingOptions) trgraph.StationPenaltyParams {
	return trgraph.StationPenaltyParams{
		NonOSMPenalty:        opts.NonOSMPenalty,
		TrackMismatchPenalty: opts.PlatformUnmatchedPen,
		DistPenaltyFactor:    opts.StationDistPenFactor,
	}
}

// buildRoute turns one trip's stop sequence into the EdgeCandidateRoute
// the router consumes: each stop's bound StationGroup is penalized via
// WritePenalties, and each resulting NodeCandidate is expanded into every
// edge incident to that node (the router routes edge to edge, never
// node to node, so a station node candidate becomes one edge candidate
// per edge touching it, all carrying the node's penalty).
func buildRoute(g *trgraph.Graph, t *gtfsmodel.Trip, bound map[string]*trgraph.StationGroup, params trgraph.StationPenaltyParams) (router.EdgeCandidateRoute, bool) {
	var route router.EdgeCandidateRoute

	for _, st := range t.StopTimes {
		if st.Stop == nil {
			continue
		}
		sg := bound[st.Stop.ID]
		if sg == nil {
			continue
		}

		stopPos := geoutil.ToMercator(orb.Point{st.Stop.Lon, st.Stop.Lat})
		sg.WritePenalties(st.Stop.ID, stopPos, st.Stop.PlatformCode, params,
			func(n trgraph.NodeID) orb.Point { return g.Node(n).Geom },
			func(n trgraph.NodeID) string {
				if info := g.Node(n).Station; info != nil {
					return info.Track
				}
				return ""
			},
			func(n trgraph.NodeID) bool {
				if info := g.Node(n).Station; info != nil {
					return info.IsFromOSM
				}
				return false
			},
			geoutil.MercatorDist,
		)

		group := edgeGroup(g, sg.NodeCandidates(st.Stop.ID))
		if len(group) == 0 {
			continue
		}
		route = append(route, group)
	}

	return route, len(route) >= 2
}

// edgeGroup expands node candidates into incident-edge candidates,
// de-duplicating so an edge touched by two candidate nodes (e.g. both
// endpoints of a short platform edge) only appears once, at its best
// penalty.
func edgeGroup(g *trgraph.Graph, nodeCands []trgraph.NodeCandidate) router.CandidateGroup {
	best := make(map[trgraph.EdgeID]float64)
	for _, nc := range nodeCands {
		for _, e := range g.OutEdges(nc.Node) {
			considerEdge(best, e, nc.Penalty)
		}
		for _, e := range g.InEdges(nc.Node) {
			considerEdge(best, e, nc.Penalty)
		}
	}

	group := make(router.CandidateGroup, 0, len(best))
	for e, pen := range best {
		group = append(group, router.EdgeCandidate{Edge: e, Penalty: pen})
	}
	return group
}

func considerEdge(best map[trgraph.EdgeID]float64, e trgraph.EdgeID, pen float64) {
	if cur, ok := best[e]; !ok || pen < cur {
		best[e] = pen
	}
}
