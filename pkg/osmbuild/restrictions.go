package osmbuild

import (
	"github.com/paulmach/osm"

	"github.com/azybler/shapematch/pkg/osmfilter"
	"github.com/azybler/shapematch/pkg/trgraph"
)

// applyRestrictions registers every extracted turn restriction against
// g.Restrictor. A restriction names a "from" way, a "to" way and a "via"
// node; it resolves to the specific edge of each way that is actually
// incident to the via node, since a way can have been split into many
// graph edges during construction.
func applyRestrictions(g *trgraph.Graph, pr *osmfilter.ParseResult, nodeByOSM map[osm.NodeID]trgraph.NodeID, wayEdges map[osm.WayID][]trgraph.EdgeID) {
	for _, r := range pr.Restrictions {
		via, ok := nodeByOSM[r.Via]
		if !ok {
			continue
		}
		fromEdge, ok := edgeIncidentTo(g, wayEdges[r.From], via)
		if !ok {
			continue
		}
		toEdge, ok := edgeIncidentTo(g, wayEdges[r.To], via)
		if !ok {
			continue
		}
		g.Restrictor.Add(fromEdge, via, toEdge, r.Positive)
	}
}

func edgeIncidentTo(g *trgraph.Graph, edges []trgraph.EdgeID, via trgraph.NodeID) (trgraph.EdgeID, bool) {
	for _, e := range edges {
		ev := g.Edge(e)
		if ev.From == via || ev.To == via {
			return e, true
		}
	}
	return 0, false
}
