package osmbuild

import (
	"github.com/paulmach/orb"

	"github.com/azybler/shapematch/pkg/geoutil"
	"github.com/azybler/shapematch/pkg/trgraph"
)

// simplifyGeometries runs Douglas-Peucker simplification (tolerance 0.5m,
// geoutil.SimplifyTolerance) over every live edge's geometry, the last
// pass that touches geometry before the graph is handed to the router.
func simplifyGeometries(g *trgraph.Graph) {
	for _, id := range g.AllEdgeIDs() {
		ev := g.Edge(id)
		g.SetGeom(id, geoutil.Simplify(ev.Geom))
	}
}

// addReversePartners gives every edge lacking one a reverse-direction
// partner, unconditionally (original_source's writeODirEdgs): the router's
// edge-Dijkstra only ever expands g.OutEdges(via), so without a reverse
// record ordinary two-way streets would be traversable in one direction
// only. oneWay only controls what the new copy's own OneWay value is
// (and, transitively, the soft oneWayPunishFac/oneWayEdgePunish cost the
// router charges it via RoutingOptions) — never whether to create it.
// Restrictions on the source edge are carried onto its reverse partner
// too, matching the original's "if (e->pl().isRestricted())
// restor.duplicateEdge(e, newE)".
func addReversePartners(g *trgraph.Graph) {
	for _, id := range g.AllEdgeIDs() {
		ev := g.Edge(id)
		if hasReverse(g, ev) {
			continue
		}
		rev := g.AddEdge(ev.To, ev.From, reverseLine(ev.Geom), ev.Level, revCopy(ev.OneWay))
		for _, l := range ev.Lines {
			g.AddLine(rev, *l)
		}
		if g.Restrictor.EdgeRestrictedAt(ev.ID, ev.From) || g.Restrictor.EdgeRestrictedAt(ev.ID, ev.To) {
			g.Restrictor.DuplicateEdge(ev.ID, rev)
		}
	}
}

// revCopy gives the reverse partner's own OneWay value: a one-way
// original's reverse is the forbidden direction of that same street (kept
// around at a soft penalty, not as a hard barrier), while a two-way
// original's reverse is just as unrestricted as the edge it mirrors.
func revCopy(o trgraph.OneWay) trgraph.OneWay {
	switch o {
	case trgraph.OneWayForward:
		return trgraph.OneWayBackward
	case trgraph.OneWayBackward:
		return trgraph.OneWayForward
	default:
		return trgraph.OneWayNone
	}
}

func hasReverse(g *trgraph.Graph, ev trgraph.EdgeView) bool {
	for _, e := range g.OutEdges(ev.To) {
		if g.Edge(e).To == ev.From {
			return true
		}
	}
	return false
}

// addSelfEdgesForIsolatedStations gives every degree-0 station node a
// trivial self-loop edge so the router's edge-Dijkstra (which always
// starts and ends on an edge, never a bare node) has something to board
// and alight on, matching original_source's "g.addEdg(n, n)" pass for
// isolated stations.
func addSelfEdgesForIsolatedStations(g *trgraph.Graph) {
	for _, id := range g.AllNodeIDs() {
		if g.Degree(id) != 0 {
			continue
		}
		nv := g.Node(id)
		if nv.Kind != trgraph.NodeKindStation {
			continue
		}
		g.AddEdge(id, id, orb.LineString{nv.Geom, nv.Geom}, 0, trgraph.OneWayNone)
	}
}
