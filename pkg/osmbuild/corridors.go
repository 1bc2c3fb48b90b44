package osmbuild

import (
	"github.com/paulmach/orb"

	"github.com/azybler/shapematch/pkg/trgraph"
)

// collapseCorridors merges degree-2 non-station nodes into their two
// incident edges (grounded on original_source collapseEdges): a plain
// pass-through vertex with exactly one edge in and one out (or two out,
// or two in, for a bidirectional pair) is removed, and the two edges it
// joined become a single edge carrying their concatenated geometry.
// Never collapses a node that would create a parallel duplicate edge
// (this isn't a multigraph) or merge two edges that disagree on
// one-way/level/lines/restriction status.
func collapseCorridors(g *trgraph.Graph) {
	for _, id := range g.AllNodeIDs() {
		if g.NodeDeleted(id) || g.Degree(id) != 2 {
			continue
		}
		nv := g.Node(id)
		if nv.Kind == trgraph.NodeKindStation {
			continue
		}

		ea, eb, ok := corridorPair(g, id)
		if !ok {
			continue
		}
		eav, ebv := g.Edge(ea), g.Edge(eb)
		otherA := otherEnd(eav, id)
		otherB := otherEnd(ebv, id)

		if duplicatesExisting(g, otherA, otherB) {
			continue
		}
		if !edgesSimilar(g, eav, ebv) {
			continue
		}
		if g.Restrictor.EdgeRestrictedAt(ea, id) || g.Restrictor.EdgeRestrictedAt(eb, id) {
			continue
		}

		mergeCorridorEdges(g, id, eav, ebv, otherA, otherB)
	}
}

// corridorPair returns the two live edges incident to a degree-2 node;
// for one edge in and one out, the incoming edge comes first, so the
// merged edge runs in travel direction.
func corridorPair(g *trgraph.Graph, n trgraph.NodeID) (a, b trgraph.EdgeID, ok bool) {
	out := g.OutEdges(n)
	in := g.InEdges(n)
	switch {
	case len(out) == 2:
		return out[0], out[1], true
	case len(in) == 2:
		return in[0], in[1], true
	case len(out) == 1 && len(in) == 1:
		return in[0], out[0], true
	}
	return 0, 0, false
}

func otherEnd(e trgraph.EdgeView, via trgraph.NodeID) trgraph.NodeID {
	if e.From == via {
		return e.To
	}
	return e.From
}

func duplicatesExisting(g *trgraph.Graph, a, b trgraph.NodeID) bool {
	for _, e := range g.OutEdges(a) {
		if g.Edge(e).To == b {
			return true
		}
	}
	for _, e := range g.OutEdges(b) {
		if g.Edge(e).To == a {
			return true
		}
	}
	return false
}

// edgesSimilar mirrors original_source's edgesSim: same one-way-ness,
// same level, same set of transit lines, and neither restricted.
func edgesSimilar(g *trgraph.Graph, a, b trgraph.EdgeView) bool {
	if (a.OneWay != trgraph.OneWayNone) != (b.OneWay != trgraph.OneWayNone) {
		return false
	}
	if a.Level != b.Level {
		return false
	}
	if len(a.Lines) != len(b.Lines) {
		return false
	}
	for i := range a.Lines {
		if *a.Lines[i] != *b.Lines[i] {
			return false
		}
	}
	return true
}

func mergeCorridorEdges(g *trgraph.Graph, via trgraph.NodeID, a, b trgraph.EdgeView, otherA, otherB trgraph.NodeID) {
	geom := mergedGeometry(a, b, via)

	// edgesSimilar already required a and b to agree on one-way-ness, so
	// the merged edge just inherits a's level/oneWay flag; travel
	// direction is carried by the endpoint order below, matching the
	// orientation mergedGeometry already normalized through via.
	merged := g.AddEdge(otherA, otherB, geom, a.Level, a.OneWay)
	for _, l := range a.Lines {
		g.AddLine(merged, *l)
	}
	for _, l := range b.Lines {
		g.AddLine(merged, *l)
	}
	g.DeleteEdge(a.ID)
	g.DeleteEdge(b.ID)
	g.DeleteNode(via)
}

// mergedGeometry concatenates a and b's geometries in travel order through
// via, matching original_source mergeEdgePL's four from/to orientation
// cases.
func mergedGeometry(a, b trgraph.EdgeView, via trgraph.NodeID) orb.LineString {
	aRev := a.To != via
	bRev := b.From != via

	ga := append(orb.LineString{}, a.Geom...)
	if aRev {
		ga = reverseLine(ga)
	}
	gb := append(orb.LineString{}, b.Geom...)
	if bRev {
		gb = reverseLine(gb)
	}
	return append(ga, gb...)
}

func reverseLine(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[len(ls)-1-i] = p
	}
	return out
}
