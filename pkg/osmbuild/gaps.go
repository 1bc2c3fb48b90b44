package osmbuild

import (
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"github.com/azybler/shapematch/pkg/geoutil"
	"github.com/azybler/shapematch/pkg/trgraph"
)

// fixGaps closes small gaps left by OSM ways that were digitized up to but
// not onto a shared node (grounded on original_source OsmBuilder::fixGaps):
// for every degree-1 node, look for another degree-1 node within 1 meter
// (scaled by 1/cos(lat) since coordinates are mercator-projected meters at
// the node's own latitude). If neither endpoint is a station, the pair is
// merged (one node absorbs the other's dangling edge and the duplicate is
// deleted); if either is a station, a short connecting edge is added
// instead so the station keeps its own identity.
//
// gridCellSize is accepted and not used: the search radius is always ~1m
// and the rtree is not sized from it.
func fixGaps(g *trgraph.Graph, gridCellSize float64) {
	_ = gridCellSize
	const meter = 1.0

	var tr rtree.RTree
	candidateIDs := make([]trgraph.NodeID, 0)
	for _, id := range g.AllNodeIDs() {
		if g.Degree(id) != 1 {
			continue
		}
		p := g.Node(id).Geom
		tr.Insert([2]float64{p[0], p[1]}, [2]float64{p[0], p[1]}, id)
		candidateIDs = append(candidateIDs, id)
	}

	for _, id := range candidateIDs {
		if g.NodeDeleted(id) || g.Degree(id) != 1 {
			continue
		}
		nv := g.Node(id)
		radius := meter * geoutil.LatScale(wgsLatOf(nv.Geom))

		var matches []trgraph.NodeID
		tr.Search(
			[2]float64{nv.Geom[0] - radius, nv.Geom[1] - radius},
			[2]float64{nv.Geom[0] + radius, nv.Geom[1] + radius},
			func(min, max [2]float64, data interface{}) bool {
				matches = append(matches, data.(trgraph.NodeID))
				return true
			},
		)

		for _, nb := range matches {
			if nb == id || g.NodeDeleted(nb) || g.Degree(nb) != 1 {
				continue
			}
			if geoutil.MercatorDist(nv.Geom, g.Node(nb).Geom) > radius {
				continue
			}
			mergeGapPair(g, id, nb)
			break
		}
	}
}

// wgsLatOf recovers an approximate WGS84 latitude from a mercator point,
// just for LatScale; exactness doesn't matter at a 1m search radius.
func wgsLatOf(p orb.Point) float64 {
	return geoutil.ToWGS84(p)[1]
}

func mergeGapPair(g *trgraph.Graph, n, nb trgraph.NodeID) {
	nbIsStation := g.Node(nb).Kind == trgraph.NodeKindStation
	nIsStation := g.Node(n).Kind == trgraph.NodeKindStation

	danglingEdge, otherEnd, ok := soleIncidentEdge(g, nb)
	if !ok {
		return
	}

	if !nbIsStation && !nIsStation {
		ev := g.Edge(danglingEdge)
		line := orb.LineString{g.Node(otherEnd).Geom, g.Node(n).Geom}
		var newEdge trgraph.EdgeID
		if ev.From == otherEnd {
			newEdge = g.AddEdge(otherEnd, n, line, ev.Level, ev.OneWay)
		} else {
			newEdge = g.AddEdge(n, otherEnd, line, ev.Level, ev.OneWay)
		}
		for _, l := range ev.Lines {
			g.AddLine(newEdge, *l)
		}
		g.DeleteEdge(danglingEdge)
		g.DeleteNode(nb)
		return
	}

	// One side is a station: keep both nodes, just connect them directly.
	ev := g.Edge(danglingEdge)
	line := orb.LineString{g.Node(n).Geom, g.Node(nb).Geom}
	g.AddEdge(n, nb, line, ev.Level, trgraph.OneWayNone)
}

func soleIncidentEdge(g *trgraph.Graph, n trgraph.NodeID) (edge trgraph.EdgeID, otherEnd trgraph.NodeID, ok bool) {
	out := g.OutEdges(n)
	if len(out) == 1 {
		ev := g.Edge(out[0])
		return out[0], ev.To, true
	}
	in := g.InEdges(n)
	if len(in) == 1 {
		ev := g.Edge(in[0])
		return in[0], ev.From, true
	}
	return 0, 0, false
}
