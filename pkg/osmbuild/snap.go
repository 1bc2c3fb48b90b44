package osmbuild

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/tidwall/rtree"

	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/geoutil"
	"github.com/azybler/shapematch/pkg/osmfilter"
	"github.com/azybler/shapematch/pkg/trgraph"
)

// maxEqReachHops bounds the equivalence-reach search original_source runs
// via a depth-first full-turn-counted walk (eqStatReach); we bound it by
// hop count rather than replicate the exact full-turn-angle accounting,
// since the router's own cost function (not this builder pass) is where
// that angle accounting is load-bearing for routing correctness.
const maxEqReachHops = 4

// snapStations implements spec.md §4.B.1: every OSM station node not
// already part of the graph (a standalone POI node no way passes through)
// is projected onto the nearest candidate edge using the MOT's
// snap-distance ladder; name-equivalent stations reachable from each
// other within a short hop radius are merged into one StationGroup.
// Orphan stations with no edge within any ladder distance fall back to an
// isolated, edge-less node (given a self-edge later in
// addSelfEdgesForIsolatedStations so routing still treats it uniformly).
func snapStations(g *trgraph.Graph, pr *osmfilter.ParseResult, mc *config.MotConfig, nodeByOSM map[osm.NodeID]trgraph.NodeID) map[string]*trgraph.StationGroup {
	edgeIndex := buildEdgeIndex(g)

	for id, raw := range pr.Nodes {
		if !raw.IsStation {
			continue
		}
		if _, already := nodeByOSM[id]; already {
			continue
		}
		snapOrphanStation(g, edgeIndex, mc, raw)
	}

	mergeEquivalentStations(g, mc)

	return collectGroups(g)
}

type edgeIndex struct {
	tree *rtree.RTree
}

func buildEdgeIndex(g *trgraph.Graph) *edgeIndex {
	tr := &rtree.RTree{}
	for _, id := range g.AllEdgeIDs() {
		ev := g.Edge(id)
		minX, minY := ev.Geom[0][0], ev.Geom[0][1]
		maxX, maxY := minX, minY
		for _, pt := range ev.Geom {
			if pt[0] < minX {
				minX = pt[0]
			}
			if pt[0] > maxX {
				maxX = pt[0]
			}
			if pt[1] < minY {
				minY = pt[1]
			}
			if pt[1] > maxY {
				maxY = pt[1]
			}
		}
		tr.Insert([2]float64{minX, minY}, [2]float64{maxX, maxY}, id)
	}
	return &edgeIndex{tree: tr}
}

type edgeCand struct {
	edge trgraph.EdgeID
	dist float64
	proj orb.Point
}

func (ix *edgeIndex) candidates(g *trgraph.Graph, p orb.Point, d float64) []edgeCand {
	var out []edgeCand
	ix.tree.Search(
		[2]float64{p[0] - d, p[1] - d},
		[2]float64{p[0] + d, p[1] + d},
		func(min, max [2]float64, data interface{}) bool {
			id := data.(trgraph.EdgeID)
			if g.EdgeDeleted(id) {
				return true
			}
			ev := g.Edge(id)
			dist, _, proj := geoutil.PointToSegmentMercator(p, ev.Geom[0], ev.Geom[len(ev.Geom)-1])
			if dist <= d {
				out = append(out, edgeCand{edge: id, dist: dist, proj: proj})
			}
			return true
		},
	)
	sort.Slice(out, func(i, j int) bool { return out[i].dist < out[j].dist })
	return out
}

func snapOrphanStation(g *trgraph.Graph, ix *edgeIndex, mc *config.MotConfig, raw osmfilter.NodeRaw) {
	p := geoutil.ToMercator(orbPoint(raw.Lon, raw.Lat))
	info := trgraph.NewStationInfo(mc.StationNormzer.Norm(raw.Name), mc.TrackNormzer.Norm(raw.Track), true)

	for _, d := range mc.MaxSnapDistances {
		cands := ix.candidates(g, p, d)
		for _, c := range cands {
			if g.EdgeDeleted(c.edge) {
				continue
			}
			ev := g.Edge(c.edge)
			if ev.Level > mc.MaxSnapLevel {
				continue
			}

			if geoutil.MercatorDist(c.proj, g.Node(ev.From).Geom) < 2 {
				g.SetStation(ev.From, info)
				return
			}
			if geoutil.MercatorDist(c.proj, g.Node(ev.To).Geom) < 2 {
				g.SetStation(ev.To, info)
				return
			}

			via := splitEdgeAt(g, c.edge, c.proj)
			g.SetStation(via, info)
			return
		}
	}

	// Orphan-snap fallback: no candidate edge within any ladder distance.
	// Place the station as an isolated node; the builder's later
	// self-edge pass gives it a trivial loop so the router can still
	// board/alight there.
	n := g.AddNode(p)
	g.SetStation(n, info)
}

// splitEdgeAt splits edge id at an arbitrary projected point proj (which,
// unlike trgraph.Graph.SplitEdge, need not already be a vertex of the
// edge's geometry) by inserting proj as a new vertex and rebuilding the
// edge's two halves, mirroring any turn restrictions onto both.
func splitEdgeAt(g *trgraph.Graph, id trgraph.EdgeID, proj orb.Point) trgraph.NodeID {
	ev := g.Edge(id)
	via := g.AddNode(proj)

	geom1 := orb.LineString{ev.Geom[0], proj}
	geom2 := orb.LineString{proj, ev.Geom[len(ev.Geom)-1]}

	e1 := g.AddEdge(ev.From, via, geom1, ev.Level, ev.OneWay)
	e2 := g.AddEdge(via, ev.To, geom2, ev.Level, ev.OneWay)
	for _, l := range ev.Lines {
		g.AddLine(e1, *l)
		g.AddLine(e2, *l)
	}
	g.DeleteEdge(id)
	g.Restrictor.ReplaceEdge(id, e1, e2)
	return via
}

// mergeEquivalentStations walks outward from every station node up to
// maxEqReachHops graph hops (matching original_source's bounded
// eqStatReach) and merges the StationGroups of any two stations whose
// names are similar (StationInfo.Simi, the binary >0.5 threshold).
func mergeEquivalentStations(g *trgraph.Graph, mc *config.MotConfig) {
	for _, id := range g.AllNodeIDs() {
		nv := g.Node(id)
		if nv.Kind != trgraph.NodeKindStation || nv.Station == nil {
			continue
		}
		ensureGroup(g, id)
		reach := bfsStations(g, id, maxEqReachHops)
		for _, other := range reach {
			ov := g.Node(other)
			if ov.Station == nil || other == id {
				continue
			}
			if nv.Station.Simi(ov.Station) <= 0 {
				continue
			}
			ensureGroup(g, other)
			dstGroup := g.Node(id).Station.Group
			srcGroup := g.Node(other).Station.Group
			if dstGroup != srcGroup {
				g.MergeStationGroups(dstGroup, srcGroup)
			}
		}
	}
}

func ensureGroup(g *trgraph.Graph, id trgraph.NodeID) {
	info := g.Node(id).Station
	if info.Group == nil {
		grp := trgraph.NewStationGroup()
		grp.AddNode(id)
		info.Group = grp
	}
}

// bfsStations returns every station node reachable within maxHops
// undirected edge hops of start, treating a station-to-blocker hop as
// blocking further traversal (blocker-reach semantics: a blocker node
// stops the equivalence search from crossing it).
func bfsStations(g *trgraph.Graph, start trgraph.NodeID, maxHops int) []trgraph.NodeID {
	type qitem struct {
		node trgraph.NodeID
		hops int
	}
	visited := map[trgraph.NodeID]bool{start: true}
	queue := []qitem{{start, 0}}
	var out []trgraph.NodeID

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.hops >= maxHops {
			continue
		}
		neighbors := append(append([]trgraph.EdgeID{}, g.OutEdges(cur.node)...), g.InEdges(cur.node)...)
		for _, e := range neighbors {
			ev := g.Edge(e)
			next := ev.To
			if next == cur.node {
				next = ev.From
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			if g.Node(next).Kind == trgraph.NodeKindBlocker {
				continue
			}
			if g.Node(next).Kind == trgraph.NodeKindStation {
				out = append(out, next)
			}
			queue = append(queue, qitem{next, cur.hops + 1})
		}
	}
	return out
}

func collectGroups(g *trgraph.Graph) map[string]*trgraph.StationGroup {
	groups := make(map[string]*trgraph.StationGroup)
	for _, id := range g.AllNodeIDs() {
		nv := g.Node(id)
		if nv.Kind != trgraph.NodeKindStation || nv.Station == nil || nv.Station.Group == nil {
			continue
		}
		key := nv.Station.Name
		if _, ok := groups[key]; !ok {
			groups[key] = nv.Station.Group
		}
	}
	return groups
}
