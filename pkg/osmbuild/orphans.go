package osmbuild

import (
	"github.com/paulmach/orb"

	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/geoutil"
	"github.com/azybler/shapematch/pkg/trgraph"
)

// deleteOrphanNodes removes every degree-0 node that isn't a station
// belonging to a group (grounded on original_source deleteOrphNds): a
// degree-0 station still needs to survive so the router can board/alight
// there via the self-edge the builder adds later.
func deleteOrphanNodes(g *trgraph.Graph) {
	for _, id := range g.AllNodeIDs() {
		if g.Degree(id) != 0 {
			continue
		}
		nv := g.Node(id)
		if nv.Kind == trgraph.NodeKindStation && nv.Station != nil && nv.Station.Group != nil {
			continue
		}
		g.DeleteNode(id)
	}
}

// deleteOrphanEdges removes degree-1 non-station nodes, repeated for
// rounds passes since deleting one dangling node can expose another
// (grounded on original_source deleteOrphEdgs's 3-round loop). A node is
// preserved when removing it would leave its sole neighbor at degree 2
// with a steep-angle corner (keepFullTurn): collapsing that corner later
// would silently manufacture a full-turn-eligible node that was never
// meant to exist.
func deleteOrphanEdges(g *trgraph.Graph, mc *config.MotConfig, rounds int) {
	for c := 0; c < rounds; c++ {
		for _, id := range g.AllNodeIDs() {
			if g.NodeDeleted(id) || g.Degree(id) != 1 {
				continue
			}
			nv := g.Node(id)
			if nv.Kind == trgraph.NodeKindStation {
				continue
			}
			if keepFullTurn(g, id, mc.Routing.FullTurnAngle) {
				continue
			}

			e, other, ok := soleIncidentEdge(g, id)
			if !ok {
				continue
			}
			g.DeleteEdge(e)
			g.DeleteNode(id)
			_ = other
		}
	}
}

// keepFullTurn reports whether deleting degree-1 node n would leave its
// only neighbor at degree 3->2 forming a sharp-angle ("full turn")
// corner, in which case n should be preserved rather than deleted.
func keepFullTurn(g *trgraph.Graph, n trgraph.NodeID, fullTurnAngle float64) bool {
	e, other, ok := soleIncidentEdge(g, n)
	if !ok {
		return false
	}
	if g.Degree(other) != 3 {
		return false
	}

	var a, b trgraph.EdgeID
	haveA, haveB := false, false
	for _, f := range append(append([]trgraph.EdgeID{}, g.OutEdges(other)...), g.InEdges(other)...) {
		if f == e {
			continue
		}
		if !haveA {
			a, haveA = f, true
		} else if !haveB {
			b, haveB = f, true
		}
	}
	if !haveA || !haveB {
		return false
	}

	ap := hopEndpoint(g, a, other)
	bp := hopEndpoint(g, b, other)
	angle := geoutil.AngleBetween(ap, g.Node(other).Geom, bp)
	return angle < fullTurnAngle
}

// hopEndpoint returns the position of e's end node opposite via. Inner
// vertices of a multi-point geometry (such as a collapsed corridor edge)
// are not consulted.
func hopEndpoint(g *trgraph.Graph, e trgraph.EdgeID, via trgraph.NodeID) orb.Point {
	ev := g.Edge(e)
	if ev.From == via {
		return g.Node(ev.To).Geom
	}
	return g.Node(ev.From).Geom
}
