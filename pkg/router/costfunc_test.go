package router

import (
	"testing"

	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/trgraph"
	"github.com/paulmach/orb"
)

func straightGraph() (*trgraph.Graph, trgraph.NodeID, trgraph.NodeID, trgraph.NodeID, trgraph.EdgeID, trgraph.EdgeID) {
	g := trgraph.NewGraph(nil)
	a := g.AddNode(orb.Point{0, 0})
	b := g.AddNode(orb.Point{0, 100})
	c := g.AddNode(orb.Point{0, 200})
	e1 := g.AddEdge(a, b, orb.LineString{{0, 0}, {0, 100}}, 0, trgraph.OneWayNone)
	e2 := g.AddEdge(b, c, orb.LineString{{0, 100}, {0, 200}}, 0, trgraph.OneWayNone)
	return g, a, b, c, e1, e2
}

func TestHopStraightOn(t *testing.T) {
	g, _, b, _, e1, e2 := straightGraph()
	opts := config.DefaultRoutingOptions()
	attrs := RoutingAttributes{}
	cf := NewCostFunc(g, attrs, &opts, nil)

	cost := cf.Hop(e1, b, e2)
	if cost.IsInf() {
		t.Fatal("straight-on hop should not be infinite")
	}
	// Base cost: e1.Length * levelPunish[0], no turn/line/oneway penalties.
	want := 100 * opts.LevelPunish[0]
	if cost.Value() != want {
		t.Errorf("cost = %v, want %v", cost.Value(), want)
	}
}

func TestHopFullTurnTrivialReversal(t *testing.T) {
	g := trgraph.NewGraph(nil)
	a := g.AddNode(orb.Point{0, 0})
	b := g.AddNode(orb.Point{0, 100})
	e1 := g.AddEdge(a, b, orb.LineString{{0, 0}, {0, 100}}, 0, trgraph.OneWayNone)
	e2 := g.AddEdge(b, a, orb.LineString{{0, 100}, {0, 0}}, 0, trgraph.OneWayNone)

	opts := config.DefaultRoutingOptions()
	cf := NewCostFunc(g, RoutingAttributes{}, &opts, nil)

	cost := cf.Hop(e1, b, e2)
	if cost.IsInf() {
		t.Fatal("reversal should be a finite, punished hop, not impossible")
	}
	want := 100*opts.LevelPunish[0] + opts.FullTurnPunishFac
	if cost.Value() != want {
		t.Errorf("cost = %v, want %v (full turn punish applied)", cost.Value(), want)
	}
}

func TestNoSelfHops(t *testing.T) {
	g, _, b, _, e1, _ := straightGraph()
	opts := config.DefaultRoutingOptions()
	cf := NewCostFunc(g, RoutingAttributes{}, &opts, nil)

	if !cf.Hop(e1, b, e1).IsInf() {
		t.Error("NoSelfHops should make a self-hop infinite")
	}
}

// TestFullTurnSelfLoopDegreeTwo exercises a degree-2 pass-through node
// whose two incident edges happen to bend sharply (a tight OSM curve, not
// a junction). The original never charges FullTurnPunishFac at degree <=
// 2 regardless of how sharp the geometric angle looks, so this must come
// back as a plain, unpunished straight-on hop.
func TestFullTurnSelfLoopDegreeTwo(t *testing.T) {
	g := trgraph.NewGraph(nil)
	a := g.AddNode(orb.Point{0, 0})
	loopNode := g.AddNode(orb.Point{10, 0})
	b := g.AddNode(orb.Point{20, 0})

	// A sharply bending pair of edges through loopNode, mimicking a tight
	// OSM curve: from a, out to loopNode, and a second edge from loopNode
	// on to b, both very short.
	e1 := g.AddEdge(a, loopNode, orb.LineString{{0, 0}, {5, 5}, {10, 0}}, 0, trgraph.OneWayNone)
	e2 := g.AddEdge(loopNode, b, orb.LineString{{10, 0}, {6, 5}, {20, 0}}, 0, trgraph.OneWayNone)

	opts := config.DefaultRoutingOptions()
	cf := NewCostFunc(g, RoutingAttributes{}, &opts, nil)

	cost := cf.Hop(e1, loopNode, e2)
	if cost.IsInf() {
		t.Fatal("degree-2 pass-through hop should resolve to a finite cost")
	}
	want := g.Edge(e1).Length * opts.LevelPunish[0]
	if cost.Value() != want {
		t.Errorf("cost = %v, want %v (no full-turn punish at degree <= 2)", cost.Value(), want)
	}
}
