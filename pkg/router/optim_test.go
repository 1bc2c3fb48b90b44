package router

import (
	"testing"

	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/trgraph"
	"github.com/paulmach/orb"
)

// buildGridGraph builds a small 2-stop network with two candidate edges
// per stop: one cheap direct connection and one expensive detour.
func buildGridGraph(t *testing.T) (*trgraph.Graph, trgraph.EdgeID, trgraph.EdgeID, trgraph.EdgeID, trgraph.EdgeID) {
	t.Helper()
	g := trgraph.NewGraph(nil)

	n0 := g.AddNode(orb.Point{0, 0})
	n1 := g.AddNode(orb.Point{0, 50})
	n2 := g.AddNode(orb.Point{0, 100})
	n3 := g.AddNode(orb.Point{1000, 50})
	n4 := g.AddNode(orb.Point{1000, 100})

	cheapA := g.AddEdge(n0, n1, orb.LineString{{0, 0}, {0, 50}}, 0, trgraph.OneWayNone)
	cheapB := g.AddEdge(n1, n2, orb.LineString{{0, 50}, {0, 100}}, 0, trgraph.OneWayNone)

	expensiveA := g.AddEdge(n0, n3, orb.LineString{{0, 0}, {1000, 50}}, 0, trgraph.OneWayNone)
	expensiveB := g.AddEdge(n3, n4, orb.LineString{{1000, 50}, {1000, 100}}, 0, trgraph.OneWayNone)
	_ = n4

	return g, cheapA, cheapB, expensiveA, expensiveB
}

func TestRouteEdgesPicksCheaperPath(t *testing.T) {
	g, cheapA, cheapB, expensiveA, expensiveB := buildGridGraph(t)
	opts := config.DefaultRoutingOptions()
	attrs := RoutingAttributes{}
	cf := NewCostFunc(g, attrs, &opts, nil)
	r := NewRouter(g, &opts)
	cache := NewCache()

	route := EdgeCandidateRoute{
		CandidateGroup{{Edge: cheapA, Penalty: 0}, {Edge: expensiveA, Penalty: 0}},
		CandidateGroup{{Edge: cheapB, Penalty: 0}, {Edge: expensiveB, Penalty: 0}},
	}

	res, ok := r.RouteEdges(route, attrs, cf, cache, ZeroHeuristic)
	if !ok {
		t.Fatal("expected a route to be found")
	}
	if res.ChosenEdges[0] != cheapA || res.ChosenEdges[1] != cheapB {
		t.Errorf("chosen edges = %v, want cheap path [%d %d]", res.ChosenEdges, cheapA, cheapB)
	}
}

func TestRouteGreedyMatchesOptimOnSimpleCase(t *testing.T) {
	g, cheapA, cheapB, expensiveA, expensiveB := buildGridGraph(t)
	opts := config.DefaultRoutingOptions()
	attrs := RoutingAttributes{}
	cf := NewCostFunc(g, attrs, &opts, nil)
	r := NewRouter(g, &opts)
	cache := NewCache()

	route := EdgeCandidateRoute{
		CandidateGroup{{Edge: cheapA, Penalty: 0}, {Edge: expensiveA, Penalty: 0}},
		CandidateGroup{{Edge: cheapB, Penalty: 0}, {Edge: expensiveB, Penalty: 0}},
	}

	res, ok := r.RouteGreedy(route, attrs, cf, cache, ZeroHeuristic)
	if !ok {
		t.Fatal("expected a route to be found")
	}
	if res.ChosenEdges[0] != cheapA || res.ChosenEdges[1] != cheapB {
		t.Errorf("greedy chosen edges = %v, want cheap path", res.ChosenEdges)
	}
}

func TestNestedCacheHitsAfterFirstSolve(t *testing.T) {
	g, cheapA, cheapB, _, _ := buildGridGraph(t)
	opts := config.DefaultRoutingOptions()
	attrs := RoutingAttributes{}
	cf := NewCostFunc(g, attrs, &opts, nil)
	r := NewRouter(g, &opts)
	cache := NewCache()

	cost1, _ := r.hops(cheapA, cheapB, attrs, cf, cache, ZeroHeuristic)
	if cost1.IsInf() {
		t.Fatal("expected a finite hop cost")
	}
	if _, ok := cache.Get(attrs, cheapA, cheapB); !ok {
		t.Fatal("expected hop to be cached after first solve")
	}
	cost2, _ := r.hops(cheapA, cheapB, attrs, cf, cache, ZeroHeuristic)
	if cost1.Value() != cost2.Value() {
		t.Errorf("cached cost %v != recomputed cost %v", cost2.Value(), cost1.Value())
	}
}
