package trgraph

import (
	"testing"

	"github.com/paulmach/orb"
)

func buildLine(a, b orb.Point) orb.LineString {
	return orb.LineString{a, b}
}

func TestAddNodeAddEdge(t *testing.T) {
	g := NewGraph(nil)
	a := g.AddNode(orb.Point{0, 0})
	b := g.AddNode(orb.Point{0, 100})
	e := g.AddEdge(a, b, buildLine(orb.Point{0, 0}, orb.Point{0, 100}), 2, OneWayNone)

	if g.LiveNodeCount() != 2 {
		t.Fatalf("LiveNodeCount = %d, want 2", g.LiveNodeCount())
	}
	if g.LiveEdgeCount() != 1 {
		t.Fatalf("LiveEdgeCount = %d, want 1", g.LiveEdgeCount())
	}
	ev := g.Edge(e)
	if ev.Length != 100 {
		t.Errorf("Length = %v, want 100", ev.Length)
	}
	out := g.OutEdges(a)
	if len(out) != 1 || out[0] != e {
		t.Errorf("OutEdges(a) = %v, want [%d]", out, e)
	}
	in := g.InEdges(b)
	if len(in) != 1 || in[0] != e {
		t.Errorf("InEdges(b) = %v, want [%d]", in, e)
	}
}

func TestDeleteEdgeHiddenFromAdjacency(t *testing.T) {
	g := NewGraph(nil)
	a := g.AddNode(orb.Point{0, 0})
	b := g.AddNode(orb.Point{0, 100})
	e := g.AddEdge(a, b, buildLine(orb.Point{0, 0}, orb.Point{0, 100}), 2, OneWayNone)

	g.DeleteEdge(e)
	if g.LiveEdgeCount() != 0 {
		t.Fatalf("LiveEdgeCount after delete = %d, want 0", g.LiveEdgeCount())
	}
	if len(g.OutEdges(a)) != 0 {
		t.Errorf("OutEdges(a) after delete = %v, want empty", g.OutEdges(a))
	}
	if !g.EdgeDeleted(e) {
		t.Error("EdgeDeleted should be true")
	}
}

func TestSplitEdgePreservesRestrictor(t *testing.T) {
	g := NewGraph(nil)
	a := g.AddNode(orb.Point{0, 0})
	b := g.AddNode(orb.Point{0, 200})
	c := g.AddNode(orb.Point{100, 0})
	e := g.AddEdge(a, b, orb.LineString{{0, 0}, {0, 100}, {0, 200}}, 1, OneWayNone)
	other := g.AddEdge(a, c, orb.LineString{{0, 0}, {100, 0}}, 1, OneWayNone)

	g.Restrictor.Add(other, a, e, false) // "no" restriction: can't turn from `other` into `e` via a

	via, e1, e2 := g.SplitEdge(e, 1)
	if g.Node(via).Geom != (orb.Point{0, 100}) {
		t.Fatalf("split point = %v, want {0,100}", g.Node(via).Geom)
	}
	if g.Restrictor.May(other, a, e1) {
		t.Error("restriction on original edge should carry over to first half")
	}
	if g.Restrictor.May(other, a, e2) {
		t.Error("restriction on original edge should carry over to second half")
	}
	if !g.EdgeDeleted(e) {
		t.Error("original edge should be tombstoned after split")
	}
}

func TestEdgeRestrictedAtCoversToMembership(t *testing.T) {
	g := NewGraph(nil)
	a := g.AddNode(orb.Point{0, 0})
	via := g.AddNode(orb.Point{0, 100})
	b := g.AddNode(orb.Point{100, 100})
	c := g.AddNode(orb.Point{0, 200})

	from := g.AddEdge(a, via, orb.LineString{{0, 0}, {0, 100}}, 1, OneWayNone)
	to := g.AddEdge(via, b, orb.LineString{{0, 100}, {100, 100}}, 1, OneWayNone)
	other := g.AddEdge(via, c, orb.LineString{{0, 100}, {0, 200}}, 1, OneWayNone)

	g.Restrictor.Add(from, via, to, false) // "no" restriction: from -> to via `via` is forbidden

	if g.Restrictor.HasRestriction(to, via) {
		t.Error("HasRestriction(to, via) should be false: to never appears as a rule's from edge")
	}
	if !g.Restrictor.EdgeRestrictedAt(to, via) {
		t.Error("EdgeRestrictedAt(to, via) should be true: to is a rule's to candidate at via")
	}
	if g.Restrictor.EdgeRestrictedAt(other, via) {
		t.Error("EdgeRestrictedAt(other, via) should be false: other is unrelated to any rule at via")
	}
}

func TestLineInternRefcounting(t *testing.T) {
	li := NewLineIntern()
	l := TransitEdgeLine{ShortName: "S1", To: "A", From: "B"}
	p1 := li.Intern(l)
	p2 := li.Intern(l)
	if p1 != p2 {
		t.Error("equal lines should intern to the same pointer")
	}
	if li.Len() != 1 {
		t.Fatalf("Len = %d, want 1", li.Len())
	}
	li.Release(p1)
	if li.Len() != 1 {
		t.Fatalf("Len after one release = %d, want 1 (still referenced)", li.Len())
	}
	li.Release(p2)
	if li.Len() != 0 {
		t.Fatalf("Len after both releases = %d, want 0", li.Len())
	}
}

func TestLabelComponents(t *testing.T) {
	g := NewGraph(nil)
	a := g.AddNode(orb.Point{0, 0})
	b := g.AddNode(orb.Point{0, 10})
	c := g.AddNode(orb.Point{0, 20})
	d := g.AddNode(orb.Point{100, 0})
	e := g.AddNode(orb.Point{100, 10})

	g.AddEdge(a, b, buildLine(orb.Point{0, 0}, orb.Point{0, 10}), 3, OneWayNone)
	g.AddEdge(b, c, buildLine(orb.Point{0, 10}, orb.Point{0, 20}), 1, OneWayNone)
	g.AddEdge(d, e, buildLine(orb.Point{100, 0}, orb.Point{100, 10}), 5, OneWayNone)

	comps := g.LabelComponents()
	if len(comps) != 2 {
		t.Fatalf("got %d components, want 2", len(comps))
	}

	if g.Component(a) != g.Component(b) || g.Component(b) != g.Component(c) {
		t.Error("a, b, c should share a component")
	}
	if g.Component(a) == g.Component(d) {
		t.Error("a and d should be in different components")
	}

	var abc, de Component
	for _, c := range comps {
		if c.ID == g.Component(a) {
			abc = c
		}
		if c.ID == g.Component(d) {
			de = c
		}
	}
	if abc.MinEdgeLvl != 1 {
		t.Errorf("abc.MinEdgeLvl = %d, want 1", abc.MinEdgeLvl)
	}
	if de.MinEdgeLvl != 5 {
		t.Errorf("de.MinEdgeLvl = %d, want 5", de.MinEdgeLvl)
	}
}

func TestStationSimiThreshold(t *testing.T) {
	a := NewStationInfo("Central Station", "", true)
	b := NewStationInfo("Central Station", "", true)
	if a.Simi(b) != 1 {
		t.Error("identical names should be similar")
	}

	c := NewStationInfo("Totally Different Place", "", true)
	if a.Simi(c) != 0 {
		t.Error("dissimilar names should not be similar")
	}
}

func TestMergeStationGroups(t *testing.T) {
	g := NewGraph(nil)
	n1 := g.AddNode(orb.Point{0, 0})
	n2 := g.AddNode(orb.Point{1, 1})

	g1 := NewStationGroup()
	g1.AddNode(n1)
	g1.AddStop("stop1")
	s1 := NewStationInfo("A", "", true)
	s1.Group = g1
	g.SetStation(n1, s1)

	g2 := NewStationGroup()
	g2.AddNode(n2)
	g2.AddStop("stop2")
	s2 := NewStationInfo("A", "", true)
	s2.Group = g2
	g.SetStation(n2, s2)

	g.MergeStationGroups(g1, g2)

	if g.Station(n2).Group != g1 {
		t.Error("n2's station group should be repointed to g1")
	}
	if _, ok := g1.Nodes[n2]; !ok {
		t.Error("g1 should now contain n2")
	}
	if _, ok := g1.Stops["stop2"]; !ok {
		t.Error("g1 should now contain stop2")
	}
}
