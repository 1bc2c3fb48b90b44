package osmbuild

import (
	"testing"

	"github.com/paulmach/osm"

	"github.com/rs/zerolog"

	"github.com/azybler/shapematch/internal/ctxlog"
	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/normalizer"
	"github.com/azybler/shapematch/pkg/osmfilter"
	"github.com/azybler/shapematch/pkg/trgraph"
)

func minimalMotConfig(t *testing.T) *config.MotConfig {
	t.Helper()
	noop, err := normalizer.New(nil)
	if err != nil {
		t.Fatalf("normalizer.New(nil): %v", err)
	}
	return &config.MotConfig{
		WayFilter:         config.NewFilter(),
		StationFilter:     config.NewFilter(),
		BlockerFilter:     config.NewFilter(),
		OneWayFilter:      config.NewFilter(),
		RestrPosFilter:    config.NewFilter(),
		RestrNegFilter:    config.NewFilter(),
		RestrNoFilter:     config.NewFilter(),
		IDNormzer:         noop,
		StationNormzer:    noop,
		LineNormzer:       noop,
		TrackNormzer:      noop,
		MaxSnapDistances:  []float64{50, 100},
		MaxSnapLevel:      7,
		MaxAngleSnapReach: 90,
		GridCellSize:      2000,
		Routing:           config.DefaultRoutingOptions(),
	}
}

func straightLineParse() *osmfilter.ParseResult {
	nodes := map[osm.NodeID]osmfilter.NodeRaw{
		1: {ID: 1, Lon: 0, Lat: 0},
		2: {ID: 2, Lon: 0.001, Lat: 0},
		3: {ID: 3, Lon: 0.002, Lat: 0},
	}
	way := osmfilter.WayRaw{ID: 10, NodeIDs: []osm.NodeID{1, 2, 3}, Level: 2}
	return &osmfilter.ParseResult{Ways: []osmfilter.WayRaw{way}, Nodes: nodes}
}

func testLogger() zerolog.Logger {
	return ctxlog.NewTo(discardWriter{}, zerolog.Disabled)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestBuildConstructsConnectedGraph(t *testing.T) {
	pr := straightLineParse()
	mc := minimalMotConfig(t)
	res := Build(pr, mc, testLogger())

	if res.Graph.LiveNodeCount() == 0 {
		t.Fatal("expected a non-empty graph")
	}
	if len(res.Components) != 1 {
		t.Errorf("components = %d, want 1 (single straight way)", len(res.Components))
	}
}

func TestBuildCollapsesDegreeTwoCorridor(t *testing.T) {
	pr := straightLineParse()
	// Stations at both ends keep the orphan-edge rounds from eroding the
	// line before its middle node reaches corridor collapsing.
	pr.Nodes[1] = osmfilter.NodeRaw{ID: 1, Lon: 0, Lat: 0, IsStation: true, Name: "Alpha"}
	pr.Nodes[3] = osmfilter.NodeRaw{ID: 3, Lon: 0.002, Lat: 0, IsStation: true, Name: "Beta"}
	mc := minimalMotConfig(t)
	res := Build(pr, mc, testLogger())

	if res.Graph.LiveEdgeCount() == 0 {
		t.Fatal("expected at least one surviving edge after corridor collapse")
	}
	if n := res.Graph.LiveNodeCount(); n != 2 {
		t.Errorf("live nodes = %d, want 2 (middle node collapsed)", n)
	}
}

// TestBuildAddsReversePartnerForTwoWayEdge guards against a two-way
// street ending up traversable in only one direction: the router only
// ever expands g.OutEdges(via), so every live edge needs a reverse
// partner regardless of its own one-way-ness.
func TestBuildAddsReversePartnerForTwoWayEdge(t *testing.T) {
	pr := straightLineParse()
	// Stations at both ends keep the line's edges alive through orphan
	// pruning, so there are edges left to check.
	pr.Nodes[1] = osmfilter.NodeRaw{ID: 1, Lon: 0, Lat: 0, IsStation: true, Name: "Alpha"}
	pr.Nodes[3] = osmfilter.NodeRaw{ID: 3, Lon: 0.002, Lat: 0, IsStation: true, Name: "Beta"}
	mc := minimalMotConfig(t)
	res := Build(pr, mc, testLogger())
	g := res.Graph

	if g.LiveEdgeCount() == 0 {
		t.Fatal("expected surviving edges to check for reverse partners")
	}

	for _, id := range g.AllEdgeIDs() {
		ev := g.Edge(id)
		found := false
		for _, rid := range g.OutEdges(ev.To) {
			if g.Edge(rid).To == ev.From {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("edge %d (%d->%d) has no reverse partner", ev.ID, ev.From, ev.To)
		}
	}
}

func TestSnapOrphanStationAttachesToNearbyWay(t *testing.T) {
	pr := straightLineParse()
	pr.Nodes[99] = osmfilter.NodeRaw{ID: 99, Lon: 0.001, Lat: 0.00001, IsStation: true, Name: "Test Station"}
	mc := minimalMotConfig(t)

	res := Build(pr, mc, testLogger())

	foundStation := false
	for _, id := range res.Graph.AllNodeIDs() {
		if res.Graph.Node(id).Kind == trgraph.NodeKindStation {
			foundStation = true
		}
	}
	if !foundStation {
		t.Error("expected at least one station node after snapping")
	}
}
