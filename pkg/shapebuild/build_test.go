package shapebuild

import (
	"context"
	"testing"

	"github.com/paulmach/osm"
	"github.com/rs/zerolog"

	"github.com/azybler/shapematch/internal/ctxlog"
	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/gtfsmodel"
	"github.com/azybler/shapematch/pkg/normalizer"
	"github.com/azybler/shapematch/pkg/osmbuild"
	"github.com/azybler/shapematch/pkg/osmfilter"
	"github.com/azybler/shapematch/pkg/router"
)

func testMotConfig(t *testing.T) *config.MotConfig {
	t.Helper()
	noop, err := normalizer.New(nil)
	if err != nil {
		t.Fatalf("normalizer.New(nil): %v", err)
	}
	return &config.MotConfig{
		Name:              "rail",
		Mots:              map[int]bool{2: true},
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

func testLogger() zerolog.Logger {
	return ctxlog.NewTo(discardWriter{}, zerolog.Disabled)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// twoStationParse builds a straight three-node way with a station at
// each end, enough for BuildShapes to have something to route between.
func twoStationParse() *osmfilter.ParseResult {
	nodes := map[osm.NodeID]osmfilter.NodeRaw{
		1: {ID: 1, Lon: 0, Lat: 0, IsStation: true, Name: "Alpha"},
		2: {ID: 2, Lon: 0.001, Lat: 0},
		3: {ID: 3, Lon: 0.002, Lat: 0, IsStation: true, Name: "Beta"},
	}
	way := osmfilter.WayRaw{ID: 10, NodeIDs: []osm.NodeID{1, 2, 3}, Level: 2}
	return &osmfilter.ParseResult{Ways: []osmfilter.WayRaw{way}, Nodes: nodes}
}

func testFeed(t *testing.T) *gtfsmodel.Feed {
	t.Helper()
	stopA := &gtfsmodel.Stop{ID: "A", Name: "Alpha", Lat: 0, Lon: 0}
	stopB := &gtfsmodel.Stop{ID: "B", Name: "Beta", Lat: 0, Lon: 0.002}
	route := &gtfsmodel.Route{ID: "R1", Type: 2, ShortName: "R1"}
	trip := &gtfsmodel.Trip{
		ID:    "T1",
		Route: route,
		StopTimes: []gtfsmodel.StopTime{
			{Stop: stopA, Sequence: 0},
			{Stop: stopB, Sequence: 1},
		},
	}
	return &gtfsmodel.Feed{
		Stops:  map[string]*gtfsmodel.Stop{"A": stopA, "B": stopB},
		Routes: map[string]*gtfsmodel.Route{"R1": route},
		Trips:  map[string]*gtfsmodel.Trip{"T1": trip},
		Shapes: map[string]*gtfsmodel.Shape{},
	}
}

func TestBuildShapesMatchesSimpleTrip(t *testing.T) {
	mc := testMotConfig(t)
	res := osmbuild.Build(twoStationParse(), mc, testLogger())
	feed := testFeed(t)
	cc := &config.CommandConfig{Method: config.MethodGlobal, NumWorkers: 2, UseCaching: true}

	stats, err := BuildShapes(context.Background(), feed, res, mc, cc, testLogger())
	if err != nil {
		t.Fatalf("BuildShapes: %v", err)
	}
	if stats.Matched != 1 {
		t.Fatalf("stats.Matched = %d, want 1 (stats=%+v)", stats.Matched, stats)
	}

	trip := feed.Trips["T1"]
	if trip.Shape == nil {
		t.Fatal("expected trip T1 to have a shape assigned")
	}
	if len(trip.Shape.Points) < 2 {
		t.Fatalf("expected at least two shape points, got %d", len(trip.Shape.Points))
	}
	last := trip.Shape.Points[len(trip.Shape.Points)-1]
	if last.DistTraveled <= 0 {
		t.Errorf("expected positive cumulative distance at shape end, got %f", last.DistTraveled)
	}
}

func TestBuildShapesSkipsTripsOutsideMot(t *testing.T) {
	mc := testMotConfig(t)
	mc.Mots = map[int]bool{3: true} // trip's route type is 2, not 3
	res := osmbuild.Build(twoStationParse(), mc, testLogger())
	feed := testFeed(t)
	cc := &config.CommandConfig{Method: config.MethodGlobal, NumWorkers: 1, UseCaching: false}

	stats, err := BuildShapes(context.Background(), feed, res, mc, cc, testLogger())
	if err != nil {
		t.Fatalf("BuildShapes: %v", err)
	}
	if stats.Trips != 0 {
		t.Errorf("expected no trips selected, got %d", stats.Trips)
	}
	if feed.Trips["T1"].Shape != nil {
		t.Error("expected trip T1 to remain unshaped")
	}
}

func TestClusterTripsGroupsIdenticalSequences(t *testing.T) {
	mc := testMotConfig(t)
	feed := testFeed(t)
	second := &gtfsmodel.Trip{
		ID:        "T2",
		Route:     feed.Routes["R1"],
		StopTimes: feed.Trips["T1"].StopTimes,
	}
	feed.Trips["T2"] = second

	res := osmbuild.Build(twoStationParse(), mc, testLogger())
	bound := BindStops(res.Graph, res.Groups, feed, mc, testLogger())

	clusters := clusterTrips([]*gtfsmodel.Trip{feed.Trips["T1"], second}, bound, func(t *gtfsmodel.Trip) router.RoutingAttributes {
		return deriveAttrs(t, mc)
	})
	if len(clusters) != 1 {
		t.Fatalf("expected identical trips to cluster together, got %d clusters", len(clusters))
	}
	if len(clusters[0].Trips) != 2 {
		t.Errorf("expected 2 trips in the cluster, got %d", len(clusters[0].Trips))
	}
}

// TestBindStopsSynthesizesGroupForUnsnappableStop covers spec.md §7's
// StopSnapFailed recovery: a stop far outside every snap-distance rung
// must still get a group (a synthetic singleton), never be dropped.
func TestBindStopsSynthesizesGroupForUnsnappableStop(t *testing.T) {
	mc := testMotConfig(t)
	res := osmbuild.Build(twoStationParse(), mc, testLogger())

	far := &gtfsmodel.Stop{ID: "FAR", Name: "Nowhere", Lat: 10, Lon: 10}
	feed := &gtfsmodel.Feed{
		Stops: map[string]*gtfsmodel.Stop{"FAR": far},
		Trips: map[string]*gtfsmodel.Trip{},
	}

	groupsBefore := len(res.Groups)
	bound := BindStops(res.Graph, res.Groups, feed, mc, testLogger())

	sg, ok := bound["FAR"]
	if !ok || sg == nil {
		t.Fatal("expected a synthesized group for a stop outside every snap distance")
	}
	if len(sg.Nodes) != 1 {
		t.Errorf("expected a singleton group, got %d nodes", len(sg.Nodes))
	}
	if _, ok := sg.Stops["FAR"]; !ok {
		t.Error("expected the synthesized group to carry the stop id")
	}
	if len(res.Groups) != groupsBefore+1 {
		t.Errorf("expected the synthesized group to be registered, groups went from %d to %d", groupsBefore, len(res.Groups))
	}
}
