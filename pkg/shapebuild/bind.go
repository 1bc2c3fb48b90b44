// Package shapebuild runs the per-trip map-matching loop (spec.md §4.C):
// binding GTFS stops to the station groups a MOT's trgraph.Graph produced,
// clustering trips that would route identically, dispatching each cluster
// to the router, and materializing the winning edge path back into a
// GTFS shape.
package shapebuild

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
	"github.com/tidwall/rtree"

	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/geoutil"
	"github.com/azybler/shapematch/pkg/gtfsmodel"
	"github.com/azybler/shapematch/pkg/trgraph"
)

// resolveStop follows a STATION_ENTRANCE's parent-station link until it
// reaches a non-entrance stop (spec.md §4.C "STATION_ENTRANCE parent
// substitution"): a trip that boards at an entrance should route through
// the station itself, since entrances rarely get their own OSM node.
func resolveStop(s *gtfsmodel.Stop) *gtfsmodel.Stop {
	for s.LocationType == gtfsmodel.StationEntranceType && s.ParentStation != nil {
		s = s.ParentStation
	}
	return s
}

// groupCentroid averages the mercator positions of every node in sg,
// used only to place sg in the bind-time spatial index; individual node
// positions (not the centroid) drive the actual NodeCandidate penalties
// later via StationGroup.WritePenalties.
func groupCentroid(g *trgraph.Graph, sg *trgraph.StationGroup) orb.Point {
	var sx, sy float64
	n := 0
	for id := range sg.Nodes {
		p := g.Node(id).Geom
		sx += p[0]
		sy += p[1]
		n++
	}
	if n == 0 {
		return orb.Point{}
	}
	return orb.Point{sx / float64(n), sy / float64(n)}
}

// groupName returns one representative station name for sg, used for
// name-similarity scoring against a GTFS stop's name. Every node folded
// into the same group already cleared StationInfo.Simi's 0.5 threshold
// against each other during snapping, so any member's name will do.
func groupName(g *trgraph.Graph, sg *trgraph.StationGroup) string {
	for id := range sg.Nodes {
		if info := g.Node(id).Station; info != nil {
			return info.Name
		}
	}
	return ""
}

type groupIndex struct {
	tree   *rtree.RTree
	byAddr map[*trgraph.StationGroup]struct{}
}

func buildGroupIndex(g *trgraph.Graph, groups map[string]*trgraph.StationGroup) *groupIndex {
	tr := &rtree.RTree{}
	seen := make(map[*trgraph.StationGroup]struct{}, len(groups))
	for _, sg := range groups {
		if _, ok := seen[sg]; ok {
			continue // several group keys can alias the same *StationGroup after merges
		}
		seen[sg] = struct{}{}
		c := groupCentroid(g, sg)
		tr.Insert([2]float64{c[0], c[1]}, [2]float64{c[0], c[1]}, sg)
	}
	return &groupIndex{tree: tr, byAddr: seen}
}

type groupCand struct {
	group *trgraph.StationGroup
	dist  float64
	simi  float64
}

func (ix *groupIndex) candidates(g *trgraph.Graph, p orb.Point, d float64) []groupCand {
	var out []groupCand
	ix.tree.Search(
		[2]float64{p[0] - d, p[1] - d},
		[2]float64{p[0] + d, p[1] + d},
		func(min, max [2]float64, data interface{}) bool {
			sg := data.(*trgraph.StationGroup)
			c := groupCentroid(g, sg)
			dist := geoutil.MercatorDist(p, c)
			if dist <= d {
				out = append(out, groupCand{group: sg, dist: dist})
			}
			return true
		},
	)
	sort.Slice(out, func(i, j int) bool { return out[i].dist < out[j].dist })
	return out
}

// BindStops matches every stop of feed to the trgraph.StationGroup its
// name and position snapped to during graph construction, walking mc's
// snap-distance ladder the same way station snapping itself does
// (buildGroupIndex/candidates mirrors pkg/osmbuild's edgeIndex). A
// name-similar group within the ladder's current radius always wins over
// a closer but name-dissimilar one, since two distinct stations are
// often only meters apart at a shared interchange; only once no ladder
// rung turns up a name match does the nearest group of any name win.
//
// A stop that matches no group at all (StopSnapFailed, spec.md §7) is
// never dropped: synthesizeGroup gives it its own node and singleton
// group so routing always has a target, even for a stop that lies
// outside the OSM extract's coverage entirely.
func BindStops(g *trgraph.Graph, groups map[string]*trgraph.StationGroup, feed *gtfsmodel.Feed, mc *config.MotConfig, log zerolog.Logger) map[string]*trgraph.StationGroup {
	ix := buildGroupIndex(g, groups)
	bound := make(map[string]*trgraph.StationGroup, len(feed.Stops))

	for stopID, stop := range feed.Stops {
		s := resolveStop(stop)
		p := geoutil.ToMercator(orb.Point{s.Lon, s.Lat})
		normName := mc.StationNormzer.Norm(s.Name)

		sg := bestGroup(g, ix, mc, p, normName)
		if sg == nil {
			sg = synthesizeGroup(g, groups, stopID, s, p, log)
		}
		sg.AddStop(stopID)
		bound[stopID] = sg
	}
	return bound
}

// synthesizeGroup recovers from a stop that no snap distance in the
// ladder could place (spec.md §7 StopSnapFailed): it adds a brand-new
// plain node at the stop's own projected position, gives it a trivial
// self-loop edge (mirroring osmbuild's addSelfEdgesForIsolatedStations,
// since this runs after that pass already finished), wraps it in a fresh
// singleton StationGroup, and registers the group under a key that can't
// collide with any OSM-derived one so later lookups (group counts,
// logging) see it too.
func synthesizeGroup(g *trgraph.Graph, groups map[string]*trgraph.StationGroup, stopID string, stop *gtfsmodel.Stop, p orb.Point, log zerolog.Logger) *trgraph.StationGroup {
	log.Warn().Str("stop_id", stopID).Str("stop_name", stop.Name).Msg("StopSnapFailed: no station group within snap distance, creating synthetic node")

	n := g.AddNode(p)
	g.AddEdge(n, n, orb.LineString{p, p}, 0, trgraph.OneWayNone)

	info := trgraph.NewStationInfo(stop.Name, "", false)
	g.SetStation(n, info)

	sg := trgraph.NewStationGroup()
	sg.AddNode(n)
	info.Group = sg
	groups["synthetic:"+stopID] = sg
	return sg
}

func bestGroup(g *trgraph.Graph, ix *groupIndex, mc *config.MotConfig, p orb.Point, normName string) *trgraph.StationGroup {
	var nearestAny *trgraph.StationGroup
	nearestAnyDist := -1.0

	for _, d := range mc.MaxSnapDistances {
		cands := ix.candidates(g, p, d)
		for _, c := range cands {
			if nearestAnyDist < 0 || c.dist < nearestAnyDist {
				nearestAny, nearestAnyDist = c.group, c.dist
			}
			if normName != "" && trgraph.SimiNames(normName, nil, groupName(g, c.group), nil) {
				return c.group
			}
		}
	}
	return nearestAny
}
