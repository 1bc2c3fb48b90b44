// Package osmbuild turns a filtered OSM extract into a routable transit
// graph: one trgraph.Graph per MOT, built by the twelve ordered passes of
// spec.md §4.B (gap-fixing, geometry writing, station snapping, orphan
// pruning, corridor collapsing, component labeling, simplification,
// reverse-partner generation, self-edges for isolated stations).
package osmbuild

import (
	"github.com/paulmach/osm"
	"github.com/rs/zerolog"

	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/geoutil"
	"github.com/azybler/shapematch/pkg/osmfilter"
	"github.com/azybler/shapematch/pkg/trgraph"
)

// Result is the fully built graph plus the bookkeeping pkg/shapebuild
// needs on top of it.
type Result struct {
	Graph      *trgraph.Graph
	Components []trgraph.Component
	// Groups maps an OSM station name to the group of station nodes
	// collected under it after snapping. shapebuild.BindStops adds a
	// group under "synthetic:<stop id>" for each stop it synthesizes.
	Groups map[string]*trgraph.StationGroup
}

// Build runs all twelve passes over pr using mc's configuration and
// returns the finished graph. Each pass is individually idempotent; Build
// itself is not meant to be called twice on the same *trgraph.Graph, since
// later passes assume earlier ones have already run exactly once.
func Build(pr *osmfilter.ParseResult, mc *config.MotConfig, log zerolog.Logger) *Result {
	ctx := trgraph.NewGraphContext()
	g := trgraph.NewGraph(ctx)

	nodeByOSM, wayEdges := constructGraph(g, pr, mc)
	log.Debug().Int("nodes", g.LiveNodeCount()).Int("edges", g.LiveEdgeCount()).Msg("graph constructed from filtered OSM")

	applyRestrictions(g, pr, nodeByOSM, wayEdges)

	fixGaps(g, mc.GridCellSize)
	log.Debug().Msg("fix-gaps pass complete")

	groups := snapStations(g, pr, mc, nodeByOSM)
	log.Debug().Int("groups", len(groups)).Msg("station snapping complete")

	deleteOrphanNodes(g)
	deleteOrphanEdges(g, mc, 3)
	collapseCorridors(g)
	deleteOrphanEdges(g, mc, 1)
	log.Debug().Msg("orphan pruning and corridor collapsing complete")

	comps := g.LabelComponents()
	log.Debug().Int("components", len(comps)).Msg("component labeling complete")

	simplifyGeometries(g)
	addReversePartners(g)
	addSelfEdgesForIsolatedStations(g)

	return &Result{Graph: g, Components: comps, Groups: groups}
}

// constructGraph performs two of the twelve passes in one walk:
// track/level labeling (each edge's level comes straight from the way's
// WayRaw.Level, computed by pkg/osmfilter against the MOT's level table)
// and geometry writing (each consecutive OSM node pair in a way becomes
// one graph edge carrying its mercator-projected sub-polyline).
func constructGraph(g *trgraph.Graph, pr *osmfilter.ParseResult, mc *config.MotConfig) (map[osm.NodeID]trgraph.NodeID, map[osm.WayID][]trgraph.EdgeID) {
	nodeByOSM := make(map[osm.NodeID]trgraph.NodeID, len(pr.Nodes))
	wayEdges := make(map[osm.WayID][]trgraph.EdgeID, len(pr.Ways))

	nodeAt := func(id osm.NodeID) trgraph.NodeID {
		if nid, ok := nodeByOSM[id]; ok {
			return nid
		}
		raw := pr.Nodes[id]
		p := geoutil.ToMercator(orbPoint(raw.Lon, raw.Lat))
		nid := g.AddNode(p)
		nodeByOSM[id] = nid
		if raw.IsStation {
			info := trgraph.NewStationInfo(mc.StationNormzer.Norm(raw.Name), mc.TrackNormzer.Norm(raw.Track), true)
			g.SetStation(nid, info)
		} else if raw.IsBlocker {
			g.SetNodeKind(nid, trgraph.NodeKindBlocker)
		}
		return nid
	}

	for _, w := range pr.Ways {
		for i := 0; i+1 < len(w.NodeIDs); i++ {
			aID, bID := w.NodeIDs[i], w.NodeIDs[i+1]
			a, aok := pr.Nodes[aID]
			b, bok := pr.Nodes[bID]
			if !aok || !bok {
				continue
			}
			na, nb := nodeAt(aID), nodeAt(bID)

			line := rawLineString(a, b)
			eid := g.AddEdge(na, nb, line, w.Level, wayOneWay(w.OneWay))
			wayEdges[w.ID] = append(wayEdges[w.ID], eid)
			if w.IsStation {
				g.SetNodeKind(na, maxKind(g.Node(na).Kind, trgraph.NodeKindStation))
				g.SetNodeKind(nb, maxKind(g.Node(nb).Kind, trgraph.NodeKindStation))
			}
		}
	}
	return nodeByOSM, wayEdges
}

func wayOneWay(dir int8) trgraph.OneWay {
	switch {
	case dir > 0:
		return trgraph.OneWayForward
	case dir < 0:
		return trgraph.OneWayBackward
	default:
		return trgraph.OneWayNone
	}
}

// maxKind keeps a node's richer kind when two ways disagree about whether
// an endpoint is a station (a plain way touching an already-promoted
// station node must not demote it back to plain).
func maxKind(cur, want trgraph.NodeKind) trgraph.NodeKind {
	if cur == trgraph.NodeKindStation {
		return cur
	}
	return want
}
