package osmfilter

import (
	"context"
	"io"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"

	"github.com/azybler/shapematch/pkg/config"
)

// WayRaw is a kept way, reduced to what the graph builder needs.
type WayRaw struct {
	ID       osm.WayID
	NodeIDs  []osm.NodeID
	Level    uint8
	OneWay   int8 // 0 none, 1 forward-only, -1 backward-only
	IsStation bool
}

// NodeRaw is a referenced node's coordinates and (if present) station/
// blocker tags.
type NodeRaw struct {
	ID        osm.NodeID
	Lat, Lon  float64
	IsStation bool
	IsBlocker bool
	Name      string
	Track     string
}

// RestrictionRaw is one extracted turn-restriction relation (spec.md
// §4.A "restriction-relation extraction with ignore if >1 from/to member").
type RestrictionRaw struct {
	From     osm.WayID
	To       osm.WayID
	Via      osm.NodeID
	Positive bool
}

// ParseResult is the output of Parse: everything the graph builder
// (pkg/osmbuild) needs, with filtering already applied.
type ParseResult struct {
	Ways         []WayRaw
	Nodes        map[osm.NodeID]NodeRaw
	Restrictions []RestrictionRaw
}

// Parse runs the three-pass read (nodes&relations / ways / nodes-detailed)
// over rs using mc's filters, following spec.md §4.A exactly. procs
// controls osmpbf decode parallelism; it's ignored by the XML path.
func Parse(ctx context.Context, rs io.ReadSeeker, isPBF bool, procs int, mc *config.MotConfig) (*ParseResult, error) {
	open := func(opts scannerOpts) (Scanner, error) {
		if isPBF {
			return OpenPBF(ctx, rs, procs, opts)
		}
		return OpenXML(ctx, rs)
	}

	// Pass 1: nodes & relations. Collect station/blocker node candidates
	// (kept regardless of way reference — orphan-station retention for
	// the snap pass) and restriction relations.
	nodes := make(map[osm.NodeID]NodeRaw)
	var restrictions []RestrictionRaw

	s1, err := open(scannerOpts{SkipWays: true})
	if err != nil {
		return nil, errors.Wrap(err, "opening pass 1 scanner")
	}
	for s1.Scan() {
		switch o := s1.Object().(type) {
		case *osm.Node:
			tags := o.Tags.Map()
			isStation := mc.StationFilter.Keeps(tags)
			isBlocker := mc.BlockerFilter.Keeps(tags)
			if isStation || isBlocker {
				nodes[o.ID] = NodeRaw{
					ID:        o.ID,
					Lat:       o.Lat,
					Lon:       o.Lon,
					IsStation: isStation,
					IsBlocker: isBlocker,
					Name:      mc.StationNormzer.Norm(tags["name"]),
					Track:     mc.TrackNormzer.Norm(firstNonEmpty(tags["platform"], tags["ref"])),
				}
			}
		case *osm.Relation:
			if r, ok := extractRestriction(o, mc); ok {
				restrictions = append(restrictions, r)
			}
		}
	}
	if err := s1.Err(); err != nil {
		s1.Close()
		return nil, errors.Wrap(err, "pass 1 (nodes & relations)")
	}
	s1.Close()

	// Pass 2: ways. Keep ways matching mc.WayFilter, assign a level via
	// mc.LevelTable, record oneway direction, and mark station ways.
	var ways []WayRaw
	referenced := make(map[osm.NodeID]struct{})

	s2, err := open(scannerOpts{SkipNodes: true, SkipRelations: true})
	if err != nil {
		return nil, errors.Wrap(err, "opening pass 2 scanner")
	}
	for s2.Scan() {
		w, ok := s2.Object().(*osm.Way)
		if !ok {
			continue
		}
		tags := w.Tags.Map()
		if !mc.WayFilter.Keeps(tags) {
			continue
		}
		if len(w.Nodes) < 2 {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referenced[wn.ID] = struct{}{}
		}

		ways = append(ways, WayRaw{
			ID:        w.ID,
			NodeIDs:   nodeIDs,
			Level:     levelFor(tags, mc.LevelTable),
			OneWay:    oneWayFor(tags, mc.OneWayFilter),
			IsStation: mc.StationFilter.Keeps(tags),
		})
	}
	if err := s2.Err(); err != nil {
		s2.Close()
		return nil, errors.Wrap(err, "pass 2 (ways)")
	}
	s2.Close()

	// Pass 3: nodes-detailed. Fill in coordinates for every node
	// referenced by a kept way that pass 1 didn't already load (the
	// common case: most geometry vertices are neither stations nor
	// blockers).
	missing := make(map[osm.NodeID]struct{}, len(referenced))
	for id := range referenced {
		if _, ok := nodes[id]; !ok {
			missing[id] = struct{}{}
		}
	}

	if len(missing) > 0 {
		s3, err := open(scannerOpts{SkipWays: true, SkipRelations: true})
		if err != nil {
			return nil, errors.Wrap(err, "opening pass 3 scanner")
		}
		for s3.Scan() {
			n, ok := s3.Object().(*osm.Node)
			if !ok {
				continue
			}
			if _, want := missing[n.ID]; !want {
				continue
			}
			nodes[n.ID] = NodeRaw{ID: n.ID, Lat: n.Lat, Lon: n.Lon}
			delete(missing, n.ID)
		}
		if err := s3.Err(); err != nil {
			s3.Close()
			return nil, errors.Wrap(err, "pass 3 (nodes-detailed)")
		}
		s3.Close()
	}

	return &ParseResult{Ways: ways, Nodes: nodes, Restrictions: restrictions}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func levelFor(tags map[string]string, table []config.LevelRule) uint8 {
	for _, rule := range table {
		if rule.Filter.Keeps(tags) {
			return rule.Level
		}
	}
	return 7
}

func oneWayFor(tags map[string]string, f *config.Filter) int8 {
	v := tags["oneway"]
	switch v {
	case "yes", "true", "1":
		return 1
	case "-1", "reverse":
		return -1
	}
	if f.Keeps(tags) {
		return 1
	}
	return 0
}

// extractRestriction converts a restriction relation into a RestrictionRaw,
// ignoring relations with more than one "from" or "to" member (spec.md
// §4.A "ignore if >1 from/to member").
func extractRestriction(r *osm.Relation, mc *config.MotConfig) (RestrictionRaw, bool) {
	tags := r.Tags.Map()
	if tags["type"] != "restriction" {
		return RestrictionRaw{}, false
	}

	var froms, tos []osm.WayID
	var via osm.NodeID
	haveVia := false

	for _, m := range r.Members {
		switch m.Role {
		case "from":
			if m.Type == osm.TypeWay {
				froms = append(froms, osm.WayID(m.Ref))
			}
		case "to":
			if m.Type == osm.TypeWay {
				tos = append(tos, osm.WayID(m.Ref))
			}
		case "via":
			if m.Type == osm.TypeNode {
				via = osm.NodeID(m.Ref)
				haveVia = true
			}
		}
	}

	if len(froms) != 1 || len(tos) != 1 || !haveVia {
		return RestrictionRaw{}, false
	}

	restriction := tags["restriction"]
	positive := false
	switch {
	case mc.RestrPosFilter.Keeps(tags) || hasPrefix(restriction, "only_"):
		positive = true
	case mc.RestrNegFilter.Keeps(tags) || hasPrefix(restriction, "no_"):
		positive = false
	case mc.RestrNoFilter.Keeps(tags):
		return RestrictionRaw{}, false
	default:
		return RestrictionRaw{}, false
	}

	return RestrictionRaw{From: froms[0], To: tos[0], Via: via, Positive: positive}, true
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
