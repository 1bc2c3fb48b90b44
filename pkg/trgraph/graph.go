package trgraph

import (
	"github.com/azybler/shapematch/pkg/geoutil"
	"github.com/paulmach/orb"
)

// Graph is the mutable transit graph (spec.md §3 "Graph"). Nodes and
// edges are stored in flat arenas and addressed by NodeID/EdgeID;
// deletion tombstones a record rather than compacting the arena, so
// every NodeID/EdgeID handed out earlier (station groups, the
// restrictor, in-flight routing results) stays valid for the graph's
// whole lifetime. The arena is never compacted.
type Graph struct {
	Ctx        *GraphContext
	Restrictor *Restrictor

	nodes []node
	edges []edge

	liveNodes int
	liveEdges int
}

// NewGraph creates an empty graph sharing ctx (and therefore its line
// intern table) with any sibling graphs built in the same run.
func NewGraph(ctx *GraphContext) *Graph {
	if ctx == nil {
		ctx = NewGraphContext()
	}
	return &Graph{
		Ctx:        ctx,
		Restrictor: NewRestrictor(),
	}
}

// AddNode appends a new plain node at geom (web-mercator meters) and
// returns its id.
func (g *Graph) AddNode(geom orb.Point) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, node{geom: geom, kind: NodeKindPlain})
	g.liveNodes++
	return id
}

// AddEdge appends a new edge from->to with the given geometry (which
// should start at from's point and end at to's point) and returns its id.
// Length is computed from geom via the mercator distance along the line.
func (g *Graph) AddEdge(from, to NodeID, geom orb.LineString, level uint8, oneWay OneWay) EdgeID {
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, edge{
		from:   from,
		to:     to,
		geom:   geom,
		length: lineLength(geom),
		level:  level,
		oneWay: oneWay,
	})
	g.liveEdges++
	g.nodes[from].out = append(g.nodes[from].out, id)
	g.nodes[to].in = append(g.nodes[to].in, id)
	return id
}

func lineLength(ls orb.LineString) float64 {
	total := 0.0
	for i := 1; i < len(ls); i++ {
		total += geoutil.MercatorDist(ls[i-1], ls[i])
	}
	return total
}

// NumNodes returns the arena size including tombstoned nodes; iterate
// with AllNodeIDs to skip deleted ones.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the arena size including tombstoned edges.
func (g *Graph) NumEdges() int { return len(g.edges) }

// LiveNodeCount returns the number of non-deleted nodes.
func (g *Graph) LiveNodeCount() int { return g.liveNodes }

// LiveEdgeCount returns the number of non-deleted edges.
func (g *Graph) LiveEdgeCount() int { return g.liveEdges }

// NodeDeleted reports whether id has been tombstoned.
func (g *Graph) NodeDeleted(id NodeID) bool { return g.nodes[id].deleted }

// EdgeDeleted reports whether id has been tombstoned.
func (g *Graph) EdgeDeleted(id EdgeID) bool { return g.edges[id].deleted }

// Node returns a read-only view of node id.
func (g *Graph) Node(id NodeID) NodeView {
	n := &g.nodes[id]
	return NodeView{ID: id, Geom: n.geom, Kind: n.kind, Station: n.station, Component: n.component}
}

// Edge returns a read-only view of edge id.
func (g *Graph) Edge(id EdgeID) EdgeView {
	e := &g.edges[id]
	return EdgeView{ID: id, From: e.from, To: e.to, Geom: e.geom, Length: e.length, Level: e.level, OneWay: e.oneWay, Lines: e.lines}
}

// OutEdges returns the ids of edges starting at id, live ones only.
func (g *Graph) OutEdges(id NodeID) []EdgeID {
	return g.liveSubset(g.nodes[id].out)
}

// InEdges returns the ids of edges ending at id, live ones only.
func (g *Graph) InEdges(id NodeID) []EdgeID {
	return g.liveSubset(g.nodes[id].in)
}

func (g *Graph) liveSubset(ids []EdgeID) []EdgeID {
	out := make([]EdgeID, 0, len(ids))
	for _, id := range ids {
		if !g.edges[id].deleted {
			out = append(out, id)
		}
	}
	return out
}

// OutDegree returns the live out-degree of a node.
func (g *Graph) OutDegree(id NodeID) int { return len(g.OutEdges(id)) }

// InDegree returns the live in-degree of a node.
func (g *Graph) InDegree(id NodeID) int { return len(g.InEdges(id)) }

// Degree returns OutDegree+InDegree.
func (g *Graph) Degree(id NodeID) int { return g.OutDegree(id) + g.InDegree(id) }

// SetNodeKind sets a node's kind (e.g. promoting a plain node to a
// station once it has been snapped to a GTFS stop).
func (g *Graph) SetNodeKind(id NodeID, kind NodeKind) { g.nodes[id].kind = kind }

// SetStation attaches station info to a node and sets its kind to
// NodeKindStation.
func (g *Graph) SetStation(id NodeID, info *StationInfo) {
	g.nodes[id].station = info
	g.nodes[id].kind = NodeKindStation
}

// Station returns the station info for id, or nil if it isn't a station node.
func (g *Graph) Station(id NodeID) *StationInfo { return g.nodes[id].station }

// SetComponent labels a node's weakly-connected component.
func (g *Graph) SetComponent(id NodeID, c ComponentID) { g.nodes[id].component = c }

// Component returns a node's component label.
func (g *Graph) Component(id NodeID) ComponentID { return g.nodes[id].component }

// DeleteNode tombstones a node. It does not remove incident edges; callers
// must delete those first (the builder's "orphan node/edge deletion" pass
// always deletes edges before the nodes they dangled from).
func (g *Graph) DeleteNode(id NodeID) {
	if g.nodes[id].deleted {
		return
	}
	g.nodes[id].deleted = true
	g.liveNodes--
}

// DeleteEdge tombstones an edge and releases its interned lines.
func (g *Graph) DeleteEdge(id EdgeID) {
	e := &g.edges[id]
	if e.deleted {
		return
	}
	for _, l := range e.lines {
		g.Ctx.Lines.Release(l)
	}
	e.deleted = true
	g.liveEdges--
}

// AddLine interns (ShortName,To,From) and attaches it to edge id, unless
// an equal line is already attached.
func (g *Graph) AddLine(id EdgeID, l TransitEdgeLine) {
	e := &g.edges[id]
	for _, el := range e.lines {
		if *el == l {
			return
		}
	}
	e.lines = append(e.lines, g.Ctx.Lines.Intern(l))
}

// SetGeom replaces an edge's geometry and recomputes its length, used by
// the Douglas-Peucker simplification pass and by corridor collapsing
// (which concatenates the geometries of the edges it merges).
func (g *Graph) SetGeom(id EdgeID, geom orb.LineString) {
	e := &g.edges[id]
	e.geom = geom
	e.length = lineLength(geom)
}

// SplitEdge replaces edge id with two edges from->via and via->to, where
// via is a new node at splitGeom[splitIdx]. The original edge's geometry
// is divided at splitIdx (inclusive on both halves) and its lines are
// copied to both halves. The restrictor is updated via ReplaceEdge so
// existing turn restriction rules referring to id now refer to both
// halves. Returns the new via node and the two new edge ids.
func (g *Graph) SplitEdge(id EdgeID, splitIdx int) (via NodeID, e1, e2 EdgeID) {
	e := g.edges[id]
	via = g.AddNode(e.geom[splitIdx])
	g.nodes[via].component = NoComponent // relabeled by the component-labeling pass

	e1 = g.AddEdge(e.from, via, e.geom[:splitIdx+1], e.level, e.oneWay)
	e2 = g.AddEdge(via, e.to, e.geom[splitIdx:], e.level, e.oneWay)
	for _, l := range e.lines {
		g.AddLine(e1, *l)
		g.AddLine(e2, *l)
	}
	g.DeleteEdge(id)
	g.Restrictor.ReplaceEdge(id, e1, e2)
	return via, e1, e2
}

// DuplicateEdge creates a new edge with the same endpoints, geometry,
// level and one-way flag as id (but no lines, left for the caller to
// add), and mirrors any turn restrictions referencing id onto it.
func (g *Graph) DuplicateEdge(id EdgeID) EdgeID {
	e := g.edges[id]
	dup := g.AddEdge(e.from, e.to, e.geom, e.level, e.oneWay)
	g.Restrictor.DuplicateEdge(id, dup)
	return dup
}

// MergeStationGroups merges src into dst (absorbing src's nodes and
// stops) and repoints every absorbed node's StationInfo.Group to dst, so
// that dst becomes the sole surviving group. Used by station snapping's
// equivalence-reach pass when two previously separate stations turn out
// to be name-similar and are merged into one group.
func (g *Graph) MergeStationGroups(dst, src *StationGroup) {
	if dst == src {
		return
	}
	for n := range src.Nodes {
		if st := g.nodes[n].station; st != nil {
			st.Group = dst
		}
	}
	dst.Merge(src)
}

// AllNodeIDs returns the ids of all live nodes.
func (g *Graph) AllNodeIDs() []NodeID {
	out := make([]NodeID, 0, g.liveNodes)
	for i := range g.nodes {
		if !g.nodes[i].deleted {
			out = append(out, NodeID(i))
		}
	}
	return out
}

// AllEdgeIDs returns the ids of all live edges.
func (g *Graph) AllEdgeIDs() []EdgeID {
	out := make([]EdgeID, 0, g.liveEdges)
	for i := range g.edges {
		if !g.edges[i].deleted {
			out = append(out, EdgeID(i))
		}
	}
	return out
}
