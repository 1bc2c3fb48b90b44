// Package trgraph is the mutable transit graph data model shared by the
// OSM builder, the router and the shape builder (spec.md §3 "Graph
// (transit graph)"). Nodes and edges live in flat arenas addressed by
// uint32 index rather than pointers, so the graph survives being built
// up incrementally (splits, merges, deletions) without invalidating
// references held elsewhere (station groups, the restrictor, cached
// routing results).
package trgraph

// NodeID indexes into a Graph's node arena.
type NodeID uint32

// EdgeID indexes into a Graph's edge arena.
type EdgeID uint32

// ComponentID identifies a weakly-connected component of the graph.
type ComponentID uint32

// NoNode is the all-bits-set sentinel for "no node".
const NoNode NodeID = ^NodeID(0)

// NoEdge is the all-bits-set sentinel for "no edge".
const NoEdge EdgeID = ^EdgeID(0)

// NoComponent is the sentinel for an unlabeled component.
const NoComponent ComponentID = ^ComponentID(0)

// NodeKind distinguishes the three roles a node can play (spec.md §3,
// replacing the original's "is this node a station" sentinel pointer
// with an explicit tagged union).
type NodeKind uint8

const (
	// NodeKindPlain is an ordinary network node: a geometry vertex, an
	// intersection, or a degree-2 link in a corridor.
	NodeKindPlain NodeKind = iota
	// NodeKindStation is a node that carries a StationInfo: a snapped
	// GTFS stop or a group of merged stops.
	NodeKindStation
	// NodeKindBlocker is a node that blocks equivalence-reach/blocker-reach
	// traversal during station snapping (e.g. a level crossing or a node
	// tagged as a barrier).
	NodeKindBlocker
)

func (k NodeKind) String() string {
	switch k {
	case NodeKindStation:
		return "station"
	case NodeKindBlocker:
		return "blocker"
	default:
		return "plain"
	}
}
