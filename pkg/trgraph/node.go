package trgraph

import "github.com/paulmach/orb"

// node is the arena record for a single graph vertex. Unexported: callers
// go through Graph's accessor methods so deleted/tombstoned records never
// leak out as if they were live.
type node struct {
	geom      orb.Point // web-mercator meters
	kind      NodeKind
	station   *StationInfo
	component ComponentID
	deleted   bool
	out       []EdgeID
	in        []EdgeID
}

// NodeView is a read-only snapshot of a node's public fields, returned by
// Graph.Node so callers can't mutate arena internals without going
// through the mutation methods that keep out/in adjacency consistent.
type NodeView struct {
	ID        NodeID
	Geom      orb.Point
	Kind      NodeKind
	Station   *StationInfo
	Component ComponentID
}
