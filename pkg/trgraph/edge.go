package trgraph

import "github.com/paulmach/orb"

// OneWay encodes whether an edge may be traversed in its stored direction,
// its reverse, or both (spec.md §3 "Edge", RoutingOptions oneWayPunishFac /
// oneWayEdgePunish). Every stored edge has a reverse partner created by
// the builder's "reverse-partner generation" pass; OneWay tells the
// router which of the pair is the restricted direction.
type OneWay uint8

const (
	// OneWayNone: no restriction, both directions are equally valid.
	OneWayNone OneWay = iota
	// OneWayForward: this edge record is the permitted direction.
	OneWayForward
	// OneWayBackward: this edge record is the forbidden direction; the
	// router may still traverse it at oneWayPunishFac/oneWayEdgePunish
	// cost rather than treating it as impassable, matching the original
	// system's soft (not hard) one-way penalty.
	OneWayBackward
)

// edge is the arena record for a single directed graph edge.
type edge struct {
	from, to NodeID
	geom     orb.LineString // web-mercator meters, from->to order
	length   float64        // meters, precomputed from geom
	level    uint8           // 0..7 road/rail class bucket (spec.md §6 level table)
	oneWay   OneWay
	lines    []*TransitEdgeLine
	deleted  bool
}

// EdgeView is a read-only snapshot of an edge's public fields.
type EdgeView struct {
	ID     EdgeID
	From   NodeID
	To     NodeID
	Geom   orb.LineString
	Length float64
	Level  uint8
	OneWay OneWay
	Lines  []*TransitEdgeLine
}

// HasLine reports whether the edge already carries a line matching l's
// (ShortName, To, From), used by the builder to avoid double-adding the
// same transit line to an edge traversed by multiple trips.
func (e *EdgeView) HasLine(l TransitEdgeLine) bool {
	for _, el := range e.Lines {
		if *el == l {
			return true
		}
	}
	return false
}
