// Package config holds the per-MOT (mode of transport) configuration
// that drives both the graph builder and the router (spec.md §6 "MOT
// configuration file"), plus the small command-line config layer for
// cmd/shapematch.
package config

// RoutingOptions is the exact field-for-field port of the original
// system's router::RoutingOptions (router/Misc.h), recovered from
// original_source because spec.md deliberately leaves the edge-cost
// weighting abstract. Defaults below are the original's, unchanged,
// except LevelPunish, whose magnitudes are placeholders (see DESIGN.md).
type RoutingOptions struct {
	// FullTurnPunishFac is added to a hop's cost when the turn angle
	// between the incoming and outgoing edge is below FullTurnAngle.
	FullTurnPunishFac float64
	// FullTurnAngle, in degrees: turns sharper than this are "full turns".
	FullTurnAngle float64
	// PassThruStationsPunish is added per station a hop passes through
	// without stopping.
	PassThruStationsPunish float64
	// OneWayPunishFac multiplies the meters traveled against a one-way
	// restriction.
	OneWayPunishFac float64
	// OneWayEdgePunish is a flat per-edge addition for traveling against
	// a one-way restriction, independent of distance.
	OneWayEdgePunish float64
	// LineUnmatchedPunishFact multiplies the meters traveled on an edge
	// that doesn't carry the trip's transit line.
	LineUnmatchedPunishFact float64
	// NoLinesPunishFact multiplies the meters traveled on an edge that
	// carries no transit lines at all.
	NoLinesPunishFact float64
	// PlatformUnmatchedPen is added when a candidate's platform/track
	// doesn't match the stop's recorded platform.
	PlatformUnmatchedPen float64
	// StationDistPenFactor multiplies a candidate's distance from its
	// stop when computing NodeCandidate penalties.
	StationDistPenFactor float64
	// LevelPunish[i] is the per-meter cost multiplier for level-i edges.
	LevelPunish [8]float64
	// PopReachEdge: pop a hop's reach penalty once consumed, rather than
	// letting it accumulate across an entire path.
	PopReachEdge bool
	// NoSelfHops forbids a hop whose source and target edge are equal.
	NoSelfHops bool
	// NonOSMPenalty is added to a NodeCandidate whose node did not
	// originate from OSM data (e.g. a synthesized station stub).
	NonOSMPenalty float64
}

// DefaultRoutingOptions returns the original system's default values,
// ported from router/Misc.h.
func DefaultRoutingOptions() RoutingOptions {
	return RoutingOptions{
		FullTurnPunishFac:       2000,
		FullTurnAngle:           45,
		PassThruStationsPunish:  100,
		OneWayPunishFac:         1,
		OneWayEdgePunish:        0,
		LineUnmatchedPunishFact: 0.5,
		NoLinesPunishFact:       0,
		PlatformUnmatchedPen:    0,
		StationDistPenFactor:    0,
		LevelPunish:             [8]float64{1, 1.5, 2, 5, 8, 12, 20, 30},
		PopReachEdge:            true,
		NoSelfHops:              true,
		NonOSMPenalty:           0,
	}
}
