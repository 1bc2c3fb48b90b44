package trgraph

import "github.com/paulmach/orb"

// NodeCandidate pairs a station node with the routing penalty the router
// should add when a trip boards/alights there (spec.md §3 "NodeCandidate").
// Lower penalty is preferred; 0 means no penalty.
type NodeCandidate struct {
	Node    NodeID
	Penalty float64
}

// StationPenaltyParams configures StationGroup.WritePenalties (spec.md §6
// "deep attribute rules" / RoutingOptions stationDistPenFactor and friends).
type StationPenaltyParams struct {
	NonOSMPenalty       float64
	TrackMismatchPenalty float64
	DistPenaltyFactor   float64
}

// StationGroup is the set of network nodes and GTFS stop ids considered
// interchangeable for routing purposes (spec.md §4.B.1 "Station
// snapping"): one GTFS stop can belong to at most one group, but a group
// can hold many nodes (merged equivalent stations) and many stops
// (a parent station and its child stops/platforms).
type StationGroup struct {
	Nodes map[NodeID]struct{}
	Stops map[string]struct{}

	// candidates[stopID] is populated on demand by WritePenalties.
	candidates map[string][]NodeCandidate
}

// NewStationGroup creates an empty group.
func NewStationGroup() *StationGroup {
	return &StationGroup{
		Nodes:      make(map[NodeID]struct{}),
		Stops:      make(map[string]struct{}),
		candidates: make(map[string][]NodeCandidate),
	}
}

// AddNode adds a network node to the group.
func (sg *StationGroup) AddNode(id NodeID) {
	sg.Nodes[id] = struct{}{}
}

// AddStop associates a GTFS stop id with the group.
func (sg *StationGroup) AddStop(stopID string) {
	sg.Stops[stopID] = struct{}{}
}

// Merge absorbs other's nodes and stops into sg. The caller is responsible
// for repointing every absorbed node's StationInfo.Group to sg (Graph.MergeStationGroups
// does this, since only the Graph knows how to look a NodeID back up).
func (sg *StationGroup) Merge(other *StationGroup) {
	if other == sg {
		return
	}
	for n := range other.Nodes {
		sg.Nodes[n] = struct{}{}
	}
	for s := range other.Stops {
		sg.Stops[s] = struct{}{}
	}
	for stop, cands := range other.candidates {
		sg.candidates[stop] = append(sg.candidates[stop], cands...)
	}
}

// NodeCandidates returns the penalized node candidates for stopID, or nil
// if WritePenalties has not been called for that stop yet.
func (sg *StationGroup) NodeCandidates(stopID string) []NodeCandidate {
	return sg.candidates[stopID]
}

// WritePenalties computes, for a given stop at stopPos with platform code
// platform, the per-node routing penalty for every node in the group and
// stores the resulting candidate list under stopID. nodePos/nodeTrack/
// nodeFromOSM give per-node attributes via the owning Graph.
func (sg *StationGroup) WritePenalties(
	stopID string,
	stopPos orb.Point,
	platform string,
	params StationPenaltyParams,
	nodePos func(NodeID) orb.Point,
	nodeTrack func(NodeID) string,
	nodeFromOSM func(NodeID) bool,
	dist func(a, b orb.Point) float64,
) {
	cands := make([]NodeCandidate, 0, len(sg.Nodes))
	for n := range sg.Nodes {
		pen := 0.0
		if params.DistPenaltyFactor != 0 {
			pen += dist(stopPos, nodePos(n)) * params.DistPenaltyFactor
		}
		if !nodeFromOSM(n) {
			pen += params.NonOSMPenalty
		}
		if platform != "" {
			if t := nodeTrack(n); t != "" && t != platform {
				pen += params.TrackMismatchPenalty
			}
		}
		cands = append(cands, NodeCandidate{Node: n, Penalty: pen})
	}
	sg.candidates[stopID] = cands
}
