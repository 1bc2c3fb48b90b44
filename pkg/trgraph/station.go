package trgraph

import "github.com/azybler/shapematch/pkg/normalizer"

// StationInfo is the payload a NodeKindStation node carries: a GTFS stop
// (or group of merged stops) snapped onto the network (spec.md §3
// "StationInfo", §4.B.1 "Station snapping").
type StationInfo struct {
	Name     string
	AltNames []string
	Track    string
	IsFromOSM bool
	Group    *StationGroup
}

// NewStationInfo builds a StationInfo for a single name with no group yet.
func NewStationInfo(name, track string, fromOSM bool) *StationInfo {
	return &StationInfo{Name: name, Track: track, IsFromOSM: fromOSM}
}

// Simi reports whether s and other are name-equivalent (spec.md
// "equivalence-reach DFS (similarity >0.5)"). It checks s's own name and
// every alt name against other's name and alt names, returning 1 if any
// pair clears the 0.5 threshold and 0 otherwise — station_info::simi in
// the original system is binary, not a continuous blend, despite being
// built on a continuous string metric.
func (s *StationInfo) Simi(other *StationInfo) float64 {
	if s == nil || other == nil {
		return 0
	}
	names := append([]string{s.Name}, s.AltNames...)
	otherNames := append([]string{other.Name}, other.AltNames...)
	for _, a := range names {
		for _, b := range otherNames {
			if normalizer.StringSimilarity(a, b) > 0.5 {
				return 1
			}
		}
	}
	return 0
}

// SimiNames is like Simi but compares directly against a raw name/alt-name
// pair, used during snapping before a candidate node has been wrapped in
// a StationInfo.
func SimiNames(name string, alts []string, otherName string, otherAlts []string) bool {
	names := append([]string{name}, alts...)
	otherNames := append([]string{otherName}, otherAlts...)
	for _, a := range names {
		for _, b := range otherNames {
			if normalizer.StringSimilarity(a, b) > 0.5 {
				return true
			}
		}
	}
	return false
}
