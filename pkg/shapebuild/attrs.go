package shapebuild

import (
	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/gtfsmodel"
	"github.com/azybler/shapematch/pkg/router"
)

// deriveAttrs builds the RoutingAttributes a trip is matched against: its
// route's short name, and the normalized names of its first and last
// stops (the trip's "from"/"to" terminals). Every component is run
// through the MOT's normalizers first, the same ones station snapping
// and line-matching already normalize through, so a trip's attrs compare
// equal to an edge's TransitEdgeLine using the same notion of "same
// name" throughout the graph.
func deriveAttrs(t *gtfsmodel.Trip, mc *config.MotConfig) router.RoutingAttributes {
	attrs := router.RoutingAttributes{}
	if t.Route != nil {
		attrs.ShortName = mc.LineNormzer.Norm(t.Route.ShortName)
	}
	if len(t.StopTimes) == 0 {
		return attrs
	}
	first := t.StopTimes[0].Stop
	last := t.StopTimes[len(t.StopTimes)-1].Stop
	if first != nil {
		attrs.From = mc.StationNormzer.Norm(first.Name)
	}
	if last != nil {
		attrs.To = mc.StationNormzer.Norm(last.Name)
	}
	return attrs
}
