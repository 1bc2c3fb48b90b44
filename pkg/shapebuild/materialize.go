package shapebuild

import (
	"github.com/paulmach/orb"

	"github.com/azybler/shapematch/pkg/geoutil"
	"github.com/azybler/shapematch/pkg/gtfsmodel"
	"github.com/azybler/shapematch/pkg/router"
	"github.com/azybler/shapematch/pkg/trgraph"
)

// materializeShape walks res.Path's edges in order and lays down a
// distance-tagged polyline (spec.md §4.C "shape materialization with
// cumulative-distance-tagged points"). Consecutive hops in
// router.RouteResult.Path share their boundary edge (the edge a stop's
// candidate was committed to is both the previous hop's target and the
// next hop's source), so a repeated edge ID is only ever walked once.
func materializeShape(g *trgraph.Graph, shapeID string, res router.RouteResult) *gtfsmodel.Shape {
	shape := &gtfsmodel.Shape{ID: shapeID}
	if len(res.Path) == 0 {
		return shape
	}

	var pts []orb.Point
	var lastEdge trgraph.EdgeID
	haveLast := false

	for _, e := range res.Path {
		if haveLast && e == lastEdge {
			continue
		}
		ev := g.Edge(e)
		geom := ev.Geom
		if len(pts) > 0 && len(geom) > 0 && pts[len(pts)-1] == geom[0] {
			geom = geom[1:]
		}
		pts = append(pts, geom...)
		lastEdge = e
		haveLast = true
	}

	dist := 0.0
	for i, p := range pts {
		if i > 0 {
			dist += geoutil.MercatorDist(pts[i-1], p)
		}
		wgs := geoutil.ToWGS84(p)
		shape.Points = append(shape.Points, gtfsmodel.ShapePoint{
			Lat:          wgs[1],
			Lon:          wgs[0],
			Sequence:     i,
			DistTraveled: dist,
		})
	}
	return shape
}
