package osmbuild

import (
	"github.com/paulmach/orb"

	"github.com/azybler/shapematch/pkg/geoutil"
	"github.com/azybler/shapematch/pkg/osmfilter"
)

func orbPoint(lon, lat float64) orb.Point {
	return orb.Point{lon, lat}
}

// rawLineString builds a two-point mercator-projected segment between two
// raw OSM nodes, the unit of geometry constructGraph hands to AddEdge.
func rawLineString(a, b osmfilter.NodeRaw) orb.LineString {
	pa := geoutil.ToMercator(orbPoint(a.Lon, a.Lat))
	pb := geoutil.ToMercator(orbPoint(b.Lon, b.Lat))
	return orb.LineString{pa, pb}
}
