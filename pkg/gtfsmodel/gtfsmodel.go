// Package gtfsmodel is the thin adapter between the map-matcher's
// internal trip/stop/shape types and the real GTFS feed types from
// github.com/patrickbr/gtfsparser and github.com/patrickbr/gtfswriter
// (spec.md §1 "GTFS CSV I/O ... external collaborator"). Nothing in this
// package parses or writes CSV directly; it only translates between the
// parsed feed's types and the plain structs the rest of this module
// operates on.
package gtfsmodel

import (
	"github.com/patrickbr/gtfsparser"
	gtfs "github.com/patrickbr/gtfsparser/gtfs"
	"github.com/patrickbr/gtfswriter"
	"github.com/pkg/errors"
)

// StationEntranceType is the GTFS location_type value for a station
// entrance/exit, which the stop-selection pass substitutes with its
// parent station (spec.md §4.C "STATION_ENTRANCE parent substitution").
const StationEntranceType = 2

// Stop is a GTFS stop, platform, or station.
type Stop struct {
	ID            string
	Name          string
	Lat, Lon      float64
	ParentStation *Stop
	PlatformCode  string
	LocationType  int8
}

// Route is a GTFS route.
type Route struct {
	ID        string
	Type      int16
	ShortName string
	LongName  string
}

// StopTime is one stop visit within a trip, in sequence order.
type StopTime struct {
	Stop     *Stop
	Sequence int
}

// Trip is a GTFS trip: an ordered stop sequence belonging to a route,
// optionally already carrying a shape.
type Trip struct {
	ID        string
	Route     *Route
	StopTimes []StopTime
	Shape     *Shape
}

// ShapePoint is one point of a GTFS shape, with cumulative distance
// traveled in feed units (spec.md §4.C "shape materialization").
type ShapePoint struct {
	Lat, Lon     float64
	Sequence     int
	DistTraveled float64
}

// Shape is a GTFS shape: an ordered, distance-tagged polyline.
type Shape struct {
	ID     string
	Points []ShapePoint
}

// Feed is the in-memory collection this module operates on, built from a
// parsed gtfsparser.Feed by FromParsedFeed.
type Feed struct {
	Stops  map[string]*Stop
	Routes map[string]*Route
	Trips  map[string]*Trip
	Shapes map[string]*Shape

	parsed *gtfsparser.Feed
}

// FromParsedFeed adapts a gtfsparser.Feed (already Parse()'d by the
// caller) into the plain types this module uses everywhere else.
func FromParsedFeed(pf *gtfsparser.Feed) (*Feed, error) {
	if pf == nil {
		return nil, errors.New("nil parsed GTFS feed")
	}

	f := &Feed{
		Stops:  make(map[string]*Stop, len(pf.Stops)),
		Routes: make(map[string]*Route, len(pf.Routes)),
		Trips:  make(map[string]*Trip, len(pf.Trips)),
		Shapes: make(map[string]*Shape, len(pf.Shapes)),
		parsed: pf,
	}

	for id, s := range pf.Stops {
		f.Stops[id] = &Stop{
			ID:           s.Id,
			Name:         s.Name,
			Lat:          float64(s.Lat),
			Lon:          float64(s.Lon),
			PlatformCode: s.Platform_code,
			LocationType: int8(s.Location_type),
		}
	}
	for id, s := range pf.Stops {
		if s.Parent_station != nil {
			f.Stops[id].ParentStation = f.Stops[s.Parent_station.Id]
		}
	}

	for id, r := range pf.Routes {
		f.Routes[id] = &Route{
			ID:        r.Id,
			Type:      int16(r.Type),
			ShortName: r.Short_name,
			LongName:  r.Long_name,
		}
	}

	for id, sh := range pf.Shapes {
		shape := &Shape{ID: sh.Id}
		for _, p := range sh.Points {
			shape.Points = append(shape.Points, ShapePoint{
				Lat:          float64(p.Lat),
				Lon:          float64(p.Lon),
				Sequence:     int(p.Sequence),
				DistTraveled: float64(p.Dist_traveled),
			})
		}
		f.Shapes[id] = shape
	}

	for id, t := range pf.Trips {
		trip := &Trip{ID: t.Id}
		if t.Route != nil {
			trip.Route = f.Routes[t.Route.Id]
		}
		if t.Shape != nil {
			trip.Shape = f.Shapes[t.Shape.Id]
		}
		for _, st := range t.StopTimes {
			if st.Stop() == nil {
				continue
			}
			trip.StopTimes = append(trip.StopTimes, StopTime{
				Stop:     f.Stops[st.Stop().Id],
				Sequence: int(st.Sequence()),
			})
		}
		f.Trips[id] = trip
	}

	return f, nil
}

// SetShape assigns a newly computed shape to a trip and registers it in
// the feed, ready for WriteFeed to serialize.
func (f *Feed) SetShape(tripID string, shape *Shape) {
	f.Shapes[shape.ID] = shape
	if t, ok := f.Trips[tripID]; ok {
		t.Shape = shape
	}
}

// WriteFeed pushes this Feed's shapes back onto the originally parsed
// gtfsparser.Feed and writes it out with gtfswriter to outPath.
func (f *Feed) WriteFeed(outPath string) error {
	if f.parsed == nil {
		return errors.New("feed was not created via FromParsedFeed, nothing to write against")
	}

	for id, shape := range f.Shapes {
		gs := &gtfs.Shape{Id: id}
		for _, p := range shape.Points {
			gs.Points = append(gs.Points, gtfs.ShapePoint{
				Lat:           float32(p.Lat),
				Lon:           float32(p.Lon),
				Sequence:      uint32(p.Sequence),
				Dist_traveled: float32(p.DistTraveled),
			})
		}
		f.parsed.Shapes[id] = gs
	}

	for tripID, trip := range f.Trips {
		if trip.Shape == nil {
			continue
		}
		if pt, ok := f.parsed.Trips[tripID]; ok {
			pt.Shape = f.parsed.Shapes[trip.Shape.ID]
		}
	}

	w := gtfswriter.Writer{}
	if err := w.Write(f.parsed, outPath); err != nil {
		return errors.Wrapf(err, "writing GTFS feed to %q", outPath)
	}
	return nil
}
