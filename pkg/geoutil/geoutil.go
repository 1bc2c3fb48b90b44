// Package geoutil wraps the geometry primitives the map-matcher treats as
// an external dependency: web-mercator projection, distance functions,
// point-to-segment projection, and polyline simplification.
package geoutil

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/project"
	"github.com/paulmach/orb/simplify"
)

// SimplifyTolerance is the Douglas-Peucker tolerance (in projected meters)
// used when simplifying edge geometries during graph build.
const SimplifyTolerance = 0.5

// ToMercator projects a WGS84 lon/lat point to web-mercator meters.
func ToMercator(p orb.Point) orb.Point {
	return project.WGS84.ToMercator(p)
}

// ToWGS84 projects a web-mercator point back to lon/lat.
func ToWGS84(p orb.Point) orb.Point {
	return project.Mercator.ToWGS84(p)
}

// MercatorDist returns the euclidean distance, in meters, between two
// already-projected web-mercator points.
func MercatorDist(a, b orb.Point) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return math.Sqrt(dx*dx + dy*dy)
}

// Haversine returns the great-circle distance in meters between two WGS84
// lon/lat points.
func Haversine(a, b orb.Point) float64 {
	return geo.Distance(a, b)
}

// LatScale returns 1/cos(lat) for lat in degrees, used to scale a
// metric search radius so it covers the same ground distance in
// longitude as it does in latitude. Clamped away from the poles.
func LatScale(latDeg float64) float64 {
	c := math.Cos(latDeg * math.Pi / 180)
	if c < 0.01 {
		c = 0.01
	}
	return 1 / c
}

// PointToSegmentMercator computes the perpendicular distance (in meters)
// from p to the segment ab, all given in web-mercator coordinates, along
// with the projection ratio along ab clamped to [0,1] and the projected
// point itself.
func PointToSegmentMercator(p, a, b orb.Point) (dist, ratio float64, proj orb.Point) {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return MercatorDist(p, a), 0, a
	}

	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	proj = orb.Point{a[0] + t*dx, a[1] + t*dy}
	return MercatorDist(p, proj), t, proj
}

// Simplify runs Douglas-Peucker simplification at SimplifyTolerance over a
// polyline given in projected (meter) coordinates.
func Simplify(line orb.LineString) orb.LineString {
	if len(line) < 3 {
		return line
	}
	simplifier := simplify.DouglasPeucker(SimplifyTolerance)
	out := simplifier.Simplify(line.Clone())
	ls, ok := out.(orb.LineString)
	if !ok {
		return line
	}
	return ls
}

// FrechetDistance computes the discrete Fréchet distance between two
// polylines given in projected (meter) coordinates, after the
// Eiter/Mannila recurrence: http://www.kr.tuwien.ac.at/staff/eiter/et-archive/cdtr9464.pdf.
// Used by the debug comparison dumper to score a matched shape against a
// feed's original ground-truth shape.
func FrechetDistance(a, b orb.LineString) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}
	ca := make([][]float64, len(a))
	for i := range ca {
		ca[i] = make([]float64, len(b))
		for j := range ca[i] {
			ca[i][j] = -1
		}
	}
	var rec func(i, j int) float64
	rec = func(i, j int) float64 {
		if ca[i][j] > -1 {
			return ca[i][j]
		}
		switch {
		case i == 0 && j == 0:
			ca[i][j] = MercatorDist(a[0], b[0])
		case i > 0 && j == 0:
			ca[i][j] = math.Max(rec(i-1, 0), MercatorDist(a[i], b[0]))
		case i == 0 && j > 0:
			ca[i][j] = math.Max(rec(0, j-1), MercatorDist(a[0], b[j]))
		default:
			ca[i][j] = math.Max(math.Min(math.Min(rec(i-1, j), rec(i-1, j-1)), rec(i, j-1)), MercatorDist(a[i], b[j]))
		}
		return ca[i][j]
	}
	return rec(len(a)-1, len(b)-1)
}

// Bearing returns the initial bearing in degrees from a to b (WGS84 lon/lat).
func Bearing(a, b orb.Point) float64 {
	return geo.Bearing(a, b)
}

// AngleBetween returns the angle in degrees between vector m->f and m->t,
// i.e. the inner-product angle used for full-turn detection. Mirrors the
// original system's util::geo::innerProd(m, f, t): the angle at vertex m
// between the ray to f and the ray to t, in [0, 180].
func AngleBetween(f, m, t orb.Point) float64 {
	v1 := orb.Point{f[0] - m[0], f[1] - m[1]}
	v2 := orb.Point{t[0] - m[0], t[1] - m[1]}

	len1 := math.Hypot(v1[0], v1[1])
	len2 := math.Hypot(v2[0], v2[1])
	if len1 == 0 || len2 == 0 {
		// Degenerate (self-loop / zero-length hop): reported as 0, which a
		// caller comparing against a full-turn threshold treats as a full
		// turn.
		return 0
	}

	dot := (v1[0]*v2[0] + v1[1]*v2[1]) / (len1 * len2)
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}
	return math.Acos(dot) * 180 / math.Pi
}
