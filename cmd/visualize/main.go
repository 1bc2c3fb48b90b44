// Command visualize runs the same filter/build/match pipeline as
// cmd/shapematch and then serves the results over HTTP as GeoJSON, for
// eyeballing a match run instead of comparing against an external routing
// API (spec.md §6 "optional debug GeoJSON dumps"). It answers three
// questions: what does the transit graph look like, what path did a given
// trip match to, and how far off is that path from the feed's own
// ground-truth shape (Fréchet distance).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/patrickbr/gtfsparser"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/azybler/shapematch/internal/ctxlog"
	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/geoutil"
	"github.com/azybler/shapematch/pkg/gtfsmodel"
	"github.com/azybler/shapematch/pkg/osmbuild"
	"github.com/azybler/shapematch/pkg/osmfilter"
	"github.com/azybler/shapematch/pkg/shapebuild"
	"github.com/azybler/shapematch/pkg/trgraph"
)

type server struct {
	res      *osmbuild.Result
	feed     *gtfsmodel.Feed
	original map[string]*gtfsmodel.Shape // trip ID -> shape as loaded, before matching overwrote it
}

func main() {
	var (
		port     = pflag.Int("port", 3000, "HTTP port to serve on")
		osmPath  = pflag.String("osm", "", "path to OSM extract (.osm.pbf or .osm.xml)")
		gtfsPath = pflag.String("gtfs", "", "path to input GTFS feed directory/zip")
		motPath  = pflag.String("mot-config", "", "path to MOT configuration file")
		method   = pflag.String("method", "global", "routing method: global, greedy, or greedy2")
		workers  = pflag.Int("workers", 4, "number of shape-building worker goroutines")
		verbose  = pflag.Bool("verbose", false, "enable debug logging")
		osmCache = pflag.String("osm-cache", "", "path to a cached parsed-OSM-extract file (read if present, written if not)")
	)
	pflag.Parse()

	log := ctxlog.New(*verbose)
	if *osmPath == "" || *gtfsPath == "" || *motPath == "" {
		log.Fatal().Msg("--osm, --gtfs and --mot-config are required")
	}

	mc, err := config.ReadMotConfig(*motPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *motPath).Msg("reading MOT config")
	}

	pr, err := loadOSM(*osmPath, *osmCache, mc, log)
	if err != nil {
		log.Fatal().Err(err).Msg("filtering OSM extract")
	}
	res := osmbuild.Build(pr, mc, log)
	log.Info().Int("nodes", res.Graph.LiveNodeCount()).Int("edges", res.Graph.LiveEdgeCount()).Msg("transit graph built")

	gfeed := gtfsparser.NewFeed()
	gfeed.SetParseOpts(gtfsparser.ParseOptions{UseDefValueOnError: true, DropErroneous: true})
	if err := gfeed.Parse(*gtfsPath); err != nil {
		log.Fatal().Err(err).Str("path", *gtfsPath).Msg("reading GTFS feed")
	}
	feed, err := gtfsmodel.FromParsedFeed(gfeed)
	if err != nil {
		log.Fatal().Err(err).Msg("adapting parsed GTFS feed")
	}

	original := make(map[string]*gtfsmodel.Shape, len(feed.Trips))
	for id, t := range feed.Trips {
		original[id] = t.Shape
	}

	cc := &config.CommandConfig{Method: config.RoutingMethod(*method), NumWorkers: *workers, UseCaching: true}
	if cc.NumWorkers < 1 {
		cc.NumWorkers = 1
	}

	matchStart := time.Now()
	stats, err := shapebuild.BuildShapes(context.Background(), feed, res, mc, cc, log)
	if err != nil {
		log.Fatal().Err(err).Msg("matching shapes")
	}
	log.Info().Int("matched", stats.Matched).Int("failed", stats.Failed).Dur("elapsed", time.Since(matchStart)).Msg("shape matching finished")

	srv := &server{res: res, feed: feed, original: original}

	mux := http.NewServeMux()
	mux.HandleFunc("/", withRecovery(log, srv.handleIndex))
	mux.HandleFunc("/api/graph", withRecovery(log, srv.handleGraph))
	mux.HandleFunc("/api/trips", withRecovery(log, srv.handleTrips))
	mux.HandleFunc("/api/trip", withRecovery(log, srv.handleTrip))

	httpSrv := &http.Server{Addr: fmt.Sprintf(":%d", *port), Handler: mux}
	log.Info().Str("addr", httpSrv.Addr).Msg("visualize server starting")
	if err := listenAndServeGraceful(httpSrv, log); err != nil {
		log.Fatal().Err(err).Msg("visualize server stopped")
	}
}

// listenAndServeGraceful runs srv until SIGINT/SIGTERM, then drains
// in-flight requests before returning (adapted from the teacher's
// pkg/api/server.go ListenAndServe).
func listenAndServeGraceful(srv *http.Server, log zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// withRecovery adapts the teacher's pkg/api/server.go withMiddleware
// panic-recovery wrapper, dropped down to just recovery + access logging
// since this tool has no concurrency budget or CORS surface to guard.
func withRecovery(log zerolog.Logger, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panic")
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		h(w, r)
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("elapsed", time.Since(start)).Msg("request")
	}
}

func loadOSM(path, cachePath string, mc *config.MotConfig, log zerolog.Logger) (*osmfilter.ParseResult, error) {
	if cachePath != "" {
		pr, err := osmfilter.ReadCache(cachePath)
		switch {
		case err == nil:
			log.Info().Str("path", cachePath).Msg("loaded cached OSM extract")
			return pr, nil
		case os.IsNotExist(err):
			log.Debug().Str("path", cachePath).Msg("no OSM cache yet, parsing fresh")
		default:
			log.Warn().Err(err).Str("path", cachePath).Msg("OSM cache unreadable, parsing fresh")
		}
	}

	pr, err := parseOSM(path, mc, log)
	if err != nil {
		return nil, err
	}
	if cachePath != "" {
		if err := osmfilter.WriteCache(cachePath, pr); err != nil {
			log.Warn().Err(err).Str("path", cachePath).Msg("writing OSM cache")
		}
	}
	return pr, nil
}

func parseOSM(path string, mc *config.MotConfig, log zerolog.Logger) (*osmfilter.ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	isPBF := len(path) < 4 || path[len(path)-4:] != ".xml"
	log.Debug().Bool("pbf", isPBF).Str("path", path).Msg("opening OSM extract")
	return osmfilter.Parse(context.Background(), f, isPBF, 4, mc)
}

// handleIndex serves a minimal landing page listing the debug endpoints.
// The teacher's comparison tool shipped a //go:embed'd frontend bundle
// that has no counterpart here, so this is a plain pointer rather than
// an interactive map.
func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "shapematch visualize")
	fmt.Fprintln(w, "GET /api/graph       - transit graph as GeoJSON")
	fmt.Fprintln(w, "GET /api/trips       - trip IDs with match status")
	fmt.Fprintln(w, "GET /api/trip?id=... - matched path + ground truth for one trip")
}

// handleGraph dumps every live edge of the built transit graph as a
// GeoJSON LineString feature.
func (s *server) handleGraph(w http.ResponseWriter, r *http.Request) {
	fc := geojson.NewFeatureCollection()
	for _, id := range s.res.Graph.AllEdgeIDs() {
		ev := s.res.Graph.Edge(id)
		f := geojson.NewLineStringFeature(coordsWGS84(ev.Geom))
		f.Properties["id"] = uint64(ev.ID)
		f.Properties["level"] = ev.Level
		f.Properties["one_way"] = ev.OneWay != trgraph.OneWayNone
		fc.AddFeature(f)
	}
	writeJSON(w, fc)
}

type tripSummary struct {
	ID        string `json:"id"`
	RouteID   string `json:"route_id"`
	ShortName string `json:"short_name"`
	Matched   bool   `json:"matched"`
}

// handleTrips lists every trip with its match status, for a client to
// pick one to inspect via /api/trip.
func (s *server) handleTrips(w http.ResponseWriter, r *http.Request) {
	out := make([]tripSummary, 0, len(s.feed.Trips))
	for id, t := range s.feed.Trips {
		sum := tripSummary{ID: id, Matched: t.Shape != nil && t.Shape != s.original[id]}
		if t.Route != nil {
			sum.RouteID = t.Route.ID
			sum.ShortName = t.Route.ShortName
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, out)
}

// handleTrip dumps the matched shape and, if the feed carried one before
// matching, the original ground-truth shape for the same trip, tagging
// the matched feature with the Fréchet distance between the two
// (spec.md §6 "per-trip comparison against ground truth").
func (s *server) handleTrip(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	t, ok := s.feed.Trips[id]
	if !ok {
		http.Error(w, "unknown trip id", http.StatusNotFound)
		return
	}

	fc := geojson.NewFeatureCollection()
	var matchedLine, groundTruthLine orb.LineString

	if t.Shape != nil && t.Shape != s.original[id] {
		matchedLine = shapeLine(t.Shape)
		f := geojson.NewLineStringFeature(toCoords(matchedLine))
		f.Properties["kind"] = "matched"
		f.Properties["trip_id"] = id
		fc.AddFeature(f)
	}
	if gt := s.original[id]; gt != nil {
		groundTruthLine = shapeLine(gt)
		f := geojson.NewLineStringFeature(toCoords(groundTruthLine))
		f.Properties["kind"] = "ground_truth"
		f.Properties["trip_id"] = id
		fc.AddFeature(f)
	}

	if len(matchedLine) > 0 && len(groundTruthLine) > 0 {
		a := projectLine(matchedLine)
		b := projectLine(groundTruthLine)
		fc.Features[0].Properties["frechet_distance_meters"] = geoutil.FrechetDistance(a, b)
	}

	writeJSON(w, fc)
}

func shapeLine(shp *gtfsmodel.Shape) orb.LineString {
	line := make(orb.LineString, len(shp.Points))
	for i, p := range shp.Points {
		line[i] = orb.Point{p.Lon, p.Lat}
	}
	return line
}

func projectLine(line orb.LineString) orb.LineString {
	out := make(orb.LineString, len(line))
	for i, p := range line {
		out[i] = geoutil.ToMercator(p)
	}
	return out
}

func toCoords(line orb.LineString) [][]float64 {
	out := make([][]float64, len(line))
	for i, p := range line {
		out[i] = []float64{p[0], p[1]}
	}
	return out
}

// coordsWGS84 converts an edge's web-mercator geometry to lon/lat GeoJSON
// coordinates.
func coordsWGS84(geom orb.LineString) [][]float64 {
	out := make([][]float64, len(geom))
	for i, p := range geom {
		w := geoutil.ToWGS84(p)
		out[i] = []float64{w[0], w[1]}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
