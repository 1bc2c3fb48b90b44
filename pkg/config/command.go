package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// RoutingMethod selects which router variant cmd/shapematch dispatches to
// (spec.md §4.C "routing dispatch").
type RoutingMethod string

const (
	MethodGlobal  RoutingMethod = "global"
	MethodGreedy  RoutingMethod = "greedy"
	MethodGreedy2 RoutingMethod = "greedy2"
)

// CommandConfig is the top-level run configuration parsed from CLI flags
// (spec.md §6 "command config"), following the teacher's
// cmd/preprocess/main.go flag-and-log style.
type CommandConfig struct {
	OSMPath     string
	GTFSPath    string
	OutPath     string
	MotConfPath string

	BBoxPad      float64
	GridCellSize float64
	DropShapes   bool
	Method       RoutingMethod
	UseCaching   bool
	NumWorkers   int
	Verbose      bool
	OSMCachePath string
}

// ParseCommandConfig parses args (normally os.Args[1:]) into a
// CommandConfig using GNU-style flags.
func ParseCommandConfig(args []string) (*CommandConfig, error) {
	fs := pflag.NewFlagSet("shapematch", pflag.ContinueOnError)

	cc := &CommandConfig{}
	fs.StringVar(&cc.OSMPath, "osm", "", "path to OSM extract (.osm.pbf or .osm.xml)")
	fs.StringVar(&cc.GTFSPath, "gtfs", "", "path to input GTFS feed directory/zip")
	fs.StringVar(&cc.OutPath, "out", "", "path to write the matched GTFS feed to")
	fs.StringVar(&cc.MotConfPath, "mot-config", "", "path to MOT configuration file")
	fs.Float64Var(&cc.BBoxPad, "bbox-pad", 2000, "meters of padding for the feed's bounding box (accepted; the OSM read does not filter by bounding box)")
	fs.Float64Var(&cc.GridCellSize, "grid-cell-size", 2000, "spatial index cell size in meters")
	fs.BoolVar(&cc.DropShapes, "drop-shapes", false, "drop existing shapes before matching")
	method := fs.String("method", "global", "routing method: global, greedy, or greedy2")
	fs.BoolVar(&cc.UseCaching, "cache", true, "enable the per-worker nested routing cache")
	fs.IntVar(&cc.NumWorkers, "workers", 4, "number of shape-building worker goroutines")
	fs.BoolVar(&cc.Verbose, "verbose", false, "enable debug logging")
	fs.StringVar(&cc.OSMCachePath, "osm-cache", "", "path to a cached parsed-OSM-extract file (read if present, written if not)")

	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "parsing command line flags")
	}

	switch RoutingMethod(*method) {
	case MethodGlobal, MethodGreedy, MethodGreedy2:
		cc.Method = RoutingMethod(*method)
	default:
		return nil, errors.Errorf("invalid routing method %q", *method)
	}

	if cc.OSMPath == "" || cc.GTFSPath == "" || cc.OutPath == "" {
		return nil, errors.New("--osm, --gtfs and --out are required")
	}
	if cc.NumWorkers < 1 {
		cc.NumWorkers = 1
	}

	return cc, nil
}
