// Command shapematch map-matches every trip of a GTFS feed onto an OSM
// street/rail network and writes the feed back out with freshly computed
// shapes (spec.md §1, §4). It runs the pipeline straight through: read
// config, filter+parse OSM, build the transit graph, match shapes, write
// GTFS.
package main

import (
	"context"
	"os"
	"time"

	"github.com/patrickbr/gtfsparser"
	"github.com/rs/zerolog"

	"github.com/azybler/shapematch/internal/ctxlog"
	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/gtfsmodel"
	"github.com/azybler/shapematch/pkg/osmbuild"
	"github.com/azybler/shapematch/pkg/osmfilter"
	"github.com/azybler/shapematch/pkg/shapebuild"
)

func main() {
	cc, err := config.ParseCommandConfig(os.Args[1:])
	if err != nil {
		ctxlog.New(false).Fatal().Err(err).Msg("parsing command line flags")
	}

	log := ctxlog.New(cc.Verbose)
	start := time.Now()

	mc, err := config.ReadMotConfig(cc.MotConfPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cc.MotConfPath).Msg("reading MOT config")
	}
	if cc.GridCellSize > 0 {
		mc.GridCellSize = cc.GridCellSize
	}

	log.Info().Str("mot", mc.Name).Msg("loaded MOT config")

	pr, err := loadOSM(cc, mc, log)
	if err != nil {
		log.Fatal().Err(err).Msg("filtering OSM extract")
	}
	log.Info().Int("ways", len(pr.Ways)).Int("nodes", len(pr.Nodes)).Int("restrictions", len(pr.Restrictions)).
		Dur("elapsed", time.Since(start)).Msg("OSM extract parsed")

	buildStart := time.Now()
	res := osmbuild.Build(pr, mc, log)
	log.Info().Int("nodes", res.Graph.LiveNodeCount()).Int("edges", res.Graph.LiveEdgeCount()).
		Int("components", len(res.Components)).Int("groups", len(res.Groups)).
		Dur("elapsed", time.Since(buildStart)).Msg("transit graph built")

	gfeed := gtfsparser.NewFeed()
	gfeed.SetParseOpts(gtfsparser.ParseOptions{UseDefValueOnError: true, DropErroneous: true})
	if err := gfeed.Parse(cc.GTFSPath); err != nil {
		log.Fatal().Err(err).Str("path", cc.GTFSPath).Msg("reading GTFS feed")
	}

	feed, err := gtfsmodel.FromParsedFeed(gfeed)
	if err != nil {
		log.Fatal().Err(err).Msg("adapting parsed GTFS feed")
	}
	if cc.DropShapes {
		feed.Shapes = make(map[string]*gtfsmodel.Shape)
	}

	matchStart := time.Now()
	stats, err := shapebuild.BuildShapes(context.Background(), feed, res, mc, cc, log)
	if err != nil {
		log.Fatal().Err(err).Msg("matching shapes")
	}
	log.Info().Int("trips", stats.Trips).Int("clusters", stats.Clusters).Int("matched", stats.Matched).
		Int("failed", stats.Failed).Dur("elapsed", time.Since(matchStart)).Msg("shape matching finished")

	if err := feed.WriteFeed(cc.OutPath); err != nil {
		log.Fatal().Err(err).Str("path", cc.OutPath).Msg("writing matched GTFS feed")
	}

	log.Info().Str("path", cc.OutPath).Dur("total", time.Since(start)).Msg("done")
}

// loadOSM returns cc's cached parsed OSM extract if --osm-cache points at
// one, otherwise parses cc.OSMPath fresh and, if --osm-cache was given,
// writes the result there for the next run.
func loadOSM(cc *config.CommandConfig, mc *config.MotConfig, log zerolog.Logger) (*osmfilter.ParseResult, error) {
	if cc.OSMCachePath != "" {
		pr, err := osmfilter.ReadCache(cc.OSMCachePath)
		switch {
		case err == nil:
			log.Info().Str("path", cc.OSMCachePath).Msg("loaded cached OSM extract")
			return pr, nil
		case os.IsNotExist(err):
			log.Debug().Str("path", cc.OSMCachePath).Msg("no OSM cache yet, parsing fresh")
		default:
			log.Warn().Err(err).Str("path", cc.OSMCachePath).Msg("OSM cache unreadable, parsing fresh")
		}
	}

	pr, err := parseOSM(cc, mc, log)
	if err != nil {
		return nil, err
	}

	if cc.OSMCachePath != "" {
		if err := osmfilter.WriteCache(cc.OSMCachePath, pr); err != nil {
			log.Warn().Err(err).Str("path", cc.OSMCachePath).Msg("writing OSM cache")
		}
	}
	return pr, nil
}

func parseOSM(cc *config.CommandConfig, mc *config.MotConfig, log zerolog.Logger) (*osmfilter.ParseResult, error) {
	f, err := os.Open(cc.OSMPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	isPBF := !isXML(cc.OSMPath)
	log.Debug().Bool("pbf", isPBF).Str("path", cc.OSMPath).Msg("opening OSM extract")

	return osmfilter.Parse(context.Background(), f, isPBF, 4, mc)
}

func isXML(path string) bool {
	return len(path) >= 4 && path[len(path)-4:] == ".xml"
}
