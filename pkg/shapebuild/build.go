package shapebuild

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/gtfsmodel"
	"github.com/azybler/shapematch/pkg/osmbuild"
	"github.com/azybler/shapematch/pkg/router"
	"github.com/azybler/shapematch/pkg/trgraph"
)

// Stats summarizes one MOT's shape-building run, for cmd/shapematch's
// closing log line.
type Stats struct {
	Trips    int
	Clusters int
	Matched  int
	Failed   int
}

// BuildShapes computes and writes back a GTFS shape for every trip of
// feed whose route type is one of mc's (spec.md §4.C, the per-MOT/
// per-trip loop). Trips that cluster together (identical routing
// attributes and stop/platform sequence) are routed once and share the
// resulting shape. Clusters are fanned out across cc.NumWorkers
// goroutines, each with its own Router scratch state, via
// golang.org/x/sync/errgroup.
func BuildShapes(ctx context.Context, feed *gtfsmodel.Feed, res *osmbuild.Result, mc *config.MotConfig, cc *config.CommandConfig, log zerolog.Logger) (Stats, error) {
	trips := selectTrips(feed, mc)
	if len(trips) == 0 {
		return Stats{}, nil
	}

	bound := BindStops(res.Graph, res.Groups, feed, mc, log)
	clusters := clusterTrips(trips, bound, func(t *gtfsmodel.Trip) router.RoutingAttributes {
		return deriveAttrs(t, mc)
	})
	log.Debug().Str("mot", mc.Name).Int("trips", len(trips)).Int("clusters", len(clusters)).Msg("clustered trips for shape-matching")

	params := penaltyParams(&mc.Routing)

	workers := make([]*worker, cc.NumWorkers)
	for i := range workers {
		workers[i] = newWorker(res, mc, cc.UseCaching)
	}

	var mu sync.Mutex
	stats := Stats{Trips: len(trips), Clusters: len(clusters)}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	g.Go(func() error {
		defer close(jobs)
		for i := range clusters {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for wi := 0; wi < cc.NumWorkers; wi++ {
		w := workers[wi]
		g.Go(func() error {
			for i := range jobs {
				c := clusters[i]
				ok := routeCluster(res, mc, cc, w, c, bound, params, feed)
				mu.Lock()
				if ok {
					stats.Matched++
				} else {
					stats.Failed++
				}
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}

	log.Info().Str("mot", mc.Name).Int("matched", stats.Matched).Int("failed", stats.Failed).Msg("shape-matching complete")
	return stats, nil
}

func selectTrips(feed *gtfsmodel.Feed, mc *config.MotConfig) []*gtfsmodel.Trip {
	var out []*gtfsmodel.Trip
	for _, t := range feed.Trips {
		if t.Route == nil || !mc.Mots[int(t.Route.Type)] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// routeCluster routes a cluster's representative trip and writes the
// resulting shape onto every member trip (spec.md §4.C "dispatch to
// router (global/greedy/greedy2)"). Returns false if no route could be
// found, leaving member trips' shapes untouched.
func routeCluster(res *osmbuild.Result, mc *config.MotConfig, cc *config.CommandConfig, w *worker, c *Cluster, bound map[string]*trgraph.StationGroup, params trgraph.StationPenaltyParams, feed *gtfsmodel.Feed) bool {
	rep := c.Trips[0]
	attrs := deriveAttrs(rep, mc)

	route, ok := buildRoute(res.Graph, rep, bound, params)
	if !ok {
		return false
	}

	cf := router.NewCostFunc(res.Graph, attrs, &mc.Routing, w.simi)

	var result router.RouteResult
	switch cc.Method {
	case config.MethodGreedy:
		result, ok = w.router.RouteGreedy(route, attrs, cf, w.cache, w.heur)
	case config.MethodGreedy2:
		result, ok = w.router.RouteGreedy2(route, attrs, cf, w.cache, w.heur)
	default:
		result, ok = w.router.RouteEdges(route, attrs, cf, w.cache, w.heur)
	}
	if !ok {
		return false
	}

	shapeID := fmt.Sprintf("shp_%s", rep.ID)
	shape := materializeShape(res.Graph, shapeID, result)

	for _, t := range c.Trips {
		feed.SetShape(t.ID, shape)
	}
	return true
}
