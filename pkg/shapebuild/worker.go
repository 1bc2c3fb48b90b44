package shapebuild

import (
	"github.com/azybler/shapematch/pkg/config"
	"github.com/azybler/shapematch/pkg/osmbuild"
	"github.com/azybler/shapematch/pkg/router"
)

// worker holds the per-goroutine scratch state a single cluster needs to
// route (spec.md §4.D "one Cache + one SimilarityCache per worker"),
// generalizing the teacher's per-goroutine QueryState/qsPool scratch
// pattern from a pooled struct to one instance per fixed worker, since
// shape-building's worker count is fixed up front by
// config.CommandConfig.NumWorkers rather than drawn from a shared pool
// under contention.
type worker struct {
	router *router.Router
	simi   *router.SimilarityCache
	cache  *router.Cache
	heur   router.Heuristic
}

func newWorker(res *osmbuild.Result, mc *config.MotConfig, useCache bool) *worker {
	w := &worker{
		router: router.NewRouter(res.Graph, &mc.Routing),
		simi:   router.NewSimilarityCache(),
		heur:   router.ZeroHeuristic,
	}
	if useCache {
		w.cache = router.NewCache()
	}
	return w
}
