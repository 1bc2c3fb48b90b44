package router

import "github.com/azybler/shapematch/pkg/trgraph"

// cachedHop is one memoized hop result: the cost and full edge path from
// a "from" edge to a "to" edge under one RoutingAttributes.
type cachedHop struct {
	Cost  Cost
	Edges []trgraph.EdgeID
}

// Cache is a per-worker nested sub-path cache keyed by
// (routingAttrs, fromEdge, toEdge) (spec.md §4.D "per-thread/per-goroutine
// nested sub-path cache"). Not safe for concurrent use across goroutines;
// shape-building gives each worker its own Cache.
type Cache struct {
	m map[RoutingAttributes]map[trgraph.EdgeID]map[trgraph.EdgeID]cachedHop
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{m: make(map[RoutingAttributes]map[trgraph.EdgeID]map[trgraph.EdgeID]cachedHop)}
}

// Get looks up a cached hop.
func (c *Cache) Get(attrs RoutingAttributes, from, to trgraph.EdgeID) (cachedHop, bool) {
	byFrom, ok := c.m[attrs]
	if !ok {
		return cachedHop{}, false
	}
	byTo, ok := byFrom[from]
	if !ok {
		return cachedHop{}, false
	}
	v, ok := byTo[to]
	return v, ok
}

// Put stores a hop result.
func (c *Cache) Put(attrs RoutingAttributes, from, to trgraph.EdgeID, cost Cost, edges []trgraph.EdgeID) {
	byFrom, ok := c.m[attrs]
	if !ok {
		byFrom = make(map[trgraph.EdgeID]map[trgraph.EdgeID]cachedHop)
		c.m[attrs] = byFrom
	}
	byTo, ok := byFrom[from]
	if !ok {
		byTo = make(map[trgraph.EdgeID]cachedHop)
		byFrom[from] = byTo
	}
	byTo[to] = cachedHop{Cost: cost, Edges: edges}
}

// NestedCache walks a successful path backward from its last edge, and
// every time it passes an edge that belongs to froms (candidate "from"
// edges of the hop that was just solved), caches the suffix from that
// edge to the path's end under (attrs, edge, path's last edge) — spec.md
// §4.D "nested caching of suffixes of any successful path". A froms set
// with several candidates lets a single Dijkstra run seed the cache for
// each of them that lies on the winning path; hops passes only the
// queried from edge, so there each run stores just that one pair.
func (c *Cache) NestedCache(attrs RoutingAttributes, cf *CostFunc, path []trgraph.EdgeID, froms map[trgraph.EdgeID]bool) {
	if len(path) == 0 {
		return
	}
	last := path[len(path)-1]

	acc := ZeroCost()
	suffix := []trgraph.EdgeID{last}
	for i := len(path) - 1; i > 0; i-- {
		from := path[i-1]
		to := path[i]
		via := cf.g.Edge(from).To
		acc = acc.Add(cf.Hop(from, via, to))
		suffix = append([]trgraph.EdgeID{from}, suffix...)

		if froms[from] {
			cp := make([]trgraph.EdgeID, len(suffix))
			copy(cp, suffix)
			c.Put(attrs, from, last, acc, cp)
		}
	}
}
