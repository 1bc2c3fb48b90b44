package router

import "github.com/azybler/shapematch/pkg/normalizer"

// RoutingAttributes identifies the transit line a trip is being matched
// against: its short name and the "from"/"to" endpoints of its route
// (spec.md §3 "RoutingAttributes"). Comparable, so it can key maps
// directly (the nested routing cache, the similarity cache).
type RoutingAttributes struct {
	ShortName string
	To        string
	From      string
}

// simCacheKey pairs a RoutingAttributes with the value of the line it's
// being compared against (see lineKey).
type simCacheKey struct {
	attrs RoutingAttributes
	line  lineKey
}

// lineKey is a comparable stand-in for *trgraph.TransitEdgeLine, built
// from its value rather than its pointer so the cache survives a line
// being re-interned across graphs.
type lineKey struct {
	ShortName, To, From string
}

// SimilarityCache memoizes RoutingAttributes.Simi results. The original
// system cached this on a `mutable` field of routing_attributes; spec.md's
// Design Notes call for an explicit external map instead, scoped to
// whichever worker (goroutine) is using it, since each worker computes
// similarity independently and a shared map would need locking for no
// benefit.
type SimilarityCache struct {
	m map[simCacheKey]float64
}

// NewSimilarityCache creates an empty cache.
func NewSimilarityCache() *SimilarityCache {
	return &SimilarityCache{m: make(map[simCacheKey]float64)}
}

// Simi returns attrs' similarity to line (ShortName/To/From), computing
// and caching it on first use. Mirrors routing_attributes::simi: starts
// at 1.0 and subtracts 1/3 for each of ShortName/To/From that does NOT
// match (matching the original's "penalize for each mismatching
// component" formula, scaled so three mismatches reach 0).
func (c *SimilarityCache) Simi(attrs RoutingAttributes, shortName, to, from string) float64 {
	key := simCacheKey{attrs: attrs, line: lineKey{ShortName: shortName, To: to, From: from}}
	if v, ok := c.m[key]; ok {
		return v
	}
	v := simi(attrs, shortName, to, from)
	c.m[key] = v
	return v
}

func simi(attrs RoutingAttributes, shortName, to, from string) float64 {
	cur := 1.0
	if attrs.ShortName != "" && shortName != "" && normalizer.LineSimilarity(attrs.ShortName, shortName) <= 0.5 {
		cur -= 1.0 / 3.0
	}
	if attrs.To != "" && to != "" && normalizer.StringSimilarity(attrs.To, to) <= 0.5 {
		cur -= 1.0 / 3.0
	}
	if attrs.From != "" && from != "" && normalizer.StringSimilarity(attrs.From, from) <= 0.5 {
		cur -= 1.0 / 3.0
	}
	if cur < 0 {
		cur = 0
	}
	return cur
}
