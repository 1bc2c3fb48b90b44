package shapebuild

import (
	"fmt"
	"strings"

	"github.com/azybler/shapematch/pkg/gtfsmodel"
	"github.com/azybler/shapematch/pkg/router"
	"github.com/azybler/shapematch/pkg/trgraph"
)

// Cluster is a set of trips that would produce an identical shape: same
// routing attributes and the same ordered sequence of (station group,
// platform) pairs (spec.md §4.C "the identity-tuple trip-clustering
// optimization"). Only the cluster's representative trip is ever routed;
// every other member reuses its shape and distance table.
type Cluster struct {
	Key   string
	Trips []*gtfsmodel.Trip
}

// clusterTrips groups trips by routingEqual (the ShapeBuilder method this
// mirrors): two trips cluster together only if every stop in their
// sequence resolves to the same bound station group at the same
// position, their platform codes match, and their RoutingAttributes
// (route short name, first/last stop names) are identical. A trip whose
// identity tuple collides with nothing else's is its own one-trip
// cluster.
func clusterTrips(trips []*gtfsmodel.Trip, bound map[string]*trgraph.StationGroup, attrsOf func(*gtfsmodel.Trip) router.RoutingAttributes) []*Cluster {
	byKey := make(map[string]*Cluster)
	var order []string

	for _, t := range trips {
		key := identityKey(t, bound, attrsOf(t))
		c, ok := byKey[key]
		if !ok {
			c = &Cluster{Key: key}
			byKey[key] = c
			order = append(order, key)
		}
		c.Trips = append(c.Trips, t)
	}

	out := make([]*Cluster, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

func identityKey(t *gtfsmodel.Trip, bound map[string]*trgraph.StationGroup, attrs router.RoutingAttributes) string {
	var b strings.Builder
	b.WriteString(attrs.ShortName)
	b.WriteByte('\x00')
	b.WriteString(attrs.From)
	b.WriteByte('\x00')
	b.WriteString(attrs.To)
	for _, st := range t.StopTimes {
		b.WriteByte('\x01')
		if st.Stop == nil {
			continue
		}
		if sg := bound[st.Stop.ID]; sg != nil {
			fmt.Fprintf(&b, "%p", sg)
		}
		b.WriteByte('\x02')
		b.WriteString(st.Stop.PlatformCode)
	}
	return b.String()
}
