package trgraph

// unionFind is a disjoint-set structure over NodeID, used once per build
// to label weakly-connected components (spec.md §4.B "component
// labeling"). Path halving plus union-by-rank, same shape as a CSR graph
// library's — the arena indexing here just happens to be NodeID instead
// of a raw uint32.
type unionFind struct {
	parent []NodeID
	rank   []byte
	size   []uint32
}

func newUnionFind(n int) *unionFind {
	parent := make([]NodeID, n)
	for i := range parent {
		parent[i] = NodeID(i)
	}
	return &unionFind{parent: parent, rank: make([]byte, n), size: ones(n)}
}

func ones(n int) []uint32 {
	s := make([]uint32, n)
	for i := range s {
		s[i] = 1
	}
	return s
}

func (uf *unionFind) find(x NodeID) NodeID {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(x, y NodeID) {
	rx, ry := uf.find(x), uf.find(y)
	if rx == ry {
		return
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
}

// Component describes one weakly-connected component of the graph: the
// minimum edge level present anywhere inside it, which the router's A*
// heuristic uses to stay admissible (spec.md §4.D "heuristic scaled by
// levelPunish[component.minEdgeLvl]").
type Component struct {
	ID         ComponentID
	MinEdgeLvl uint8
	Size       int
}

// LabelComponents assigns every live node a ComponentID (treating edges
// as undirected for connectivity purposes, matching how the original
// system's corridor/gap/snap passes all reason about reachability) and
// returns one Component record per distinct label. Must be re-run after
// any pass that adds or removes edges; stale labels are not self-healing.
func (g *Graph) LabelComponents() []Component {
	n := len(g.nodes)
	uf := newUnionFind(n)

	for i := range g.nodes {
		if g.nodes[i].deleted {
			continue
		}
		for _, eid := range g.nodes[i].out {
			e := &g.edges[eid]
			if e.deleted {
				continue
			}
			uf.union(NodeID(i), e.to)
		}
	}

	minLvl := make(map[NodeID]uint8)
	sizeOf := make(map[NodeID]int)
	for i := range g.edges {
		e := &g.edges[i]
		if e.deleted {
			continue
		}
		root := uf.find(e.from)
		if cur, ok := minLvl[root]; !ok || e.level < cur {
			minLvl[root] = e.level
		}
	}
	for i := range g.nodes {
		if g.nodes[i].deleted {
			continue
		}
		root := uf.find(NodeID(i))
		sizeOf[root]++
	}

	rootToID := make(map[NodeID]ComponentID)
	var comps []Component
	for i := range g.nodes {
		if g.nodes[i].deleted {
			continue
		}
		id := NodeID(i)
		root := uf.find(id)
		cid, ok := rootToID[root]
		if !ok {
			cid = ComponentID(len(comps))
			rootToID[root] = cid
			lvl, hasLvl := minLvl[root]
			if !hasLvl {
				lvl = 0
			}
			comps = append(comps, Component{ID: cid, MinEdgeLvl: lvl, Size: sizeOf[root]})
		}
		g.nodes[i].component = cid
	}
	return comps
}
