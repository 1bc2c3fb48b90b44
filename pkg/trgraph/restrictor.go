package trgraph

// restrictKey groups turn restriction rules by (via node, from edge), the
// pair the router needs to look up on every hop (spec.md §3 "Restrictor").
type restrictKey struct {
	Via  NodeID
	From EdgeID
}

// Restrictor answers "may I go from edge `from` to edge `to` through node
// `via`" turn-restriction queries, and keeps those answers valid as edges
// get split or duplicated during graph construction (spec.md invariant:
// "any transformation that replaces edge e with e1, e2 updates the
// restrictor so that may() semantics are preserved").
//
// Two kinds of rule exist, mirroring OSM's only_* / no_* restriction
// relations: a positive rule names the one permitted `to` edge (all
// others through that via/from pair are forbidden); a negative rule
// names one forbidden `to` edge (all others are permitted).
type Restrictor struct {
	positive map[restrictKey][]EdgeID
	negative map[restrictKey][]EdgeID
}

// NewRestrictor creates an empty restrictor (no restrictions: every hop
// is permitted).
func NewRestrictor() *Restrictor {
	return &Restrictor{
		positive: make(map[restrictKey][]EdgeID),
		negative: make(map[restrictKey][]EdgeID),
	}
}

// Add records a restriction. If positive, `to` is the only edge permitted
// out of (via, from); if negative, `to` is forbidden and every other edge
// out of (via, from) remains permitted.
func (r *Restrictor) Add(from EdgeID, via NodeID, to EdgeID, positive bool) {
	k := restrictKey{Via: via, From: from}
	if positive {
		r.positive[k] = append(r.positive[k], to)
	} else {
		r.negative[k] = append(r.negative[k], to)
	}
}

// May reports whether the hop from edge `from` to edge `to` through node
// `via` is permitted.
func (r *Restrictor) May(from EdgeID, via NodeID, to EdgeID) bool {
	k := restrictKey{Via: via, From: from}
	if allowed, ok := r.positive[k]; ok {
		for _, e := range allowed {
			if e == to {
				return true
			}
		}
		return false
	}
	if forbidden, ok := r.negative[k]; ok {
		for _, e := range forbidden {
			if e == to {
				return false
			}
		}
	}
	return true
}

// HasRestriction reports whether any rule exists for (via, from), which
// the router uses to short-circuit the common unrestricted case.
func (r *Restrictor) HasRestriction(from EdgeID, via NodeID) bool {
	k := restrictKey{Via: via, From: from}
	_, p := r.positive[k]
	_, n := r.negative[k]
	return p || n
}

// EdgeRestrictedAt reports whether edge participates in any rule at via,
// either as the rule's from edge or as one of its to candidates. Unlike
// HasRestriction (which only answers for a specific from/via pair), this
// is the "is this edge restricted at all here" query a structural
// transform like corridor collapsing needs before it destroys the edge.
func (r *Restrictor) EdgeRestrictedAt(edge EdgeID, via NodeID) bool {
	if r.HasRestriction(edge, via) {
		return true
	}
	return toMember(r.positive, edge, via) || toMember(r.negative, edge, via)
}

func toMember(m map[restrictKey][]EdgeID, edge EdgeID, via NodeID) bool {
	for k, v := range m {
		if k.Via != via {
			continue
		}
		for _, e := range v {
			if e == edge {
				return true
			}
		}
	}
	return false
}

// ReplaceEdge rewrites every rule that refers to old, as either the via's
// `from` edge or a rule's `to` edge, so it refers to both replacements.
// Used when an edge is split in two: since the caller doesn't yet know
// which half ends up adjacent to which via node, both are kept as valid
// continuations and it's left to the (from,via) key structure — which
// still names `via` by node, unaffected by the split — to exclude the
// half that turns out not to touch it.
func (r *Restrictor) ReplaceEdge(old EdgeID, newA, newB EdgeID) {
	replaceFromKeys(r.positive, old, newA, newB)
	replaceFromKeys(r.negative, old, newA, newB)
	replaceToValues(r.positive, old, newA, newB)
	replaceToValues(r.negative, old, newA, newB)
}

// DuplicateEdge copies every rule referencing old so it also references
// dup, used when an edge is duplicated (e.g. to carry a second transit
// line) rather than replaced.
func (r *Restrictor) DuplicateEdge(old, dup EdgeID) {
	duplicateFromKeys(r.positive, old, dup)
	duplicateFromKeys(r.negative, old, dup)
	duplicateToValues(r.positive, old, dup)
	duplicateToValues(r.negative, old, dup)
}

func replaceFromKeys(m map[restrictKey][]EdgeID, old, newA, newB EdgeID) {
	for k, v := range m {
		if k.From == old {
			delete(m, k)
			m[restrictKey{Via: k.Via, From: newA}] = append(m[restrictKey{Via: k.Via, From: newA}], v...)
			m[restrictKey{Via: k.Via, From: newB}] = append(m[restrictKey{Via: k.Via, From: newB}], v...)
		}
	}
}

func replaceToValues(m map[restrictKey][]EdgeID, old, newA, newB EdgeID) {
	for k, v := range m {
		out := make([]EdgeID, 0, len(v))
		changed := false
		for _, e := range v {
			if e == old {
				out = append(out, newA, newB)
				changed = true
			} else {
				out = append(out, e)
			}
		}
		if changed {
			m[k] = out
		}
	}
}

func duplicateFromKeys(m map[restrictKey][]EdgeID, old, dup EdgeID) {
	for k, v := range m {
		if k.From == old {
			cp := make([]EdgeID, len(v))
			copy(cp, v)
			m[restrictKey{Via: k.Via, From: dup}] = cp
		}
	}
}

func duplicateToValues(m map[restrictKey][]EdgeID, old, dup EdgeID) {
	for k, v := range m {
		for _, e := range v {
			if e == old {
				m[k] = append(m[k], dup)
				break
			}
		}
	}
}
