package trgraph

import "sync"

// TransitEdgeLine is the (route short name, headsign "to", origin "from")
// triple an edge carries when a trip's stop-to-stop hop traverses it
// (spec.md §3 "TransitEdgeLine"). Equal triples are interned to the same
// pointer so edges sharing a line compare by identity.
type TransitEdgeLine struct {
	ShortName string
	To        string
	From      string
}

// LineIntern is an explicit, refcounted intern table for TransitEdgeLine
// values (spec.md Design Notes: "replace the static intern table with an
// explicit, refcounted table owned by the GraphContext"). Safe for
// concurrent use since shape-building fans out across goroutines that
// may intern/release lines for the same MOT graph concurrently.
type LineIntern struct {
	mu    sync.Mutex
	table map[TransitEdgeLine]*TransitEdgeLine
	refs  map[*TransitEdgeLine]int
}

// NewLineIntern creates an empty intern table.
func NewLineIntern() *LineIntern {
	return &LineIntern{
		table: make(map[TransitEdgeLine]*TransitEdgeLine),
		refs:  make(map[*TransitEdgeLine]int),
	}
}

// Intern returns the canonical pointer for l, creating an entry with
// refcount 1 if this is the first use, or incrementing the refcount of
// the existing entry otherwise. The caller owns one reference and must
// call Release when it no longer needs it.
func (li *LineIntern) Intern(l TransitEdgeLine) *TransitEdgeLine {
	li.mu.Lock()
	defer li.mu.Unlock()
	if p, ok := li.table[l]; ok {
		li.refs[p]++
		return p
	}
	p := new(TransitEdgeLine)
	*p = l
	li.table[l] = p
	li.refs[p] = 1
	return p
}

// Release drops one reference to l, removing it from the table once the
// refcount reaches zero. Releasing a nil or unknown pointer is a no-op.
func (li *LineIntern) Release(l *TransitEdgeLine) {
	if l == nil {
		return
	}
	li.mu.Lock()
	defer li.mu.Unlock()
	n, ok := li.refs[l]
	if !ok {
		return
	}
	if n <= 1 {
		delete(li.refs, l)
		delete(li.table, *l)
		return
	}
	li.refs[l] = n - 1
}

// Len reports the number of distinct interned lines, for diagnostics/tests.
func (li *LineIntern) Len() int {
	li.mu.Lock()
	defer li.mu.Unlock()
	return len(li.table)
}
