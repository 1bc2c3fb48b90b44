// Package osmfilter implements the three-pass OSM reader and tag-based
// filter of spec.md §4.A: a format-agnostic scan (PBF or XML) that keeps
// only the ways/nodes/relations relevant to one MOT's network, while
// retaining station nodes even when no kept way references them.
package osmfilter

import (
	"context"
	"io"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
)

// Scanner is the minimal surface both osmpbf.Scanner and osmxml.Scanner
// already implement, extracted so the three-pass reader doesn't care
// which wire format it's reading (spec.md §6 "OSM file (XML or PBF)").
type Scanner interface {
	Scan() bool
	Object() osm.Object
	Close() error
	Err() error
}

// scannerOpts selects which object kinds OpenPBF tells osmpbf.Scanner to
// skip (its SkipNodes/SkipWays/SkipRelations fields).
type scannerOpts struct {
	SkipNodes     bool
	SkipWays      bool
	SkipRelations bool
}

// OpenPBF opens a .osm.pbf source for one pass, skipping object kinds
// per opts to avoid decoding data a given pass doesn't need (grounded on
// the teacher's pkg/osm/parser.go SkipNodes/SkipRelations use).
func OpenPBF(ctx context.Context, rs io.ReadSeeker, procs int, opts scannerOpts) (Scanner, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	s := osmpbf.New(ctx, rs, procs)
	s.SkipNodes = opts.SkipNodes
	s.SkipWays = opts.SkipWays
	s.SkipRelations = opts.SkipRelations
	return s, nil
}

// OpenXML opens a .osm.xml source for one pass. osmxml has no
// skip-by-kind knobs; the reader is still seeked back to the start so
// callers can run multiple passes over the same io.ReadSeeker.
func OpenXML(ctx context.Context, rs io.ReadSeeker) (Scanner, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return osmxml.New(ctx, rs), nil
}
