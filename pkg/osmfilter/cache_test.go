package osmfilter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/osm"
)

func sampleParseResult() *ParseResult {
	return &ParseResult{
		Ways: []WayRaw{
			{ID: 1, NodeIDs: []osm.NodeID{10, 11, 12}, Level: 2, OneWay: 1, IsStation: false},
		},
		Nodes: map[osm.NodeID]NodeRaw{
			10: {ID: 10, Lat: 52.1, Lon: 13.1, IsStation: true, Name: "Alpha"},
			11: {ID: 11, Lat: 52.2, Lon: 13.2},
			12: {ID: 12, Lat: 52.3, Lon: 13.3, IsStation: true, Name: "Beta", Track: "2"},
		},
		Restrictions: []RestrictionRaw{
			{From: 1, To: 2, Via: 11, Positive: false},
		},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osm.cache")
	want := sampleParseResult()

	if err := WriteCache(path, want); err != nil {
		t.Fatalf("WriteCache: %v", err)
	}

	got, err := ReadCache(path)
	if err != nil {
		t.Fatalf("ReadCache: %v", err)
	}

	if len(got.Ways) != len(want.Ways) || got.Ways[0].ID != want.Ways[0].ID {
		t.Errorf("Ways mismatch: got %+v, want %+v", got.Ways, want.Ways)
	}
	if len(got.Nodes) != len(want.Nodes) {
		t.Fatalf("Nodes length = %d, want %d", len(got.Nodes), len(want.Nodes))
	}
	if got.Nodes[10].Name != "Alpha" || got.Nodes[12].Track != "2" {
		t.Errorf("Nodes round-trip mismatch: %+v", got.Nodes)
	}
	if len(got.Restrictions) != 1 || got.Restrictions[0].Via != 11 {
		t.Errorf("Restrictions mismatch: %+v", got.Restrictions)
	}
}

func TestReadCacheRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osm.cache")
	if err := WriteCache(path, sampleParseResult()); err != nil {
		t.Fatalf("WriteCache: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	data[len(data)-1] ^= 0xff
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := ReadCache(path); err == nil {
		t.Error("expected ReadCache to reject a corrupted file")
	}
}

func TestReadCacheMissingFile(t *testing.T) {
	if _, err := ReadCache(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error for a missing cache file")
	}
}
