package osmfilter

import (
	"testing"

	"github.com/azybler/shapematch/pkg/config"
)

func TestLevelForFallsBackToLowestPriority(t *testing.T) {
	rail := config.NewFilter()
	rail.AddKeep("railway", "rail")
	table := []config.LevelRule{{Filter: rail, Level: 0}}

	got := levelFor(map[string]string{"railway": "rail"}, table)
	if got != 0 {
		t.Errorf("level = %d, want 0", got)
	}

	got = levelFor(map[string]string{"highway": "residential"}, table)
	if got != 7 {
		t.Errorf("level = %d, want 7 (no matching rule)", got)
	}
}

func TestOneWayForExplicitTagWins(t *testing.T) {
	f := config.NewFilter()
	if got := oneWayFor(map[string]string{"oneway": "yes"}, f); got != 1 {
		t.Errorf("oneway=yes -> %d, want 1", got)
	}
	if got := oneWayFor(map[string]string{"oneway": "-1"}, f); got != -1 {
		t.Errorf("oneway=-1 -> %d, want -1", got)
	}
	if got := oneWayFor(map[string]string{}, f); got != 0 {
		t.Errorf("no tag, no filter match -> %d, want 0", got)
	}
}

func TestOneWayForFilterFallback(t *testing.T) {
	f := config.NewFilter()
	f.AddKeep("junction", "roundabout")
	got := oneWayFor(map[string]string{"junction": "roundabout"}, f)
	if got != 1 {
		t.Errorf("roundabout via filter -> %d, want 1", got)
	}
}

func TestHasPrefix(t *testing.T) {
	if !hasPrefix("only_straight_on", "only_") {
		t.Error("expected only_ prefix match")
	}
	if hasPrefix("no_left_turn", "only_") {
		t.Error("unexpected only_ prefix match")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "", "b"); got != "b" {
		t.Errorf("firstNonEmpty = %q, want %q", got, "b")
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty = %q, want empty", got)
	}
}
