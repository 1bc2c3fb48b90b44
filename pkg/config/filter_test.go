package config

import "testing"

func TestFilterExactMatch(t *testing.T) {
	f := NewFilter()
	f.AddKeep("railway", "rail")
	if !f.Keeps(map[string]string{"railway": "rail"}) {
		t.Error("expected exact match to keep")
	}
	if f.Keeps(map[string]string{"railway": "tram"}) {
		t.Error("expected non-match to drop")
	}
}

func TestFilterWildcard(t *testing.T) {
	f := NewFilter()
	f.AddKeep("highway", "*")
	if !f.Keeps(map[string]string{"highway": "anything"}) {
		t.Error("wildcard should match any value")
	}
}

func TestFilterMultiVal(t *testing.T) {
	f := NewFilter()
	f.AddKeep("access", "yes;permissive;designated")
	if !f.Keeps(map[string]string{"access": "permissive"}) {
		t.Error("semicolon-list should match middle token")
	}
	if f.Keeps(map[string]string{"access": "private"}) {
		t.Error("semicolon-list should not match unrelated token")
	}
}

func TestFilterDropTakesPrecedence(t *testing.T) {
	f := NewFilter()
	f.AddKeep("highway", "*")
	f.AddDrop("access", "private")
	if f.Keeps(map[string]string{"highway": "service", "access": "private"}) {
		t.Error("drop should override a matching keep")
	}
}

func TestDefaultRoutingOptions(t *testing.T) {
	opts := DefaultRoutingOptions()
	if opts.FullTurnPunishFac != 2000 {
		t.Errorf("FullTurnPunishFac = %v, want 2000", opts.FullTurnPunishFac)
	}
	if opts.FullTurnAngle != 45 {
		t.Errorf("FullTurnAngle = %v, want 45", opts.FullTurnAngle)
	}
	if !opts.NoSelfHops {
		t.Error("NoSelfHops should default to true")
	}
	if !opts.PopReachEdge {
		t.Error("PopReachEdge should default to true")
	}
}
