package config

import (
	"strconv"
	"strings"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"

	"github.com/azybler/shapematch/pkg/normalizer"
)

// MotConfig is one mode-of-transport's worth of graph-builder and router
// configuration (spec.md §6 "MOT configuration file"): which OSM route
// types it applies to, the keep/drop filters for ways, stations and
// blockers, the level table, normalizers, and routing options.
type MotConfig struct {
	Name string
	Mots map[int]bool

	WayFilter     *Filter
	StationFilter *Filter
	BlockerFilter *Filter
	OneWayFilter  *Filter
	RestrPosFilter *Filter
	RestrNegFilter *Filter
	RestrNoFilter  *Filter

	// LevelTable maps a way's matched level tag to its level bucket
	// (0..7), in the order the levels section lists its keys; the first
	// matching rule wins.
	LevelTable []LevelRule

	IDNormzer       *normalizer.Normalizer
	StationNormzer  *normalizer.Normalizer
	LineNormzer     *normalizer.Normalizer
	TrackNormzer    *normalizer.Normalizer

	MaxSnapDistances  []float64
	MaxSnapLevel      uint8
	MaxAngleSnapReach float64
	GridCellSize      float64

	Routing RoutingOptions
}

// LevelRule maps one keep-filter match to a level bucket.
type LevelRule struct {
	Filter *Filter
	Level  uint8
}

// ReadMotConfig parses an INI-formatted MOT configuration file (spec.md
// §6). Section names group related keys; this mirrors the original's
// prefixed-key convention without depending on its exact schema, since
// spec.md leaves the file format's section layout unspecified.
func ReadMotConfig(path string) (*MotConfig, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading MOT config %q", path)
	}

	mc := &MotConfig{
		Name:           f.Section("mot").Key("name").MustString("unnamed"),
		Mots:           parseMotSet(f.Section("mot").Key("mots").String()),
		WayFilter:      NewFilter(),
		StationFilter:  NewFilter(),
		BlockerFilter:  NewFilter(),
		OneWayFilter:   NewFilter(),
		RestrPosFilter: NewFilter(),
		RestrNegFilter: NewFilter(),
		RestrNoFilter:  NewFilter(),
		Routing:        DefaultRoutingOptions(),
		GridCellSize:   2000,
	}

	loadFilterSection(f, "keep_ways", mc.WayFilter.AddKeep)
	loadFilterSection(f, "drop_ways", mc.WayFilter.AddDrop)
	loadFilterSection(f, "station_ways", mc.StationFilter.AddKeep)
	loadFilterSection(f, "blocker_ways", mc.BlockerFilter.AddKeep)
	loadFilterSection(f, "oneway", mc.OneWayFilter.AddKeep)
	loadFilterSection(f, "restr_pos", mc.RestrPosFilter.AddKeep)
	loadFilterSection(f, "restr_neg", mc.RestrNegFilter.AddKeep)
	loadFilterSection(f, "restr_no", mc.RestrNoFilter.AddKeep)

	if lvl := f.Section("levels"); lvl != nil {
		for _, key := range lvl.Keys() {
			n, err := strconv.Atoi(key.Name())
			if err != nil || n < 0 || n > 7 {
				continue
			}
			flt := NewFilter()
			for _, kv := range strings.Split(key.String(), ",") {
				kv = strings.TrimSpace(kv)
				if kv == "" {
					continue
				}
				parts := strings.SplitN(kv, "=", 2)
				if len(parts) == 2 {
					flt.AddKeep(parts[0], parts[1])
				}
			}
			mc.LevelTable = append(mc.LevelTable, LevelRule{Filter: flt, Level: uint8(n)})
		}
	}

	var err2 error
	mc.IDNormzer, err2 = loadNormalizer(f, "norm_ids")
	if err2 != nil {
		return nil, err2
	}
	mc.StationNormzer, err2 = loadNormalizer(f, "norm_stations")
	if err2 != nil {
		return nil, err2
	}
	mc.LineNormzer, err2 = loadNormalizer(f, "norm_lines")
	if err2 != nil {
		return nil, err2
	}
	mc.TrackNormzer, err2 = loadNormalizer(f, "norm_tracks")
	if err2 != nil {
		return nil, err2
	}

	snapSec := f.Section("snap")
	mc.MaxSnapLevel = uint8(snapSec.Key("max_level").MustInt(3))
	mc.MaxAngleSnapReach = snapSec.Key("max_angle_reach").MustFloat64(90)
	for _, s := range strings.Split(snapSec.Key("distances").MustString("50,100,150"), ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			mc.MaxSnapDistances = append(mc.MaxSnapDistances, v)
		}
	}

	routeSec := f.Section("routing")
	if routeSec != nil {
		applyRoutingOverrides(&mc.Routing, routeSec)
	}

	return mc, nil
}

func parseMotSet(s string) map[int]bool {
	out := make(map[int]bool)
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if n, err := strconv.Atoi(tok); err == nil {
			out[n] = true
		}
	}
	return out
}

func loadFilterSection(f *ini.File, section string, add func(key, value string)) {
	sec, err := f.GetSection(section)
	if err != nil {
		return
	}
	for _, key := range sec.Keys() {
		for _, v := range strings.Split(key.String(), ",") {
			v = strings.TrimSpace(v)
			if v != "" {
				add(key.Name(), v)
			}
		}
	}
}

func loadNormalizer(f *ini.File, section string) (*normalizer.Normalizer, error) {
	sec, err := f.GetSection(section)
	if err != nil {
		return normalizer.New(nil)
	}
	var rules []normalizer.Rule
	for _, key := range sec.Keys() {
		rules = append(rules, normalizer.Rule{Pattern: key.Name(), Replacement: key.String()})
	}
	return normalizer.New(rules)
}

func applyRoutingOverrides(opts *RoutingOptions, sec *ini.Section) {
	if sec.HasKey("full_turn_punish_fac") {
		opts.FullTurnPunishFac = sec.Key("full_turn_punish_fac").MustFloat64(opts.FullTurnPunishFac)
	}
	if sec.HasKey("full_turn_angle") {
		opts.FullTurnAngle = sec.Key("full_turn_angle").MustFloat64(opts.FullTurnAngle)
	}
	if sec.HasKey("pass_thru_stations_punish") {
		opts.PassThruStationsPunish = sec.Key("pass_thru_stations_punish").MustFloat64(opts.PassThruStationsPunish)
	}
	if sec.HasKey("one_way_punish_fac") {
		opts.OneWayPunishFac = sec.Key("one_way_punish_fac").MustFloat64(opts.OneWayPunishFac)
	}
	if sec.HasKey("one_way_edge_punish") {
		opts.OneWayEdgePunish = sec.Key("one_way_edge_punish").MustFloat64(opts.OneWayEdgePunish)
	}
	if sec.HasKey("line_unmatched_punish_fact") {
		opts.LineUnmatchedPunishFact = sec.Key("line_unmatched_punish_fact").MustFloat64(opts.LineUnmatchedPunishFact)
	}
	if sec.HasKey("no_lines_punish_fact") {
		opts.NoLinesPunishFact = sec.Key("no_lines_punish_fact").MustFloat64(opts.NoLinesPunishFact)
	}
	if sec.HasKey("platform_unmatched_pen") {
		opts.PlatformUnmatchedPen = sec.Key("platform_unmatched_pen").MustFloat64(opts.PlatformUnmatchedPen)
	}
	if sec.HasKey("station_dist_pen_factor") {
		opts.StationDistPenFactor = sec.Key("station_dist_pen_factor").MustFloat64(opts.StationDistPenFactor)
	}
}
