// Package models defines the pure, storage-free value types the matching
// engine's solvers and orchestrator operate on: EngineConfig,
// PreparedInputs, MatchRun, Match, and ActiveMatchRun.
package models

// EngineConfig is the immutable merge of engine-wide defaults with a
// cohort's overrides (see internal/cohort/models.Cohort.Config). Solving
// never reads ambient state beyond this value.
type EngineConfig struct {
	RankWeight            float64
	TagOverlapWeight      float64
	AttributeMatchWeight  float64
	MinOptionsStrict      int
	StrictTimeLimitSec    int
	ExceptionTimeLimitSec int
	PenaltyOrg            int64
	PenaltyNeither        int64
	PenaltyOneSided       int64
	ScoreScale            int
	AmbiguityGapThreshold float64
}

// DefaultEngineConfig returns the defaults named in the specification's
// configuration table.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		RankWeight:            0.6,
		TagOverlapWeight:      0.2,
		AttributeMatchWeight:  0.2,
		MinOptionsStrict:      3,
		StrictTimeLimitSec:    5,
		ExceptionTimeLimitSec: 10,
		PenaltyOrg:            1_000_000,
		PenaltyNeither:        300_000,
		PenaltyOneSided:       100_000,
		ScoreScale:            1000,
		AmbiguityGapThreshold: 5.0,
	}
}

// MergeOverrides returns a copy of the default config with any recognized
// keys in overrides applied. Unrecognized keys and wrong-typed values are
// ignored rather than erroring — cohort config is free-form storage.
func MergeOverrides(overrides map[string]any) EngineConfig {
	cfg := DefaultEngineConfig()

	if v, ok := floatOverride(overrides, "rank_weight"); ok {
		cfg.RankWeight = v
	}
	if v, ok := floatOverride(overrides, "tag_overlap_weight"); ok {
		cfg.TagOverlapWeight = v
	}
	if v, ok := floatOverride(overrides, "attribute_match_weight"); ok {
		cfg.AttributeMatchWeight = v
	}
	if v, ok := intOverride(overrides, "min_options_strict"); ok {
		cfg.MinOptionsStrict = v
	}
	if v, ok := intOverride(overrides, "strict_time_limit"); ok {
		cfg.StrictTimeLimitSec = v
	}
	if v, ok := intOverride(overrides, "exception_time_limit"); ok {
		cfg.ExceptionTimeLimitSec = v
	}
	if v, ok := intOverride(overrides, "penalty_org"); ok {
		cfg.PenaltyOrg = int64(v)
	}
	if v, ok := intOverride(overrides, "penalty_neither"); ok {
		cfg.PenaltyNeither = int64(v)
	}
	if v, ok := intOverride(overrides, "penalty_one_sided"); ok {
		cfg.PenaltyOneSided = int64(v)
	}
	if v, ok := intOverride(overrides, "score_scale"); ok {
		cfg.ScoreScale = v
	}
	if v, ok := floatOverride(overrides, "ambiguity_gap_threshold"); ok {
		cfg.AmbiguityGapThreshold = v
	}

	return cfg
}

func floatOverride(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func intOverride(m map[string]any, key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
