// Package scoring computes pair quality scores from rank positions, tag
// overlap, and desired-attribute matches. Every function here is pure:
// given the same participant/preference/profile data and the same
// EngineConfig, it always returns the same score.
package scoring

import (
	"sort"
	"strings"

	cohortmodels "github.com/benidevo/mentormatch/internal/cohort/models"
	"github.com/benidevo/mentormatch/internal/match/models"
)

// Breakdown is the per-component detail behind an overall pair score.
type Breakdown struct {
	RankScore         float64
	RankComponent     float64
	TagOverlapScore   float64
	TagComponent      float64
	AttributeScore    float64
	AttributeComponent float64
	OverallScore      float64
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// RankScore converts a 1-based rank position into a [0,100] score as
// (maxRank-rank+1)/maxRank*100: rank 1 (most preferred) scores 100, and the
// participant's own largest stored rank scores 100/maxRank. A non-positive
// rank or maxRank scores 0.
func RankScore(rank, maxRank int) float64 {
	if rank <= 0 || maxRank <= 0 {
		return 0
	}
	v := float64(maxRank-rank+1) / float64(maxRank) * 100
	if v < 0 {
		return 0
	}
	return v
}

// jaccardPercent returns the Jaccard similarity (times 100) between two
// string sets, normalized by lowercasing and trimming whitespace.
func jaccardPercent(a, b []string) float64 {
	setA := normalizeSet(a)
	setB := normalizeSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	union := make(map[string]struct{}, len(setA)+len(setB))
	for k := range setA {
		union[k] = struct{}{}
		if _, ok := setB[k]; ok {
			intersection++
		}
	}
	for k := range setB {
		union[k] = struct{}{}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union)) * 100
}

func normalizeSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		trimmed := strings.ToLower(strings.TrimSpace(item))
		if trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return set
}

// TagOverlapScore is the Jaccard similarity between a mentor's expertise
// tags and a mentee's desired-expertise tags.
func TagOverlapScore(mentorTags, menteeDesiredTags []string) float64 {
	return jaccardPercent(mentorTags, menteeDesiredTags)
}

// AttributeMatchScore computes the fraction of a mentee's desired
// attributes a mentor satisfies, pattern-matching the tagged-union value
// of each desired attribute.
func AttributeMatchScore(desired map[string]cohortmodels.AttributeValue, mentorFields map[string]any) float64 {
	if len(desired) == 0 {
		return 0
	}

	keys := make([]string, 0, len(desired))
	for k := range desired {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var matched, total float64
	for _, key := range keys {
		value := desired[key]
		switch value.Kind {
		case cohortmodels.AttributeBool:
			if !value.Bool {
				continue
			}
			total++
			if truthy(mentorFields[stripPreferred(key)]) || truthy(mentorFields[key]) {
				matched++
			}
		case cohortmodels.AttributeString:
			if value.Str == "" {
				continue
			}
			total++
			field := stripPreferred(key)
			mentorStr, _ := mentorFields[field].(string)
			switch {
			case strings.Contains(strings.ToLower(key), "location"):
				if mentorStr != "" && strings.EqualFold(mentorStr, value.Str) {
					matched++
				}
			case strings.Contains(strings.ToLower(key), "language"):
				mentorLanguages, _ := mentorFields["languages"].([]string)
				if containsFold(mentorLanguages, value.Str) {
					matched++
				}
			default:
				if mentorStr != "" && strings.EqualFold(mentorStr, value.Str) {
					matched++
				}
			}
		case cohortmodels.AttributeList:
			if len(value.List) == 0 {
				continue
			}
			total++
			mentorList, _ := mentorFields[stripPreferred(key)].([]string)
			matched += jaccardPercent(value.List, mentorList) / 100
		}
	}

	if total == 0 {
		return 0
	}
	return (matched / total) * 100
}

func stripPreferred(key string) string {
	return strings.TrimPrefix(key, "preferred_")
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	}
	return false
}

func containsFold(list []string, target string) bool {
	for _, item := range list {
		if strings.EqualFold(item, target) {
			return true
		}
	}
	return false
}

// ScorePair computes the overall quality score and breakdown for a
// mentor/mentee pair.
//
// If either direction of the mutual preference is missing, the pair is
// excluded from scoring: overall score is 0 regardless of tag/attribute
// components, per SPEC_FULL.md §4.1.
func ScorePair(
	mentorRank, mentorMaxRank int,
	mentorHasPref bool,
	menteeRank, menteeMaxRank int,
	menteeHasPref bool,
	mentorProfile cohortmodels.MentorProfile,
	menteeProfile cohortmodels.MenteeProfile,
	cfg models.EngineConfig,
) (float64, Breakdown) {
	if !mentorHasPref || !menteeHasPref {
		return 0, Breakdown{}
	}

	mentorRankScore := RankScore(mentorRank, mentorMaxRank)
	menteeRankScore := RankScore(menteeRank, menteeMaxRank)
	avgRankScore := (mentorRankScore + menteeRankScore) / 2

	tagScore := TagOverlapScore(mentorProfile.ExpertiseTags, menteeProfile.DesiredExpertise())
	attrScore := AttributeMatchScore(menteeProfile.DesiredAttributes, mentorProfile.FieldsForScoring())

	rankComponent := avgRankScore * cfg.RankWeight
	tagComponent := tagScore * cfg.TagOverlapWeight
	attrComponent := attrScore * cfg.AttributeMatchWeight

	overall := clamp(rankComponent+tagComponent+attrComponent, 0, 100)

	breakdown := Breakdown{
		RankScore:          round2(avgRankScore),
		RankComponent:      round2(rankComponent),
		TagOverlapScore:    round2(tagScore),
		TagComponent:       round2(tagComponent),
		AttributeScore:     round2(attrScore),
		AttributeComponent: round2(attrComponent),
		OverallScore:       round2(overall),
	}
	return overall, breakdown
}

// ScaledScore converts a percentage score (0-100) to the integer
// granularity the solvers operate on: round(percentage * scale).
func ScaledScore(percentage float64, scale int) int {
	return int(percentage*float64(scale) + 0.5)
}
